package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/quest"
)

// ArchiveFormat identifies archive files in their header line.
const ArchiveFormat = "quester-archive/v1"

// ArchiveHeader is the first line of an archive.
type ArchiveHeader struct {
	Format    string    `json:"format"`
	Players   int       `json:"players"`
	WrittenAt time.Time `json:"writtenAt"`
}

// ArchiveRecord is one player.
type ArchiveRecord struct {
	UID        string                   `json:"uid"`
	Active     []quest.ActiveQuest      `json:"active,omitempty"`
	Completed  map[string]time.Time     `json:"completed,omitempty"`
	Attributes map[string]ArchivedValue `json:"attributes,omitempty"`
}

// ArchivedValue is an attribute in its persisted (kind, text) form.
type ArchivedValue struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// WriteArchive dumps every player to a zstd-compressed JSON lines file and
// returns the number of players written.
func (s *Store) WriteArchive(ctx context.Context, path string) (int, error) {
	uids, err := s.Players(ctx)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriterSize(enc, 128*1024)
	je := json.NewEncoder(bw)

	if err := je.Encode(ArchiveHeader{Format: ArchiveFormat, Players: len(uids), WrittenAt: time.Now().UTC()}); err != nil {
		enc.Close()
		return 0, fmt.Errorf("write archive header: %w", err)
	}
	for _, uid := range uids {
		rec, err := s.record(ctx, uid)
		if err != nil {
			enc.Close()
			return 0, err
		}
		if err := je.Encode(rec); err != nil {
			enc.Close()
			return 0, fmt.Errorf("write archive record %s: %w", uid, err)
		}
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return 0, err
	}
	if err := enc.Close(); err != nil {
		return 0, err
	}
	return len(uids), f.Close()
}

func (s *Store) record(ctx context.Context, uid string) (ArchiveRecord, error) {
	rec := ArchiveRecord{UID: uid}
	log, err := s.Load(ctx, uid)
	if err != nil {
		return rec, err
	}
	if log != nil {
		rec.Active = log.Active
		rec.Completed = log.Completed
	}
	vals, err := s.LoadAttributes(ctx, uid)
	if err != nil {
		return rec, err
	}
	if len(vals) > 0 {
		rec.Attributes = make(map[string]ArchivedValue, len(vals))
		for k, v := range vals {
			kind, text := v.Encode()
			rec.Attributes[k] = ArchivedValue{Kind: kind, Value: text}
		}
	}
	return rec, nil
}

// ReadArchive imports an archive written by WriteArchive. Each archived
// player replaces whatever is stored for the same uid; other players are
// left alone. It returns the number of players imported.
func (s *Store) ReadArchive(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return 0, err
	}
	defer dec.Close()

	jd := json.NewDecoder(bufio.NewReaderSize(dec, 128*1024))

	var hdr ArchiveHeader
	if err := jd.Decode(&hdr); err != nil {
		return 0, fmt.Errorf("read archive header: %w", err)
	}
	if hdr.Format != ArchiveFormat {
		return 0, fmt.Errorf("unsupported archive format %q", hdr.Format)
	}

	n := 0
	for jd.More() {
		var rec ArchiveRecord
		if err := jd.Decode(&rec); err != nil {
			return n, fmt.Errorf("read archive record %d: %w", n+1, err)
		}
		if err := s.importRecord(ctx, rec); err != nil {
			return n, err
		}
		n++
	}
	if n != hdr.Players {
		return n, fmt.Errorf("archive truncated: header says %d players, read %d", hdr.Players, n)
	}
	return n, nil
}

func (s *Store) importRecord(ctx context.Context, rec ArchiveRecord) error {
	if rec.UID == "" {
		return fmt.Errorf("archive record without uid")
	}
	log := quest.NewPlayerLog(rec.UID)
	log.Active = rec.Active
	for id, at := range rec.Completed {
		log.Completed[id] = at
	}
	vals := make(map[string]attr.Value, len(rec.Attributes))
	for k, av := range rec.Attributes {
		v, err := attr.Decode(av.Kind, av.Value)
		if err != nil {
			return fmt.Errorf("player %s attribute %s: %w", rec.UID, k, err)
		}
		vals[k] = v
	}
	if err := s.Save(ctx, rec.UID, log); err != nil {
		return err
	}
	return s.SaveAttributes(ctx, rec.UID, vals)
}
