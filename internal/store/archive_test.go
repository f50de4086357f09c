package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quester/internal/attr"
)

func TestArchive_RoundTrip(t *testing.T) {
	src := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, src.Save(ctx, "p1", sampleLog("p1")))
	require.NoError(t, src.SaveAttributes(ctx, "p1", map[string]attr.Value{
		"quester:walkdist:trek:slot0:have": attr.FloatValue(4.5),
	}))
	require.NoError(t, src.Save(ctx, "p2", sampleLog("p2")))

	path := filepath.Join(t.TempDir(), "backup", "players.jsonl.zst")
	n, err := src.WriteArchive(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	dst := createTestStore(t)
	n, err = dst.ReadArchive(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := dst.Load(ctx, "p1")
	require.NoError(t, err)
	want := sampleLog("p1")
	require.Len(t, got.Active, len(want.Active))
	for i := range want.Active {
		assert.Equal(t, want.Active[i].QuestID, got.Active[i].QuestID)
		assert.True(t, want.Active[i].AcceptedAt.Equal(got.Active[i].AcceptedAt))
	}
	assert.Equal(t, want.CompletedIDs(), got.CompletedIDs())

	vals, err := dst.LoadAttributes(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, attr.FloatValue(4.5), vals["quester:walkdist:trek:slot0:have"])

	uids, err := dst.Players(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, uids)
}

func TestReadArchive_RejectsForeignFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.zst")
	f, err := os.Create(path)
	require.NoError(t, err)
	enc, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = enc.Write([]byte(`{"format":"something-else","players":0}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	_, err = createTestStore(t).ReadArchive(context.Background(), path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported archive format")
}

func TestReadArchive_Truncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.zst")
	f, err := os.Create(path)
	require.NoError(t, err)
	enc, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = enc.Write([]byte(`{"format":"` + ArchiveFormat + `","players":2}` + "\n" + `{"uid":"p1"}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	n, err := createTestStore(t).ReadArchive(context.Background(), path)

	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, err.Error(), "truncated")
}
