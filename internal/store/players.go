package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/quest"
)

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

// Load reads the quest log of uid. It returns (nil, nil) for a player that
// was never saved.
func (s *Store) Load(ctx context.Context, uid string) (*quest.PlayerLog, error) {
	var updated int64
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM players WHERE uid = ?`, uid).Scan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load player %s: %w", uid, err)
	}

	log := quest.NewPlayerLog(uid)

	rows, err := s.db.QueryContext(ctx, `
		SELECT quest_id, instance_id, giver_id, accepted_at
		FROM active_quests
		WHERE player_uid = ?
		ORDER BY position ASC, quest_id ASC
	`, uid)
	if err != nil {
		return nil, fmt.Errorf("load active quests of %s: %w", uid, err)
	}
	for rows.Next() {
		var aq quest.ActiveQuest
		var accepted int64
		if err := rows.Scan(&aq.QuestID, &aq.InstanceID, &aq.GiverID, &accepted); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan active quest: %w", err)
		}
		aq.AcceptedAt = fromNanos(accepted)
		log.Active = append(log.Active, aq)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate active quests: %w", err)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `
		SELECT quest_id, completed_at
		FROM completed_quests
		WHERE player_uid = ?
		ORDER BY quest_id ASC
	`, uid)
	if err != nil {
		return nil, fmt.Errorf("load completed quests of %s: %w", uid, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var at int64
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("scan completed quest: %w", err)
		}
		log.Completed[id] = fromNanos(at)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed quests: %w", err)
	}
	return log, nil
}

// Save replaces the stored quest log of uid.
func (s *Store) Save(ctx context.Context, uid string, log *quest.PlayerLog) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := touchPlayer(ctx, tx, uid); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM active_quests WHERE player_uid = ?`, uid); err != nil {
			return fmt.Errorf("clear active quests: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM completed_quests WHERE player_uid = ?`, uid); err != nil {
			return fmt.Errorf("clear completed quests: %w", err)
		}
		for i, aq := range log.Active {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO active_quests
				(player_uid, quest_id, instance_id, giver_id, accepted_at, position)
				VALUES (?, ?, ?, ?, ?, ?)
			`, uid, aq.QuestID, aq.InstanceID, aq.GiverID, toNanos(aq.AcceptedAt), i)
			if err != nil {
				return fmt.Errorf("insert active quest %s: %w", aq.QuestID, err)
			}
		}
		for id, at := range log.Completed {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO completed_quests (player_uid, quest_id, completed_at)
				VALUES (?, ?, ?)
			`, uid, id, toNanos(at))
			if err != nil {
				return fmt.Errorf("insert completed quest %s: %w", id, err)
			}
		}
		return nil
	})
}

// SaveAttributes replaces the stored attribute snapshot of uid.
func (s *Store) SaveAttributes(ctx context.Context, uid string, vals map[string]attr.Value) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := touchPlayer(ctx, tx, uid); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM player_attributes WHERE player_uid = ?`, uid); err != nil {
			return fmt.Errorf("clear attributes: %w", err)
		}
		for key, v := range vals {
			kind, text := v.Encode()
			_, err := tx.ExecContext(ctx, `
				INSERT INTO player_attributes (player_uid, key, kind, value)
				VALUES (?, ?, ?, ?)
			`, uid, key, kind, text)
			if err != nil {
				return fmt.Errorf("insert attribute %s: %w", key, err)
			}
		}
		return nil
	})
}

// LoadAttributes reads the attribute snapshot of uid. A player without a
// snapshot yields an empty map.
func (s *Store) LoadAttributes(ctx context.Context, uid string) (map[string]attr.Value, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, kind, value FROM player_attributes
		WHERE player_uid = ?
		ORDER BY key ASC
	`, uid)
	if err != nil {
		return nil, fmt.Errorf("load attributes of %s: %w", uid, err)
	}
	defer rows.Close()

	vals := make(map[string]attr.Value)
	for rows.Next() {
		var key, kind, text string
		if err := rows.Scan(&key, &kind, &text); err != nil {
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		v, err := attr.Decode(kind, text)
		if err != nil {
			return nil, fmt.Errorf("attribute %s of %s: %w", key, uid, err)
		}
		vals[key] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attributes: %w", err)
	}
	return vals, nil
}

// Players lists every saved player uid in ascending order.
func (s *Store) Players(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT uid FROM players ORDER BY uid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var uids []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		uids = append(uids, uid)
	}
	return uids, rows.Err()
}

// DeletePlayer removes a player and everything stored for them.
func (s *Store) DeletePlayer(ctx context.Context, uid string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE uid = ?`, uid); err != nil {
		return fmt.Errorf("delete player %s: %w", uid, err)
	}
	return nil
}

// CompletionCounts returns how many players completed each quest.
func (s *Store) CompletionCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT quest_id, COUNT(*) FROM completed_quests
		GROUP BY quest_id
		ORDER BY quest_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("count completions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan completion count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func touchPlayer(ctx context.Context, tx *sql.Tx, uid string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO players (uid, updated_at) VALUES (?, ?)
		ON CONFLICT(uid) DO UPDATE SET updated_at = excluded.updated_at
	`, uid, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("upsert player %s: %w", uid, err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
