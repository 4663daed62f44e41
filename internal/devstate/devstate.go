// Package devstate persists per-device client state: the anonymous device
// identity and bookkeeping for recently visited spaces. Spaces expire after
// two days without activity; the expiry is computed client-side from the
// recorded lastActivityAt, and this store lets the UI prune its recents
// list without a network round trip.
package devstate

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/spacedrop/spacedrop/client/internal/types"
)

// RecentSpace is one remembered space.
type RecentSpace struct {
	SpaceID        string
	Slug           string
	LastActivityAt time.Time
	VisitedAt      time.Time
}

// Store is the sqlite-backed device state.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the device state database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS device (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS recent_spaces (
  space_id         TEXT PRIMARY KEY,
  slug             TEXT NOT NULL,
  last_activity_at INTEGER NOT NULL,
  visited_at       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_recent_visited ON recent_spaces(visited_at DESC);
`)
	return err
}

// DeviceID returns the stable anonymous device identity, minting and
// persisting one on first use.
func (s *Store) DeviceID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM device WHERE key = 'device_id'`).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	id = uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO device(key, value) VALUES('device_id', ?)`, id); err != nil {
		return "", err
	}
	return id, nil
}

// RememberSpace records a visit, refreshing the stored activity timestamp.
func (s *Store) RememberSpace(ctx context.Context, sp types.Space) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO recent_spaces(space_id, slug, last_activity_at, visited_at)
VALUES(?, ?, ?, ?)
ON CONFLICT(space_id) DO UPDATE SET
  slug = excluded.slug,
  last_activity_at = excluded.last_activity_at,
  visited_at = excluded.visited_at
`, sp.ID, sp.Slug, sp.LastActivityAt.UnixMilli(), s.now().UnixMilli())
	return err
}

// RecentSpaces lists remembered spaces, most recently visited first,
// excluding any past the inactivity expiry window.
func (s *Store) RecentSpaces(ctx context.Context, limit int) ([]RecentSpace, error) {
	if limit <= 0 {
		limit = 20
	}
	cutoff := s.now().Add(-types.InactivityExpiry).UnixMilli()
	rows, err := s.db.QueryContext(ctx, `
SELECT space_id, slug, last_activity_at, visited_at
FROM recent_spaces
WHERE last_activity_at > ?
ORDER BY visited_at DESC
LIMIT ?
`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []RecentSpace
	for rows.Next() {
		var rs RecentSpace
		var lastAct, visited int64
		if err := rows.Scan(&rs.SpaceID, &rs.Slug, &lastAct, &visited); err != nil {
			return nil, err
		}
		rs.LastActivityAt = time.UnixMilli(lastAct)
		rs.VisitedAt = time.UnixMilli(visited)
		out = append(out, rs)
	}
	return out, rows.Err()
}

// PruneExpired deletes spaces past the inactivity window and returns how
// many were removed.
func (s *Store) PruneExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-types.InactivityExpiry).UnixMilli()
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM recent_spaces WHERE last_activity_at <= ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ForgetSpace drops one remembered space.
func (s *Store) ForgetSpace(ctx context.Context, spaceID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM recent_spaces WHERE space_id = ?`, spaceID)
	return err
}
