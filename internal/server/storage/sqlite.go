// DevStore is a modernc.org/sqlite-backed implementation of Store, used for
// local development and for fast in-process tests that do not need a real
// Postgres instance. It opens the database with a single connection, WAL
// journal mode and synchronous = NORMAL.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver with database/sql
)

// DevStore is a single-connection, WAL-mode sqlite-backed Store.
type DevStore struct {
	db *sql.DB
}

const devStoreDDL = `
CREATE TABLE IF NOT EXISTS users (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    name             TEXT    NOT NULL,
    email            TEXT,
    fingerprint_blob BLOB,
    enrolled_at      TEXT,
    updated_at       TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);
`

// NewDevStore opens (or creates) the sqlite database at path and applies the
// schema. path may be ":memory:" for tests.
func NewDevStore(path string) (*DevStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("devstore: open %q: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("devstore: set WAL mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA synchronous = NORMAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("devstore: set synchronous = NORMAL: %w", err)
	}
	if _, err := db.Exec(devStoreDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("devstore: apply schema: %w", err)
	}

	return &DevStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *DevStore) Close() {
	_ = s.db.Close()
}

func (s *DevStore) CreateUser(ctx context.Context, name, email string) (User, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, updated_at) VALUES (?, ?, ?)`,
		name, nullableStr(email), now.Format(time.RFC3339Nano))
	if err != nil {
		return User{}, fmt.Errorf("devstore: create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("devstore: create user id: %w", err)
	}
	return s.GetUser(ctx, int(id))
}

func (s *DevStore) GetUser(ctx context.Context, id int) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, enrolled_at, updated_at FROM users WHERE id = ?`, id)
	u, err := scanDevUser(row)
	if err != nil {
		return User{}, fmt.Errorf("devstore: get user %d: %w", id, err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT fingerprint_blob FROM users WHERE id = ?`, id).Scan(&u.FingerprintBlob); err != nil {
		return User{}, fmt.Errorf("devstore: get user %d fingerprint: %w", id, err)
	}
	return *u, nil
}

func (s *DevStore) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, enrolled_at, updated_at
		 FROM   users
		 ORDER  BY id
		 LIMIT  ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("devstore: list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanDevUser(rows)
		if err != nil {
			return nil, fmt.Errorf("devstore: scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *DevStore) DeleteUser(ctx context.Context, id int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("devstore: delete user %d: %w", id, err)
	}
	return nil
}

func (s *DevStore) SetFingerprint(ctx context.Context, id int, blob []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`UPDATE users
		 SET    fingerprint_blob = ?,
		        enrolled_at      = COALESCE(enrolled_at, ?),
		        updated_at       = ?
		 WHERE  id = ?`,
		blob, now, now, id)
	if err != nil {
		return fmt.Errorf("devstore: set fingerprint for user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("devstore: set fingerprint rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("devstore: set fingerprint for user %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

func (s *DevStore) FingerprintBlobs(ctx context.Context) (map[int][]byte, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fingerprint_blob FROM users WHERE fingerprint_blob IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("devstore: list fingerprint blobs: %w", err)
	}
	defer rows.Close()

	blobs := make(map[int][]byte)
	for rows.Next() {
		var id int
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("devstore: scan fingerprint blob: %w", err)
		}
		blobs[id] = blob
	}
	return blobs, rows.Err()
}

// devScanner is satisfied by both *sql.Row and *sql.Rows.
type devScanner interface {
	Scan(dest ...any) error
}

func scanDevUser(s devScanner) (*User, error) {
	var u User
	var email, enrolledAt *string
	var updatedAt string
	if err := s.Scan(&u.ID, &u.Name, &email, &enrolledAt, &updatedAt); err != nil {
		return nil, err
	}
	if email != nil {
		u.Email = *email
	}
	if enrolledAt != nil {
		if t, err := time.Parse(time.RFC3339Nano, *enrolledAt); err == nil {
			u.EnrolledAt = t
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		u.UpdatedAt = t
	}
	return &u, nil
}
