package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the PostgreSQL-backed implementation of Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// New opens a pgxpool connection to connStr and pings the database.
func New(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool. Safe to call once.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// CreateUser inserts a new user row and returns it with its assigned id and
// timestamps.
func (s *PostgresStore) CreateUser(ctx context.Context, name, email string) (User, error) {
	var u User
	var gotEmail *string
	now := time.Now().UTC()
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, updated_at)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, updated_at`,
		name, nullableStr(email), now,
	).Scan(&u.ID, &u.Name, &gotEmail, &u.UpdatedAt)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	if gotEmail != nil {
		u.Email = *gotEmail
	}
	return u, nil
}

// GetUser returns the user with the given id, or an error wrapping
// pgx.ErrNoRows when not found.
func (s *PostgresStore) GetUser(ctx context.Context, id int) (User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, enrolled_at, updated_at
		FROM   users
		WHERE  id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	if err := s.pool.QueryRow(ctx,
		`SELECT fingerprint_blob FROM users WHERE id = $1`, id).Scan(&u.FingerprintBlob); err != nil {
		return User{}, fmt.Errorf("get user %d fingerprint: %w", id, err)
	}
	return *u, nil
}

// ListUsers returns users ordered by id, with limit/offset pagination.
// limit <= 0 defaults to 100.
func (s *PostgresStore) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, enrolled_at, updated_at
		FROM   users
		ORDER  BY id
		LIMIT  $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// DeleteUser removes the user identified by id, along with its enrolled
// fingerprint blob.
func (s *PostgresStore) DeleteUser(ctx context.Context, id int) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

// SetFingerprint stores blob verbatim as the user's enrolled fingerprint
// template, stamping both enrolled_at (first write only) and updated_at.
func (s *PostgresStore) SetFingerprint(ctx context.Context, id int, blob []byte) error {
	now := time.Now().UTC()
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET    fingerprint_blob = $2,
		       enrolled_at      = COALESCE(enrolled_at, $3),
		       updated_at       = $3
		WHERE  id = $1`,
		id, blob, now,
	)
	if err != nil {
		return fmt.Errorf("set fingerprint for user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set fingerprint for user %d: %w", id, pgx.ErrNoRows)
	}
	return nil
}

// FingerprintBlobs returns every enrolled user's blob keyed by user id,
// for use by the identify-across-all-users path. Users with no enrolled
// blob are omitted.
func (s *PostgresStore) FingerprintBlobs(ctx context.Context) (map[int][]byte, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, fingerprint_blob
		FROM   users
		WHERE  fingerprint_blob IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("list fingerprint blobs: %w", err)
	}
	defer rows.Close()

	blobs := make(map[int][]byte)
	for rows.Next() {
		var id int
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scan fingerprint blob: %w", err)
		}
		blobs[id] = blob
	}
	return blobs, rows.Err()
}

// --- internal helpers ---

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing shared scan
// helpers across single-row and multi-row queries.
type scanner interface {
	Scan(dest ...any) error
}

// scanUser reads one user row from s. Columns must be projected in the
// order id, name, email, enrolled_at, updated_at.
func scanUser(s scanner) (*User, error) {
	var u User
	var email *string
	var enrolledAt *time.Time
	err := s.Scan(&u.ID, &u.Name, &email, &enrolledAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if email != nil {
		u.Email = *email
	}
	if enrolledAt != nil {
		u.EnrolledAt = *enrolledAt
	}
	return &u, nil
}

// nullableStr converts an empty string to a nil pointer, which pgx stores
// as SQL NULL. A non-empty string is returned as-is.
func nullableStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
