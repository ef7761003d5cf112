// Package storage provides the PostgreSQL-backed persistence layer for the
// fingerprint enrollment service. It exposes a typed User model mapping to
// the single `users` table and a PostgresStore that wraps a pgxpool
// connection pool.
// A sqlite-backed DevStore (see sqlite.go) implements the same interface for
// local development and fast in-process tests.
package storage

import (
	"context"
	"time"
)

// User maps to the `users` table.
//
// FingerprintBlob holds either a decoded-lazily FP3 template or a raw
// 111360-byte probe image, stored verbatim and unvalidated at write time --
// validity is established lazily on first match. A nil FingerprintBlob means
// the user has never enrolled.
type User struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	FingerprintBlob []byte    `json:"-"`
	EnrolledAt      time.Time `json:"enrolled_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Store is the persistence interface consumed by the REST layer. Both the
// PostgreSQL-backed PostgresStore and the sqlite-backed DevStore satisfy it.
type Store interface {
	CreateUser(ctx context.Context, name, email string) (User, error)
	GetUser(ctx context.Context, id int) (User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]User, error)
	DeleteUser(ctx context.Context, id int) error
	SetFingerprint(ctx context.Context, id int, blob []byte) error
	FingerprintBlobs(ctx context.Context) (map[int][]byte, error)
	Close()
}
