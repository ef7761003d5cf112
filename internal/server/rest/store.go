package rest

import (
	"context"

	"github.com/bobbydeveaux/fpmatch-service/internal/server/storage"
)

// Store is the subset of storage.Store methods used by the REST handlers.
// Defining an interface allows handlers to be tested with a mock store
// without a live database connection.
type Store interface {
	CreateUser(ctx context.Context, name, email string) (storage.User, error)
	GetUser(ctx context.Context, id int) (storage.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]storage.User, error)
	DeleteUser(ctx context.Context, id int) error
	SetFingerprint(ctx context.Context, id int, blob []byte) error
	FingerprintBlobs(ctx context.Context) (map[int][]byte, error)
}
