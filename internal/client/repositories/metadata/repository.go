// Package metadata persists the small key/value facts the client keeps
// between runs, such as the reference to the last authenticated identity.
package metadata

import (
	"context"
)

// Key names a metadata row.
type Key string

const (
	KeyUserID          Key = "user_id"
	KeyUserIDExpiresAt Key = "user_id_expires_at"
)

// Repository is a key/value store. Get returns (nil, nil) for an absent key.
type Repository interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte) error
	Delete(ctx context.Context, keys ...Key) error
	List(ctx context.Context) (map[Key][]byte, error)
}
