// Package localstate persists device-local client state in SQLite as
// key/value pairs. The only state kept today is the per-(room, nickname) set
// of messages hidden with "delete for me".
package localstate

import "context"

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
