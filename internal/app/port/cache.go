package port

import "context"

// KeyValueCache is a small string store shared by the RPC resolver and the session.
type KeyValueCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
