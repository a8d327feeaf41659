package kv

import (
	"context"
	"fmt"
)

// Store is a best-effort string key-value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend      string // memory, sqlite or remote
	DBPath       string
	RemoteURL    string
	RemoteAPIKey string
}

// Open returns the backend named in opts.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(opts.DBPath)
	case "remote":
		return NewRemote(opts.RemoteURL, opts.RemoteAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q", opts.Backend)
	}
}
