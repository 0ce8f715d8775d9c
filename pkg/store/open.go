package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Backend names accepted by Open.
const (
	BackendDisk     = "disk"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRemote   = "remote"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	DiskPath    string
	PostgresURL string
	RemoteURL   string
	RemoteToken string
	Logger      zerolog.Logger
}

// Open returns the backend named by o.Backend. An empty name means disk.
func Open(ctx context.Context, o Options) (Remote, error) {
	switch o.Backend {
	case "", BackendDisk:
		return OpenDisk(o.DiskPath, o.Logger)
	case BackendMemory:
		return NewMemory(), nil
	case BackendPostgres:
		return OpenPostgres(ctx, o.PostgresURL, o.Logger)
	case BackendRemote:
		return DialHub(ctx, o.RemoteURL, o.RemoteToken, o.Logger)
	default:
		return nil, fmt.Errorf("%w %q (expected disk, memory, postgres or remote)", ErrUnknownBackend, o.Backend)
	}
}
