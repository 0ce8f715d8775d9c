package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"
	"github.com/rs/zerolog"
)

const tempDirName = ".tmp"

// Disk is a Remote backed by a diskv directory. Each mapping is a bucket
// directory and each child a JSON file; other processes sharing the directory
// see changes through the watcher.
type Disk struct {
	d        *diskv.Diskv
	basePath string
	log      zerolog.Logger

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
	ctx    context.Context
}

// OpenDisk creates the base directory if needed and returns a disk backend.
func OpenDisk(basePath string, log zerolog.Logger) (*Disk, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, errors.New("store: disk base path required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Disk{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			TempDir:           filepath.Join(basePath, tempDirName),
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			// Other processes write here too, so reads must hit the disk.
			CacheSizeMax: 0,
		}),
		basePath: basePath,
		log:      log.With().Str("backend", BackendDisk).Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

func (p *Disk) Write(_ context.Context, path string, value any) error {
	parent, id, err := SplitChild(path)
	if err != nil {
		return err
	}
	if p.isClosed() {
		return ErrClosed
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", path, err)
	}
	if err := p.d.Write(toKey(parent, id), data); err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	return nil
}

func (p *Disk) Remove(_ context.Context, path string) error {
	parent, id, err := SplitChild(path)
	if err != nil {
		return err
	}
	if p.isClosed() {
		return ErrClosed
	}
	if err := p.d.Erase(toKey(parent, id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: remove %s: %w", path, err)
	}
	return nil
}

func (p *Disk) GenerateID(string) string {
	return newID()
}

func (p *Disk) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.cancel()
	return nil
}

func (p *Disk) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// read returns the full mapping at parent. Undecodable children keep their
// raw bytes so consumers can reject the snapshot.
func (p *Disk) read(ctx context.Context, parent string) (map[string]any, error) {
	out := make(map[string]any)
	prefix := toBucket(parent) + pathSep
	for key := range p.d.KeysPrefix(prefix, ctx.Done()) {
		raw, err := p.d.Read(key)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("store: read %s: %w", key, err)
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			p.log.Debug().Err(err).Str("key", key).Msg("undecodable child")
			v = raw
		}
		out[strings.TrimPrefix(key, prefix)] = v
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Disk) bucketDir(parent string) string {
	return filepath.Join(p.basePath, toBucket(parent))
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, pathSep)
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.Join(append(append([]string{}, pathKey.Path...), pathKey.FileName), pathSep)
}

// toKey makes `bucket/id`.
func toKey(parent, id string) string {
	return toBucket(parent) + pathSep + id
}

func toBucket(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}
