package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const notifyChannel = "entries_changed"

// Postgres is a Remote backed by a single entries table. A trigger publishes
// the changed mapping path over LISTEN/NOTIFY.
type Postgres struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// OpenPostgres applies pending migrations and connects a pool.
func OpenPostgres(ctx context.Context, url string, log zerolog.Logger) (*Postgres, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("store: postgres url required")
	}
	if err := MigratePostgres(url); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("store: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping postgres: %w", err)
	}
	return &Postgres{
		pool: pool,
		log:  log.With().Str("backend", BackendPostgres).Logger(),
	}, nil
}

// MigratePostgres runs the embedded schema migrations against url.
func MigratePostgres(url string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("store: load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(url))
	if err != nil {
		return fmt.Errorf("store: init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// migrateURL points the connection string at the pgx/v5 migrate driver.
func migrateURL(url string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(url, scheme) {
			return "pgx5://" + strings.TrimPrefix(url, scheme)
		}
	}
	return url
}

func (s *Postgres) Subscribe(ctx context.Context, path string) (<-chan Snapshot, error) {
	if err := ValidateParent(path); err != nil {
		return nil, err
	}
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: acquire listener: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("store: listen: %w", classify(err))
	}

	sub := newSubscriber()
	go func() {
		defer sub.close()
		defer func() {
			// The connection is still registered as a listener; drop it
			// rather than hand it back to the pool.
			_ = conn.Conn().Close(context.Background())
			conn.Release()
		}()

		s.deliver(ctx, path, sub)
		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Warn().Err(err).Str("path", path).Msg("listener stopped")
				}
				return
			}
			if n.Payload == path {
				s.deliver(ctx, path, sub)
			}
		}
	}()
	return sub.ch, nil
}

func (s *Postgres) deliver(ctx context.Context, path string, sub *subscriber) {
	value, err := s.read(ctx, path)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warn().Err(err).Str("path", path).Msg("read snapshot")
		}
		return
	}
	sub.deliver(Snapshot{Path: path, Value: value})
}

func (s *Postgres) read(ctx context.Context, path string) (map[string]any, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, value::text FROM entries WHERE path = $1 ORDER BY id`, path)
	if err != nil {
		return nil, fmt.Errorf("store: query %s: %w", path, classify(err))
	}
	defer rows.Close()

	out := make(map[string]any)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("store: scan %s: %w", path, err)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = []byte(raw)
		}
		out[id] = v
	}
	return out, rows.Err()
}

func (s *Postgres) Write(ctx context.Context, path string, value any) error {
	parent, id, err := SplitChild(path)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", path, err)
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO entries (path, id, value) VALUES ($1, $2, $3::jsonb)
ON CONFLICT (path, id) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		parent, id, string(data))
	if err != nil {
		return fmt.Errorf("store: write %s: %w", path, classify(err))
	}
	return nil
}

func (s *Postgres) Remove(ctx context.Context, path string) error {
	parent, id, err := SplitChild(path)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM entries WHERE path = $1 AND id = $2`, parent, id); err != nil {
		return fmt.Errorf("store: remove %s: %w", path, classify(err))
	}
	return nil
}

func (s *Postgres) GenerateID(string) string {
	return newID()
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

// ErrSchemaMissing means the entries table has not been migrated.
var ErrSchemaMissing = errors.New("store: postgres schema missing")

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return fmt.Errorf("%w: %v", ErrSchemaMissing, err)
	}
	return err
}
