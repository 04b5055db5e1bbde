// Package store opens the comic repository selected by configuration.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/jackc/pgx/v5/pgxpool"

	"comicgallery/internal/comic"
	"comicgallery/internal/config"
)

// Store bundles the selected comic repository with its lifecycle hooks.
type Store struct {
	Driver string
	Comics comic.Repository

	ping  func(ctx context.Context) error
	close func() error
}

// Open connects the back-end named by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	switch cfg.Driver {
	case config.StoreJSON:
		return openJSON(cfg.DataDir), nil
	case config.StoreBadger:
		return openBadger(filepath.Join(cfg.DataDir, "badger"))
	case config.StorePostgres:
		return openPostgres(ctx, cfg.DSN, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openJSON(dataDir string) *Store {
	return &Store{
		Driver: config.StoreJSON,
		Comics: comic.NewJSONRepo(dataDir),
		ping: func(ctx context.Context) error {
			info, err := os.Stat(dataDir)
			if errors.Is(err, os.ErrNotExist) {
				// created on first write
				return nil
			}
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dataDir)
			}
			return nil
		},
		close: func() error { return nil },
	}
}

func openBadger(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.ValueLogFileSize = 16 << 20
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for comics: %w", err)
	}
	return &Store{
		Driver: config.StoreBadger,
		Comics: comic.NewBadgerRepo(db),
		ping: func(ctx context.Context) error {
			if db.IsClosed() {
				return errors.New("badger db closed")
			}
			return nil
		},
		close: db.Close,
	}, nil
}

func openPostgres(ctx context.Context, dsn string, timeout time.Duration) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{
		Driver: config.StorePostgres,
		Comics: comic.NewPostgresRepo(pool, timeout),
		ping:   pool.Ping,
		close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

// Ping reports whether the back-end is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Store) Close() error {
	return s.close()
}
