package mssql

import (
	"context"

	"dataval/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

var _ storage.Loader = (*wrappedRepo)(nil)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Loader, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
}

// wrappedRepo adapts *Repository to storage.Loader and provides Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close closes the underlying database handle.
func (w *wrappedRepo) Close() { w.closeFn() }
