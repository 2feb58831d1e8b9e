package sqlite

import (
	"context"
	"path/filepath"

	"dataco/internal/datasource/file"
	"dataco/internal/storage"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Engine, error) {
		if err := file.EnsureDir(filepath.Dir(cfg.Path)); err != nil {
			return nil, err
		}
		r, err := NewRepository(ctx, Config{
			DSN:       cfg.Path,
			BatchSize: cfg.BatchSize,
			Logger:    cfg.Logger,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	})
}
