package main

import (
	"context"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/docbridge/filestore"
	"github.com/rise-and-shine/docbridge/filestore/gcswr"
	"github.com/rise-and-shine/docbridge/filestore/miniowr"
)

// openStore creates the configured backend and a function releasing it.
func openStore(ctx context.Context, cfg StorageConfig) (filestore.FileStore, func() error, error) {
	switch cfg.Driver {
	case driverGCS:
		c, err := gcswr.New(ctx, cfg.GCS)
		if err != nil {
			return nil, nil, errx.Wrap(err)
		}
		return c, c.Close, nil
	default:
		c, err := miniowr.New(cfg.Minio)
		if err != nil {
			return nil, nil, errx.Wrap(err)
		}
		return c, func() error { return nil }, nil
	}
}
