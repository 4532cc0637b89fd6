// Package backend opens the document store named in the configuration.
package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JorgeHRP/renato-bi/pkg/store"
	"github.com/JorgeHRP/renato-bi/pkg/store/gcsstore"
	"github.com/JorgeHRP/renato-bi/pkg/store/mongostore"
	"github.com/JorgeHRP/renato-bi/pkg/store/sqlstore"
)

const (
	File     = "file"
	Memory   = "memory"
	SQLite   = "sqlite"
	Postgres = "postgres"
	Mongo    = "mongo"
	GCS      = "gcs"
)

type Options struct {
	Backend  string
	DataDir  string
	DSN      string
	Database string
	Bucket   string
}

func Open(ctx context.Context, opts Options) (store.Documents, error) {
	switch opts.Backend {
	case "", File:
		return store.NewFileStore(opts.DataDir)
	case Memory:
		return store.NewMemoryStore(), nil
	case SQLite:
		dsn := opts.DSN
		if dsn == "" {
			if err := os.MkdirAll(opts.DataDir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
			dsn = filepath.Join(opts.DataDir, "renato-bi.db")
		}
		return sqlstore.Open(ctx, "sqlite", dsn)
	case Postgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres backend needs store.dsn")
		}
		return sqlstore.Open(ctx, "postgres", opts.DSN)
	case Mongo:
		if opts.DSN == "" {
			return nil, fmt.Errorf("mongo backend needs store.dsn")
		}
		return mongostore.Connect(ctx, opts.DSN, opts.Database)
	case GCS:
		if opts.Bucket == "" {
			return nil, fmt.Errorf("gcs backend needs store.bucket")
		}
		return gcsstore.Connect(ctx, opts.Bucket)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
