package database

import (
	"context"
	"fmt"

	"github.com/golang/glog"
	"github.com/safar/pharmsync/internal/config"
)

// Open returns the backend selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory, "":
		glog.Infof("Using in-memory document backend")
		return NewMemoryBackend(), nil

	case config.BackendPostgres:
		db, err := NewConnection(&cfg.Database)
		if err != nil {
			return nil, err
		}
		glog.Infof("Connected to PostgreSQL document backend")
		return NewPostgresBackend(db), nil

	case config.BackendBadger:
		b, err := OpenBadger(cfg.Badger.Dir)
		if err != nil {
			return nil, err
		}
		glog.Infof("Opened Badger document backend at %s", cfg.Badger.Dir)
		return b, nil

	case config.BackendDynamoDB:
		d, err := ConnectDynamoDB(ctx, cfg.DynamoDB)
		if err != nil {
			return nil, err
		}
		glog.Infof("Using DynamoDB document backend, table %s", cfg.DynamoDB.Table)
		return d, nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
