package app

import (
	"fmt"
	"time"

	"github.com/moveplan/moveplan/internal/config"
	"github.com/moveplan/moveplan/internal/database"
	"github.com/moveplan/moveplan/pkg/storage"
	log "github.com/sirupsen/logrus"
)

// OpenRepository opens the backend selected by storage.driver and applies its
// migrations. The returned function releases the backend.
func OpenRepository(cfg config.Application) (storage.Repository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigrateSQLite(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Infof("Using sqlite storage at %s", cfg.Storage.Path)
		return storage.NewRepository(db), func() { db.Close() }, nil
	case config.DriverPostgres:
		if err := database.MigratePostgres(cfg.Database); err != nil {
			return nil, nil, err
		}
		pool, err := database.OpenPostgres(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("Using postgres storage at %s:%d", cfg.Database.Host, cfg.Database.Port)
		return storage.NewPostgresRepository(pool), pool.Close, nil
	case config.DriverMemory:
		log.Warn("Using in-memory storage, data is lost on exit")
		return storage.NewRepositoryStub(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func retention(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}
