package database

import (
	"fmt"
	"log"
	"os"
	"time"

	appconfig "mis_invoicing/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectSQL opens the SQL store selected by STORAGE_DRIVER. PostgreSQL is
// retried while the server comes up.
func ConnectSQL(cfg appconfig.Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	switch cfg.StorageDriver {
	case appconfig.StorageSQLite:
		log.Printf("[database][sql] opening sqlite path=%s", cfg.SQLitePath)
		return gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
	case appconfig.StoragePostgres:
		var db *gorm.DB
		var err error
		for i := 1; i <= 10; i++ {
			db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), gcfg)
			if err == nil {
				break
			}
			log.Printf("[database][sql] waiting for postgres (%d/10) err=%v", i, err)
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to connect database after retries: %w", err)
		}
		if err := db.Exec("SELECT 1").Error; err != nil {
			return nil, fmt.Errorf("db ping failed: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.StorageDriver)
	}
}
