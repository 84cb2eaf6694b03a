package migration

import (
	"github.com/devstorehq/sales-service/internal/config"
	"github.com/devstorehq/sales-service/internal/sale/repository"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module applies the database schema during application startup. The SQL
// migrations target postgres; other dialects fall back to gorm AutoMigrate,
// which keeps in-memory sqlite runs working without a migration driver.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(repository.Models()...)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
