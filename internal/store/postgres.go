package store

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/uferekalu/finacle-banking/internal/models"
)

type PostgresConfig struct {
	DSN          string
	MaxOpenConns int
}

// OpenPostgres connects to the database and sizes the connection pool.
func OpenPostgres(cfg PostgresConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN,
		PreferSimpleProtocol: false,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	log.Info("connected to the database")
	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(&models.User{}, &models.Account{}, &models.Transaction{}, &models.IdempotencyKey{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("migrations applied")
	return nil
}
