package database

import (
	"context"
	"fmt"
	"time"

	"slotbook/cmd/internal/config"
	"slotbook/cmd/internal/domain/entity"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"moul.io/zapgorm2"
)

// Init opens the relational store and makes sure the appointments table
// exists. It is safe to call on every process start. Failing and slow
// statements are logged through logger.
func Init(cfg *config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.Path)
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(cfg, logger),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// One persistent connection for sqlite, a small pool for postgres.
	if cfg.Driver == config.DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := InitSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

// newGormLogger routes gorm's warnings and errors into zap. Missing rows are
// an expected answer of FindByID and are not logged.
func newGormLogger(cfg *config.DatabaseConfig, logger *zap.Logger) gormlogger.Interface {
	l := zapgorm2.New(logger.Named("gorm"))
	l.LogLevel = gormlogger.Warn
	l.IgnoreRecordNotFoundError = true
	if cfg.SlowQueryThreshold > 0 {
		l.SlowThreshold = cfg.SlowQueryThreshold
	}
	return l
}

// InitSchema idempotently migrates the appointments table.
func InitSchema(db *gorm.DB) error {
	return db.AutoMigrate(&entity.Appointment{})
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Pinger checks that the relational store still answers.
type Pinger struct {
	db *gorm.DB
}

func NewPinger(db *gorm.DB) *Pinger {
	return &Pinger{db: db}
}

func (p *Pinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
