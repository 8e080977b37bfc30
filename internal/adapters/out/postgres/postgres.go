// Package postgres opens the primary database and owns its schema.
package postgres

import (
	"fmt"

	"buyback/internal/adapters/out/postgres/counterrepo"
	"buyback/internal/adapters/out/postgres/orderrepo"
	"buyback/internal/adapters/out/postgres/printjobrepo"
	"buyback/internal/adapters/out/postgres/promorepo"

	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectionSettings are the parts of a libpq connection string.
type ConnectionSettings struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SslMode  string
}

// DSN renders the settings as a key/value connection string.
func (s ConnectionSettings) DSN() string {
	sslMode := s.SslMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		s.Host, s.Port, s.User, s.Password, s.Name, sslMode)
}

// Open connects with GORM and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.ActivityLogDTO{},
		&counterrepo.CounterDTO{},
		&promorepo.PromoCodeDTO{},
		&promorepo.RedemptionDTO{},
		&printjobrepo.PrintJobDTO{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
