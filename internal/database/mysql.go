package database

import (
	"context"
	"fmt"
	"masterdata-web/internal/config"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

const pingTimeout = 5 * time.Second

// NewMySQL opens the master-data database and verifies it answers.
func NewMySQL(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql %s:%s/%s: %w", cfg.DBHost, cfg.DBPort, cfg.DBDatabase, err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach mysql %s:%s/%s: %w", cfg.DBHost, cfg.DBPort, cfg.DBDatabase, err)
	}

	return db, nil
}
