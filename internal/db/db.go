package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/cloudportal/internal/config"
)

const connectTimeout = 5 * time.Second

// Connect opens the pool for cfg.Driver and fails fast if the database is
// unreachable.
func Connect(ctx context.Context, cfg config.Database) (*sqlx.DB, error) {
	sqlDB, err := open(cfg)
	if err != nil {
		return nil, err
	}

	// Wrap in sqlx for struct scanning and placeholder rebinding
	db := sqlx.NewDb(sqlDB, cfg.Driver)

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db: failed to connect to %s: %w", cfg.Driver, err)
	}

	if err := HealthCheck(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// HealthCheck runs a trivial query through the pool.
func HealthCheck(ctx context.Context, db *sql.DB) error {
	var tmp int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&tmp); err != nil {
		return fmt.Errorf("db: health check failed: %w", err)
	}
	return nil
}

func open(cfg config.Database) (*sql.DB, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		mc, err := mysqlConfig(cfg)
		if err != nil {
			return nil, err
		}
		conn, err := mysql.NewConnector(mc)
		if err != nil {
			return nil, fmt.Errorf("db: mysql connector: %w", err)
		}
		return sql.OpenDB(conn), nil

	case config.DriverPgx:
		pc, err := pgx.ParseConfig(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("db: failed to parse DSN: %w", err)
		}
		pc.ConnectTimeout = connectTimeout
		return stdlib.OpenDB(*pc), nil
	}
	return nil, fmt.Errorf("db: unsupported driver %q", cfg.Driver)
}

// mysqlConfig prefers an explicit DATABASE_URL-style DSN and otherwise
// assembles one from the discrete host/user/password/name settings.
func mysqlConfig(cfg config.Database) (*mysql.Config, error) {
	var mc *mysql.Config
	if cfg.URL != "" {
		parsed, err := mysql.ParseDSN(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("db: failed to parse DSN: %w", err)
		}
		mc = parsed
	} else {
		mc = mysql.NewConfig()
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.DBName = cfg.Name
	}

	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Timeout = connectTimeout
	return mc, nil
}
