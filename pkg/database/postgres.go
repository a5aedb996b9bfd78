package database

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/coursehub-api/pkg/config"
)

const (
	connectTimeout  = 5 * time.Second
	connMaxLifetime = time.Hour
	connMaxIdleTime = 30 * time.Minute
)

// DSN renders cfg as a lib/pq key/value connection string. Values are
// quoted so passwords may contain spaces, quotes or backslashes.
func DSN(cfg config.DatabaseConfig) string {
	pairs := [][2]string{
		{"host", cfg.Host},
		{"port", strconv.Itoa(cfg.Port)},
		{"user", cfg.User},
		{"password", cfg.Password},
		{"dbname", cfg.Name},
		{"sslmode", cfg.SSLMode},
		{"connect_timeout", strconv.Itoa(int(connectTimeout.Seconds()))},
	}
	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		if kv[1] == "" {
			continue
		}
		parts = append(parts, kv[0]+"="+quoteValue(kv[1]))
	}
	return strings.Join(parts, " ")
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quoteValue(v string) string {
	if strings.ContainsAny(v, ` '\`) {
		return "'" + dsnEscaper.Replace(v) + "'"
	}
	return v
}

// NewPostgres opens the pool, applies the pool limits and pings once.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}
	return db, nil
}
