package config

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// DSN builds the driver-specific connection string. DB_URL, when set, is used verbatim.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	if c.Driver == "postgres" {
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Pass),
			Host:     c.Host + ":" + c.Port,
			Path:     c.Name,
			RawQuery: "sslmode=disable",
		}
		return u.String()
	}

	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Pass
	mc.Net = "tcp"
	mc.Addr = c.Host + ":" + c.Port
	mc.DBName = c.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN()
}

// ConnectDB opens a pooled connection and pings it, retrying while the
// database comes up.
func ConnectDB(c DBConfig) (*sql.DB, error) {
	var err error
	retries := max(c.ConnectRetries, 1)
	for i := 0; i < retries; i++ {
		var db *sql.DB
		db, err = sql.Open(c.Driver, c.DSN())
		if err == nil {
			db.SetMaxOpenConns(25)
			db.SetMaxIdleConns(25)
			db.SetConnMaxLifetime(5 * time.Minute)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = db.PingContext(ctx)
			cancel()
			if err == nil {
				log.Info().Msgf("Connected to %s database %s", c.Driver, c.Name)
				return db, nil
			}
			db.Close()
		}
		log.Warn().Err(err).Msgf("Retry %d: failed to connect to %s database %s (%s:%s)", i+1, c.Driver, c.Name, c.Host, c.Port)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to database %s at %s:%s after retries: %w", c.Name, c.Host, c.Port, err)
}
