// Package mysql is the production sink: a MySQL (or compatible) server with
// a POINT column and a spatial index.
package mysql

import (
	"context"
	"database/sql"
	"net"
	"strconv"
	"time"

	loglib "github.com/darianmavgo/geoingest/log"
	"github.com/darianmavgo/geoingest/pipeline"
	"github.com/darianmavgo/geoingest/sinks/sqlsink"
	"github.com/darianmavgo/geoingest/sinks/sqlutil"

	"github.com/go-sql-driver/mysql"
)

const (
	DefaultPort    = 3306
	defaultTimeout = 10 * time.Second
)

// Config holds the connection settings, usually filled from DB_* variables.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Timeout  time.Duration
}

// DSN formats the data source name understood by go-sql-driver/mysql.
func (c *Config) DSN() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	host := c.Host
	if host == "" {
		host = "127.0.0.1"
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.Timeout = timeout
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Open connects to the server and verifies the connection before returning
// the sink. The caller must Close the sink.
func Open(ctx context.Context, cfg *Config, logger loglib.Logger) (*sqlsink.Sink, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, pipeline.NewSinkError("connect", err)
	}
	// one run, one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, pipeline.NewSinkError("connect", mapError(err))
	}

	loglib.NewLogger(logger).Debug("connected to mysql", loglib.Fields{
		"host":     cfg.Host,
		"database": cfg.Database,
	})
	return NewSink(db, logger), nil
}

// NewSink wraps an already opened connection.
func NewSink(db *sql.DB, logger loglib.Logger) *sqlsink.Sink {
	return sqlsink.New(db, &sqlsink.Options{
		Dialect:  sqlutil.MySQL,
		MapError: mapError,
		Logger:   logger,
	})
}
