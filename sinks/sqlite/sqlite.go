// Package sqlite writes datasets to a local SQLite file. The geometry is kept
// as WKT text, so a file produced here can be inspected without spatial
// extensions.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	loglib "github.com/darianmavgo/geoingest/log"
	"github.com/darianmavgo/geoingest/pipeline"
	"github.com/darianmavgo/geoingest/sinks/sqlsink"
	"github.com/darianmavgo/geoingest/sinks/sqlutil"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrTableNotFound = errors.New("table does not exist")
	ErrBadNull       = errors.New("column cannot be null")
)

// Open opens (creating if needed) the database file at path. The caller must
// Close the sink.
func Open(ctx context.Context, path string, logger loglib.Logger) (*sqlsink.Sink, error) {
	if path == "" {
		return nil, pipeline.NewSinkError("connect", fmt.Errorf("sqlite database path is required"))
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, pipeline.NewSinkError("connect", err)
	}

	// Limit to 1 connection to avoid locking issues
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, pipeline.NewSinkError("connect", mapError(err))
	}

	loglib.NewLogger(logger).Debug("opened sqlite database", loglib.Fields{"path": path})
	return sqlsink.New(db, &sqlsink.Options{
		Dialect:  sqlutil.SQLite,
		MapError: mapError,
		Logger:   logger,
	}), nil
}

func mapError(err error) error {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return err
	}

	switch {
	case liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return fmt.Errorf("%w: %w", ErrBadNull, err)
	case strings.Contains(liteErr.Error(), "no such table"):
		return fmt.Errorf("%w: %w", ErrTableNotFound, err)
	}
	return err
}
