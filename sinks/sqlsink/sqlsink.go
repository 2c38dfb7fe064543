// Package sqlsink implements pipeline.Sink over database/sql. It owns one
// *sql.DB for its whole life: DDL runs on the DB, every insert of a run goes
// through one transaction, and Close rolls back whatever was not committed
// before releasing the connection.
package sqlsink

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	loglib "github.com/darianmavgo/geoingest/log"
	"github.com/darianmavgo/geoingest/pipeline"
	"github.com/darianmavgo/geoingest/sinks/sqlutil"
)

var ErrClosed = errors.New("sink is closed")

type Sink struct {
	db       *sql.DB
	dialect  sqlutil.Dialect
	mapError func(error) error
	logger   loglib.Logger

	tx     *sql.Tx
	closed bool

	closeOnce sync.Once
	closeErr  error
}

type Options struct {
	Dialect sqlutil.Dialect
	// MapError translates driver errors into package sentinels. It is
	// applied before the error is wrapped in a pipeline.SinkError.
	MapError func(error) error
	Logger   loglib.Logger
}

// Ensure Sink implements pipeline.Sink
var _ pipeline.Sink = (*Sink)(nil)

func New(db *sql.DB, opts *Options) *Sink {
	s := &Sink{
		db:       db,
		dialect:  sqlutil.MySQL,
		mapError: func(err error) error { return err },
		logger:   loglib.NewNoopLogger(),
	}
	if opts != nil {
		if opts.Dialect != "" {
			s.dialect = opts.Dialect
		}
		if opts.MapError != nil {
			s.mapError = opts.MapError
		}
		s.logger = loglib.NewLogger(opts.Logger)
	}
	return s
}

func (s *Sink) Dialect() sqlutil.Dialect {
	return s.dialect
}

func (s *Sink) CreateTable(ctx context.Context, schema *pipeline.TargetSchema) error {
	if s.closed {
		return pipeline.NewSinkError("create table", ErrClosed)
	}
	for _, stmt := range sqlutil.GenCreateTableSQL(s.dialect, schema) {
		s.logger.Debug("executing DDL", loglib.Fields{"table": schema.Table, "sql": stmt})
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return pipeline.NewSinkError("create table", s.mapError(err))
		}
	}
	return nil
}

// InsertBatch writes records as one multi-row INSERT inside the run's
// transaction, starting it on first use.
func (s *Sink) InsertBatch(ctx context.Context, schema *pipeline.TargetSchema, records []pipeline.Record) error {
	if s.closed {
		return pipeline.NewSinkError("insert", ErrClosed)
	}
	if len(records) == 0 {
		return nil
	}

	if s.tx == nil {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return pipeline.NewSinkError("begin", s.mapError(err))
		}
		s.tx = tx
	}

	query, err := sqlutil.GenInsertSQL(s.dialect, schema, len(records))
	if err != nil {
		return pipeline.NewSinkError("insert", err)
	}
	if _, err := s.tx.ExecContext(ctx, query, sqlutil.Args(schema, records)...); err != nil {
		return pipeline.NewSinkError("insert", s.mapError(err))
	}
	return nil
}

// Commit commits the run's transaction. With nothing inserted it is a no-op.
func (s *Sink) Commit(ctx context.Context) error {
	if s.closed {
		return pipeline.NewSinkError("commit", ErrClosed)
	}
	if s.tx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return pipeline.NewSinkError("commit", err)
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return pipeline.NewSinkError("commit", s.mapError(err))
	}
	return nil
}

// Close rolls back an uncommitted transaction and closes the connection.
// Only the first call has any effect.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		s.closed = true
		if s.tx != nil {
			switch err := s.tx.Rollback(); {
			case err == nil:
				s.logger.Info("uncommitted transaction rolled back")
			case !errors.Is(err, sql.ErrTxDone):
				s.logger.Warn(err, "rollback failed")
			}
			s.tx = nil
		}
		if err := s.db.Close(); err != nil {
			s.closeErr = pipeline.NewSinkError("close", s.mapError(err))
		}
	})
	return s.closeErr
}
