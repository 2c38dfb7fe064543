// Package sqlfile writes the statements a run would execute as a SQL script
// instead of executing them.
package sqlfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/darianmavgo/geoingest/pipeline"
	"github.com/darianmavgo/geoingest/sinks/sqlutil"
)

var ErrClosed = errors.New("sink is closed")

type Sink struct {
	w       *bufio.Writer
	closer  io.Closer
	dialect sqlutil.Dialect
	started bool
	closed  bool

	closeOnce sync.Once
	closeErr  error
}

// Ensure Sink implements pipeline.Sink
var _ pipeline.Sink = (*Sink)(nil)

// New writes to w. If w is an io.Closer it is closed by Close.
func New(w io.Writer, dialect sqlutil.Dialect) *Sink {
	s := &Sink{
		w:       bufio.NewWriterSize(w, 65536),
		dialect: dialect,
	}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Create writes to the file at path, or to stdout when path is "-".
func Create(path string, dialect sqlutil.Dialect) (*Sink, error) {
	if path == "-" || path == "" {
		return &Sink{w: bufio.NewWriterSize(os.Stdout, 65536), dialect: dialect}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, pipeline.NewSinkError("connect", err)
	}
	return New(f, dialect), nil
}

func (s *Sink) CreateTable(ctx context.Context, schema *pipeline.TargetSchema) error {
	if s.closed {
		return pipeline.NewSinkError("create table", ErrClosed)
	}
	for _, stmt := range sqlutil.GenCreateTableSQL(s.dialect, schema) {
		if _, err := fmt.Fprintf(s.w, "%s;\n\n", stmt); err != nil {
			return pipeline.NewSinkError("create table", fmt.Errorf("failed to write CREATE TABLE: %w", err))
		}
	}
	return nil
}

func (s *Sink) InsertBatch(ctx context.Context, schema *pipeline.TargetSchema, records []pipeline.Record) error {
	if s.closed {
		return pipeline.NewSinkError("insert", ErrClosed)
	}
	if len(records) == 0 {
		return nil
	}
	if !s.started {
		if _, err := s.w.WriteString(s.begin() + ";\n"); err != nil {
			return pipeline.NewSinkError("begin", fmt.Errorf("failed to write transaction start: %w", err))
		}
		s.started = true
	}

	stmt, err := sqlutil.GenInsertLiteralSQL(s.dialect, schema, records)
	if err != nil {
		return pipeline.NewSinkError("insert", err)
	}
	if _, err := fmt.Fprintf(s.w, "%s;\n", stmt); err != nil {
		return pipeline.NewSinkError("insert", fmt.Errorf("failed to write INSERT: %w", err))
	}
	return nil
}

func (s *Sink) Commit(ctx context.Context) error {
	if s.closed {
		return pipeline.NewSinkError("commit", ErrClosed)
	}
	if s.started {
		if _, err := s.w.WriteString("COMMIT;\n"); err != nil {
			return pipeline.NewSinkError("commit", fmt.Errorf("failed to write COMMIT: %w", err))
		}
		s.started = false
	}
	if err := s.w.Flush(); err != nil {
		return pipeline.NewSinkError("commit", fmt.Errorf("failed to flush script: %w", err))
	}
	return nil
}

// Close ends an uncommitted script with ROLLBACK, flushes and closes the
// underlying writer. Only the first call has any effect.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		s.closed = true
		var errs []error
		if s.started {
			if _, err := s.w.WriteString("ROLLBACK;\n"); err != nil {
				errs = append(errs, err)
			}
		}
		if err := s.w.Flush(); err != nil {
			errs = append(errs, err)
		}
		if s.closer != nil {
			if err := s.closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := errors.Join(errs...); err != nil {
			s.closeErr = pipeline.NewSinkError("close", err)
		}
	})
	return s.closeErr
}

func (s *Sink) begin() string {
	if s.dialect == sqlutil.SQLite {
		return "BEGIN TRANSACTION"
	}
	return "START TRANSACTION"
}
