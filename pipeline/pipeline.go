package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/darianmavgo/geoingest/log"
)

const (
	// DefaultBatchSize is the number of records sent per insert statement.
	DefaultBatchSize = 1000
	// MaxPlaceholders bounds the bind parameters of a single statement.
	MaxPlaceholders = 65535
)

// Options configures a Pipeline. A nil *Options uses the defaults.
type Options struct {
	BatchSize int
	Logger    log.Logger
	// MissingReport, when set, receives the missing value report after the
	// rows are loaded and before anything is written to the sink.
	MissingReport io.Writer
}

// Pipeline ingests one dataset: Load, Transform, Insert, Commit.
type Pipeline struct {
	def       Definition
	batchSize int
	missing   missingSet
	reportTo  io.Writer
	logger    log.Logger
}

// Result summarizes a completed (or aborted) run.
type Result struct {
	RunID       string
	Dataset     string
	RowsRead    int
	RowsWritten int
	Batches     int
	Missing     MissingReport
	Duration    time.Duration
}

func New(def Definition, opts *Options) (*Pipeline, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &Options{}
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	cols := len(def.Schema.Fields) + 1
	if limit := max(MaxPlaceholders/cols, 1); batchSize > limit {
		batchSize = limit
	}

	return &Pipeline{
		def:       def,
		batchSize: batchSize,
		missing:   newMissingSet(def.MissingTokens),
		reportTo:  opts.MissingReport,
		logger: log.NewLogger(opts.Logger).WithFields(log.Fields{
			log.ModuleField:  "pipeline",
			log.DatasetField: def.Name,
		}),
	}, nil
}

// BatchSize returns the effective number of records per insert.
func (p *Pipeline) BatchSize() int {
	return p.batchSize
}

// Run loads every row from src, transforms all of them, then writes them to
// sink in batches inside a single commit. Every row is validated before the
// first write, so a malformed row aborts the run with nothing written. The
// caller owns sink and must Close it; an uncommitted sink rolls back on
// Close.
func (p *Pipeline) Run(ctx context.Context, src Source, sink Sink) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString(), Dataset: p.def.Name}
	logger := p.logger.WithFields(log.Fields{log.RunIDField: result.RunID})
	defer func() { result.Duration = time.Since(start) }()

	rows, err := p.Load(ctx, src)
	if err != nil {
		logger.Error(err, "load failed")
		return result, err
	}
	result.RowsRead = len(rows)
	logger.Debug("rows loaded", log.Fields{"rows": len(rows)})

	result.Missing = p.countMissing(src.Headers(), rows)
	logger.Info("missing values per column", result.Missing.fields())
	if p.reportTo != nil {
		if _, err := result.Missing.WriteTo(p.reportTo); err != nil {
			return result, fmt.Errorf("write missing value report: %w", err)
		}
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := p.Transform(row)
		if err != nil {
			logger.Error(err, "transform failed", log.Fields{"line": row.Line})
			return result, err
		}
		records = append(records, rec)
	}

	schema := &p.def.Schema
	if p.def.CreateTable {
		if err := sink.CreateTable(ctx, schema); err != nil {
			err = NewSinkError("create table", err)
			logger.Error(err, "create table failed", log.Fields{"table": schema.Table})
			return result, err
		}
	}

	for i := 0; i < len(records); i += p.batchSize {
		if err := ctx.Err(); err != nil {
			return result, NewSinkError("insert", err)
		}
		end := min(i+p.batchSize, len(records))
		if err := sink.InsertBatch(ctx, schema, records[i:end]); err != nil {
			err = NewSinkError("insert", err)
			logger.Error(err, "insert failed", log.Fields{"first_line": rows[i].Line, "batch": result.Batches})
			return result, err
		}
		result.Batches++
		result.RowsWritten += end - i
		logger.Trace("batch inserted", log.Fields{"batch": result.Batches, "rows": end - i})
	}

	if err := sink.Commit(ctx); err != nil {
		err = NewSinkError("commit", err)
		logger.Error(err, "commit failed")
		return result, err
	}

	logger.Info("dataset ingested", log.Fields{
		"table":        schema.Table,
		"rows_read":    result.RowsRead,
		"rows_written": result.RowsWritten,
		"batches":      result.Batches,
	})
	return result, nil
}

// Load reads every raw row from src. Rows shorter than the header are
// padded with missing cells; longer rows are rejected.
func (p *Pipeline) Load(ctx context.Context, src Source) ([]Row, error) {
	headers := src.Headers()
	if len(headers) == 0 {
		return nil, &InputError{Source: p.def.Input, Err: ErrEmptyInput}
	}

	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	for _, c := range p.def.SourceColumns() {
		if !present[c] {
			return nil, &InputError{Source: p.def.Input, Err: fmt.Errorf("%w: %q", ErrMissingColumn, c)}
		}
	}

	var rows []Row
	err := src.ScanRows(ctx, func(line int, values []string) error {
		if len(values) > len(headers) {
			return &InputError{
				Source: p.def.Input,
				Line:   line,
				Err:    fmt.Errorf("%w: %d fields, header has %d", ErrRaggedRow, len(values), len(headers)),
			}
		}
		row := Row{Line: line, Values: make(map[string]string, len(headers))}
		for i, v := range values {
			// first occurrence wins for duplicated header names
			if _, dup := row.Values[headers[i]]; !dup {
				row.Values[headers[i]] = v
			}
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		var inputErr *InputError
		if errors.As(err, &inputErr) {
			return nil, err
		}
		return nil, &InputError{Source: p.def.Input, Err: err}
	}
	return rows, nil
}

// Transform applies every column spec to row and attaches the geometry.
func (p *Pipeline) Transform(row Row) (Record, error) {
	rec := make(Record, len(p.def.Schema.Fields)+3)
	for _, spec := range p.def.Columns {
		raw, ok := row.Values[spec.Source]
		if err := p.applyColumn(rec, spec, row.Line, raw, ok); err != nil {
			return nil, err
		}
	}

	schema := &p.def.Schema
	point, ok := schema.buildPoint(rec)
	if !ok {
		g := schema.Geometry
		return nil, &FormatError{
			Line:   row.Line,
			Column: g.Name,
			Value:  fmt.Sprintf("%v %v", rec[g.Longitude], rec[g.Latitude]),
			Err:    ErrMissingCoordinate,
		}
	}
	rec[schema.Geometry.Name] = point

	for _, f := range schema.Fields {
		if _, ok := rec[f.Name]; !ok {
			return nil, &FormatError{Line: row.Line, Column: f.Name, Err: ErrIncompleteRecord}
		}
	}
	return rec, nil
}
