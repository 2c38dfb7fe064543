package pipeline

import "context"

// Row is one raw input row keyed by header name. Line is the 1-based line
// (or sheet row) the values came from.
type Row struct {
	Line   int
	Values map[string]string
}

// Record is one transformed row. A nil value is stored as NULL; the geometry
// column holds a geo.Point.
type Record map[string]any

// Source yields raw rows. sources.RowSource satisfies it.
type Source interface {
	Headers() []string
	// ScanRows calls yield once per data row, in input order. If yield
	// returns an error, iteration stops and that error is returned.
	ScanRows(ctx context.Context, yield func(line int, values []string) error) error
}

// Sink is the minimal insert contract. A sink owns one connection, acquired
// when it is opened and released by Close.
type Sink interface {
	CreateTable(ctx context.Context, schema *TargetSchema) error
	InsertBatch(ctx context.Context, schema *TargetSchema, records []Record) error
	Commit(ctx context.Context) error
	Close() error
}
