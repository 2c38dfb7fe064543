// Package sources holds the input drivers. A driver registers itself by
// name from an init function; import sources/all to register every driver.
package sources

import (
	"context"
	"io"
)

// RowSource provides the raw rows of one input table. CSV and excel values
// are returned exactly as read. HTML cell text has its surrounding markup
// whitespace trimmed. Null handling belongs to the pipeline.
type RowSource interface {
	Headers() []string
	// ScanRows iterates over the data rows in input order, calling yield with
	// the row's 1-based line in the input and its values. If yield returns an
	// error, iteration stops and that error is returned.
	ScanRows(ctx context.Context, yield func(line int, values []string) error) error
}

// Driver opens a RowSource over an input stream.
type Driver interface {
	Open(r io.Reader, opts *Options) (RowSource, error)
}
