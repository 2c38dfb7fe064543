package csv

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/darianmavgo/geoingest/sources"
)

func init() {
	sources.Register("csv", &csvDriver{})
}

type csvDriver struct{}

func (d *csvDriver) Open(r io.Reader, opts *sources.Options) (sources.RowSource, error) {
	return NewSource(r, opts)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Source reads a delimited text file whose first record is the header.
// Rows are read lazily, so ScanRows can only be called once.
type Source struct {
	headers   []string
	reader    *csv.Reader
	delimiter rune
	scanned   bool
}

// Ensure Source implements RowSource
var _ sources.RowSource = (*Source)(nil)

// NewSource reads the header record from r. An empty input yields a source
// with no headers and no rows.
func NewSource(r io.Reader, opts *sources.Options) (*Source, error) {
	if opts == nil {
		opts = &sources.Options{}
	}

	br := bufio.NewReaderSize(r, 65536)
	if peek, _ := br.Peek(len(utf8BOM)); bytes.Equal(peek, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, fmt.Errorf("failed to skip byte order mark: %w", err)
		}
	}

	delimiter := opts.Delimiter
	if delimiter == 0 {
		peekBytes, _ := br.Peek(2048)
		sample := string(peekBytes)
		if idx := strings.IndexAny(sample, "\r\n"); idx != -1 {
			sample = sample[:idx]
		}
		delimiter = sources.DetectDelimiter(sample)
	}

	reader := csv.NewReader(br)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1 // row width is checked against the header by the pipeline

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Source{delimiter: delimiter, scanned: true}, nil
		}
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	return &Source{
		headers:   headers,
		reader:    reader,
		delimiter: delimiter,
	}, nil
}

// Headers implements RowSource
func (s *Source) Headers() []string {
	return s.headers
}

// Delimiter returns the field delimiter in use, detected or configured.
func (s *Source) Delimiter() rune {
	return s.delimiter
}

// ScanRows implements RowSource. Line numbers refer to the line a record
// starts on, so quoted fields spanning lines are counted correctly.
func (s *Source) ScanRows(ctx context.Context, yield func(line int, values []string) error) error {
	if s.scanned {
		if s.reader == nil {
			return nil
		}
		return fmt.Errorf("CSV rows have already been scanned")
	}
	s.scanned = true

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		row, err := s.reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read CSV row: %w", err)
		}

		line, _ := s.reader.FieldPos(0)
		if err := yield(line, row); err != nil {
			return err
		}
	}
}
