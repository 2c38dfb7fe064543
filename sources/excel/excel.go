package excel

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/darianmavgo/geoingest/sources"

	"github.com/xuri/excelize/v2"
)

func init() {
	sources.Register("excel", &excelDriver{})
}

type excelDriver struct{}

func (d *excelDriver) Open(r io.Reader, opts *sources.Options) (sources.RowSource, error) {
	return NewSource(r, opts)
}

// Source reads one worksheet whose first row is the header.
type Source struct {
	file    *excelize.File
	sheet   string
	headers []string
}

// Ensure Source implements RowSource
var _ sources.RowSource = (*Source)(nil)

// Ensure Source implements io.Closer
var _ io.Closer = (*Source)(nil)

// NewSource opens a workbook from r and selects opts.Sheet, or the first
// sheet when none is named.
func NewSource(r io.Reader, opts *sources.Options) (*Source, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel stream: %w", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	sheet := sheets[0]
	if opts != nil && opts.Sheet != "" {
		if !slices.Contains(sheets, opts.Sheet) {
			f.Close()
			return nil, fmt.Errorf("sheet %q not found in Excel file", opts.Sheet)
		}
		sheet = opts.Sheet
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get rows iterator for sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var headers []string
	if rows.Next() {
		headers, err = rows.Columns()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to read header row for sheet %s: %w", sheet, err)
		}
	}

	return &Source{
		file:    f,
		sheet:   sheet,
		headers: headers,
	}, nil
}

// Headers implements RowSource
func (s *Source) Headers() []string {
	return s.headers
}

// Sheet returns the name of the worksheet being read.
func (s *Source) Sheet() string {
	return s.sheet
}

// ScanRows implements RowSource. The line passed to yield is the worksheet
// row number; blank rows are skipped.
func (s *Source) ScanRows(ctx context.Context, yield func(line int, values []string) error) error {
	rows, err := s.file.Rows(s.sheet)
	if err != nil {
		return fmt.Errorf("failed to get rows iterator for sheet %s: %w", s.sheet, err)
	}
	defer rows.Close()

	line := 0
	for rows.Next() {
		line++
		row, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("failed to read row %d: %w", line, err)
		}
		if line == 1 || len(row) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := yield(line, row); err != nil {
			return err
		}
	}
	return rows.Error()
}

// Close closes the underlying Excel file
func (s *Source) Close() error {
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
