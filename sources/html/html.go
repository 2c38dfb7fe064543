package html

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/darianmavgo/geoingest/sources"

	"golang.org/x/net/html"
)

func init() {
	sources.Register("html", &htmlDriver{})
}

type htmlDriver struct{}

func (d *htmlDriver) Open(r io.Reader, opts *sources.Options) (sources.RowSource, error) {
	return NewSource(r, opts)
}

// Source reads one <table> of an HTML document. The first <tr> is the header.
type Source struct {
	table tableData
}

type tableData struct {
	id      string
	headers []string
	rows    []tableRow
}

type tableRow struct {
	index  int // 1-based position among the table's rows
	values []string
}

// Ensure Source implements RowSource
var _ sources.RowSource = (*Source)(nil)

// NewSource parses the document and selects the table whose id is
// opts.Sheet, or the first table when none is named.
func NewSource(r io.Reader, opts *sources.Options) (*Source, error) {
	tables, err := parseHTML(bufio.NewReaderSize(r, 65536))
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables found in HTML")
	}

	if opts == nil || opts.Sheet == "" {
		return &Source{table: tables[0]}, nil
	}
	for _, t := range tables {
		if t.id == opts.Sheet {
			return &Source{table: t}, nil
		}
	}
	return nil, fmt.Errorf("table %q not found in HTML", opts.Sheet)
}

// Headers implements RowSource
func (s *Source) Headers() []string {
	return s.table.headers
}

// ScanRows implements RowSource. The line passed to yield is the row's
// position in the table, counting the header as 1.
func (s *Source) ScanRows(ctx context.Context, yield func(line int, values []string) error) error {
	for _, row := range s.table.rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := yield(row.index, row.values); err != nil {
			return err
		}
	}
	return nil
}

func parseHTML(reader io.Reader) ([]tableData, error) {
	doc, err := html.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var tables []tableData
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			tables = append(tables, extractTable(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(doc)
	return tables, nil
}

func extractTable(n *html.Node) tableData {
	var id string
	for _, attr := range n.Attr {
		if attr.Key == "id" {
			id = attr.Val
			break
		}
	}

	var rows [][]string
	var visitRows func(*html.Node)
	visitRows = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "tr" {
			var row []string
			for c := node.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					row = append(row, extractText(c))
				}
			}
			rows = append(rows, row)
			return
		}

		for c := node.FirstChild; c != nil; c = c.NextSibling {
			// nested tables are collected separately by parseHTML
			if c.Type == html.ElementNode && c.Data == "table" {
				continue
			}
			visitRows(c)
		}
	}
	visitRows(n)

	t := tableData{id: id}
	if len(rows) == 0 {
		return t
	}
	t.headers = rows[0]
	for i, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		t.rows = append(t.rows, tableRow{index: i + 2, values: row})
	}
	return t
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	extractTextRecursive(n, &sb)
	return strings.TrimSpace(sb.String())
}

func extractTextRecursive(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractTextRecursive(c, sb)
	}
}
