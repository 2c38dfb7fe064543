package pipeline

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/darianmavgo/geoingest/log"
)

// MissingReport counts missing cells per input column. It is informational
// only and never stops a run.
type MissingReport struct {
	Rows    int
	Columns []string
	Counts  map[string]int
}

func (p *Pipeline) countMissing(headers []string, rows []Row) MissingReport {
	report := MissingReport{
		Rows:    len(rows),
		Columns: headers,
		Counts:  make(map[string]int, len(headers)),
	}
	for _, h := range headers {
		report.Counts[h] = 0
	}
	for _, row := range rows {
		for _, h := range headers {
			raw, ok := row.Values[h]
			if p.missing.isMissing(raw, ok) {
				report.Counts[h]++
			}
		}
	}
	return report
}

// Total is the number of missing cells across all columns.
func (r MissingReport) Total() int {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	return total
}

func (r MissingReport) fields() log.Fields {
	f := make(log.Fields, len(r.Counts))
	for k, v := range r.Counts {
		f[k] = v
	}
	return f
}

// WriteTo prints one "column count" line per input column, in header order.
func (r MissingReport) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	tw := tabwriter.NewWriter(cw, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Missing values per column:")
	for _, c := range r.Columns {
		fmt.Fprintf(tw, "%s\t%d\n", c, r.Counts[c])
	}
	err := tw.Flush()
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
