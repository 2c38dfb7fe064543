package sqlutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/darianmavgo/geoingest/geo"
	"github.com/darianmavgo/geoingest/pipeline"
)

// GenCreateTableSQL returns the statements that create the table of schema
// if it does not exist yet. MySQL declares a spatial index inline; SQLite
// gets a plain index on the WKT column as a second statement.
func GenCreateTableSQL(d Dialect, schema *pipeline.TargetSchema) []string {
	table := d.QuoteIdent(schema.Table)
	geom := d.QuoteIdent(schema.Geometry.Name)

	var builder strings.Builder
	builder.Grow(len(table) + len(schema.Fields)*24 + 64)

	builder.WriteString("CREATE TABLE IF NOT EXISTS ")
	builder.WriteString(table)
	builder.WriteString(" (\n\t")
	builder.WriteString(d.idColumn())
	for _, f := range schema.Fields {
		builder.WriteString(",\n\t")
		builder.WriteString(d.QuoteIdent(f.Name))
		builder.WriteByte(' ')
		builder.WriteString(f.SQLType)
	}
	builder.WriteString(",\n\t")
	builder.WriteString(geom)
	builder.WriteByte(' ')
	builder.WriteString(d.geometryType())
	if d == MySQL {
		builder.WriteString(",\n\tSPATIAL INDEX(")
		builder.WriteString(geom)
		builder.WriteByte(')')
	}
	builder.WriteString("\n)")

	stmts := []string{builder.String()}
	if d == SQLite {
		index := d.QuoteIdent("idx_" + schema.Table + "_" + schema.Geometry.Name)
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", index, table, geom))
	}
	return stmts
}

// GenInsertSQL generates one multi-row INSERT with rows placeholder tuples.
func GenInsertSQL(d Dialect, schema *pipeline.TargetSchema, rows int) (string, error) {
	if schema.Table == "" || rows <= 0 {
		return "", fmt.Errorf("table name and at least one row are required")
	}

	tuple := rowPlaceholders(d, len(schema.Fields))

	var builder strings.Builder
	builder.Grow(64 + rows*(len(tuple)+2))
	writeInsertHead(&builder, d, schema)
	for i := 0; i < rows; i++ {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(tuple)
	}
	return builder.String(), nil
}

func rowPlaceholders(d Dialect, fields int) string {
	return "(" + d.GeometryPlaceholder() + strings.Repeat(", ?", fields) + ")"
}

func writeInsertHead(builder *strings.Builder, d Dialect, schema *pipeline.TargetSchema) {
	builder.WriteString("INSERT INTO ")
	builder.WriteString(d.QuoteIdent(schema.Table))
	builder.WriteString(" (")
	for i, col := range schema.Columns() {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(d.QuoteIdent(col))
	}
	builder.WriteString(") VALUES ")
}

// Args flattens records into bind arguments in GenInsertSQL order. Points
// are passed as their WKT text.
func Args(schema *pipeline.TargetSchema, records []pipeline.Record) []any {
	args := make([]any, 0, len(records)*(len(schema.Fields)+1))
	for _, rec := range records {
		for _, v := range schema.Values(rec) {
			if p, ok := v.(geo.Point); ok {
				v = p.WKT()
			}
			args = append(args, v)
		}
	}
	return args
}

// GenInsertLiteralSQL renders a multi-row INSERT with the values inlined,
// for writing SQL scripts.
func GenInsertLiteralSQL(d Dialect, schema *pipeline.TargetSchema, records []pipeline.Record) (string, error) {
	if schema.Table == "" || len(records) == 0 {
		return "", fmt.Errorf("table name and at least one record are required")
	}

	var builder strings.Builder
	writeInsertHead(&builder, d, schema)
	for i, rec := range records {
		if i > 0 {
			builder.WriteString(",\n\t")
		}
		builder.WriteByte('(')
		for j, v := range schema.Values(rec) {
			if j > 0 {
				builder.WriteString(", ")
			}
			lit, err := Literal(d, v)
			if err != nil {
				return "", fmt.Errorf("column %s: %w", schema.Columns()[j], err)
			}
			builder.WriteString(lit)
		}
		builder.WriteByte(')')
	}
	return builder.String(), nil
}

// Literal renders a record value as an SQL literal.
func Literal(d Dialect, v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if val {
			return "TRUE", nil
		}
		return "FALSE", nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(val), nil
	case string:
		return quoteString(d, val), nil
	case geo.Point:
		if d == MySQL {
			return "ST_GeomFromText(" + quoteString(d, val.WKT()) + ")", nil
		}
		return quoteString(d, val.WKT()), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// quoteString escapes single quotes by doubling them. MySQL also treats the
// backslash as an escape character.
func quoteString(d Dialect, s string) string {
	if d == MySQL {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
