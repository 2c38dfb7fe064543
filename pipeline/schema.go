package pipeline

import (
	"fmt"

	"github.com/darianmavgo/geoingest/geo"
)

// TransformKind names the transform applied to one source column.
type TransformKind string

const (
	TransformText  TransformKind = "text"
	TransformFloat TransformKind = "float"
	TransformBool  TransformKind = "bool"
	TransformSplit TransformKind = "split"
)

const DefaultSplitDelimiter = ","

// ColumnSpec maps one raw input column onto one or more record fields.
type ColumnSpec struct {
	Source    string
	Fields    []string
	Transform TransformKind
	Delimiter string // split only
}

func (c ColumnSpec) delimiter() string {
	if c.Delimiter == "" {
		return DefaultSplitDelimiter
	}
	return c.Delimiter
}

// Field is one stored column of the destination table.
type Field struct {
	Name    string
	SQLType string
}

// GeometryField is the synthesized spatial column. Longitude and Latitude
// name the record fields the point is built from.
type GeometryField struct {
	Name      string
	Longitude string
	Latitude  string
}

// TargetSchema is the ordered field list of the destination table. The
// geometry column is always first in Columns and Values.
type TargetSchema struct {
	Table    string
	Fields   []Field
	Geometry GeometryField
}

// Columns returns the insert column order.
func (s *TargetSchema) Columns() []string {
	cols := make([]string, 0, len(s.Fields)+1)
	cols = append(cols, s.Geometry.Name)
	for _, f := range s.Fields {
		cols = append(cols, f.Name)
	}
	return cols
}

// Values returns the record values in Columns order. The geometry value is a
// geo.Point.
func (s *TargetSchema) Values(rec Record) []any {
	vals := make([]any, 0, len(s.Fields)+1)
	vals = append(vals, rec[s.Geometry.Name])
	for _, f := range s.Fields {
		vals = append(vals, rec[f.Name])
	}
	return vals
}

// Definition is everything needed to ingest one dataset.
type Definition struct {
	Name           string
	Input          string
	Columns        []ColumnSpec
	Schema         TargetSchema
	CreateTable    bool
	StrictBooleans bool
	// MissingTokens overrides DefaultMissingTokens when not nil.
	MissingTokens []string
}

// SourceColumns lists the input columns the definition reads.
func (d *Definition) SourceColumns() []string {
	cols := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		cols = append(cols, c.Source)
	}
	return cols
}

// Validate checks that every schema field and both geometry inputs are
// produced by exactly one column spec.
func (d *Definition) Validate() error {
	if d.Schema.Table == "" {
		return fmt.Errorf("%w: table name is required", ErrInvalidDefinition)
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("%w: at least one column is required", ErrInvalidDefinition)
	}

	produced := map[string]TransformKind{}
	for _, c := range d.Columns {
		if c.Source == "" {
			return fmt.Errorf("%w: column source name is required", ErrInvalidDefinition)
		}
		switch c.Transform {
		case TransformText, TransformFloat, TransformBool:
			if len(c.Fields) != 1 {
				return fmt.Errorf("%w: column %q: %s transform needs exactly one field, got %d", ErrInvalidDefinition, c.Source, c.Transform, len(c.Fields))
			}
		case TransformSplit:
			if len(c.Fields) != 2 {
				return fmt.Errorf("%w: column %q: split transform needs exactly two fields, got %d", ErrInvalidDefinition, c.Source, len(c.Fields))
			}
		default:
			return fmt.Errorf("%w: column %q: unknown transform %q", ErrInvalidDefinition, c.Source, c.Transform)
		}
		for _, f := range c.Fields {
			if f == "" {
				return fmt.Errorf("%w: column %q: empty field name", ErrInvalidDefinition, c.Source)
			}
			if _, dup := produced[f]; dup {
				return fmt.Errorf("%w: field %q is produced twice", ErrInvalidDefinition, f)
			}
			produced[f] = c.Transform
		}
	}

	g := d.Schema.Geometry
	if g.Name == "" {
		return fmt.Errorf("%w: geometry column name is required", ErrInvalidDefinition)
	}
	if _, clash := produced[g.Name]; clash {
		return fmt.Errorf("%w: geometry column %q clashes with a column field", ErrInvalidDefinition, g.Name)
	}
	for _, in := range []string{g.Longitude, g.Latitude} {
		kind, ok := produced[in]
		if !ok {
			return fmt.Errorf("%w: geometry input %q is not produced by any column", ErrInvalidDefinition, in)
		}
		if kind != TransformFloat && kind != TransformSplit {
			return fmt.Errorf("%w: geometry input %q must be numeric, got %s", ErrInvalidDefinition, in, kind)
		}
	}

	seen := map[string]bool{g.Name: true}
	for _, f := range d.Schema.Fields {
		if seen[f.Name] {
			return fmt.Errorf("%w: schema field %q declared twice", ErrInvalidDefinition, f.Name)
		}
		seen[f.Name] = true
		if f.SQLType == "" {
			return fmt.Errorf("%w: schema field %q has no SQL type", ErrInvalidDefinition, f.Name)
		}
		if _, ok := produced[f.Name]; !ok {
			return fmt.Errorf("%w: schema field %q is not produced by any column", ErrInvalidDefinition, f.Name)
		}
	}
	return nil
}

// buildPoint reads the geometry inputs from rec.
func (s *TargetSchema) buildPoint(rec Record) (geo.Point, bool) {
	lon, ok := rec[s.Geometry.Longitude].(float64)
	if !ok {
		return geo.Point{}, false
	}
	lat, ok := rec[s.Geometry.Latitude].(float64)
	if !ok {
		return geo.Point{}, false
	}
	return geo.FromLonLat(lon, lat), true
}
