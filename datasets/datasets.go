// Package datasets turns dataset blocks from the configuration, or the
// built-in ones, into pipeline definitions.
package datasets

import (
	_ "embed"
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/darianmavgo/geoingest/config"
	"github.com/darianmavgo/geoingest/pipeline"
	"github.com/darianmavgo/geoingest/sinks/sqlutil"
	"github.com/darianmavgo/geoingest/sources"
)

//go:embed builtin.hcl
var builtinHCL []byte

const (
	defaultGeometry  = "coordinates"
	defaultLongitude = "longitude"
	defaultLatitude  = "latitude"
)

// default SQL type per transform when none is declared
var defaultTypes = map[pipeline.TransformKind]string{
	pipeline.TransformText:  "VARCHAR(255)",
	pipeline.TransformFloat: "DOUBLE",
	pipeline.TransformBool:  "BOOLEAN",
	pipeline.TransformSplit: "DOUBLE",
}

// Builtin returns the datasets shipped with the binary.
func Builtin() ([]config.Dataset, error) {
	cfg, err := config.Parse(builtinHCL, "builtin.hcl")
	if err != nil {
		return nil, fmt.Errorf("built-in datasets: %w", err)
	}
	return cfg.Datasets, nil
}

// All returns the built-in datasets followed by the configured ones. A
// configured dataset replaces the built-in one of the same name.
func All(cfg *config.Config) ([]config.Dataset, error) {
	builtin, err := Builtin()
	if err != nil {
		return nil, err
	}

	var configured []config.Dataset
	if cfg != nil {
		configured = cfg.Datasets
	}

	all := make([]config.Dataset, 0, len(builtin)+len(configured))
	for _, ds := range builtin {
		if i := slices.IndexFunc(configured, func(c config.Dataset) bool { return c.Name == ds.Name }); i >= 0 {
			all = append(all, configured[i])
			continue
		}
		all = append(all, ds)
	}
	for _, ds := range configured {
		if !slices.ContainsFunc(builtin, func(b config.Dataset) bool { return b.Name == ds.Name }) {
			all = append(all, ds)
		}
	}
	return all, nil
}

// Lookup finds a dataset by name, configured datasets first.
func Lookup(cfg *config.Config, name string) (config.Dataset, error) {
	if cfg != nil {
		if ds, ok := cfg.Dataset(name); ok {
			return ds, nil
		}
	}
	builtin, err := Builtin()
	if err != nil {
		return config.Dataset{}, err
	}
	for _, ds := range builtin {
		if ds.Name == name {
			return ds, nil
		}
	}
	return config.Dataset{}, fmt.Errorf("unknown dataset %q", name)
}

// Build converts a dataset block into a validated pipeline definition.
func Build(ds config.Dataset) (pipeline.Definition, error) {
	def := pipeline.Definition{
		Name:           ds.Name,
		Input:          ds.Input,
		CreateTable:    ds.CreateTable,
		StrictBooleans: ds.StrictBooleans,
		MissingTokens:  ds.MissingTokens,
	}
	if def.Input == "" {
		def.Input = "./" + ds.Name + ".csv"
	}

	geom := pipeline.GeometryField{Name: defaultGeometry, Longitude: defaultLongitude, Latitude: defaultLatitude}
	if ds.Geometry != nil {
		geom = pipeline.GeometryField{Name: ds.Geometry.Name, Longitude: ds.Geometry.Longitude, Latitude: ds.Geometry.Latitude}
	}

	srcNames := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		srcNames[i] = c.Source
	}
	// collisions such as "Name" and "name" get a counter suffix
	defaultNames := sqlutil.GenColumnNames(srcNames)

	var derived []pipeline.Field
	for i, c := range ds.Columns {
		kind := pipeline.TransformKind(c.Transform)
		if kind == "" {
			kind = pipeline.TransformText
		}
		fields := c.Fields
		if len(fields) == 0 && kind != pipeline.TransformSplit {
			fields = []string{defaultNames[i]}
		}
		def.Columns = append(def.Columns, pipeline.ColumnSpec{
			Source:    c.Source,
			Fields:    fields,
			Transform: kind,
			Delimiter: c.Delimiter,
		})

		sqlType := c.Type
		if sqlType == "" {
			sqlType = defaultTypes[kind]
		}
		for _, f := range fields {
			if f == geom.Longitude || f == geom.Latitude {
				continue
			}
			derived = append(derived, pipeline.Field{Name: f, SQLType: sqlType})
		}
	}

	table := ds.Table
	if table == "" {
		table = ds.Name
	}
	def.Schema = pipeline.TargetSchema{Table: table, Geometry: geom, Fields: derived}
	if len(ds.Fields) > 0 {
		def.Schema.Fields = make([]pipeline.Field, len(ds.Fields))
		for i, f := range ds.Fields {
			def.Schema.Fields[i] = pipeline.Field{Name: f.Name, SQLType: f.Type}
		}
	}

	if err := def.Validate(); err != nil {
		return pipeline.Definition{}, fmt.Errorf("dataset %s: %w", ds.Name, err)
	}
	return def, nil
}

// SourceOptions returns the reader options of a dataset.
func SourceOptions(ds config.Dataset) (*sources.Options, error) {
	opts := &sources.Options{Sheet: ds.Sheet}
	if ds.Delimiter != "" {
		r, size := utf8.DecodeRuneInString(ds.Delimiter)
		if size != len(ds.Delimiter) || r == utf8.RuneError {
			return nil, fmt.Errorf("dataset %s: delimiter must be a single character, got %q", ds.Name, ds.Delimiter)
		}
		opts.Delimiter = r
	}
	return opts, nil
}

// Driver returns the source driver name for a dataset, from its format or
// from the input file extension.
func Driver(ds config.Dataset, input string) (string, error) {
	if ds.Format != "" {
		return ds.Format, nil
	}
	return sources.DriverForPath(input)
}
