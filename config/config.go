package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

const (
	DefaultBatchSize = 1000
	DefaultEnvFile   = ".env.local"
	DefaultDriver    = "mysql"
	DefaultHost      = "127.0.0.1"
	DefaultPort      = 3306
)

// Config represents the application configuration.
type Config struct {
	BatchSize int       `hcl:"batch_size,optional"`
	EnvFile   string    `hcl:"env_file,optional"`
	Database  *Database `hcl:"database,block"`
	Datasets  []Dataset `hcl:"dataset,block"`
}

// Database selects and configures the sink. Driver is one of mysql, sqlite
// or sql; Path is the sqlite file or the script written by the sql driver.
type Database struct {
	Driver   string `hcl:"driver,optional"`
	Host     string `hcl:"host,optional"`
	Port     int    `hcl:"port,optional"`
	User     string `hcl:"user,optional"`
	Password string `hcl:"password,optional"`
	Name     string `hcl:"name,optional"`
	Path     string `hcl:"path,optional"`
}

// Dataset describes one input file and the table it is loaded into.
type Dataset struct {
	Name           string    `hcl:"name,label"`
	Input          string    `hcl:"input,optional"`
	Format         string    `hcl:"format,optional"`
	Sheet          string    `hcl:"sheet,optional"`
	Delimiter      string    `hcl:"delimiter,optional"`
	Table          string    `hcl:"table,optional"`
	CreateTable    bool      `hcl:"create_table,optional"`
	StrictBooleans bool      `hcl:"strict_booleans,optional"`
	ReportMissing  bool      `hcl:"report_missing,optional"`
	MissingTokens  []string  `hcl:"missing_tokens,optional"`
	Columns        []Column  `hcl:"column,block"`
	Fields         []Field   `hcl:"field,block"`
	Geometry       *Geometry `hcl:"geometry,block"`
}

// Column is one source column and the transform applied to it. Fields
// defaults to the snake case source name and Type to the transform's
// default SQL type; both are ignored when field blocks are declared.
type Column struct {
	Source    string   `hcl:"source,label"`
	Transform string   `hcl:"transform,optional"`
	Fields    []string `hcl:"fields,optional"`
	Type      string   `hcl:"type,optional"`
	Delimiter string   `hcl:"delimiter,optional"`
}

// Field is one stored column and its SQL type.
type Field struct {
	Name string `hcl:"name,label"`
	Type string `hcl:"type"`
}

// Geometry names the point column and the fields it is built from.
type Geometry struct {
	Name      string `hcl:"name,label"`
	Longitude string `hcl:"longitude"`
	Latitude  string `hcl:"latitude"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.EnvFile == "" {
		c.EnvFile = DefaultEnvFile
	}
	if c.Database == nil {
		c.Database = &Database{}
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDriver
	}
	if c.Database.Host == "" {
		c.Database.Host = DefaultHost
	}
	if c.Database.Port == 0 {
		c.Database.Port = DefaultPort
	}
}

// Dataset returns the dataset block with the given name.
func (c *Config) Dataset(name string) (Dataset, bool) {
	for _, ds := range c.Datasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return Dataset{}, false
}

// Load reads the configuration from the given HCL file.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(content, path)
}

// Parse decodes HCL configuration source. filename is used in diagnostics.
func Parse(content []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(content, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %s", diags.Error())
	}

	cfg := &Config{}
	diags = gohcl.DecodeBody(file.Body, nil, cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config: %s", diags.Error())
	}

	seen := map[string]bool{}
	for _, ds := range cfg.Datasets {
		if seen[ds.Name] {
			return nil, fmt.Errorf("dataset %q is declared twice in %s", ds.Name, filename)
		}
		seen[ds.Name] = true
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Export writes the configuration to the specified file in HCL format.
// The database password is never written; it belongs in the env file.
func Export(path string, cfg *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	_, err = file.Write(Encode(cfg))
	if err != nil {
		return fmt.Errorf("failed to write config to file: %w", err)
	}

	return nil
}

// Encode renders cfg as HCL.
func Encode(cfg *Config) []byte {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	root.SetAttributeValue("batch_size", cty.NumberIntVal(int64(cfg.BatchSize)))
	if cfg.EnvFile != "" {
		root.SetAttributeValue("env_file", cty.StringVal(cfg.EnvFile))
	}

	if db := cfg.Database; db != nil {
		root.AppendNewline()
		body := root.AppendNewBlock("database", nil).Body()
		setString(body, "driver", db.Driver)
		setString(body, "host", db.Host)
		if db.Port != 0 {
			body.SetAttributeValue("port", cty.NumberIntVal(int64(db.Port)))
		}
		setString(body, "user", db.User)
		setString(body, "name", db.Name)
		setString(body, "path", db.Path)
	}

	for _, ds := range cfg.Datasets {
		root.AppendNewline()
		encodeDataset(root.AppendNewBlock("dataset", []string{ds.Name}).Body(), ds)
	}

	return f.Bytes()
}

func encodeDataset(body *hclwrite.Body, ds Dataset) {
	setString(body, "input", ds.Input)
	setString(body, "format", ds.Format)
	setString(body, "sheet", ds.Sheet)
	setString(body, "delimiter", ds.Delimiter)
	setString(body, "table", ds.Table)
	body.SetAttributeValue("create_table", cty.BoolVal(ds.CreateTable))
	if ds.StrictBooleans {
		body.SetAttributeValue("strict_booleans", cty.True)
	}
	if ds.ReportMissing {
		body.SetAttributeValue("report_missing", cty.True)
	}
	if ds.MissingTokens != nil {
		body.SetAttributeValue("missing_tokens", stringList(ds.MissingTokens))
	}

	for _, c := range ds.Columns {
		body.AppendNewline()
		cb := body.AppendNewBlock("column", []string{c.Source}).Body()
		setString(cb, "transform", c.Transform)
		if len(c.Fields) > 0 {
			cb.SetAttributeValue("fields", stringList(c.Fields))
		}
		setString(cb, "type", c.Type)
		setString(cb, "delimiter", c.Delimiter)
	}

	for _, fd := range ds.Fields {
		body.AppendNewline()
		fb := body.AppendNewBlock("field", []string{fd.Name}).Body()
		fb.SetAttributeValue("type", cty.StringVal(fd.Type))
	}

	if g := ds.Geometry; g != nil {
		body.AppendNewline()
		gb := body.AppendNewBlock("geometry", []string{g.Name}).Body()
		gb.SetAttributeValue("longitude", cty.StringVal(g.Longitude))
		gb.SetAttributeValue("latitude", cty.StringVal(g.Latitude))
	}
}

func setString(body *hclwrite.Body, name, value string) {
	if value != "" {
		body.SetAttributeValue(name, cty.StringVal(value))
	}
}

func stringList(values []string) cty.Value {
	if len(values) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(values))
	for i, v := range values {
		vals[i] = cty.StringVal(v)
	}
	return cty.ListVal(vals)
}
