package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/darianmavgo/geoingest/config"
	"github.com/darianmavgo/geoingest/datasets"
	loglib "github.com/darianmavgo/geoingest/log"
	"github.com/darianmavgo/geoingest/pipeline"
	"github.com/darianmavgo/geoingest/sinks/mysql"
	"github.com/darianmavgo/geoingest/sinks/sqlfile"
	"github.com/darianmavgo/geoingest/sinks/sqlite"
	"github.com/darianmavgo/geoingest/sinks/sqlutil"
	"github.com/darianmavgo/geoingest/sources"
)

const successMessage = "Data processed successfully"

type runFlags struct {
	input          string
	driver         string
	sqlitePath     string
	output         string
	sheet          string
	createTable    bool
	strictBooleans bool
	batchSize      int
	missingReport  bool
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.input, "input", "i", "", "input file, overrides the dataset's input")
	fs.StringVar(&f.driver, "driver", "", "sink driver. One of mysql, sqlite, sql (default from config, mysql)")
	fs.StringVar(&f.sqlitePath, "sqlite-path", "", "database file for the sqlite driver")
	fs.StringVarP(&f.output, "output", "o", "", "script file for the sql driver, - for stdout")
	fs.StringVar(&f.sheet, "sheet", "", "excel sheet or html table id to read")
	fs.BoolVar(&f.createTable, "create-table", false, "create the table if it does not exist")
	fs.BoolVar(&f.strictBooleans, "strict-booleans", false, "fail on boolean cells other than TRUE and FALSE")
	fs.IntVar(&f.batchSize, "batch-size", 0, "records per insert statement (default from config)")
	fs.BoolVar(&f.missingReport, "missing-report", false, "print the missing values per column")
}

func newRunCmd(a *app) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <dataset>",
		Short: "Load one dataset into the configured database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), cmd.Flags(), flags, args[0])
		},
		Example: `
	geoingest run toilet
	geoingest run attraction --input ./data/attraction.csv --create-table
	geoingest run fountain --driver sqlite --sqlite-path melbourne.db
	geoingest run fountain --driver sql --output fountain.sql
	geoingest run toilet --config geoingest.hcl --env-file ../.env.local --log-level debug`,
	}
	flags.register(cmd.Flags())
	return cmd
}

func (a *app) run(ctx context.Context, fs *pflag.FlagSet, flags *runFlags, name string) (err error) {
	ds, err := datasets.Lookup(a.cfg, name)
	if err != nil {
		return err
	}
	if flags.input != "" {
		ds.Input = flags.input
	}
	if flags.sheet != "" {
		ds.Sheet = flags.sheet
	}
	if fs.Changed("create-table") {
		ds.CreateTable = flags.createTable
	}
	if fs.Changed("strict-booleans") {
		ds.StrictBooleans = flags.strictBooleans
	}
	report := ds.ReportMissing
	if fs.Changed("missing-report") {
		report = flags.missingReport
	}

	def, err := datasets.Build(ds)
	if err != nil {
		return err
	}

	src, closeSrc, err := openSource(ds, def.Input)
	if err != nil {
		return err
	}
	defer closeSrc()

	driver, target := a.sinkTarget(flags)
	// a script written to stdout must stay valid SQL
	msgOut := a.out
	if driver == "sql" && (target == "" || target == "-") {
		msgOut = a.errOut
	}

	sink, err := a.openSink(ctx, driver, target, name)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	batchSize := a.cfg.BatchSize
	if flags.batchSize > 0 {
		batchSize = flags.batchSize
	}
	opts := &pipeline.Options{BatchSize: batchSize, Logger: a.logger}
	if report {
		opts.MissingReport = msgOut
	}
	p, err := pipeline.New(def, opts)
	if err != nil {
		return err
	}

	if _, err := p.Run(ctx, src, sink); err != nil {
		return err
	}

	fmt.Fprintln(msgOut, successMessage)
	return nil
}

func openSource(ds config.Dataset, input string) (sources.RowSource, func(), error) {
	driverName, err := datasets.Driver(ds, input)
	if err != nil {
		return nil, nil, &pipeline.InputError{Source: input, Err: err}
	}
	opts, err := datasets.SourceOptions(ds)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(input)
	if err != nil {
		return nil, nil, &pipeline.InputError{Source: input, Err: err}
	}

	src, err := sources.Open(driverName, f, opts)
	if err != nil {
		f.Close()
		return nil, nil, &pipeline.InputError{Source: input, Err: err}
	}

	closeFn := func() {
		if c, ok := src.(io.Closer); ok {
			c.Close()
		}
		f.Close()
	}
	return src, closeFn, nil
}

// sinkTarget resolves the sink driver and, for the file based drivers, the
// path it writes to.
func (a *app) sinkTarget(flags *runFlags) (driver, path string) {
	driver, path = a.cfg.Database.Driver, a.cfg.Database.Path
	if flags.driver != "" {
		driver = flags.driver
	}
	switch {
	case driver == "sqlite" && flags.sqlitePath != "":
		path = flags.sqlitePath
	case driver == "sql" && flags.output != "":
		path = flags.output
	}
	return driver, path
}

func (a *app) openSink(ctx context.Context, driver, path, dataset string) (pipeline.Sink, error) {
	db := *a.cfg.Database
	logger := a.logger.WithFields(loglib.Fields{loglib.ModuleField: "sink", loglib.DatasetField: dataset})

	switch driver {
	case "mysql":
		if err := config.ApplyEnv(&db, a.cfg.EnvFile); err != nil {
			return nil, err
		}
		return mysql.Open(ctx, &mysql.Config{
			Host:     db.Host,
			Port:     db.Port,
			User:     db.User,
			Password: db.Password,
			Database: db.Name,
		}, logger)
	case "sqlite":
		return sqlite.Open(ctx, path, logger)
	case "sql":
		if path == "" || path == "-" {
			// hides Close so the command's output stream stays open
			return sqlfile.New(struct{ io.Writer }{a.out}, sqlutil.MySQL), nil
		}
		return sqlfile.Create(path, sqlutil.MySQL)
	default:
		return nil, fmt.Errorf("unsupported driver %q, expected one of mysql, sqlite, sql", driver)
	}
}
