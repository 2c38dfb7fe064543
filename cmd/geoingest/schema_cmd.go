package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darianmavgo/geoingest/datasets"
	"github.com/darianmavgo/geoingest/sinks/sqlutil"
)

func newSchemaCmd(a *app) *cobra.Command {
	var dialect string
	cmd := &cobra.Command{
		Use:   "schema <dataset>",
		Short: "Print the CREATE TABLE statement of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := sqlutil.ParseDialect(dialect)
			if err != nil {
				return err
			}
			ds, err := datasets.Lookup(a.cfg, args[0])
			if err != nil {
				return err
			}
			def, err := datasets.Build(ds)
			if err != nil {
				return err
			}
			for _, stmt := range sqlutil.GenCreateTableSQL(d, &def.Schema) {
				fmt.Fprintf(a.out, "%s;\n", stmt)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dialect, "dialect", "mysql", "SQL dialect. One of mysql, sqlite")
	return cmd
}
