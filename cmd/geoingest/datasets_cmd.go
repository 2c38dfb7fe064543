package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/darianmavgo/geoingest/datasets"
)

func newDatasetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List the built-in and configured datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := datasets.All(a.cfg)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTABLE\tINPUT\tCOLUMNS\tCREATE TABLE")
			for _, ds := range all {
				def, err := datasets.Build(ds)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\n",
					def.Name, def.Schema.Table, def.Input, len(def.Schema.Fields)+1, def.CreateTable)
			}
			return tw.Flush()
		},
	}
}
