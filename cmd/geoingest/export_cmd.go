package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darianmavgo/geoingest/config"
	"github.com/darianmavgo/geoingest/datasets"
)

func newExportConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export-config <path>",
		Short: "Write the effective configuration, built-in datasets included, as HCL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := datasets.All(a.cfg)
			if err != nil {
				return err
			}
			cfg := *a.cfg
			cfg.Datasets = all

			if args[0] == "-" {
				_, err := a.out.Write(config.Encode(&cfg))
				return err
			}
			if err := config.Export(args[0], &cfg); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Configuration written to %s\n", args[0])
			return nil
		},
	}
}
