package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/stockroom/internal/repository/formats"
)

func (c *cli) convertCmd() *cobra.Command {
	var from, to, table string
	var columns []string

	cmd := &cobra.Command{
		Use:   "convert <source> <target>",
		Short: "Convert a data file between json, csv, txt, yaml and sqlite",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, target := args[0], args[1]
			sourceFormat, err := formatFlag(from, source)
			if err != nil {
				return err
			}
			targetFormat, err := formatFlag(to, target)
			if err != nil {
				return err
			}

			var opts []formats.Option
			if table != "" {
				opts = append(opts, formats.WithTable(table))
			}
			if len(columns) > 0 {
				opts = append(opts, formats.WithColumns(columns...))
			}

			// Paths are taken as given, not joined with the data directory.
			store := formats.NewStore("", c.cfg.Storage.BackupDir, c.logger)
			if err := store.Convert(source, sourceFormat, target, targetFormat, opts...); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Converted %s (%s) to %s (%s)\n", source, sourceFormat, target, targetFormat)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "source format (default: from the extension)")
	cmd.Flags().StringVar(&to, "to", "", "target format (default: from the extension)")
	cmd.Flags().StringVar(&table, "table", "", "table to read or write")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "txt column order")
	return cmd
}

func formatFlag(flag, path string) (formats.Format, error) {
	if flag != "" {
		return formats.ParseFormat(flag)
	}
	return formats.FormatFromPath(path)
}
