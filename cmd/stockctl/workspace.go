package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/service/commands"
)

func (c *cli) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Print the category tree, override file included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.workspace()
			if err != nil {
				return err
			}
			cat := a.Inventory.Categories()
			for _, main := range cat.Mains() {
				fmt.Fprintln(c.out, main)
				for _, sub := range cat.Subs(main) {
					fmt.Fprintf(c.out, "  %s\n", sub)
				}
			}
			return nil
		},
	}
}

func (c *cli) execCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <command...>",
		Short: `Run a quick POS command, e.g. exec /sale PRD-1a2b3c4d 2`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.workspace()
			if err != nil {
				return err
			}
			parsed := models.ParseCommand(strings.Join(args, " "))
			dispatcher := commands.NewService(a.Inventory, nil, c.logger.Named("svc.commands"))
			reply, err := dispatcher.HandleCommand(context.Background(), parsed)
			if err != nil {
				return err
			}
			if parsed.Type == models.CommandSale || parsed.Type == models.CommandRestock {
				if err := a.Save(); err != nil {
					return err
				}
			}
			if reply.Title != "" {
				fmt.Fprintln(c.out, reply.Title)
			}
			fmt.Fprintln(c.out, reply.Message)
			return nil
		},
	}
}

func (c *cli) exportPOSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-pos <file>",
		Short: "Write the pipe-delimited price list for the till (id|name|price|quantity)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.workspace()
			if err != nil {
				return err
			}
			if err := a.Inventory.ExportPOS(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Exported %d products to %s\n", len(a.Inventory.All()), a.Store.Path(args[0]))
			return nil
		},
	}
}

func (c *cli) backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy the data files into the backup directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.workspace()
			if err != nil {
				return err
			}
			for _, name := range a.Files() {
				if _, err := a.Store.FileInfo(name); err != nil {
					c.logger.Info("skip missing data file", zap.String("file", name))
					continue
				}
				path, err := a.Store.Backup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Backed up %s to %s\n", name, path)
			}
			return nil
		},
	}
}
