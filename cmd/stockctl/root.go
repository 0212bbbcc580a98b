package main

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/app"
	"github.com/mamadbah2/stockroom/internal/config"
	"github.com/mamadbah2/stockroom/pkg/logger"
)

// cli carries the state shared by every subcommand.
type cli struct {
	envFile string
	verbose bool

	out    io.Writer
	cfg    *config.Config
	logger *zap.Logger
	app    *app.App
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:          "stockctl",
		Short:        "Inventory, sales analytics and purchasing from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.envFile)
			if err != nil {
				return err
			}
			log, err := logger.NewCLI(c.verbose)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", "load settings from this .env file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log at info level")

	root.AddCommand(
		c.convertCmd(),
		c.alertsCmd(),
		c.reportCmd(),
		c.forecastCmd(),
		c.deadStockCmd(),
		c.turnoverCmd(),
		c.categoriesCmd(),
		c.execCmd(),
		c.exportPOSCmd(),
		c.backupCmd(),
	)
	return root
}

// workspace opens the configured data files on first use.
func (c *cli) workspace() (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := app.Open(c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}
