package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

var levelColors = map[models.AlertLevel]*color.Color{
	models.AlertCritical: color.New(color.FgRed, color.Bold),
	models.AlertLow:      color.New(color.FgYellow, color.Bold),
	models.AlertReorder:  color.New(color.FgCyan),
}

func (c *cli) alertsCmd() *cobra.Command {
	var expiryDays int

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List stock alerts and expiring batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.workspace()
			if err != nil {
				return err
			}
			if expiryDays <= 0 {
				expiryDays = c.cfg.Alerts.ExpiryWindowDays
			}

			alerts := a.Inventory.CheckAlerts()
			expiring := a.Inventory.ExpiringBatches(time.Duration(expiryDays) * 24 * time.Hour)
			if len(alerts) == 0 && len(expiring) == 0 {
				fmt.Fprintln(c.out, "No alerts.")
				return nil
			}
			for _, alert := range alerts {
				label := levelColors[alert.Level].Sprintf("%-8s", alert.Level)
				fmt.Fprintf(c.out, "%s %s (%s): %s\n", label, alert.Name, alert.ProductID, alert.Message)
			}
			for _, e := range expiring {
				expiry := "no date"
				if e.Batch.ExpirationDate != nil {
					expiry = e.Batch.ExpirationDate.Format("2006-01-02")
				}
				fmt.Fprintf(c.out, "%-8s %s batch %s: %d units, expires %s (%d days)\n",
					"EXPIRY", e.ProductName, e.Batch.BatchID, e.Batch.Quantity, expiry, e.DaysLeft)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&expiryDays, "expiry-days", 0, "expiry window in days (default from config)")
	return cmd
}
