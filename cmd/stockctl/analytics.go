package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/stockroom/internal/service/analytics"
)

func (c *cli) snapshot() (analytics.Snapshot, error) {
	a, err := c.workspace()
	if err != nil {
		return analytics.Snapshot{}, err
	}
	return analytics.NewSnapshot(a.Inventory.All(), a.Inventory.Sales(), time.Now()), nil
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) reportCmd() *cobra.Command {
	var kind string
	var days int
	var categories []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build a sales analytics report (comprehensive, summary, product, category)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.snapshot()
			if err != nil {
				return err
			}
			if days <= 0 {
				days = c.cfg.Analytics.TurnoverDays
			}
			report, err := snap.BuildReport(analytics.ReportOptions{
				Kind:          analytics.ReportKind(kind),
				Days:          days,
				DeadStockDays: c.cfg.Analytics.DeadStockDays,
				ForecastDays:  c.cfg.Analytics.ForecastDays,
				Categories:    categories,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return c.printJSON(report)
			}
			fmt.Fprint(c.out, analytics.RenderText(report))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(analytics.ReportComprehensive), "report kind")
	cmd.Flags().IntVar(&days, "days", 0, "analysis window in days (default from config)")
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "main categories to list even without sales")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func (c *cli) forecastCmd() *cobra.Command {
	var days int
	var productID string

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast demand and recommended orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.snapshot()
			if err != nil {
				return err
			}
			if days <= 0 {
				days = c.cfg.Analytics.ForecastDays
			}

			forecasts := snap.Forecasts(days)
			if productID != "" {
				var match []analytics.Forecast
				for _, f := range forecasts {
					if f.ProductID == productID {
						match = append(match, f)
					}
				}
				if len(match) == 0 {
					return fmt.Errorf("product %s not found", productID)
				}
				forecasts = match
			}

			tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PRODUCT\tSTOCK\tAVG/DAY\tNEED\tSAFETY\tORDER\tCONFIDENCE")
			for _, f := range forecasts {
				fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.1f\t%.1f\t%.1f\t%s\n",
					f.Name, f.CurrentStock, f.AvgDailySales, f.PredictedNeed, f.SafetyStock, f.RecommendedOrder, f.Confidence)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "forecast horizon in days (default from config)")
	cmd.Flags().StringVar(&productID, "product", "", "only this product id")
	return cmd
}

func (c *cli) deadStockCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "dead-stock",
		Short: "List stock without a sale in the window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.snapshot()
			if err != nil {
				return err
			}
			if days <= 0 {
				days = c.cfg.Analytics.DeadStockDays
			}

			dead := snap.DeadStock(days)
			if len(dead) == 0 {
				fmt.Fprintf(c.out, "No dead stock over %d days.\n", days)
				return nil
			}
			tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PRODUCT\tQTY\tVALUE\tLAST SOLD")
			for _, d := range dead {
				last := "never"
				if d.LastSold != nil {
					last = d.LastSold.Format("2006-01-02")
				}
				fmt.Fprintf(tw, "%s\t%d\t%.2f\t%s\n", d.Name, d.Quantity, d.Value, last)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "days without a sale (default from config)")
	return cmd
}

func (c *cli) turnoverCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "turnover",
		Short: "Show turnover rate and days to stockout per product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.snapshot()
			if err != nil {
				return err
			}
			if days <= 0 {
				days = c.cfg.Analytics.TurnoverDays
			}

			tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PRODUCT\tSTOCK\tSOLD\tREVENUE\tTURNOVER\tDAYS LEFT")
			for _, t := range snap.Turnover(days) {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%.3f\t%.1f\n",
					t.Name, t.CurrentStock, t.UnitsSold, t.Revenue, t.TurnoverRate, t.DaysToStockout)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "analysis window in days (default from config)")
	return cmd
}
