// Package main implements the chart CLI command for flowledger.
// This file renders the categorical bar chart to stdout.
package main

import (
	"errors"
	"fmt"
	"os"

	"flowledger/cmd/flowledger/ui"
	"flowledger/internal/aggregate"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var chartFieldFlag string

// chartCmd aggregates a record field into category counts
var chartCmd = &cobra.Command{
	Use:   "chart [field]",
	Short: "Plot the horizontal bar chart of a record field",
	Long: `Buckets one field of every record into the Low (0-20), Medium (20-50),
and High (50+) categories and draws the counts as a horizontal bar chart.

Example:
  flowledger chart
  flowledger chart throughput
  flowledger chart --field throughput`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChart,
}

func init() {
	chartCmd.Flags().StringVar(&chartFieldFlag, "field", string(aggregate.FieldAvailableCapacity),
		"Field to visualize: available_capacity or throughput")
	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, args []string) error {
	fieldName := chartFieldFlag
	if len(args) > 0 {
		fieldName = args[0]
	}
	field, err := aggregate.ParseField(fieldName)
	if err != nil {
		return err
	}

	ws := resolveWorkspace()
	cfg := loadAppConfig(ws)

	st, err := loadWorkingSet(resolveDatasetPath(ws, cfg))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("No data loaded. Please load data before generating a chart.")
			return nil
		}
		return err
	}
	if st.Len() == 0 {
		fmt.Println("No data loaded. Please load data before generating a chart.")
		return nil
	}

	buckets, err := aggregate.Aggregate(st.Records(), field)
	if err != nil {
		return err
	}
	logger.Info("aggregated records",
		zap.String("field", string(field)),
		zap.Int("low", buckets.Low),
		zap.Int("medium", buckets.Medium),
		zap.Int("high", buckets.High))

	chart := ui.NewBarChart(
		fmt.Sprintf("Aggregated Horizontal Bar Chart: %s", field.Label()),
		"Number of Records",
		"Categories",
	)
	colors := []lipgloss.Color{ui.ChartLow, ui.ChartMedium, ui.ChartHigh}
	for i, b := range buckets.Buckets() {
		chart.AddBar(b.Label, b.Count, colors[i%len(colors)])
	}

	fmt.Println(chart.View(ui.DefaultStyles()))
	return nil
}
