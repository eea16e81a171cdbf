package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"funnelforge/internal/common"
	"funnelforge/pkg/errors"
	"funnelforge/pkg/models"
)

var reportFlags struct {
	outputDir string
	months    bool
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize a previously generated run",
	Long: `Read the daily ledger of an earlier run from the output directory and print
volume and revenue totals. Useful for eyeballing whether a run looks like the
funnel shape you wanted before loading it anywhere.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportFlags.outputDir, "output", "o", "output", "Output directory of the run to summarize")
	reportCmd.Flags().BoolVar(&reportFlags.months, "monthly", false, "Break totals down by 30-day block")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	days, err := readDailySummaries(reportFlags.outputDir)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		return errors.New(errors.ErrCodeRunIncomplete, "no daily ledger found - has this directory seen a completed run?").
			WithContext("output_dir", reportFlags.outputDir)
	}

	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)

	bold.Printf("\nRun summary: %s to %s (%d days)\n\n",
		days[0].Date, days[len(days)-1].Date, len(days))

	var totals models.DailySummary
	for _, d := range days {
		totals.NewUsers += d.NewUsers
		totals.Sessions += d.Sessions
		totals.SessionsCreated += d.SessionsCreated
		totals.EventsEmitted += d.EventsEmitted
		totals.FormFills += d.FormFills
		totals.Conversions += d.Conversions
		totals.Transactions += d.Transactions
		totals.Revenue += d.Revenue
	}

	fmt.Printf("  New users:     %d\n", totals.NewUsers)
	fmt.Printf("  Sessions:      %d\n", totals.SessionsCreated)
	fmt.Printf("  Events:        %d\n", totals.EventsEmitted)
	fmt.Printf("  Form fills:    %d\n", totals.FormFills)
	fmt.Printf("  Conversions:   %d\n", totals.Conversions)
	green.Printf("  Revenue:       $%.2f\n\n", totals.Revenue)

	if reportFlags.months {
		printMonthlyBreakdown(days)
	}
	return nil
}

func printMonthlyBreakdown(days []models.DailySummary) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Block", "From", "New Users", "Sessions", "Events", "Conversions"})
	table.SetBorder(false)

	for start := 0; start < len(days); start += 30 {
		end := start + 30
		if end > len(days) {
			end = len(days)
		}
		var newUsers, sessions, events, conversions int
		for _, d := range days[start:end] {
			newUsers += d.NewUsers
			sessions += d.SessionsCreated
			events += d.EventsEmitted
			conversions += d.Conversions
		}
		table.Append([]string{
			fmt.Sprintf("%d", start/30+1),
			days[start].Date,
			fmt.Sprintf("%d", newUsers),
			fmt.Sprintf("%d", sessions),
			fmt.Sprintf("%d", events),
			fmt.Sprintf("%d", conversions),
		})
	}
	table.Render()
}

func readDailySummaries(dir string) ([]models.DailySummary, error) {
	path, err := common.CleanPath(filepath.Join(dir, "daily_summary.jsonl"))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path) // #nosec G304 - path is validated
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open daily ledger: %w", err)
	}
	defer f.Close()

	var days []models.DailySummary
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	for scanner.Scan() {
		var d models.DailySummary
		if err := json.Unmarshal(scanner.Bytes(), &d); err != nil {
			return nil, fmt.Errorf("malformed daily ledger line: %w", err)
		}
		days = append(days, d)
	}
	return days, scanner.Err()
}
