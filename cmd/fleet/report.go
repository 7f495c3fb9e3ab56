package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fleetledger/fleetledger/internal/cli"
	"github.com/fleetledger/fleetledger/internal/config"
	"github.com/fleetledger/fleetledger/internal/service"
	"github.com/fleetledger/fleetledger/internal/sheets"
)

func reportCmd() *cobra.Command {
	var (
		startStr string
		endStr   string
		toSheets bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize expenses by category and branch",
		Long: `Generate an expense summary for a date range, broken down by category
and by branch. With --sheets the full report is exported to a Google
Sheets spreadsheet.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			end := time.Now()
			start := end.AddDate(-1, 0, 0)
			if startStr != "" {
				parsed, err := time.Parse("2006-01-02", startStr)
				if err != nil {
					return fmt.Errorf("invalid --start date %q: %w", startStr, err)
				}
				start = parsed
			}
			if endStr != "" {
				parsed, err := time.Parse("2006-01-02", endStr)
				if err != nil {
					return fmt.Errorf("invalid --end date %q: %w", endStr, err)
				}
				end = parsed
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			byCategory, err := store.GetCategorySummary(ctx, start, end)
			if err != nil {
				return fmt.Errorf("failed to summarize by category: %w", err)
			}
			byBranch, err := store.GetBranchSummary(ctx, start, end)
			if err != nil {
				return fmt.Errorf("failed to summarize by branch: %w", err)
			}

			expenses, err := store.ListExpenses(ctx, service.ExpenseFilter{
				StartDate: &start,
				EndDate:   &end,
			})
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}

			var total float64
			for _, e := range expenses {
				total += e.Amount
			}

			summary := &service.ReportSummary{
				ByCategory:  byCategory,
				ByBranch:    byBranch,
				DateRange:   service.DateRange{Start: start, End: end},
				TotalAmount: total,
				Count:       len(expenses),
			}

			if toSheets {
				snapshot, snapErr := store.Snapshot(ctx)
				if snapErr != nil {
					return fmt.Errorf("failed to load reference data: %w", snapErr)
				}

				sheetsConfig, cfgErr := config.LoadSheetsConfig()
				if cfgErr != nil {
					return fmt.Errorf("sheets configuration: %w", cfgErr)
				}

				writer, wErr := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
				if wErr != nil {
					return wErr
				}
				if wErr := writer.Write(ctx, expenses, snapshot, summary); wErr != nil {
					return wErr
				}

				fmt.Println(cli.FormatSuccess(fmt.Sprintf(
					"Exported %d expense(s) to Google Sheets", len(expenses))))
				return nil
			}

			printReport(summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&startStr, "start", "", "start date (2006-01-02), default one year ago")
	cmd.Flags().StringVar(&endStr, "end", "", "end date (2006-01-02), default today")
	cmd.Flags().BoolVar(&toSheets, "sheets", false, "export the report to Google Sheets")

	return cmd
}

func printReport(summary *service.ReportSummary) {
	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%s Fleet expense report", cli.TruckIcon)))
	fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("%s to %s",
		summary.DateRange.Start.Format("2006-01-02"),
		summary.DateRange.End.Format("2006-01-02"))))
	fmt.Printf("\nTotal: $%.2f across %d expense(s)\n\n", summary.TotalAmount, summary.Count)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s\t%s\n", cli.TableHeaderStyle.Render("Category"), cli.TableHeaderStyle.Render("Amount"))
	for name, amount := range summary.ByCategory {
		fmt.Fprintf(w, "%s\t%.2f\n", name, amount)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\t%s\n", cli.TableHeaderStyle.Render("Branch"), cli.TableHeaderStyle.Render("Amount"))
	for name, amount := range summary.ByBranch {
		fmt.Fprintf(w, "%s\t%.2f\n", name, amount)
	}
	_ = w.Flush()
}
