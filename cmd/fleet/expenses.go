package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fleetledger/fleetledger/internal/cli"
	"github.com/fleetledger/fleetledger/internal/service"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Query the expense ledger",
	}

	cmd.AddCommand(listExpensesCmd())

	return cmd
}

func listExpensesCmd() *cobra.Command {
	var (
		startStr  string
		endStr    string
		vehicleID int64
		branchID  int64
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			filter := service.ExpenseFilter{Limit: limit}
			if startStr != "" {
				start, err := time.Parse("2006-01-02", startStr)
				if err != nil {
					return fmt.Errorf("invalid --start date %q: %w", startStr, err)
				}
				filter.StartDate = &start
			}
			if endStr != "" {
				end, err := time.Parse("2006-01-02", endStr)
				if err != nil {
					return fmt.Errorf("invalid --end date %q: %w", endStr, err)
				}
				filter.EndDate = &end
			}
			if vehicleID > 0 {
				filter.VehicleID = &vehicleID
			}
			if branchID > 0 {
				filter.BranchID = &branchID
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			expenses, err := store.ListExpenses(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}

			if len(expenses) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No expenses found."))
				return nil
			}

			snapshot, err := store.Snapshot(ctx)
			if err != nil {
				return fmt.Errorf("failed to load reference data: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("Date"),
				cli.TableHeaderStyle.Render("Vehicle"),
				cli.TableHeaderStyle.Render("Branch"),
				cli.TableHeaderStyle.Render("Category"),
				cli.TableHeaderStyle.Render("Amount"),
				cli.TableHeaderStyle.Render("Description"))

			var total float64
			for _, e := range expenses {
				vehicle := "-"
				if v := snapshot.VehicleByID(e.VehicleID); v != nil {
					vehicle = v.DisplayName()
				}
				branch := "-"
				if e.BranchID != nil {
					if b := snapshot.BranchByID(*e.BranchID); b != nil {
						branch = b.Name
					}
				}
				category := "-"
				if e.CategoryID != nil {
					if c := snapshot.CategoryByID(*e.CategoryID); c != nil {
						category = c.Name
					}
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\n",
					e.Date.Format("2006-01-02"), vehicle, branch, category,
					e.Amount, e.Description)
				total += e.Amount
			}

			fmt.Fprintf(w, "\t\t\t%s\t%.2f\t\n", cli.TableHeaderStyle.Render("Total"), total)

			return nil
		},
	}

	cmd.Flags().StringVar(&startStr, "start", "", "start date (2006-01-02)")
	cmd.Flags().StringVar(&endStr, "end", "", "end date (2006-01-02)")
	cmd.Flags().Int64Var(&vehicleID, "vehicle", 0, "filter by vehicle id")
	cmd.Flags().Int64Var(&branchID, "branch", 0, "filter by branch id")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (0 = all)")

	return cmd
}
