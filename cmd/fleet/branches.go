package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fleetledger/fleetledger/internal/cli"
	"github.com/fleetledger/fleetledger/internal/model"
)

func branchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branches",
		Short: "Manage branch locations",
	}

	cmd.AddCommand(listBranchesCmd())
	cmd.AddCommand(addBranchCmd())

	return cmd
}

func listBranchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all branches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			branches, err := store.ListBranches(ctx)
			if err != nil {
				return fmt.Errorf("failed to list branches: %w", err)
			}

			if len(branches) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No branches found. Use 'fleet branches add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Name"),
				cli.TableHeaderStyle.Render("Location"))

			for _, b := range branches {
				fmt.Fprintf(w, "%d\t%s\t%s\n", b.ID, b.Name, b.Location)
			}

			return nil
		},
	}
}

func addBranchCmd() *cobra.Command {
	var location string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a branch location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			branch := &model.Branch{
				Name:     args[0],
				Location: location,
			}
			if err := store.CreateBranch(ctx, branch); err != nil {
				return fmt.Errorf("failed to create branch: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Added branch %s (id %d)", branch.Name, branch.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "city or address")

	return cmd
}
