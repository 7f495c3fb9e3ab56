package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fleetledger/fleetledger/internal/cli"
	"github.com/fleetledger/fleetledger/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.ListCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No categories found. Use 'fleet categories add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Name"),
				cli.TableHeaderStyle.Render("Type"))

			for _, c := range categories {
				fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, c.Type)
			}

			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var categoryType string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an expense category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var ct model.CategoryType
			switch categoryType {
			case "fuel":
				ct = model.CategoryTypeFuel
			case "maintenance":
				ct = model.CategoryTypeMaintenance
			case "other", "":
				ct = model.CategoryTypeOther
			default:
				return fmt.Errorf("invalid category type %q (want fuel, maintenance, or other)", categoryType)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			category := &model.Category{
				Name: args[0],
				Type: ct,
			}
			if err := store.CreateCategory(ctx, category); err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Added category %s (id %d)", category.Name, category.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryType, "type", "other", "category type (fuel, maintenance, other)")

	return cmd
}
