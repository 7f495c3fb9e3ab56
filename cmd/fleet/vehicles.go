package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fleetledger/fleetledger/internal/cli"
	"github.com/fleetledger/fleetledger/internal/model"
)

func vehiclesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vehicles",
		Short: "Manage the vehicle registry",
	}

	cmd.AddCommand(listVehiclesCmd())
	cmd.AddCommand(addVehicleCmd())

	return cmd
}

func listVehiclesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all vehicles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			vehicles, err := store.ListVehicles(ctx)
			if err != nil {
				return fmt.Errorf("failed to list vehicles: %w", err)
			}

			if len(vehicles) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No vehicles found. Use 'fleet vehicles add' to create one."))
				return nil
			}

			branches, err := store.ListBranches(ctx)
			if err != nil {
				return fmt.Errorf("failed to list branches: %w", err)
			}
			branchNames := make(map[int64]string, len(branches))
			for _, b := range branches {
				branchNames[b.ID] = b.Name
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Plate"),
				cli.TableHeaderStyle.Render("VIN"),
				cli.TableHeaderStyle.Render("Make/Model"),
				cli.TableHeaderStyle.Render("Home Branch"))

			for _, v := range vehicles {
				branch := branchNames[v.BranchID]
				if branch == "" {
					branch = "-"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					v.ID, v.Plate, v.VIN,
					strings.TrimSpace(v.Make+" "+v.Model), branch)
			}

			return nil
		},
	}
}

func addVehicleCmd() *cobra.Command {
	var (
		vin       string
		makeName  string
		modelName string
		branchID  int64
	)

	cmd := &cobra.Command{
		Use:   "add <plate>",
		Short: "Add a vehicle to the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if branchID > 0 {
				if _, err := store.GetBranchByID(ctx, branchID); err != nil {
					return fmt.Errorf("branch %d not found: %w", branchID, err)
				}
			}

			vehicle := &model.Vehicle{
				Plate:    args[0],
				VIN:      vin,
				Make:     makeName,
				Model:    modelName,
				BranchID: branchID,
			}
			if err := store.CreateVehicle(ctx, vehicle); err != nil {
				return fmt.Errorf("failed to create vehicle: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Added vehicle %s (id %d)", vehicle.DisplayName(), vehicle.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&vin, "vin", "", "vehicle identification number")
	cmd.Flags().StringVar(&makeName, "make", "", "manufacturer")
	cmd.Flags().StringVar(&modelName, "model", "", "model name")
	cmd.Flags().Int64Var(&branchID, "branch", 0, "home branch id")

	return cmd
}
