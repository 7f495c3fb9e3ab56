package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fleetledger/fleetledger/internal/cli"
	"github.com/fleetledger/fleetledger/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}

	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authSheetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets",
		Short: "Authorize Google Sheets access for report export",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			clientID := viper.GetString("sheets.client_id")
			clientSecret := viper.GetString("sheets.client_secret")
			if clientID == "" {
				clientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
			}
			if clientSecret == "" {
				clientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
			}
			if clientID == "" || clientSecret == "" {
				return fmt.Errorf("sheets.client_id and sheets.client_secret must be configured")
			}

			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}

			token, err := sheets.GetOrCreateToken(ctx, sheets.OAuth2Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				TokenFile:    filepath.Join(home, ".config", "fleet", "sheets-token.json"),
			})
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Google Sheets access authorized"))
			if token.RefreshToken != "" {
				fmt.Println(cli.SubtleStyle.Render(
					"Add the refresh token to your config as sheets.refresh_token to skip the browser flow."))
			}
			return nil
		},
	}
}
