package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fleetledger/fleetledger/internal/cli"
	"github.com/fleetledger/fleetledger/internal/extract"
	"github.com/fleetledger/fleetledger/internal/reconcile"
	"github.com/fleetledger/fleetledger/internal/tui"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import expense records from spreadsheets and scanned documents",
		Long: `Import historical expense records from delimited spreadsheet exports
(.csv), scanned work order documents (.pdf), and fuel card statements
(.ofx/.qfx).

Extracted records are matched against the vehicle registry and presented
for review before anything is written. Records without a matched vehicle
are skipped at commit time.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("review", "cli", "review mode: tui, cli, or none")
	cmd.Flags().Bool("dry-run", false, "extract and match without writing anything")

	_ = viper.BindPFlag("import.review", cmd.Flags().Lookup("review"))
	_ = viper.BindPFlag("import.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	files, err := expandFileArgs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no input files found")
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	var reviewer reconcile.Reviewer
	switch mode := viper.GetString("import.review"); mode {
	case "tui":
		reviewer = tui.Reviewer{}
	case "cli":
		reviewer = cli.NewPrompter(os.Stdin, os.Stdout)
	case "none":
		reviewer = reconcile.AutoApprove{}
	default:
		return fmt.Errorf("invalid review mode %q (want tui, cli, or none)", mode)
	}

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan]Importing expenses...[reset]"),
				progressbar.OptionOnCompletion(func() {
					_, _ = fmt.Fprintln(os.Stderr)
				}),
			)
		}
		_ = bar.Set(done)
	}

	engine := reconcile.New(store, extract.DefaultRegistry(), reviewer, progress)

	result, err := engine.Run(ctx, files, reconcile.Options{
		DryRun: viper.GetBool("import.dry_run"),
	})
	if result != nil {
		for _, warning := range result.Warnings {
			fmt.Println(cli.FormatWarning(warning))
		}
	}
	if err != nil {
		return err
	}

	if !result.Committed {
		fmt.Println(cli.FormatWarning(fmt.Sprintf(
			"Nothing imported (%d records extracted)", result.Extracted)))
		return nil
	}

	summary := result.Summary
	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Imported %d expense(s), %d failed, %d skipped as unmatched",
		summary.Imported, summary.Failed, result.Extracted-summary.Total())))

	return nil
}

// expandFileArgs resolves glob patterns and deduplicates the resulting paths.
func expandFileArgs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid file pattern %q: %w", arg, err)
		}
		if matches == nil {
			// Not a pattern; keep the literal path so extraction reports
			// the missing file.
			matches = []string{arg}
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				files = append(files, match)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}
