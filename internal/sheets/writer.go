package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/fleetledger/fleetledger/internal/common"
	"github.com/fleetledger/fleetledger/internal/model"
	"github.com/fleetledger/fleetledger/internal/service"
)

// Writer exports expense reports to a Google Sheets spreadsheet.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
	}, nil
}

// Write replaces the spreadsheet contents with the given expenses and summary.
func (w *Writer) Write(ctx context.Context, expenses []model.Expense, snapshot *model.ReferenceSnapshot, summary *service.ReportSummary) error {
	w.logger.Info("starting report export",
		"expenses", len(expenses),
		"date_range", fmt.Sprintf("%s to %s",
			summary.DateRange.Start.Format("2006-01-02"),
			summary.DateRange.End.Format("2006-01-02")))

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	if clearErr := w.clearSheet(ctx, spreadsheetID); clearErr != nil {
		return fmt.Errorf("failed to clear sheet: %w", clearErr)
	}

	values := w.prepareReportData(expenses, snapshot, summary)

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	err = common.WithRetry(ctx, func() error {
		return w.writeData(ctx, spreadsheetID, values)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.applyFormatting(ctx, spreadsheetID, len(values))
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("report export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return nil
}

// createSheetsService builds the API client from either a service account
// key or an OAuth2 refresh token.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet verifies the configured spreadsheet is reachable, or
// creates a new one when no ID is configured.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		_, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{
				Properties: &sheets.SheetProperties{
					Title: "Expenses",
				},
			},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// prepareReportData lays out the report: title, summary, category and branch
// breakdowns, then one row per expense.
func (w *Writer) prepareReportData(expenses []model.Expense, snapshot *model.ReferenceSnapshot, summary *service.ReportSummary) [][]any {
	estimatedRows := 15 + len(summary.ByCategory) + len(summary.ByBranch) + len(expenses)
	values := make([][]any, 0, estimatedRows)

	values = append(values,
		[]any{
			"Fleet Expense Report",
			fmt.Sprintf("%s - %s",
				summary.DateRange.Start.Format("Jan 2, 2006"),
				summary.DateRange.End.Format("Jan 2, 2006")),
		},
		[]any{},
		[]any{"Summary"},
		[]any{"Total Amount", summary.TotalAmount},
		[]any{"Total Expenses", summary.Count},
		[]any{},
		[]any{"Category Breakdown"},
		[]any{"Category", "Amount"},
	)
	values = append(values, sortedBreakdown(summary.ByCategory)...)

	values = append(values,
		[]any{},
		[]any{"Branch Breakdown"},
		[]any{"Branch", "Amount"},
	)
	values = append(values, sortedBreakdown(summary.ByBranch)...)

	values = append(values,
		[]any{},
		[]any{"Expense Details"},
		[]any{"Date", "Vehicle", "Branch", "Category", "Amount", "Odometer", "Description"},
	)

	sorted := make([]model.Expense, len(expenses))
	copy(sorted, expenses)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	for _, expense := range sorted {
		vehicle := ""
		if v := snapshot.VehicleByID(expense.VehicleID); v != nil {
			vehicle = v.DisplayName()
		}
		branch := ""
		if expense.BranchID != nil {
			if b := snapshot.BranchByID(*expense.BranchID); b != nil {
				branch = b.Name
			}
		}
		category := ""
		if expense.CategoryID != nil {
			if c := snapshot.CategoryByID(*expense.CategoryID); c != nil {
				category = c.Name
			}
		}
		odometer := any("")
		if expense.Odometer != nil {
			odometer = *expense.Odometer
		}

		values = append(values, []any{
			expense.Date.Format("2006-01-02"),
			vehicle,
			branch,
			category,
			expense.Amount,
			odometer,
			expense.Description,
		})
	}

	return values
}

// sortedBreakdown renders a name->amount map as rows sorted by amount
// descending.
func sortedBreakdown(breakdown map[string]float64) [][]any {
	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return breakdown[names[i]] > breakdown[names[j]]
	})

	rows := make([][]any, 0, len(names))
	for _, name := range names {
		rows = append(rows, []any{name, breakdown[name]})
	}
	return rows
}

// writeData writes the rows in batches to stay under API limits.
func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := i + w.config.BatchSize
		if end > len(values) {
			end = len(values)
		}

		valueRange := &sheets.ValueRange{Values: values[i:end]}
		rangeStr := fmt.Sprintf("A%d", i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", end-i)
	}

	return nil
}

// applyFormatting bolds the title and section headers, formats the amount
// column as currency, and freezes the header rows.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, totalRows int) error {
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   2,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{
							Bold:     true,
							FontSize: 16,
						},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    2,
					EndRowIndex:      int64(totalRows),
					StartColumnIndex: 0,
					EndColumnIndex:   1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{
							Bold: true,
						},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    0,
					EndRowIndex:      int64(totalRows),
					StartColumnIndex: 4,
					EndColumnIndex:   5,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{
							Type:    "CURRENCY",
							Pattern: "$#,##0.00",
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    0,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   7,
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: 0,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 2,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}
