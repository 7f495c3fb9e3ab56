package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fleetledger/fleetledger/internal/model"
)

// CSVExtractor is the delimited-text extractor variant. The first row is a
// header naming the columns (Date, Vehicle, Branch, Category, Amount,
// Description, Odometer) in any order; every following row becomes one
// candidate record. Rows degrade instead of dropping: an unparseable amount
// or date leaves the field zeroed and adds a line-tagged diagnostic.
type CSVExtractor struct{}

// NewCSVExtractor creates the delimited-text extractor.
func NewCSVExtractor() *CSVExtractor {
	return &CSVExtractor{}
}

// columnIndexes maps known header names to their positions. -1 means absent.
type columnIndexes struct {
	date        int
	vehicle     int
	branch      int
	category    int
	amount      int
	description int
	odometer    int
}

func resolveColumns(header []string) columnIndexes {
	cols := columnIndexes{
		date: -1, vehicle: -1, branch: -1, category: -1,
		amount: -1, description: -1, odometer: -1,
	}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			cols.date = i
		case "vehicle":
			cols.vehicle = i
		case "branch":
			cols.branch = i
		case "category":
			cols.category = i
		case "amount":
			cols.amount = i
		case "description":
			cols.description = i
		case "odometer":
			cols.odometer = i
		}
	}
	return cols
}

// Extract implements the Extractor contract.
func (e *CSVExtractor) Extract(ctx context.Context, path string) Result {
	f, err := os.Open(path)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("%s: failed to open: %v", filepath.Base(path), err)}}
	}
	defer func() { _ = f.Close() }()

	return e.extract(ctx, f, filepath.Base(path))
}

func (e *CSVExtractor) extract(ctx context.Context, r io.Reader, sourceFile string) Result {
	var result Result

	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: file is empty", sourceFile))
		return result
	}
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: failed to read header: %v", sourceFile, err))
		return result
	}

	cols := resolveColumns(header)

	lineNum := 1
	for {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: extraction canceled at line %d", sourceFile, lineNum))
			return result
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s line %d: %v", sourceFile, lineNum, err))
			continue
		}
		if isBlankRow(row) {
			continue
		}

		record, rowErrs := e.parseRow(row, cols, sourceFile, lineNum)
		result.Records = append(result.Records, record)
		result.Errors = append(result.Errors, rowErrs...)
	}

	if len(result.Records) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: file has no data rows", sourceFile))
	}

	return result
}

// parseRow builds one candidate record from a data row. Unparseable critical
// fields are zeroed rather than dropping the row.
func (e *CSVExtractor) parseRow(row []string, cols columnIndexes, sourceFile string, lineNum int) (model.CandidateRecord, []string) {
	var errs []string

	record := model.CandidateRecord{
		SourceFile:   sourceFile,
		LineNumber:   lineNum,
		VehicleText:  cleanText(cell(row, cols.vehicle)),
		BranchText:   cleanText(cell(row, cols.branch)),
		CategoryText: cleanText(cell(row, cols.category)),
		Description:  cleanText(cell(row, cols.description)),
	}

	if raw := cell(row, cols.date); raw != "" {
		date, err := parseFlexibleDate(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s line %d: invalid date %q", sourceFile, lineNum, raw))
		} else {
			record.Date = date
		}
	} else {
		errs = append(errs, fmt.Sprintf("%s line %d: missing date", sourceFile, lineNum))
	}

	if raw := cell(row, cols.amount); raw != "" {
		amount, err := parseAmount(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s line %d: invalid amount %q", sourceFile, lineNum, raw))
		} else {
			record.Amount = amount
		}
	} else {
		errs = append(errs, fmt.Sprintf("%s line %d: missing amount", sourceFile, lineNum))
	}

	if raw := cell(row, cols.odometer); raw != "" {
		odo, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
		if err != nil || odo < 0 {
			errs = append(errs, fmt.Sprintf("%s line %d: invalid odometer %q", sourceFile, lineNum, raw))
		} else {
			record.Odometer = &odo
		}
	}

	return record, errs
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
