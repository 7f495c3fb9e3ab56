package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/fleetledger/fleetledger/internal/model"
)

// DocumentExtractor is the heuristic-text extractor variant for
// loosely-structured documents such as scanned work orders rendered as plain
// text. It is a best-effort scanner with a fixed rule order, not a parser:
// it guarantees graceful degradation (zero panics, explicit warnings for
// missing critical fields), never correctness.
//
// Rules, applied line by line within a record's span:
//   - a work-order/invoice/service marker starts a new record
//   - the first date-like token sets the date
//   - the first 17-character VIN-shaped token sets the vehicle
//   - the largest currency number on a line containing total/amount/cost
//     sets the amount
//   - an integer on a line mentioning odometer/mileage/km sets the odometer,
//     constrained to [100, 999999]
//   - lines of length 10-200 that are not page markers or section rules
//     accumulate into the description
//
// A record is emitted only once it has a positive amount.
type DocumentExtractor struct {
	render TextRenderer
}

// TextRenderer flattens a document file into plain text. The default renders
// PDFs; tests substitute their own.
type TextRenderer func(path string) (string, error)

// NewDocumentExtractor creates the heuristic-text extractor with the default
// PDF text renderer.
func NewDocumentExtractor() *DocumentExtractor {
	return &DocumentExtractor{render: renderPDFText}
}

// NewDocumentExtractorWithRenderer creates the extractor with a custom renderer.
func NewDocumentExtractorWithRenderer(render TextRenderer) *DocumentExtractor {
	return &DocumentExtractor{render: render}
}

var (
	markerRe   = regexp.MustCompile(`(?i)\b(work\s*order|invoice|service\s+order|repair\s+order)\b`)
	dateRe     = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4}|\d{1,2}-\d{1,2}-\d{4})\b`)
	vinRe      = regexp.MustCompile(`\b[A-HJ-NPR-Z0-9]{17}\b`)
	currencyRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?`)
	amountCtx  = regexp.MustCompile(`(?i)\b(total|amount|cost)\b`)
	odoCtx     = regexp.MustCompile(`(?i)\b(odometer|mileage|km)\b`)
	odoValueRe = regexp.MustCompile(`\b\d{3,6}\b`)
	pageRe     = regexp.MustCompile(`(?i)^\s*page\s+\d+(\s+of\s+\d+)?\s*$|^\s*\d+\s+of\s+\d+\s*$`)
	ruleRe     = regexp.MustCompile(`^[-=_*\s]{3,}$`)
)

// Extract implements the Extractor contract.
func (e *DocumentExtractor) Extract(_ context.Context, path string) Result {
	source := filepath.Base(path)

	text, err := e.render(path)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("%s: failed to read document: %v", source, err)}}
	}

	return e.scan(text, source)
}

// docRecord accumulates one work order's fields while scanning its span.
type docRecord struct {
	record    model.CandidateRecord
	descLines []string
	startLine int
	active    bool
}

func (e *DocumentExtractor) scan(text, source string) Result {
	var result Result
	var current docRecord

	lines := strings.Split(text, "\n")

	flush := func() {
		if !current.active {
			return
		}
		if current.record.Amount > 0 {
			current.record.Description = cleanText(strings.Join(current.descLines, " "))
			result.Records = append(result.Records, current.record)
			if !current.record.HasDate() {
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s line %d: work order has no parseable date", source, current.startLine))
			}
			if current.record.VehicleText == "" {
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s line %d: work order has no identifiable vehicle", source, current.startLine))
			}
		}
		current = docRecord{}
	}

	for i, rawLine := range lines {
		lineNum := i + 1
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		if markerRe.MatchString(line) {
			flush()
			current = docRecord{
				active:    true,
				startLine: lineNum,
				record: model.CandidateRecord{
					SourceFile: source,
					LineNumber: lineNum,
				},
			}
		}
		if !current.active {
			continue
		}

		if !current.record.HasDate() {
			if m := dateRe.FindString(line); m != "" {
				if date, err := parseFlexibleDate(m); err == nil {
					current.record.Date = date
				}
			}
		}

		if current.record.VehicleText == "" {
			if m := vinRe.FindString(strings.ToUpper(line)); m != "" {
				current.record.VehicleText = m
			}
		}

		if amountCtx.MatchString(line) {
			for _, m := range currencyRe.FindAllString(line, -1) {
				if v, err := parseAmount(m); err == nil && v > current.record.Amount {
					current.record.Amount = v
				}
			}
		}

		if current.record.Odometer == nil && odoCtx.MatchString(line) {
			for _, m := range odoValueRe.FindAllString(line, -1) {
				if v, err := strconv.ParseInt(m, 10, 64); err == nil && v >= 100 && v <= 999999 {
					current.record.Odometer = &v
					break
				}
			}
		}

		if n := len(line); n >= 10 && n <= 200 && !pageRe.MatchString(line) && !isSectionHeader(line) && !ruleRe.MatchString(line) {
			current.descLines = append(current.descLines, line)
		}
	}
	flush()

	if len(result.Records) == 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: no valid work orders found", source))
	}

	return result
}

// isSectionHeader treats short all-caps lines as layout, not content.
func isSectionHeader(line string) bool {
	if len(line) > 40 {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}
