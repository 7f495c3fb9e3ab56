package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/fleetledger/fleetledger/internal/model"
)

// OFXExtractor parses OFX/QFX fuel-card and bank statements into candidate
// records. Fuel-card processors put the unit or plate number in the
// transaction name or memo, so the whole text is kept as the vehicle hint
// and left to the matcher's substring rules.
type OFXExtractor struct{}

// NewOFXExtractor creates the OFX statement extractor.
func NewOFXExtractor() *OFXExtractor {
	return &OFXExtractor{}
}

// Extract implements the Extractor contract.
func (e *OFXExtractor) Extract(_ context.Context, path string) Result {
	source := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("%s: failed to open: %v", source, err)}}
	}
	defer func() { _ = f.Close() }()

	return e.extract(f, source)
}

func (e *OFXExtractor) extract(r io.Reader, source string) Result {
	var result Result

	content, err := io.ReadAll(r)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: failed to read: %v", source, err))
		return result
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: failed to parse OFX: %v", source, err))
		return result
	}

	line := 0
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			for _, tx := range stmt.BankTranList.Transactions {
				line++
				result.Records = append(result.Records, e.convert(tx, source, line))
			}
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			for _, tx := range stmt.BankTranList.Transactions {
				line++
				result.Records = append(result.Records, e.convert(tx, source, line))
			}
		}
	}

	if len(result.Records) == 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: no transactions found in statement", source))
	}

	return result
}

// convert maps one statement transaction to a candidate record.
func (e *OFXExtractor) convert(tx ofxgo.Transaction, source string, position int) model.CandidateRecord {
	amount, _ := tx.TrnAmt.Float64()
	if amount < 0 {
		amount = -amount
	}

	text := cleanText(string(tx.Name))
	if tx.Memo != "" {
		text = cleanText(text + " " + string(tx.Memo))
	}

	record := model.CandidateRecord{
		Date:        tx.DtPosted.Time,
		Amount:      amount,
		VehicleText: text,
		Description: text,
		SourceFile:  source,
		LineNumber:  position,
	}

	// Statement type is the only category hint OFX carries.
	switch fmt.Sprintf("%v", tx.TrnType) {
	case "POS", "DEBIT", "PAYMENT":
		record.CategoryText = "Fuel"
	case "FEE":
		record.CategoryText = "Other"
	}

	return record
}

var (
	severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRe  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting issues in bank-exported OFX files:
// mixed-case severity values and SGML-style tags missing their closing
// bracket.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	content = openTagRe.ReplaceAllString(content, "$1>")
	return content
}
