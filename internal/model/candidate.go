package model

import "time"

// CandidateRecord is one extracted, not-yet-reconciled expense observation
// from an uploaded file. Extractors create these once; edits during preview
// live on the PreviewEntry, never here.
//
// A zero Date means extraction could not determine one. Amount is never
// negative; unparseable amounts degrade to 0 with a diagnostic rather than
// dropping the row.
type CandidateRecord struct {
	Date         time.Time
	VehicleText  string
	BranchText   string
	CategoryText string
	Description  string
	SourceFile   string
	Odometer     *int64
	Amount       float64
	LineNumber   int
}

// HasDate reports whether extraction found a usable date.
func (r *CandidateRecord) HasDate() bool {
	return !r.Date.IsZero()
}

// PreviewEntry is a CandidateRecord annotated with matcher-resolved (or
// user-overridden) registry links, plus editable copies of the scalar
// fields. Last edit wins; there is no undo.
type PreviewEntry struct {
	Date        time.Time
	Vehicle     *Vehicle
	Branch      *Branch
	Category    *Category
	Odometer    *int64
	Description string
	Record      CandidateRecord
	Amount      float64
}

// NewPreviewEntry seeds an entry's editable fields from the extracted record.
func NewPreviewEntry(record CandidateRecord) PreviewEntry {
	return PreviewEntry{
		Record:      record,
		Date:        record.Date,
		Amount:      record.Amount,
		Description: record.Description,
		Odometer:    record.Odometer,
	}
}

// Matched reports whether the entry has a resolved vehicle and is therefore
// eligible for commit.
func (e *PreviewEntry) Matched() bool {
	return e.Vehicle != nil
}
