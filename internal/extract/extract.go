// Package extract turns uploaded files into candidate expense records.
//
// Extractors never fail hard on malformed content: anything that cannot be
// parsed degrades into a diagnostic string in Result.Errors and extraction
// continues with partial results.
package extract

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fleetledger/fleetledger/internal/model"
)

// Result is the shared output contract of all extractor variants.
type Result struct {
	Records []model.CandidateRecord
	Errors  []string
}

// merge appends another result's records and errors in order.
func (r *Result) merge(other Result) {
	r.Records = append(r.Records, other.Records...)
	r.Errors = append(r.Errors, other.Errors...)
}

// Extractor converts one file into candidate records plus diagnostics.
type Extractor interface {
	Extract(ctx context.Context, path string) Result
}

// Registry routes files to an extractor by extension. Unknown extensions are
// silently skipped; routing is by extension only, never by sniffing content.
type Registry map[string]Extractor

// DefaultRegistry returns the standard extension dispatch table.
func DefaultRegistry() Registry {
	return Registry{
		".csv": NewCSVExtractor(),
		".pdf": NewDocumentExtractor(),
		".ofx": NewOFXExtractor(),
		".qfx": NewOFXExtractor(),
	}
}

// ExtractAll runs every file through the registry, concatenating records and
// errors in file-processing order.
func (reg Registry) ExtractAll(ctx context.Context, paths []string) Result {
	var combined Result
	for _, path := range paths {
		ext := strings.ToLower(filepath.Ext(path))
		extractor, ok := reg[ext]
		if !ok {
			slog.Debug("skipping file with unsupported extension", "file", path)
			continue
		}

		result := extractor.Extract(ctx, path)
		slog.Info("extracted file",
			"file", filepath.Base(path),
			"records", len(result.Records),
			"errors", len(result.Errors))
		combined.merge(result)
	}
	return combined
}
