package importer

import (
	"context"
	"strings"

	"github.com/hokuro/spotd/internal/logging"
	"github.com/hokuro/spotd/internal/spot"
)

// SpotStore is the slice of the spot repository the pipeline consumes:
// a proximity query and an insert. The full Repository satisfies it.
type SpotStore interface {
	ProximityFinder
	Insert(ctx context.Context, c *spot.Candidate) (*spot.Spot, error)
}

// RowError records one failed row: its 1-indexed line number counting the
// header as line 1 (matching how a person counts lines in the file), why
// it failed, and the original fields joined back together for display.
type RowError struct {
	Row     int    `json:"row"`
	Err     string `json:"error"`
	RawData string `json:"rawData"`
}

// Result is the full accounting of one import run. It is immutable once
// returned; the caller owns presentation and any cache invalidation.
type Result struct {
	SuccessCount int        `json:"successCount"`
	Errors       []RowError `json:"errors"`
}

// Importer drives the import pipeline.
type Importer struct {
	store  SpotStore
	policy Policy
}

// New creates an Importer over the given store.
func New(store SpotStore, policy Policy) *Importer {
	return &Importer{store: store, policy: policy}
}

// Run processes an uploaded CSV file in one pass.
//
// Rows are handled strictly sequentially, and each accepted row is
// inserted before the next row's duplicate check begins. That ordering is
// load-bearing: a batch may contain two near-duplicate rows of the same
// new spot, and only sequential execution lets the second row see the
// first row's just-committed insert.
//
// Per-row failures (validation, duplicate, store rejection) become
// RowErrors and never stop the run. The only fatal error is a header row
// matching neither supported convention, returned before any row is
// processed.
func (imp *Importer) Run(ctx context.Context, rawText, actor string) (*Result, error) {
	result := &Result{Errors: []RowError{}}

	rows := Tokenize(rawText)
	if len(rows) < 1 {
		return result, nil
	}

	headers := rows[0]
	schema, err := DetectLocale(headers)
	if err != nil {
		return nil, err
	}

	deduper := NewDeduper(imp.store, imp.policy)
	logger := logging.WithFields(ctx, "locale", string(schema.Locale), "actor", actor)

	for i, row := range rows[1:] {
		// Tokenized index 1..n maps to file line i+2: header is line 1.
		lineNum := i + 2
		raw := strings.Join(row, ",")

		cand, verr := schema.MapRow(headers, row, actor)
		if verr != nil {
			result.Errors = append(result.Errors, RowError{Row: lineNum, Err: verr.Message, RawData: raw})
			continue
		}

		match, err := deduper.Check(ctx, cand)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: lineNum, Err: err.Error(), RawData: raw})
			continue
		}
		if match != nil {
			result.Errors = append(result.Errors, RowError{
				Row:     lineNum,
				Err:     schema.DuplicateMessage(match.Spot.Name, match.DistanceM),
				RawData: raw,
			})
			continue
		}

		if _, err := imp.store.Insert(ctx, cand); err != nil {
			result.Errors = append(result.Errors, RowError{Row: lineNum, Err: err.Error(), RawData: raw})
			continue
		}
		result.SuccessCount++
	}

	logger.Info("import finished",
		"rows", len(rows)-1,
		"inserted", result.SuccessCount,
		"failed", len(result.Errors),
	)
	return result, nil
}
