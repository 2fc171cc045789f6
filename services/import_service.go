package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sync"

	"agroterms/importer"
)

// maxReportedImportErrors caps the per-row errors returned to the caller.
const maxReportedImportErrors = 10

type ImportService struct {
	terms    *TermService
	themes   *ThemeService
	activity *ActivityService

	// one import at a time per process; the unique index on themes.name_en
	// covers other processes
	mu sync.Mutex
}

func NewImportService(terms *TermService, themes *ThemeService, activity *ActivityService) *ImportService {
	return &ImportService{terms: terms, themes: themes, activity: activity}
}

type ImportRowError struct {
	Row   int               `json:"row"`
	Data  map[string]string `json:"data,omitempty"`
	Error string            `json:"error"`
}

type ImportReport struct {
	Imported int              `json:"imported"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors"`
}

func (r *ImportReport) fail(line int, data map[string]string, err error) {
	r.Failed++
	if len(r.Errors) < maxReportedImportErrors {
		r.Errors = append(r.Errors, ImportRowError{Row: line, Data: data, Error: err.Error()})
	}
}

// Import reads a term CSV and stores every valid row. Invalid rows are
// counted and reported; they never abort the batch.
func (s *ImportService) Import(ctx context.Context, r io.Reader, actor, ip string) (*ImportReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reader, err := importer.NewReader(r)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{Errors: []ImportRowError{}}
	for {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				report.fail(parseErr.Line, nil, err)
				continue
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}

		draft, err := importer.ValidateRow(ctx, row, s.themes)
		if err != nil {
			report.fail(row.Line, row.Fields, err)
			continue
		}

		if !draft.ThemeExists {
			if _, err := s.themes.CreatePlaceholder(ctx, draft.Term.Theme); err != nil {
				report.fail(row.Line, row.Fields, err)
				continue
			}
		}

		term := draft.Term
		term.CreatedBy = actor
		if err := s.terms.createTerm(ctx, &term); err != nil {
			report.fail(row.Line, row.Fields, err)
			continue
		}
		report.Imported++
	}

	if err := s.themes.RecomputeThemeCounts(ctx); err != nil {
		return nil, err
	}

	if s.activity != nil {
		s.activity.Log(ctx, ActivityEntry{
			Action:     "terms_imported",
			EntityType: "term",
			User:       actor,
			IPAddress:  ip,
			Details: map[string]interface{}{
				"imported": report.Imported,
				"failed":   report.Failed,
			},
		})
	}
	return report, nil
}

// Export writes every term as CSV.
func (s *ImportService) Export(ctx context.Context, w io.Writer) error {
	terms, err := s.terms.All(ctx)
	if err != nil {
		return err
	}
	return importer.WriteTerms(w, terms)
}
