package services

import (
	"context"
	"errors"
	"testing"

	"agroterms/models"
)

func TestTermCreateDefaultsAndTheme(t *testing.T) {
	s := newTestServices(t)

	term := s.seedTerm(t, " Biyday ", "Wheat", "Crops")
	if term.TermKaa != "Biyday" {
		t.Fatalf("TermKaa = %q, want trimmed", term.TermKaa)
	}
	if term.DefinitionEn != models.PlaceholderDefinition {
		t.Fatalf("DefinitionEn = %q, want placeholder", term.DefinitionEn)
	}
	if term.CreatedBy != "tester" {
		t.Fatalf("CreatedBy = %q", term.CreatedBy)
	}
	theme := s.theme(t, "Crops")
	if theme.Description != models.AutoCreatedThemeNote || theme.TermsCount != 1 {
		t.Fatalf("auto-created theme = %+v", theme)
	}
}

func TestTermCreateRejectsBlankFields(t *testing.T) {
	s := newTestServices(t)
	_, err := s.terms.Create(context.Background(), "tester", &TermRequest{TermKaa: "  ", TermEn: "Wheat", Theme: "Crops"})
	if !errors.Is(err, ErrEmptyField) {
		t.Fatalf("err = %v, want ErrEmptyField", err)
	}
}

func TestTermListFiltersAndPaginates(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	s.seedTerm(t, "Biyday", "Wheat", "Crops")
	s.seedTerm(t, "Arpa", "Barley", "Crops")
	s.seedTerm(t, "Mákke", "Corn", "Crops")
	s.seedTerm(t, "Suw", "Water", "Irrigation")

	tests := []struct {
		name      string
		filter    TermFilter
		wantTotal int64
		wantLen   int
		wantFirst string
		wantPages int
	}{
		{"all", TermFilter{Limit: 50}, 4, 4, "Arpa", 1},
		{"theme", TermFilter{Limit: 50, Theme: "Crops"}, 3, 3, "Arpa", 1},
		{"theme all", TermFilter{Limit: 50, Theme: "all"}, 4, 4, "Arpa", 1},
		{"search is case-insensitive", TermFilter{Limit: 50, Search: "WHE"}, 1, 1, "Biyday", 1},
		{"second page", TermFilter{Page: 2, Limit: 3}, 4, 1, "Suw", 2},
		{"sort desc", TermFilter{Limit: 50, SortBy: "term_en", Order: "desc"}, 4, 4, "Biyday", 1},
		{"unknown sort falls back", TermFilter{Limit: 50, SortBy: "id; DROP TABLE terms"}, 4, 4, "Arpa", 1},
		{"no limit", TermFilter{}, 4, 4, "Arpa", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.terms.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if page.Total != tt.wantTotal || len(page.Data) != tt.wantLen || page.TotalPages != tt.wantPages {
				t.Fatalf("total=%d len=%d pages=%d, want %d/%d/%d", page.Total, len(page.Data), page.TotalPages, tt.wantTotal, tt.wantLen, tt.wantPages)
			}
			if page.Data[0].TermKaa != tt.wantFirst {
				t.Fatalf("first = %q, want %q", page.Data[0].TermKaa, tt.wantFirst)
			}
		})
	}
}

func TestTermViewCountsReads(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	term := s.seedTerm(t, "Biyday", "Wheat", "Crops")

	for i := 0; i < 2; i++ {
		if _, err := s.terms.View(ctx, term.ID); err != nil {
			t.Fatalf("View: %v", err)
		}
	}
	got, _ := s.terms.Get(ctx, term.ID)
	if got.Views != 2 {
		t.Fatalf("Views = %d, want 2", got.Views)
	}

	if _, err := s.terms.View(ctx, 999); !errors.Is(err, ErrTermNotFound) {
		t.Fatalf("View missing err = %v", err)
	}
}

func TestTermFavoriteNeverNegative(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	term := s.seedTerm(t, "Biyday", "Wheat", "Crops")

	got, err := s.terms.Favorite(ctx, term.ID, -1)
	if err != nil {
		t.Fatalf("Favorite: %v", err)
	}
	if got.FavoritesCount != 0 {
		t.Fatalf("FavoritesCount = %d, want 0", got.FavoritesCount)
	}
	got, _ = s.terms.Favorite(ctx, term.ID, 1)
	if got.FavoritesCount != 1 {
		t.Fatalf("FavoritesCount = %d, want 1", got.FavoritesCount)
	}
}

func TestTermUpdateMovesThemeCounts(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	term := s.seedTerm(t, "Biyday", "Wheat", "Crops")

	_, err := s.terms.Update(ctx, term.ID, &TermRequest{TermKaa: "Biyday", TermEn: "Wheat", Theme: "Grains", DefinitionEn: "A cereal"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := s.theme(t, "Crops").TermsCount; got != 0 {
		t.Fatalf("Crops terms_count = %d, want 0", got)
	}
	if got := s.theme(t, "Grains").TermsCount; got != 1 {
		t.Fatalf("Grains terms_count = %d, want 1", got)
	}
}

func TestFetchCandidatesHonorsTheme(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	s.seedTerm(t, "Biyday", "Wheat", "Crops")
	s.seedTerm(t, "Arpa", "Barley", "Crops")
	s.seedTerm(t, "Suw", "Water", "Irrigation")

	terms, err := s.terms.FetchCandidates(ctx, "Crops", 10)
	if err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	if len(terms) != 2 {
		t.Fatalf("got %d candidates, want 2", len(terms))
	}
	for _, term := range terms {
		if term.Theme != "Crops" {
			t.Fatalf("candidate from theme %q", term.Theme)
		}
	}

	all, _ := s.terms.FetchCandidates(ctx, "all", 2)
	if len(all) != 2 {
		t.Fatalf("limit not applied: %d", len(all))
	}
}
