// Package importer turns CSV rows into term drafts for the bulk import.
package importer

import (
	"context"
	"fmt"
	"strings"

	"agroterms/models"
)

const (
	ColTermKaa       = "term_kaa"
	ColTermEn        = "term_en"
	ColTheme         = "theme"
	ColDefinitionEn  = "definition_en"
	ColDefinitionKaa = "definition_kaa"
)

// RequiredColumns must be present and non-empty on every row.
var RequiredColumns = []string{ColTermKaa, ColTermEn, ColTheme}

// ThemeChecker reports whether a theme with the given English name exists.
type ThemeChecker interface {
	Exists(ctx context.Context, name string) (bool, error)
}

// Row is one CSV record keyed by lower-cased header name.
type Row struct {
	Line   int
	Fields map[string]string
}

// Draft is a validated, normalized term that has not been stored yet.
type Draft struct {
	Term models.Term
	// ThemeExists is false when the caller must create the theme first.
	ThemeExists bool
}

type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// ValidateRow normalizes row and checks its required fields. The theme lookup
// runs on every call; earlier rows of the same batch may have created it.
func ValidateRow(ctx context.Context, row Row, themes ThemeChecker) (Draft, error) {
	values := make(map[string]string, len(row.Fields))
	for k, v := range row.Fields {
		values[k] = Clean(v)
	}

	var missing []string
	for _, col := range RequiredColumns {
		if values[col] == "" {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return Draft{}, &MissingFieldError{Fields: missing}
	}

	term := models.Term{
		TermKaa:       values[ColTermKaa],
		TermEn:        values[ColTermEn],
		Theme:         values[ColTheme],
		DefinitionEn:  values[ColDefinitionEn],
		DefinitionKaa: values[ColDefinitionKaa],
	}
	if term.DefinitionEn == "" {
		term.DefinitionEn = models.PlaceholderDefinition
	}

	exists, err := themes.Exists(ctx, term.Theme)
	if err != nil {
		return Draft{}, fmt.Errorf("check theme %q: %w", term.Theme, err)
	}

	return Draft{Term: term, ThemeExists: exists}, nil
}

// Clean trims whitespace and surrounding double quotes. The ASCII apostrophe
// is a letter in Karakalpak Latin script and is left alone.
func Clean(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, "\"“”«»")
	return strings.TrimSpace(v)
}
