package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"agroterms/models"
)

var ErrMissingColumns = errors.New("csv header must contain term_kaa, term_en and theme")

// ExportColumns is the column order written by WriteTerms.
var ExportColumns = []string{ColTermKaa, ColTermEn, ColDefinitionEn, ColDefinitionKaa, ColTheme}

// Reader yields rows of a term CSV. The first record is the header.
type Reader struct {
	csv    *csv.Reader
	header []string
}

func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingColumns
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	names := make([]string, len(header))
	present := map[string]bool{}
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		names[i] = strings.ToLower(Clean(h))
		present[names[i]] = true
	}
	for _, col := range RequiredColumns {
		if !present[col] {
			return nil, ErrMissingColumns
		}
	}

	return &Reader{csv: cr, header: names}, nil
}

// Next returns the next row, or io.EOF after the last one. Short records are
// padded with empty values so validation can name the absent fields.
func (r *Reader) Next() (Row, error) {
	record, err := r.csv.Read()
	if err != nil {
		return Row{}, err
	}
	line, _ := r.csv.FieldPos(0)

	fields := make(map[string]string, len(r.header))
	for i, name := range r.header {
		if name == "" {
			continue
		}
		if i < len(record) {
			fields[name] = record[i]
		} else {
			fields[name] = ""
		}
	}
	return Row{Line: line, Fields: fields}, nil
}

// WriteTerms writes terms as CSV with a header row.
func WriteTerms(w io.Writer, terms []models.Term) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	for _, t := range terms {
		if err := cw.Write([]string{t.TermKaa, t.TermEn, t.DefinitionEn, t.DefinitionKaa, t.Theme}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
