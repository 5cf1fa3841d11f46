// Package validate checks files before they are uploaded.
package validate

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
)

// Ensure Validator implements the interface.
var _ driven.FileValidator = (*Validator)(nil)

// sampleRows is how many CSV rows are checked for a consistent column count.
const sampleRows = 5

// Validator reports warnings for files that are likely to ingest badly.
type Validator struct{}

// New creates a validator.
func New() *Validator {
	return &Validator{}
}

// Validate returns warnings for the file called name. It never rejects a
// file. Warnings do not repeat the file name; callers add it.
func (v *Validator) Validate(name string, content []byte) []string {
	if len(content) == 0 {
		return []string{"file is empty"}
	}

	var warnings []string
	switch domain.ClassifyFilename(name) {
	case domain.ContentTypeCSV:
		if w := checkCSV(content); w != "" {
			warnings = append(warnings, w)
		}
	case domain.ContentTypeText:
		if !utf8.Valid(content) {
			warnings = append(warnings, "not valid UTF-8 text")
		}
	}
	return warnings
}

// checkCSV reads the first rows and reports a column count mismatch.
func checkCSV(content []byte) string {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	want := -1
	for row := 1; row <= sampleRows; row++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Sprintf("unreadable CSV: %v", err)
		}
		if want < 0 {
			want = len(record)
			continue
		}
		if len(record) != want {
			return fmt.Sprintf("row %d has %d columns, expected %d", row, len(record), want)
		}
	}
	return ""
}
