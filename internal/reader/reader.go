// Package reader turns annotated specification workbooks into sentence records.
package reader

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/speclens/internal/keyword"
	"github.com/ppiankov/speclens/internal/model"
)

// Reader reads one sheet of an annotated workbook
type Reader struct {
	sheet   string
	columns model.ColumnConfig
}

// NewReader creates a reader for the given sheet and column layout
func NewReader(sheet string, columns model.ColumnConfig) *Reader {
	return &Reader{
		sheet:   sheet,
		columns: columns,
	}
}

// FormatVersion changes whenever parsing or keyword normalization changes the records
// produced from the same workbook
const FormatVersion = 2

// Fingerprint identifies everything that shapes the records read from a workbook:
// the format version, the sheet and every configured column header
func (r *Reader) Fingerprint() string {
	fields := []string{
		"v" + strconv.Itoa(FormatVersion),
		r.sheet,
		r.columns.Sentence,
		r.columns.Label,
	}
	for _, c := range model.TrackedCategories {
		fields = append(fields, r.columns.Category(c))
	}
	return strings.Join(fields, "\x00")
}

// ReadFile opens a workbook and parses its configured sheet
func (r *Reader) ReadFile(ctx context.Context, path string) ([]model.Sentence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", r.sheet, err)
	}

	return r.ParseRows(rows)
}

// layout is the resolved column index of every field
type layout struct {
	sentence int
	label    int
	keywords [model.TrackedCategoryCount]int
}

// ParseRows converts a header row followed by data rows into sentences.
// Rows without sentence text are skipped; a label other than 0 or 1 is an error.
func (r *Reader) ParseRows(rows [][]string) ([]model.Sentence, error) {
	if len(rows) == 0 {
		return []model.Sentence{}, nil
	}

	cols, err := r.resolve(rows[0])
	if err != nil {
		return nil, err
	}

	sentences := make([]model.Sentence, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header

		text := normalizeText(cell(row, cols.sentence))
		if text == "" {
			continue
		}

		rule, err := parseLabel(cell(row, cols.label))
		if err != nil {
			return nil, &model.InvalidRowError{Row: rowNum, Reason: err.Error()}
		}

		s := model.Sentence{Text: text, Rule: rule}
		for c, idx := range cols.keywords {
			s.Keywords[c] = SplitKeywords(cell(row, idx))
		}
		sentences = append(sentences, s)
	}

	return sentences, nil
}

func (r *Reader) resolve(header []string) (layout, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}

	find := func(name string) (int, error) {
		if idx, ok := index[strings.ToLower(strings.TrimSpace(name))]; ok && name != "" {
			return idx, nil
		}
		return 0, &model.MissingColumnError{Column: name, Sheet: r.sheet}
	}

	var l layout
	var err error
	if l.sentence, err = find(r.columns.Sentence); err != nil {
		return l, err
	}
	if l.label, err = find(r.columns.Label); err != nil {
		return l, err
	}
	for i, c := range model.TrackedCategories {
		if l.keywords[i], err = find(r.columns.Category(c)); err != nil {
			return l, err
		}
	}
	return l, nil
}

// SplitKeywords splits a keyword cell on ';', '|', newlines and commas, then normalizes
// every piece. A comma between two digits belongs to a number and does not split.
func SplitKeywords(value string) []string {
	runes := []rune(value)
	var pieces []string
	var current strings.Builder

	flush := func() {
		if kw := keyword.Normalize(current.String()); kw != "" {
			pieces = append(pieces, kw)
		}
		current.Reset()
	}

	for i, r := range runes {
		switch r {
		case ';', '|', '\n', '\r':
			flush()
		case ',':
			if i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
				current.WriteRune(r)
				continue
			}
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	if pieces == nil {
		return []string{}
	}
	return pieces
}

func parseLabel(value string) (bool, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return false, fmt.Errorf("missing label")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return false, fmt.Errorf("label %q is not a number", v)
	}
	switch f {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("label %q must be 0 or 1", v)
	}
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
