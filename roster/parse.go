package roster

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/warp/comp-calculator/tabular"
)

// IDGenerator mints record identifiers. Each call must return a new value.
type IDGenerator func() string

type parseOptions struct {
	newID IDGenerator
}

// ParseOption customizes ParseRoster.
type ParseOption func(*parseOptions)

// WithIDGenerator replaces the default random UUID ids.
func WithIDGenerator(gen IDGenerator) ParseOption {
	return func(o *parseOptions) { o.newID = gen }
}

// ParseRoster maps a table onto typed records, one per data row, in row order.
//
// The parse is all-or-nothing: every row is checked, every missing field and
// unparseable required number is collected, and if there is any issue the
// joined error is returned with no records. A literal 0 counts as present;
// only an absent column or an empty cell is missing.
//
// Churn ARR is kept only when it parses to a value strictly greater than zero.
func ParseRoster(t tabular.Table, opts ...ParseOption) ([]Record, error) {
	o := parseOptions{newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}

	if len(t.Rows) == 0 {
		return nil, ErrEmptyRoster
	}

	var (
		records = make([]Record, 0, len(t.Rows))
		issues  []error
	)
	for i := range t.Rows {
		row := i + 1
		rec, rowIssues := parseRow(t, i, row)
		if len(rowIssues) > 0 {
			issues = append(issues, rowIssues...)
			continue
		}
		records = append(records, rec)
	}
	if len(issues) > 0 {
		return nil, errors.Join(issues...)
	}

	// Ids are minted only once the whole batch is known to be valid.
	for i := range records {
		records[i].ID = o.newID()
	}
	return records, nil
}

func parseRow(t tabular.Table, i, row int) (Record, []error) {
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := t.Cell(i, col); !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return Record{}, []error{&MissingFieldError{Row: row, Fields: missing}}
	}

	var issues []error
	number := func(col string) float64 {
		raw, _ := t.Cell(i, col)
		v, ok := parseNumber(raw)
		if !ok {
			issues = append(issues, &InvalidNumberError{Row: row, Field: col, Value: raw})
		}
		return v
	}

	name, _ := t.Cell(i, ColRepName)
	rec := Record{
		Name:               name,
		BookStartARR:       number(ColBookStartARR),
		MinRetentionTarget: number(ColMinRetentionTarget),
		MaxRetentionTarget: number(ColMaxRetentionTarget),
	}
	if raw, ok := t.Cell(i, ColChurnARR); ok {
		if churn, ok := parseNumber(raw); ok && churn > 0 {
			rec.ChurnARR = float64Ptr(churn)
		}
	}
	return rec, issues
}

// parseNumber accepts plain decimals plus the thousands separators and
// currency sign spreadsheets add when a column is formatted as money.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
