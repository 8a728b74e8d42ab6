/*
Package roster applies the retention engine to a team of account managers.

PURPOSE:
  A manager downloads a template, fills one row per rep, uploads it, and gets
  churn budgets and attainment for every rep at once. This package owns the
  typed record, the all-or-nothing parse from a tabular.Table, the batch
  calculation, the template and the results export.

LIFECYCLE:
  1. ParseRoster:  table -> []Record, fresh ids minted in row order
  2. CalculateAll: []Record -> new []Record with results filled in
  3. ExportResults / Summary: render the calculated batch

  The caller owns the slice. Nothing here keeps state between calls, and
  CalculateAll never mutates its input.

BATCH PERMISSIVENESS:
  Batch calculation does not reject rows that would fail single-entity
  validation (churn >= book, inverted band, zero book). It computes anyway
  and attaches Warnings to those rows instead.

SEE ALSO:
  - parse.go:     Header mapping and MissingFieldError
  - calculate.go: Processor and CalculateAll
  - template.go:  GenerateTemplate and ExportResults
  - engine/retention.go: Formulas
*/
package roster

import "time"

// =============================================================================
// COLUMNS
// =============================================================================

// Column headers for import and export. Targets are decimal fractions
// (0.85), not percents.
const (
	ColRepName            = "Rep Name"
	ColBookStartARR       = "Book Start ARR"
	ColMinRetentionTarget = "Min Retention Target"
	ColMaxRetentionTarget = "Max Retention Target"
	ColChurnARR           = "Churn ARR"

	ColMaxQuarterlyChurnAllowed = "Max Quarterly Churn Allowed"
	ColQuarterlyChurnTarget     = "Quarterly Churn Target"
	ColRetentionRate            = "Retention Rate"
	ColAttainment               = "Attainment"
)

// InputColumns are the template columns in order; Churn ARR is optional.
var InputColumns = []string{
	ColRepName,
	ColBookStartARR,
	ColMinRetentionTarget,
	ColMaxRetentionTarget,
	ColChurnARR,
}

// RequiredColumns must be present and non-empty on every row.
var RequiredColumns = []string{
	ColRepName,
	ColBookStartARR,
	ColMinRetentionTarget,
	ColMaxRetentionTarget,
}

// =============================================================================
// RECORD
// =============================================================================

// Record is one rep. Pointer fields are absent until known: ChurnARR only
// when a positive value was uploaded, the budgets after calculation, and
// RetentionRate/Attainment only when churn is present.
type Record struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	BookStartARR       float64  `json:"book_start_arr"`
	MinRetentionTarget float64  `json:"min_retention_target"`
	MaxRetentionTarget float64  `json:"max_retention_target"`
	ChurnARR           *float64 `json:"churn_arr,omitempty"`

	MaxQuarterlyChurnAllowed *float64 `json:"max_quarterly_churn_allowed,omitempty"`
	QuarterlyChurnTarget     *float64 `json:"quarterly_churn_target,omitempty"`
	RetentionRate            *float64 `json:"retention_rate,omitempty"`
	Attainment               *float64 `json:"attainment,omitempty"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// HasChurn reports whether retention metrics can be computed for the record.
func (r Record) HasChurn() bool {
	return r.ChurnARR != nil && *r.ChurnARR > 0
}

// Clone returns a copy that shares no pointers or warnings with r.
func (r Record) Clone() Record {
	r.ChurnARR = clonePtr(r.ChurnARR)
	r.MaxQuarterlyChurnAllowed = clonePtr(r.MaxQuarterlyChurnAllowed)
	r.QuarterlyChurnTarget = clonePtr(r.QuarterlyChurnTarget)
	r.RetentionRate = clonePtr(r.RetentionRate)
	r.Attainment = clonePtr(r.Attainment)
	if r.Warnings != nil {
		r.Warnings = append([]Warning(nil), r.Warnings...)
	}
	return r
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Calculated reports whether the churn budgets have been filled in.
func (r Record) Calculated() bool {
	return r.MaxQuarterlyChurnAllowed != nil && r.QuarterlyChurnTarget != nil
}

// WarningCode identifies a row that batch mode computed despite invalid input.
type WarningCode string

const (
	WarnChurnExceedsBook   WarningCode = "churn_exceeds_book"
	WarnInvertedTargetBand WarningCode = "inverted_target_band"
	WarnTargetOutOfRange   WarningCode = "target_out_of_range"
	WarnZeroBookARR        WarningCode = "zero_book_arr"
)

// Warning is a non-fatal per-row finding.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// =============================================================================
// ROSTER
// =============================================================================

// Roster is an uploaded batch as kept by a Repository between requests.
type Roster struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	Records    []Record  `json:"records"`
	Calculated bool      `json:"calculated"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func float64Ptr(v float64) *float64 {
	return &v
}
