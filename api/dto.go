/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Engine result types are
  returned as-is with full precision; each response adds a Display block with
  the rounded strings the UI shows, so the browser never re-implements
  rounding.

NAMING CONVENTION:
  - *Request:  Request body types from clients
  - *Response: Response wrappers
  - *DTO:      Nested response types

TYPES:
  Calculators:
    AttainmentRequest, AttainmentResponse
    RetentionResponse (request body is engine.RetentionInput)
    QuotaMixResponse (request body is factory.QuotaConfig)

  Session:
    SessionResponse

  Rosters:
    RosterDTO

VALIDATION:
  Validation is done in handlers and the engine, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - format/format.go: Display strings
*/
package api

import (
	"time"

	"github.com/warp/comp-calculator/engine"
	"github.com/warp/comp-calculator/format"
	"github.com/warp/comp-calculator/roster"
	"github.com/warp/comp-calculator/session"
)

// =============================================================================
// CALCULATOR TYPES
// =============================================================================

// AttainmentRequest uses pointers so a missing field is distinguishable from 0.
type AttainmentRequest struct {
	Actual *float64 `json:"actual"`
	Target *float64 `json:"target"`
}

type AttainmentResponse struct {
	engine.AttainmentResult
	Display AttainmentDisplayDTO `json:"display"`
}

type AttainmentDisplayDTO struct {
	Percentage string `json:"percentage"`
	Remaining  string `json:"remaining"`
}

func newAttainmentResponse(res engine.AttainmentResult) AttainmentResponse {
	return AttainmentResponse{
		AttainmentResult: res,
		Display: AttainmentDisplayDTO{
			Percentage: format.Points(res.Percentage),
			Remaining:  format.USD(res.Remaining),
		},
	}
}

type RetentionResponse struct {
	engine.RetentionResult
	Display RetentionDisplayDTO `json:"display"`
}

type RetentionDisplayDTO struct {
	RetentionRate            string `json:"retention_rate"`
	Attainment               string `json:"attainment"`
	MaxQuarterlyChurnAllowed string `json:"max_quarterly_churn_allowed"`
	QuarterlyChurnTarget     string `json:"quarterly_churn_target"`
}

func newRetentionResponse(res engine.RetentionResult) RetentionResponse {
	return RetentionResponse{
		RetentionResult: res,
		Display: RetentionDisplayDTO{
			RetentionRate:            format.Percent(res.RetentionRate),
			Attainment:               format.Percent(res.Attainment),
			MaxQuarterlyChurnAllowed: format.USD(res.MaxQuarterlyChurnAllowed),
			QuarterlyChurnTarget:     format.USD(res.QuarterlyChurnTarget),
		},
	}
}

type QuotaMixResponse struct {
	Input   engine.QuotaMixInput  `json:"input"`
	Result  engine.QuotaMixResult `json:"result"`
	Display QuotaMixDisplayDTO    `json:"display"`
}

// QuotaMixDisplayDTO renders in rupees, the currency of the quota form.
type QuotaMixDisplayDTO struct {
	FixedComponent           string `json:"fixed_component"`
	VariableComponent        string `json:"variable_component"`
	QuarterlyVariable        string `json:"quarterly_variable"`
	QuarterlyRetentionBucket string `json:"quarterly_retention_bucket"`
	QuarterlyExpansionBucket string `json:"quarterly_expansion_bucket"`
}

func newQuotaMixResponse(in engine.QuotaMixInput, res engine.QuotaMixResult) QuotaMixResponse {
	return QuotaMixResponse{
		Input:  in,
		Result: res,
		Display: QuotaMixDisplayDTO{
			FixedComponent:           format.INRDecimal(res.FixedComponent),
			VariableComponent:        format.INRDecimal(res.VariableComponent),
			QuarterlyVariable:        format.INRDecimal(res.QuarterlyVariable),
			QuarterlyRetentionBucket: format.INRDecimal(res.QuarterlyRetentionBucket),
			QuarterlyExpansionBucket: format.INRDecimal(res.QuarterlyExpansionBucket),
		},
	}
}

// =============================================================================
// SESSION TYPES
// =============================================================================

// SessionResponse pairs the stored inputs with freshly computed outputs.
type SessionResponse struct {
	State   session.State   `json:"state"`
	Results session.Results `json:"results"`
}

// =============================================================================
// ROSTER TYPES
// =============================================================================

type RosterDTO struct {
	ID         string          `json:"id"`
	FileName   string          `json:"file_name"`
	Calculated bool            `json:"calculated"`
	UploadedAt string          `json:"uploaded_at"`
	Records    []roster.Record `json:"records"`
}

func toRosterDTO(r roster.Roster) RosterDTO {
	records := r.Records
	if records == nil {
		records = []roster.Record{}
	}
	return RosterDTO{
		ID:         r.ID,
		FileName:   r.FileName,
		Calculated: r.Calculated,
		UploadedAt: r.UploadedAt.Format(time.RFC3339),
		Records:    records,
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response. Violations lists each
// validation failure separately when there is more than one.
type ErrorResponse struct {
	Error      string   `json:"error"`
	Code       string   `json:"code,omitempty"`
	Details    any      `json:"details,omitempty"`
	Violations []string `json:"violations,omitempty"`
}
