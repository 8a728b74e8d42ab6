/*
handlers.go - HTTP API handlers for the compensation calculators

PURPOSE:
  Exposes the calculation engine via REST API. Handles HTTP request/response,
  JSON serialization, file upload and download, and delegates to the engine.

ENDPOINTS:
  Calculators:
    POST   /api/attainment                  Actual vs target percentage and level
    POST   /api/retention                   Retention rate, attainment, churn budgets
    POST   /api/quota-mix                   Fixed/variable and quarterly buckets

  Session:
    GET    /api/session                     Saved inputs + recomputed results
    PUT    /api/session                     Replace saved inputs (validated)
    DELETE /api/session                     Forget saved inputs

  Rosters:
    GET    /api/rosters/template?format=    Two-row example upload (csv|xlsx)
    POST   /api/rosters                     Upload multipart "file" (.csv/.xlsx/.xls)
    GET    /api/rosters/{id}                Uploaded roster
    POST   /api/rosters/{id}/calculate      Run the batch and store the result
    GET    /api/rosters/{id}/export?format= Results download (csv|xlsx)
    GET    /api/rosters/{id}/summary        Totals for the print view
    DELETE /api/rosters/{id}                Clear the upload

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, unreadable upload
  - 404: Roster not found
  - 413: Upload too large
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/warp/comp-calculator/engine"
	"github.com/warp/comp-calculator/factory"
	"github.com/warp/comp-calculator/roster"
	"github.com/warp/comp-calculator/session"
	"github.com/warp/comp-calculator/tabular"
)

// MaxUploadBytes caps roster uploads.
const MaxUploadBytes = 10 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Sessions  *session.Manager
	Rosters   roster.Repository
	Processor *roster.Processor
	Log       zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewHandler creates a handler. workers sizes the roster batch pool.
func NewHandler(blobs session.BlobStore, rosters roster.Repository, workers int, log zerolog.Logger) *Handler {
	return &Handler{
		Sessions:  session.NewManager(blobs),
		Rosters:   rosters,
		Processor: &roster.Processor{Workers: workers},
		Log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// =============================================================================
// CALCULATOR HANDLERS
// =============================================================================

// Attainment computes the attainment percentage and level.
func (h *Handler) Attainment(w http.ResponseWriter, r *http.Request) {
	var req AttainmentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Actual == nil || req.Target == nil {
		h.writeError(w, http.StatusBadRequest, "actual and target are required", nil)
		return
	}

	in := engine.AttainmentInput{Actual: *req.Actual, Target: *req.Target}
	if err := engine.ValidateAttainment(in); err != nil {
		h.writeDomainError(w, "Invalid attainment input", err)
		return
	}
	res, err := engine.Evaluate(in)
	if err != nil {
		h.writeDomainError(w, "Invalid attainment input", err)
		return
	}
	h.writeJSON(w, http.StatusOK, newAttainmentResponse(res))
}

// Retention validates and scores one quarter.
func (h *Handler) Retention(w http.ResponseWriter, r *http.Request) {
	var in engine.RetentionInput
	if err := decodeJSON(r, &in); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := engine.CalculateRetention(in)
	if err != nil {
		h.writeDomainError(w, "Invalid retention input", err)
		return
	}
	h.writeJSON(w, http.StatusOK, newRetentionResponse(res))
}

// QuotaMix builds engine input from the stored-form config and splits it.
func (h *Handler) QuotaMix(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	cfg, err := factory.ParseQuotaConfig(body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, err := factory.Build(cfg)
	if err != nil {
		h.writeDomainError(w, "Invalid quota configuration", err)
		return
	}
	h.writeJSON(w, http.StatusOK, newQuotaMixResponse(in, engine.ComputeQuotaMix(in)))
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// GetSession returns the saved inputs with results recomputed from them.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.Sessions.Load(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load session", err)
		return
	}
	h.writeSession(w, state)
}

// PutSession replaces the saved inputs. Invalid input is rejected and the
// previous session is kept.
func (h *Handler) PutSession(w http.ResponseWriter, r *http.Request) {
	var state session.State
	if err := decodeJSON(r, &state); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Sessions.Save(r.Context(), state); err != nil {
		h.writeDomainError(w, "Failed to save session", err)
		return
	}
	state.Version = session.CurrentVersion
	h.writeSession(w, state)
}

// DeleteSession forgets the saved inputs.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Clear(r.Context()); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to clear session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeSession(w http.ResponseWriter, state session.State) {
	results, err := session.Recompute(state)
	if err != nil {
		// Only reachable if stored data was edited outside the API.
		h.Log.Warn().Err(err).Msg("stored session no longer validates")
		h.writeDomainError(w, "Stored session is invalid", err)
		return
	}
	h.writeJSON(w, http.StatusOK, SessionResponse{State: state, Results: results})
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

// RosterTemplate downloads the example upload.
func (h *Handler) RosterTemplate(w http.ResponseWriter, r *http.Request) {
	f, ok := h.downloadFormat(w, r)
	if !ok {
		return
	}
	h.writeTable(w, roster.GenerateTemplate(), f, roster.TemplateSheet, "csm-template")
}

// UploadRoster parses a multipart "file" into a new roster. Re-uploading
// creates a new roster; the old one stays until deleted.
func (h *Handler) UploadRoster(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "Upload too large", err)
			return
		}
		h.writeError(w, http.StatusBadRequest, "Missing upload field \"file\"", err)
		return
	}
	defer file.Close()

	table, err := tabular.Read(file, header.Filename)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Could not read the uploaded file", err)
		return
	}
	records, err := roster.ParseRoster(table)
	if err != nil {
		h.writeDomainError(w, "Invalid roster", err)
		return
	}

	rs := roster.Roster{
		ID:         h.newID(),
		FileName:   filepath.Base(header.Filename),
		Records:    records,
		UploadedAt: h.now().UTC(),
	}
	if err := h.Rosters.SaveRoster(r.Context(), rs); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save roster", err)
		return
	}
	h.Log.Info().Str("roster_id", rs.ID).Int("records", len(records)).Msg("roster uploaded")
	h.writeJSON(w, http.StatusCreated, toRosterDTO(rs))
}

// GetRoster returns an uploaded roster.
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.loadRoster(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, toRosterDTO(rs))
}

// CalculateRoster runs the batch over the stored records. Running it again
// gives the same result.
func (h *Handler) CalculateRoster(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.loadRoster(w, r)
	if !ok {
		return
	}

	rs.Records = h.Processor.CalculateAll(rs.Records)
	rs.Calculated = true
	if err := h.Rosters.SaveRoster(r.Context(), rs); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save results", err)
		return
	}

	summary := roster.Summarize(rs.Records)
	h.Log.Info().
		Str("roster_id", rs.ID).
		Int("records", summary.Reps).
		Int("with_warnings", summary.WithWarnings).
		Msg("roster calculated")
	h.writeJSON(w, http.StatusOK, toRosterDTO(rs))
}

// ExportRoster downloads the calculated results.
func (h *Handler) ExportRoster(w http.ResponseWriter, r *http.Request) {
	f, ok := h.downloadFormat(w, r)
	if !ok {
		return
	}
	rs, ok := h.loadRoster(w, r)
	if !ok {
		return
	}
	if !rs.Calculated {
		h.writeError(w, http.StatusBadRequest, "Roster has not been calculated yet", nil)
		return
	}
	h.writeTable(w, roster.ExportResults(rs.Records), f, roster.ResultsSheet, "csm-metrics")
}

// RosterSummary returns batch totals.
func (h *Handler) RosterSummary(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.loadRoster(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, roster.Summarize(rs.Records))
}

// DeleteRoster clears an upload.
func (h *Handler) DeleteRoster(w http.ResponseWriter, r *http.Request) {
	if err := h.Rosters.DeleteRoster(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, "Failed to delete roster", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) loadRoster(w http.ResponseWriter, r *http.Request) (roster.Roster, bool) {
	rs, err := h.Rosters.GetRoster(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, "Failed to load roster", err)
		return roster.Roster{}, false
	}
	return rs, true
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON encodes before committing the status, so a value that cannot be
// encoded (a NaN, say) becomes a 500 rather than an empty 200.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		h.Log.Error().Err(err).Int("status", status).Msg("failed to encode response")
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(ErrorResponse{Error: "Failed to encode response", Details: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.Log.Warn().Err(err).Msg("failed to write response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	h.writeJSON(w, status, resp)
}

// writeDomainError picks the status from the error and lists each
// validation failure separately.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	status, code := classify(err)
	resp := ErrorResponse{Error: message, Code: code, Details: err.Error()}
	if status == http.StatusBadRequest {
		for _, v := range engine.Violations(err) {
			resp.Violations = append(resp.Violations, v.Error())
		}
	}
	h.writeJSON(w, status, resp)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, roster.ErrRosterNotFound):
		return http.StatusNotFound, "not_found"
	case roster.IsClientError(err):
		return http.StatusBadRequest, "invalid_roster"
	case session.IsClientError(err):
		return http.StatusBadRequest, "validation_failed"
	default:
		return http.StatusInternalServerError, ""
	}
}

func (h *Handler) downloadFormat(w http.ResponseWriter, r *http.Request) (tabular.Format, bool) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		return tabular.FormatXLSX, true
	}
	f, err := tabular.ParseFormat(raw)
	if err != nil || f == tabular.FormatXLS {
		h.writeError(w, http.StatusBadRequest, "format must be csv or xlsx", err)
		return "", false
	}
	return f, true
}

// writeTable buffers the file so an encoding failure can still become a
// JSON error instead of a truncated download.
func (h *Handler) writeTable(w http.ResponseWriter, t tabular.Table, f tabular.Format, sheet, name string) {
	var buf bytes.Buffer
	if err := tabular.Write(&buf, t, f, sheet); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to write file", err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+strings.ToLower(string(f))))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.Log.Warn().Err(err).Str("file", name).Msg("failed to write download")
	}
}
