package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", "json", &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	assert.Equal(t, zerolog.InfoLevel, New("nonsense", "json", &buf).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("", "json", &buf).GetLevel())
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "console", &buf)
	logger.Info().Str("rep", "Ada").Msg("calculated")

	out := buf.String()
	assert.Contains(t, out, "calculated")
	assert.Contains(t, out, "rep=")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New("debug", "json", &buf)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "/missing", line["path"])
	assert.Equal(t, float64(404), line["status"])
	assert.NotEmpty(t, line["request_id"])
}
