/*
session.go - Persisted calculator state

PURPOSE:
  Each calculator page remembers what the user last entered. This package
  makes that memory explicit: a State value, an Encode/Decode pair for the
  boundary, and a Manager that reads and writes the encoded blob through a
  BlobStore. The engine never sees any of it.

PERSISTENCE POLICY:
  Only validated inputs are stored. Outputs are never stored; Recompute
  derives them from the inputs every time, so a stored session can never
  disagree with the formulas.

BLOB FORMAT:
  {
    "version": 1,
    "attainment": {"actual": 80, "target": 100},
    "retention":  {"book_arr": 1000000, "churn_arr": 50000, ...},
    "quota":      {"role": "CSM", "ctc": "2500000", "mix_ratio": "80/20", ...}
  }

  Sections the user has not filled in are omitted.

SEE ALSO:
  - store/memory, store/sqlite, store/postgres: BlobStore implementations
  - factory/quota.go: QuotaConfig
*/
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/warp/comp-calculator/engine"
	"github.com/warp/comp-calculator/factory"
)

// CurrentVersion is written by Encode. Decode accepts it and older blobs.
const CurrentVersion = 1

// DefaultKey is the blob key the Manager uses unless told otherwise.
const DefaultKey = "session"

var (
	// ErrBlobNotFound is returned by a BlobStore for an unknown key.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrUnsupportedVersion is returned when a blob was written by a newer release.
	ErrUnsupportedVersion = errors.New("unsupported session version")
)

// =============================================================================
// STATE
// =============================================================================

// State is the last validated input of each calculator.
type State struct {
	Version    int                     `json:"version"`
	Attainment *engine.AttainmentInput `json:"attainment,omitempty"`
	Retention  *engine.RetentionInput  `json:"retention,omitempty"`
	Quota      *factory.QuotaConfig    `json:"quota,omitempty"`
}

// Results are the outputs derived from a State.
type Results struct {
	Attainment *engine.AttainmentResult `json:"attainment,omitempty"`
	Retention  *engine.RetentionResult  `json:"retention,omitempty"`
	Quota      *engine.QuotaMixResult   `json:"quota,omitempty"`
}

// SectionError ties a validation failure to the calculator it came from.
type SectionError struct {
	Section string
	Err     error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Section, e.Err)
}

func (e *SectionError) Unwrap() error {
	return e.Err
}

// IsClientError returns true if the error is due to invalid saved input.
func IsClientError(err error) bool {
	return engine.IsClientError(err) || factory.IsClientError(err)
}

// Validate checks every present section and joins all failures.
func Validate(s State) error {
	var errs []error
	if s.Attainment != nil {
		if err := engine.ValidateAttainment(*s.Attainment); err != nil {
			errs = append(errs, &SectionError{Section: "attainment", Err: err})
		}
	}
	if s.Retention != nil {
		if err := engine.ValidateRetention(*s.Retention); err != nil {
			errs = append(errs, &SectionError{Section: "retention", Err: err})
		}
	}
	if s.Quota != nil {
		if err := factory.Validate(*s.Quota); err != nil {
			errs = append(errs, &SectionError{Section: "quota", Err: err})
		}
	}
	return errors.Join(errs...)
}

// Recompute derives every output from the stored inputs.
func Recompute(s State) (Results, error) {
	if err := Validate(s); err != nil {
		return Results{}, err
	}

	var r Results
	if s.Attainment != nil {
		res, err := engine.Evaluate(*s.Attainment)
		if err != nil {
			return Results{}, err
		}
		r.Attainment = &res
	}
	if s.Retention != nil {
		res := engine.ComputeRetention(*s.Retention)
		r.Retention = &res
	}
	if s.Quota != nil {
		in, err := factory.Build(*s.Quota)
		if err != nil {
			return Results{}, err
		}
		res := engine.ComputeQuotaMix(in)
		r.Quota = &res
	}
	return r, nil
}

// =============================================================================
// ENCODING
// =============================================================================

// Encode serializes the state, stamping the current version.
func Encode(s State) ([]byte, error) {
	s.Version = CurrentVersion
	return json.Marshal(s)
}

// Decode parses a blob written by Encode. A missing version is read as 1.
func Decode(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.Version == 0 {
		s.Version = CurrentVersion
	}
	if s.Version > CurrentVersion {
		return State{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	return s, nil
}

// =============================================================================
// MANAGER
// =============================================================================

// BlobStore is an opaque key-value store for encoded sessions.
type BlobStore interface {
	// GetBlob returns ErrBlobNotFound for an unknown key.
	GetBlob(ctx context.Context, key string) ([]byte, error)
	PutBlob(ctx context.Context, key string, data []byte) error
	// DeleteBlob is a no-op for an unknown key.
	DeleteBlob(ctx context.Context, key string) error
}

// Manager loads and saves one session blob.
type Manager struct {
	store BlobStore
	key   string
}

// NewManager creates a manager for DefaultKey.
func NewManager(store BlobStore) *Manager {
	return &Manager{store: store, key: DefaultKey}
}

// WithKey returns a manager for a different blob key.
func (m *Manager) WithKey(key string) *Manager {
	return &Manager{store: m.store, key: key}
}

// Load returns the stored state, or an empty current-version state if
// nothing has been saved yet.
func (m *Manager) Load(ctx context.Context) (State, error) {
	data, err := m.store.GetBlob(ctx, m.key)
	if errors.Is(err, ErrBlobNotFound) {
		return State{Version: CurrentVersion}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to load session: %w", err)
	}
	return Decode(data)
}

// Save validates the state and stores it. Invalid input is never persisted.
func (m *Manager) Save(ctx context.Context, s State) error {
	if err := Validate(s); err != nil {
		return err
	}
	data, err := Encode(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := m.store.PutBlob(ctx, m.key, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes the stored state.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.DeleteBlob(ctx, m.key); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
