package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/comp-calculator/roster"
	"github.com/warp/comp-calculator/session"
)

func TestBlobs(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.GetBlob(ctx, "k")
	assert.ErrorIs(t, err, session.ErrBlobNotFound)

	data := []byte(`{"version":1}`)
	require.NoError(t, s.PutBlob(ctx, "k", data))
	data[0] = 'x'

	got, err := s.GetBlob(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(got))

	require.NoError(t, s.DeleteBlob(ctx, "k"))
	require.NoError(t, s.DeleteBlob(ctx, "k"))
	_, err = s.GetBlob(ctx, "k")
	assert.ErrorIs(t, err, session.ErrBlobNotFound)
}

func TestRosters(t *testing.T) {
	ctx := context.Background()
	s := New()

	r := roster.Roster{
		ID:         "r1",
		FileName:   "team.csv",
		Records:    []roster.Record{{ID: "a", Name: "Ada", BookStartARR: 1000}},
		UploadedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveRoster(ctx, r))

	// Mutating the caller's slice must not leak into the store.
	r.Records[0].Name = "changed"

	got, err := s.GetRoster(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Records[0].Name)
	assert.Equal(t, "team.csv", got.FileName)

	require.NoError(t, s.DeleteRoster(ctx, "r1"))
	_, err = s.GetRoster(ctx, "r1")
	assert.ErrorIs(t, err, roster.ErrRosterNotFound)
	assert.ErrorIs(t, s.DeleteRoster(ctx, "r1"), roster.ErrRosterNotFound)
}

func TestRosters_CopiesRecordFields(t *testing.T) {
	ctx := context.Background()
	s := New()

	churn, attainment := 10.0, 0.5
	r := roster.Roster{
		ID: "r1",
		Records: []roster.Record{{
			ID:         "a",
			ChurnARR:   &churn,
			Attainment: &attainment,
			Warnings:   []roster.Warning{{Code: roster.WarnChurnExceedsBook, Message: "stored"}},
		}},
	}
	require.NoError(t, s.SaveRoster(ctx, r))

	// The caller's pointers are not the stored ones.
	churn = 99

	got, err := s.GetRoster(ctx, "r1")
	require.NoError(t, err)
	*got.Records[0].Attainment = 1
	got.Records[0].Warnings[0].Message = "changed"

	again, err := s.GetRoster(ctx, "r1")
	require.NoError(t, err)
	rec := again.Records[0]
	assert.Equal(t, 10.0, *rec.ChurnARR)
	assert.Equal(t, 0.5, *rec.Attainment)
	assert.Equal(t, "stored", rec.Warnings[0].Message)
}
