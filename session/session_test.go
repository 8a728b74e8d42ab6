package session_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/comp-calculator/engine"
	"github.com/warp/comp-calculator/factory"
	"github.com/warp/comp-calculator/session"
	"github.com/warp/comp-calculator/store/memory"
)

func validState() session.State {
	quota := factory.DefaultQuotaConfig()
	quota.CTC = decimal.NewFromInt(2500000)
	return session.State{
		Attainment: &engine.AttainmentInput{Actual: 80, Target: 100},
		Retention: &engine.RetentionInput{
			BookARR:            1000000,
			ChurnARR:           10000,
			MinRetentionTarget: 0.8,
			MaxRetentionTarget: 0.9,
		},
		Quota: &quota,
	}
}

// =============================================================================
// ENCODE / DECODE
// =============================================================================

func TestEncodeDecode_PreservesInputs(t *testing.T) {
	in := validState()

	data, err := session.Encode(in)
	require.NoError(t, err)

	out, err := session.Decode(data)
	require.NoError(t, err)

	assert.Equal(t, session.CurrentVersion, out.Version)
	assert.Equal(t, in.Attainment, out.Attainment)
	assert.Equal(t, in.Retention, out.Retention)
	require.NotNil(t, out.Quota)
	assert.Equal(t, in.Quota.MixRatio, out.Quota.MixRatio)
	assert.True(t, in.Quota.CTC.Equal(out.Quota.CTC))
}

func TestEncode_OmitsEmptySections(t *testing.T) {
	data, err := session.Encode(session.State{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1}`, string(data))
}

func TestDecode(t *testing.T) {
	s, err := session.Decode([]byte(`{"attainment":{"actual":1,"target":2}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Version)
	assert.Nil(t, s.Retention)

	_, err = session.Decode([]byte(`{"version":99}`))
	assert.ErrorIs(t, err, session.ErrUnsupportedVersion)

	_, err = session.Decode([]byte(`not json`))
	assert.Error(t, err)
}

// =============================================================================
// VALIDATE / RECOMPUTE
// =============================================================================

func TestValidate_NamesEverySection(t *testing.T) {
	bad := factory.DefaultQuotaConfig()
	bad.Role = factory.RoleAM
	s := session.State{
		Attainment: &engine.AttainmentInput{Actual: 10, Target: 0},
		Retention:  &engine.RetentionInput{BookARR: 100, ChurnARR: 100, MinRetentionTarget: 0.9, MaxRetentionTarget: 0.8},
		Quota:      &bad,
	}

	err := session.Validate(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInvalidTarget)
	assert.ErrorIs(t, err, engine.ErrChurnExceedsBook)
	assert.ErrorIs(t, err, engine.ErrInvertedTargetBand)
	assert.ErrorIs(t, err, factory.ErrUnsupportedRole)
	assert.True(t, session.IsClientError(err))

	var section *session.SectionError
	require.ErrorAs(t, err, &section)
	assert.Equal(t, "attainment", section.Section)
}

func TestRecompute(t *testing.T) {
	results, err := session.Recompute(validState())
	require.NoError(t, err)

	require.NotNil(t, results.Attainment)
	assert.Equal(t, engine.LevelOnTrack, results.Attainment.Level)

	require.NotNil(t, results.Retention)
	assert.Equal(t, engine.ComputeRetention(*validState().Retention), *results.Retention)

	require.NotNil(t, results.Quota)
	assert.True(t, results.Quota.VariableComponent.Equal(decimal.NewFromInt(500000)))
}

func TestRecompute_EmptyState(t *testing.T) {
	results, err := session.Recompute(session.State{})
	require.NoError(t, err)
	assert.Equal(t, session.Results{}, results)
}

// =============================================================================
// MANAGER
// =============================================================================

func TestManager_LoadBeforeSave(t *testing.T) {
	m := session.NewManager(memory.New())

	s, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.State{Version: session.CurrentVersion}, s)
}

func TestManager_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager(memory.New())

	// GIVEN: a saved valid state
	require.NoError(t, m.Save(ctx, validState()))

	// WHEN: loaded
	s, err := m.Load(ctx)

	// THEN: the inputs come back
	require.NoError(t, err)
	assert.Equal(t, validState().Retention, s.Retention)

	// AND: clearing resets to empty
	require.NoError(t, m.Clear(ctx))
	s, err = m.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, s.Retention)
}

func TestManager_RefusesInvalidState(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager(memory.New())
	require.NoError(t, m.Save(ctx, validState()))

	// GIVEN: an edit that inverts the band
	s := validState()
	s.Retention.MinRetentionTarget = 0.95

	// WHEN: saved
	err := m.Save(ctx, s)

	// THEN: rejected and the previous state is untouched
	require.ErrorIs(t, err, engine.ErrInvertedTargetBand)
	loaded, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.8, loaded.Retention.MinRetentionTarget)
}

func TestManager_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	a := session.NewManager(store)
	b := a.WithKey("other")

	require.NoError(t, a.Save(ctx, validState()))

	s, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, s.Attainment)
}
