package mappers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echomag/echomag/internal/domain/expiry"
	"github.com/echomag/echomag/internal/infrastructure/persistence/models"
)

func TestExpiryRunMapper_CarriesJSONColumns(t *testing.T) {
	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	run, err := expiry.NewRun(expiry.TriggerScheduled, started)
	require.NoError(t, err)
	require.NoError(t, run.Complete(started.Add(time.Second), "partial", expiry.Counts{
		Candidates: 2, Succeeded: 1, Failed: 1,
		PerTier: map[string]int{"echopro": 1, "echoproplus": 0},
	}, []expiry.Failure{{UID: 9, PreviousPlan: "echopro", Error: "lock wait timeout"}}))

	m := NewExpiryRunMapper()
	model, err := m.ToModel(run)
	require.NoError(t, err)
	assert.JSONEq(t, `{"echopro":1,"echoproplus":0}`, string(model.PerTier))
	assert.JSONEq(t, `[{"uid":9,"previous_plan":"echopro","error":"lock wait timeout"}]`, string(model.Failures))

	back, err := m.ToEntity(model)
	require.NoError(t, err)
	assert.Equal(t, run.ID(), back.ID())
	assert.Equal(t, run.Counts(), back.Counts())
	assert.Equal(t, run.Failures(), back.Failures())
}

func TestExpiryRunMapper_RejectsCorruptJSON(t *testing.T) {
	_, err := NewExpiryRunMapper().ToEntity(&models.ExpiryRunModel{
		RunID:   "r1",
		Trigger: "api",
		PerTier: []byte("{not json"),
	})
	assert.Error(t, err)
}

func TestAccountMapper_InvalidPlan(t *testing.T) {
	_, err := NewAccountMapper().ToEntity(&models.AccountModel{UID: 1, Plan: "gold"})
	assert.Error(t, err)

	entity, err := NewAccountMapper().ToEntity(nil)
	assert.NoError(t, err)
	assert.Nil(t, entity)
}
