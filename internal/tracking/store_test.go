package tracking

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "mlruns", "tracking.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetOrCreateExperimentID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.GetOrCreateExperimentID(ctx, "dataset-split")
	require.NoError(t, err)
	assert.Len(t, id, 36)

	again, err := s.GetOrCreateExperimentID(ctx, "dataset-split")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	other, err := s.GetOrCreateExperimentID(ctx, "other")
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestRunLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.LastRunID(ctx, "exp")
	require.NoError(t, err)
	assert.False(t, ok)

	first, err := s.StartRun(ctx, "exp", map[string]string{"seed": "42", "mode": "multi-task"})
	require.NoError(t, err)
	second, err := s.StartRun(ctx, "exp", nil)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	last, ok, err := s.LastRunID(ctx, "exp")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, second, last)

	require.NoError(t, s.FinishRun(ctx, first, "FINISHED", map[string]float64{"copied": 40, "images": 10}))

	run, err := s.GetRun(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "FINISHED", run.Status)
	require.NotNil(t, run.FinishedAt)
	require.Len(t, run.Params, 2)
	params := map[string]string{}
	for _, p := range run.Params {
		params[p.Key] = p.Value
	}
	assert.Equal(t, map[string]string{"seed": "42", "mode": "multi-task"}, params)
	require.Len(t, run.Metrics, 2)

	pending, err := s.GetRun(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, pending.Status)
	assert.Nil(t, pending.FinishedAt)
}

func TestRunNotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.FinishRun(ctx, "missing", "FAILED", nil)
	assert.True(t, errors.Is(err, ErrRunNotFound))

	_, err = s.GetRun(ctx, "missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestLastRunIDIsPerExperiment(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, err := s.StartRun(ctx, "a", nil)
	require.NoError(t, err)
	_, err = s.StartRun(ctx, "b", nil)
	require.NoError(t, err)

	last, ok, err := s.LastRunID(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, a, last)
}
