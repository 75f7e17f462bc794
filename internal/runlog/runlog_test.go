package runlog_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tapegrad/internal/runlog"
)

func openStore(t *testing.T) (*runlog.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	store, err := runlog.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestStartRun(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)

	id, err := store.StartRun(ctx, "fit", map[string]any{"lr": 0.05, "optimizer": "sgd"})
	require.NoError(t, err)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, "fit", runs[0].Name)
	assert.False(t, runs[0].StartedAt.IsZero())
	assert.Equal(t, map[string]any{"lr": 0.05, "optimizer": "sgd"}, runs[0].Config)
}

func TestRecordStep(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)

	id, err := store.StartRun(ctx, "fit", nil)
	require.NoError(t, err)

	for _, st := range []runlog.Step{{Step: 2, Loss: 0.5}, {Step: 0, Loss: 2}, {Step: 1, Loss: 1}} {
		require.NoError(t, store.RecordStep(ctx, id, st.Step, st.Loss))
	}
	// Re-recording a step overwrites it.
	require.NoError(t, store.RecordStep(ctx, id, 2, 0.25))

	steps, err := store.Steps(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []runlog.Step{{Step: 0, Loss: 2}, {Step: 1, Loss: 1}, {Step: 2, Loss: 0.25}}, steps)

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(3), runs[0].NumSteps)
	assert.True(t, runs[0].FinalLoss.Valid)
	assert.Equal(t, 0.25, runs[0].FinalLoss.Float64)
}

func TestUnknownRun(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)

	assert.ErrorIs(t, store.RecordStep(ctx, "nope", 0, 1), runlog.ErrRunNotFound)
	_, err := store.Steps(ctx, "nope")
	assert.ErrorIs(t, err, runlog.ErrRunNotFound)
}

func TestRunsPersistAcrossOpen(t *testing.T) {
	ctx := context.Background()
	store, path := openStore(t)

	first, err := store.StartRun(ctx, "a", nil)
	require.NoError(t, err)
	second, err := store.StartRun(ctx, "b", nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordStep(ctx, second, 0, 3))
	require.NoError(t, store.Close())

	reopened, err := runlog.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)
	assert.Equal(t, second, runs[1].ID)
	assert.Equal(t, map[string]any{}, runs[0].Config)
	assert.Equal(t, int64(0), runs[0].NumSteps)
	assert.False(t, runs[0].FinalLoss.Valid)
	assert.Equal(t, int64(1), runs[1].NumSteps)
	assert.Equal(t, 3.0, runs[1].FinalLoss.Float64)

	steps, err := reopened.Steps(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, []runlog.Step{{Step: 0, Loss: 3}}, steps)
}
