package checkpoint_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/filmsync/internal/platform/checkpoint"
	"github.com/taibuivan/filmsync/internal/platform/constants"
	"github.com/taibuivan/filmsync/internal/platform/statestore"
)

// fakeRecord's field is exported so cached results survive the state
// store's JSON round-trip, as model.ChangedRef and model.JoinRow do.
type fakeRecord struct {
	Modified time.Time `json:"modified"`
}

func (f fakeRecord) ModifiedAt() time.Time { return f.Modified }

func newStore(t *testing.T) *statestore.Store {
	t.Helper()
	return statestore.New(filepath.Join(t.TempDir(), "stage.json"))
}

func TestCollect_RunsAllMethodsInOrder(t *testing.T) {
	store := newStore(t)
	var calls []string

	methodA := checkpoint.Method[fakeRecord]{Name: "a", Run: func(context.Context) ([]fakeRecord, error) {
		calls = append(calls, "a")
		return []fakeRecord{{Modified: time.Unix(100, 0)}}, nil
	}}
	methodB := checkpoint.Method[fakeRecord]{Name: "b", Run: func(context.Context) ([]fakeRecord, error) {
		calls = append(calls, "b")
		return nil, nil
	}}

	runner := checkpoint.NewRunner(store, "Stage", time.Unix(0, 0), methodA, methodB)
	require.NoError(t, runner.Collect(context.Background()))

	assert.Equal(t, []string{"a", "b"}, calls)
	assert.True(t, runner.HasResults)
	assert.Equal(t, time.Unix(100, 0), runner.MaxModifiedAfter)
}

func TestCollect_ResumesAtInterruptedMethod(t *testing.T) {
	store := newStore(t)

	// Simulate a crash: method "a" finished and cached its result, the
	// stage never reached FINISH, and method "b" was mid-flight.
	require.NoError(t, store.Set("Stage", constants.CacheStateStart))
	require.NoError(t, store.Set("Stage.a", constants.CacheStateFinish))
	require.NoError(t, store.Set("Stage.a.result", []fakeRecord{{Modified: time.Unix(10, 0).UTC()}}))
	require.NoError(t, store.Set("Stage.b", constants.CacheStateStart))

	var aCalled, bCalled bool
	methodA := checkpoint.Method[fakeRecord]{Name: "a", Run: func(context.Context) ([]fakeRecord, error) {
		aCalled = true
		return []fakeRecord{{Modified: time.Unix(999, 0)}}, nil
	}}
	methodB := checkpoint.Method[fakeRecord]{Name: "b", Run: func(context.Context) ([]fakeRecord, error) {
		bCalled = true
		return []fakeRecord{{Modified: time.Unix(20, 0)}}, nil
	}}

	runner := checkpoint.NewRunner(store, "Stage", time.Unix(0, 0), methodA, methodB)
	require.NoError(t, runner.Collect(context.Background()))

	assert.False(t, aCalled, "finished method a should be replayed from cache, not re-run")
	assert.True(t, bCalled, "interrupted method b must be re-executed")
	assert.Equal(t, time.Unix(10, 0).UTC(), runner.Results["a"][0].ModifiedAt())
	assert.Equal(t, time.Unix(20, 0), runner.MaxModifiedAfter)

	state, ok, err := store.GetString("Stage")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, constants.CacheStateFinish, state)
}

func TestCollect_EmptyResultSkipsMaxUpdate(t *testing.T) {
	store := newStore(t)
	method := checkpoint.Method[fakeRecord]{Name: "a", Run: func(context.Context) ([]fakeRecord, error) {
		return nil, nil
	}}

	seed := time.Unix(5, 0)
	runner := checkpoint.NewRunner(store, "Stage", seed, method)
	require.NoError(t, runner.Collect(context.Background()))

	assert.False(t, runner.HasResults)
	assert.Equal(t, seed, runner.MaxModifiedAfter)
}
