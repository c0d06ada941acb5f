package tick_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmicverge/tickengine/internal/application/cache"
	"github.com/cosmicverge/tickengine/internal/application/tick"
	"github.com/cosmicverge/tickengine/internal/domain/hangar"
	"github.com/cosmicverge/tickengine/internal/infrastructure/store"
)

type fakeWorkerStore struct {
	hashes    map[string]map[string]string
	leases    map[string]bool
	set       map[string]string
	srand     []string
	srems     []string
	published []string
}

func newFakeWorkerStore() *fakeWorkerStore {
	return &fakeWorkerStore{
		hashes: make(map[string]map[string]string),
		leases: make(map[string]bool),
		set:    make(map[string]string),
	}
}

func (f *fakeWorkerStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	return f.hashes[key], nil
}

func (f *fakeWorkerStore) HKeys(_ context.Context, key string) ([]string, error) {
	keys := make([]string, 0, len(f.hashes[key]))
	for k := range f.hashes[key] {
		keys = append(keys, k)
	}
	return keys, nil
}

func (f *fakeWorkerStore) AcquireLease(_ context.Context, key string, _ time.Duration) (bool, error) {
	if f.leases[key] {
		return false, nil
	}
	f.leases[key] = true
	return true, nil
}

func (f *fakeWorkerStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := f.set[key]
	return v, ok, nil
}

func (f *fakeWorkerStore) Set(_ context.Context, key, value string) error {
	f.set[key] = value
	return nil
}

func (f *fakeWorkerStore) SRandMemberN(context.Context, string, int64) ([]string, error) {
	out := f.srand
	f.srand = nil
	return out, nil
}

func (f *fakeWorkerStore) SRem(_ context.Context, _ string, member string) error {
	f.srems = append(f.srems, member)
	return nil
}

func (f *fakeWorkerStore) Publish(_ context.Context, _ string, message string) error {
	f.published = append(f.published, message)
	return nil
}

func (f *fakeWorkerStore) Pipeline() store.Pipeliner {
	return nil
}

func TestWorker_HandleTick_EmptyQueueStillCompletesAndCommitsTimestamp(t *testing.T) {
	// Arrange: queue is empty (no SRANDMEMBER results), so the worker should
	// go straight to racing the completion lease.
	s := newFakeWorkerStore()
	c := cache.New(discardSlog())
	w := tick.NewWorker(s, c, twoSystemUniverse(), hangar.Table{hangar.Shuttle: {Mass: 1, Thrust: 1, RotationRate: 1}}, discardSlog())

	// Act
	err := w.HandleTick(context.Background(), "1000")

	// Assert
	require.NoError(t, err)
	require.Len(t, s.published, 1)
	assert.Equal(t, "1000", s.published[0])
	assert.Equal(t, "1000", s.set[store.KeyWorldTimestamp])
}

func TestWorker_HandleTick_SkipsCompletionWhenLeaseAlreadyHeld(t *testing.T) {
	// Arrange
	s := newFakeWorkerStore()
	s.leases[store.LeaseSystemUpdateCompleted] = true
	c := cache.New(discardSlog())
	w := tick.NewWorker(s, c, twoSystemUniverse(), hangar.Table{hangar.Shuttle: {Mass: 1, Thrust: 1, RotationRate: 1}}, discardSlog())

	// Act
	err := w.HandleTick(context.Background(), "1000")

	// Assert
	require.NoError(t, err)
	assert.Empty(t, s.published)
	assert.NotContains(t, s.set, store.KeyWorldTimestamp)
}

func TestWorker_HandleTick_DrainsQueuedSystemsAndRemovesThem(t *testing.T) {
	// Arrange
	s := newFakeWorkerStore()
	s.srand = []string{"SM0A9F4"}
	c := cache.New(discardSlog())
	w := tick.NewWorker(s, c, twoSystemUniverse(), hangar.Table{hangar.Shuttle: {Mass: 1, Thrust: 1, RotationRate: 1}}, discardSlog())

	// Act
	err := w.HandleTick(context.Background(), "1000")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, s.srems, "SM0A9F4")
}

func TestWorker_HandleTick_RejectsUnparsableTimestamp(t *testing.T) {
	// Arrange
	s := newFakeWorkerStore()
	c := cache.New(discardSlog())
	w := tick.NewWorker(s, c, twoSystemUniverse(), hangar.Table{}, discardSlog())

	// Act
	err := w.HandleTick(context.Background(), "not-a-number")

	// Assert
	assert.Error(t, err)
}
