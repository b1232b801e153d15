package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherwise/weatherwise/internal/config"
	"github.com/weatherwise/weatherwise/internal/pipeline"
	"github.com/weatherwise/weatherwise/internal/store"
)

// blockingRefresher counts runs and blocks each one until release is closed.
type blockingRefresher struct {
	mu      sync.Mutex
	runs    int
	started chan struct{}
	release chan struct{}
}

func (b *blockingRefresher) RefreshAll(_ context.Context) pipeline.RefreshSummary {
	b.mu.Lock()
	b.runs++
	b.mu.Unlock()

	b.started <- struct{}{}
	<-b.release
	return pipeline.RefreshSummary{}
}

func (b *blockingRefresher) runCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.runs
}

func newTestPrefs(t *testing.T) *config.Preferences {
	t.Helper()
	return config.NewPreferences(store.OpenKV(afero.NewMemMapFs(), "state.json"))
}

func TestRunRefresh_SkipsOverlappingFires(t *testing.T) {
	refresher := &blockingRefresher{
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	s := New(refresher, newTestPrefs(t))

	done := make(chan struct{})
	go func() {
		s.runRefresh()
		close(done)
	}()

	// Wait until the first run is in flight, then fire again: the overlap
	// must be dropped, not queued.
	<-refresher.started
	s.runRefresh()
	assert.Equal(t, 1, refresher.runCount())

	close(refresher.release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("first refresh never finished")
	}

	// With nothing in flight the next fire runs normally.
	s.runRefresh()
	assert.Equal(t, 2, refresher.runCount())
}

func TestScheduler_StartAndStop(t *testing.T) {
	refresher := &blockingRefresher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	close(refresher.release)

	s := New(refresher, newTestPrefs(t))
	require.NoError(t, s.Start())
	s.Stop()
}
