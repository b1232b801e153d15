package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherwise/weatherwise/internal/store"
)

func TestPreferences_Defaults(t *testing.T) {
	p := NewPreferences(store.OpenKV(afero.NewMemMapFs(), "state.json"))

	assert.Equal(t, DefaultRefreshMinutes, p.RefreshMinutes())
	assert.False(t, p.DarkMode())
}

func TestPreferences_SetAndReload(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := NewPreferences(store.OpenKV(fs, "state.json"))

	require.NoError(t, p.SetRefreshMinutes(30))
	require.NoError(t, p.SetDarkMode(true))

	reloaded := NewPreferences(store.OpenKV(fs, "state.json"))
	assert.Equal(t, 30, reloaded.RefreshMinutes())
	assert.True(t, reloaded.DarkMode())
}

func TestPreferences_RejectsIntervalOutsideAllowedSet(t *testing.T) {
	p := NewPreferences(store.OpenKV(afero.NewMemMapFs(), "state.json"))

	require.Error(t, p.SetRefreshMinutes(7))
	assert.Equal(t, DefaultRefreshMinutes, p.RefreshMinutes())
}

func TestPreferences_IgnoresCorruptPersistedInterval(t *testing.T) {
	fs := afero.NewMemMapFs()
	kv := store.OpenKV(fs, "state.json")
	require.NoError(t, kv.Set(store.KeyRefreshInterval, 42))

	p := NewPreferences(store.OpenKV(fs, "state.json"))
	assert.Equal(t, DefaultRefreshMinutes, p.RefreshMinutes())
}

func TestPreferences_PersistFailureKeepsValue(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	p := NewPreferences(store.OpenKV(fs, "state.json"))

	err := p.SetRefreshMinutes(60)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrPersistence)
	assert.Equal(t, 60, p.RefreshMinutes())
}

func TestPreferences_SubscribeNotifiesChanges(t *testing.T) {
	p := NewPreferences(store.OpenKV(afero.NewMemMapFs(), "state.json"))
	changes := p.Subscribe()

	require.NoError(t, p.SetRefreshMinutes(5))
	require.NoError(t, p.SetDarkMode(true))

	assert.Equal(t, ChangeRefreshInterval, waitForChange(t, changes))
	assert.Equal(t, ChangeDarkMode, waitForChange(t, changes))
}

func waitForChange(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for preference change")
		return ""
	}
}
