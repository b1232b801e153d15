package config

import (
	"fmt"
	"sync"

	"github.com/weatherwise/weatherwise/internal/store"
)

// DefaultRefreshMinutes is used when no interval has ever been chosen.
const DefaultRefreshMinutes = 15

// AllowedRefreshMinutes are the selectable refresh intervals, in minutes.
var AllowedRefreshMinutes = []int{5, 10, 15, 30, 60}

// Change identifies which preference was updated in a notification.
type Change string

const (
	ChangeRefreshInterval Change = "refresh_interval"
	ChangeDarkMode        Change = "dark_mode"
)

// Preferences holds the user-changeable settings, persisted through the
// key-value store and handed to components explicitly. Subscribers receive a
// Change on every successful Set; notifications are best effort and dropped
// for subscribers that are not draining their channel.
type Preferences struct {
	mu          sync.RWMutex
	kv          *store.KV
	intervalMin int
	darkMode    bool
	subscribers []chan Change
}

// NewPreferences loads persisted preference values, falling back to defaults
// for absent or undecodable keys.
func NewPreferences(kv *store.KV) *Preferences {
	p := &Preferences{
		kv:          kv,
		intervalMin: DefaultRefreshMinutes,
	}

	var minutes int
	if err := kv.Get(store.KeyRefreshInterval, &minutes); err == nil && validInterval(minutes) {
		p.intervalMin = minutes
	}
	var dark bool
	if err := kv.Get(store.KeyDarkMode, &dark); err == nil {
		p.darkMode = dark
	}
	return p
}

// RefreshMinutes returns the refresh interval in minutes.
func (p *Preferences) RefreshMinutes() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.intervalMin
}

// SetRefreshMinutes updates and persists the refresh interval. The value must
// be one of AllowedRefreshMinutes. The in-memory value is kept even when the
// persist fails.
func (p *Preferences) SetRefreshMinutes(minutes int) error {
	if !validInterval(minutes) {
		return fmt.Errorf("refresh interval must be one of %v, got %d", AllowedRefreshMinutes, minutes)
	}

	p.mu.Lock()
	p.intervalMin = minutes
	err := p.kv.Set(store.KeyRefreshInterval, minutes)
	p.mu.Unlock()

	p.notify(ChangeRefreshInterval)
	return err
}

// DarkMode returns the dark-mode flag.
func (p *Preferences) DarkMode() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.darkMode
}

// SetDarkMode updates and persists the dark-mode flag.
func (p *Preferences) SetDarkMode(enabled bool) error {
	p.mu.Lock()
	p.darkMode = enabled
	err := p.kv.Set(store.KeyDarkMode, enabled)
	p.mu.Unlock()

	p.notify(ChangeDarkMode)
	return err
}

// Subscribe returns a channel delivering a Change for every preference update.
func (p *Preferences) Subscribe() <-chan Change {
	ch := make(chan Change, 4)

	p.mu.Lock()
	p.subscribers = append(p.subscribers, ch)
	p.mu.Unlock()

	return ch
}

func (p *Preferences) notify(c Change) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, ch := range p.subscribers {
		select {
		case ch <- c:
		default:
		}
	}
}

func validInterval(minutes int) bool {
	for _, allowed := range AllowedRefreshMinutes {
		if minutes == allowed {
			return true
		}
	}
	return false
}
