package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/weatherwise/weatherwise/internal/weather"
)

// ErrNotFound is returned when no tracked city matches the given identifier.
var ErrNotFound = errors.New("city not found")

// CityStore owns the ordered list of tracked cities. All mutations run under
// one mutex and persist the whole list immediately, so a timer-driven refresh
// racing a user-driven delete can never interleave into a torn write. When a
// persist fails the in-memory mutation stands for the session and the error
// is surfaced so the caller can warn that the change may not survive a restart.
type CityStore struct {
	mu     sync.RWMutex
	kv     *KV
	cities []weather.City
}

// NewCityStore creates a CityStore backed by the given KV store and loads the
// persisted list. An absent or corrupt blob yields an empty starting list.
func NewCityStore(kv *KV) *CityStore {
	s := &CityStore{kv: kv}

	var cities []weather.City
	if err := kv.Get(KeyCityList, &cities); err == nil {
		s.cities = cities
	}
	return s
}

// Cities returns a snapshot copy of the current ordered list.
func (s *CityStore) Cities() []weather.City {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.City, len(s.cities))
	copy(out, s.cities)
	return out
}

// Get returns the tracked city with the given ID.
func (s *CityStore) Get(id uuid.UUID) (weather.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return weather.City{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.cities[idx], nil
}

// Len returns the number of tracked cities.
func (s *CityStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cities)
}

// Append adds a city to the end of the list and persists.
func (s *CityStore) Append(city weather.City) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cities = append(s.cities, city)
	return s.persistLocked()
}

// Remove deletes the city with the given ID and persists. Relative order of
// the remaining cities is preserved.
func (s *CityStore) Remove(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.cities = append(s.cities[:idx], s.cities[idx+1:]...)
	return s.persistLocked()
}

// Reorder moves the city at position from to position to and persists.
func (s *CityStore) Reorder(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if from < 0 || from >= len(s.cities) || to < 0 || to >= len(s.cities) {
		return fmt.Errorf("%w: position out of range", ErrNotFound)
	}
	if from == to {
		return nil
	}

	city := s.cities[from]
	s.cities = append(s.cities[:from], s.cities[from+1:]...)
	s.cities = append(s.cities[:to], append([]weather.City{city}, s.cities[to:]...)...)
	return s.persistLocked()
}

// Replace swaps the stored city's fields for the given record, keeping its
// identifier and list position, and persists. Used by refresh: field values
// are never edited in place, a refresh produces a replacement record.
func (s *CityStore) Replace(id uuid.UUID, city weather.City) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	city.ID = id
	s.cities[idx] = city
	return s.persistLocked()
}

func (s *CityStore) indexLocked(id uuid.UUID) int {
	for i, c := range s.cities {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *CityStore) persistLocked() error {
	return s.kv.Set(KeyCityList, s.cities)
}
