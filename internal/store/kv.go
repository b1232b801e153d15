package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

var (
	// ErrPersistence is returned when the backing file cannot be read or
	// written. In-memory state is kept; callers surface a warning instead
	// of rolling back.
	ErrPersistence = errors.New("persistence error")

	// ErrKeyNotFound is returned by Get when the key has never been set.
	ErrKeyNotFound = errors.New("key not found")
)

// Fixed storage keys. The city list key is owned exclusively by CityStore;
// the preference keys are owned by config.Preferences.
const (
	KeyCityList        = "CityList"
	KeyRefreshInterval = "RefreshInterval"
	KeyDarkMode        = "DarkMode"
)

// KV is a small file-backed key-value store holding opaque JSON blobs under
// fixed keys. Every Set rewrites the whole file.
type KV struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
	data map[string]json.RawMessage
}

// OpenKV loads the store file, tolerating a missing or corrupt file by
// starting from an empty key set. Corruption must never abort startup.
func OpenKV(fs afero.Fs, path string) *KV {
	kv := &KV{
		fs:   fs,
		path: path,
		data: make(map[string]json.RawMessage),
	}

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return kv
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		return kv
	}
	kv.data = data
	return kv
}

// Get unmarshals the blob stored under key into v.
func (kv *KV) Get(key string, v interface{}) error {
	kv.mu.Lock()
	raw, ok := kv.data[key]
	kv.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrPersistence, key, err)
	}
	return nil
}

// Set stores v under key and rewrites the backing file. The in-memory value
// is updated even when the file write fails.
func (kv *KV) Set(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPersistence, key, err)
	}

	kv.mu.Lock()
	defer kv.mu.Unlock()

	kv.data[key] = raw
	return kv.flushLocked()
}

func (kv *KV) flushLocked() error {
	raw, err := json.MarshalIndent(kv.data, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if dir := filepath.Dir(kv.path); dir != "." {
		if err := kv.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}
	if err := afero.WriteFile(kv.fs, kv.path, raw, os.FileMode(0o644)); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
