package leveldb

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
)

// Index is a persistent content-hash → blob-location map. The underlying
// LevelDB directory allows a single open handle at a time, so every logical
// operation opens the store and closes it before returning instead of holding
// a process-lifetime handle that would serialize unrelated requests behind
// one lock object.
type Index struct {
	path string
}

func New(path string) *Index {
	if path == "" {
		path = "./data/keyindex"
	}
	slog.Info("key index path", "path", path)
	return &Index{path: path}
}

func (i *Index) open() (*leveldb.DB, error) {
	db, err := leveldb.OpenFile(i.path, nil)
	if err != nil {
		return nil, fmt.Errorf("open key index: %w", err)
	}
	return db, nil
}

func (i *Index) Has(key string) (bool, error) {
	_, found, err := i.Get(key)
	return found, err
}

// Get returns the stored value for key. A missing key is an expected outcome:
// found=false with a nil error, logged at warn level. Values that were stored
// as structured records come back as their JSON encoding; the "is this JSON"
// distinction is a best-effort content sniff, not a type tag.
func (i *Index) Get(key string) (string, bool, error) {
	db, err := i.open()
	if err != nil {
		return "", false, err
	}
	defer db.Close()

	raw, err := db.Get([]byte(key), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			slog.Warn("key index miss", "key", key)
			return "", false, nil
		}
		return "", false, fmt.Errorf("key index get %q: %w", key, err)
	}
	return string(raw), true, nil
}

func (i *Index) Put(key string, value any) error {
	db, err := i.open()
	if err != nil {
		return err
	}
	defer db.Close()

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		raw, err = json.Marshal(v)
		if err != nil {
			return fmt.Errorf("key index encode %q: %w", key, err)
		}
	}

	if err := db.Put([]byte(key), raw, nil); err != nil {
		return fmt.Errorf("key index put %q: %w", key, err)
	}
	return nil
}

// Delete removes one key, or with all=true wipes every key. The full wipe is
// destructive and must be an explicit opt-in by the caller, never a default.
func (i *Index) Delete(key string, all bool) error {
	db, err := i.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if !all {
		if err := db.Delete([]byte(key), nil); err != nil {
			return fmt.Errorf("key index delete %q: %w", key, err)
		}
		return nil
	}

	iter := db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		k := append([]byte(nil), iter.Key()...)
		if err := db.Delete(k, nil); err != nil {
			return fmt.Errorf("key index wipe at %q: %w", string(k), err)
		}
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("key index wipe iterate: %w", err)
	}
	return nil
}

// IsJSONObject reports whether raw looks like an encoded JSON object.
func IsJSONObject(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return false
	}
	var sniff map[string]any
	return json.Unmarshal([]byte(trimmed), &sniff) == nil
}
