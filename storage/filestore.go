package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists each collection as a JSON array in <dir>/<name>.json.
// All operations serialize on a single mutex and writes go through a temp
// file plus atomic rename, so a torn write can never corrupt a collection
// and a read-modify-write can never lose a concurrent update.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) path(collection string) string {
	return filepath.Join(f.dir, collection+".json")
}

func (f *FileStore) readCollection(collection string) ([]Record, error) {
	b, err := os.ReadFile(f.path(collection))
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", collection, err)
	}
	var records []Record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("parse collection %s: %w", collection, err)
	}
	return records, nil
}

func (f *FileStore) writeCollection(collection string, records []Record) error {
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection %s: %w", collection, err)
	}
	tmp, err := os.CreateTemp(f.dir, collection+"-*.json")
	if err != nil {
		return fmt.Errorf("write collection %s: %w", collection, err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write collection %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write collection %s: %w", collection, err)
	}
	if err := os.Rename(tmp.Name(), f.path(collection)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace collection %s: %w", collection, err)
	}
	return nil
}

// List returns every record of the collection
func (f *FileStore) List(_ context.Context, collection string) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readCollection(collection)
}

// Get returns the record carrying the given identifier
func (f *FileStore) Get(_ context.Context, collection string, id int) (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.readCollection(collection)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rid, ok := RecordID(rec); ok && rid == id {
			return rec, nil
		}
	}
	return nil, ErrNotFound
}

// Create assigns the next identifier, materializes the record via build and
// appends it to the collection
func (f *FileStore) Create(_ context.Context, collection string, build func(id int) Record) (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.readCollection(collection)
	if err != nil {
		return nil, err
	}
	id := nextID(records)
	rec := build(id)
	rec["id"] = id
	rec["version"] = 1
	records = append(records, rec)
	if err := f.writeCollection(collection, records); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update applies the mutation to the current record and rewrites the
// collection, bumping the record's version
func (f *FileStore) Update(_ context.Context, collection string, id int, apply func(Record) (Record, error)) (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.readCollection(collection)
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		rid, ok := RecordID(rec)
		if !ok || rid != id {
			continue
		}
		updated, err := apply(rec)
		if err != nil {
			return nil, err
		}
		updated["id"] = id
		updated["version"] = recordVersion(rec) + 1
		records[i] = updated
		if err := f.writeCollection(collection, records); err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, ErrNotFound
}

// Delete removes the record carrying the given identifier
func (f *FileStore) Delete(_ context.Context, collection string, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.readCollection(collection)
	if err != nil {
		return err
	}
	for i, rec := range records {
		if rid, ok := RecordID(rec); ok && rid == id {
			records = append(records[:i], records[i+1:]...)
			return f.writeCollection(collection, records)
		}
	}
	return ErrNotFound
}

// Snapshot reads a non-collection JSON document from the data directory,
// returned verbatim. Used for the static dashboard aggregate.
func (f *FileStore) Snapshot(name string) (json.RawMessage, error) {
	b, err := os.ReadFile(filepath.Join(f.dir, name+".json"))
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", name, err)
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("snapshot %s is not valid JSON", name)
	}
	return json.RawMessage(b), nil
}
