// Package file keeps delta records as one JSON file per identity.
//
// Files are written to a temporary name and renamed into place, so a reader never
// sees a half-written record. Two overlapping runs of the same check still race on
// the read-modify-write cycle; the last writer wins.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/and161185/pgsql-check/internal/errs"
	"github.com/and161185/pgsql-check/model"
)

const filePrefix = "pgsql-check-"

type FileStorage struct {
	dir string
}

// NewFileStorage returns a store rooted at dir, or at os.TempDir() when dir is empty.
func NewFileStorage(dir string) *FileStorage {
	if dir == "" {
		dir = os.TempDir()
	}
	return &FileStorage{dir: dir}
}

// Path returns the file that holds the record for id.
func (store *FileStorage) Path(id model.Identity) string {
	return filepath.Join(store.dir, filePrefix+id.Key()+".json")
}

func (store *FileStorage) Load(ctx context.Context, id model.Identity) (*model.DeltaRecord, error) {
	path := store.Path(id)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to read %s: %w", errs.ErrPersistence, path, err)
	}

	var rec model.DeltaRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.ObservedAt.IsZero() {
		// treated as a first run
		return nil, nil
	}
	return &rec, nil
}

func (store *FileStorage) Save(ctx context.Context, id model.Identity, rec model.DeltaRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal record: %w", errs.ErrPersistence, err)
	}

	tmp, err := os.CreateTemp(store.dir, filePrefix+"*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %w", errs.ErrPersistence, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: failed to write %s: %w", errs.ErrPersistence, tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to close %s: %w", errs.ErrPersistence, tmp.Name(), err)
	}

	path := store.Path(id)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: failed to replace %s: %w", errs.ErrPersistence, path, err)
	}
	return nil
}
