package filestore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"quotescraper/internal/quote"
)

// ErrIOFailure wraps every write or read failure of an output artifact.
var ErrIOFailure = errors.New("io failure")

// Store writes the run's artifacts to the local filesystem. Every write
// replaces the previous file in one rename, so readers never see a partial file.
type Store struct {
	Perm os.FileMode
}

func New() *Store {
	return &Store{Perm: 0644}
}

// EncodeRecord renders the record as UTF-8 JSON with the given indent and no
// HTML or non-ASCII escaping.
func EncodeRecord(rec quote.Record, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteRecord writes rec to path as 4-space indented JSON.
func (s *Store) WriteRecord(path string, rec quote.Record) error {
	data, err := EncodeRecord(rec, "    ")
	if err != nil {
		return fmt.Errorf("%w: encode record: %v", ErrIOFailure, err)
	}
	return s.replace(path, data)
}

// WriteScreenshot writes the PNG side artifact.
func (s *Store) WriteScreenshot(path string, png []byte) error {
	return s.replace(path, png)
}

// ReadRecord loads a previously written record.
func (s *Store) ReadRecord(path string) (quote.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return quote.Record{}, fmt.Errorf("%w: read %s: %v", ErrIOFailure, path, err)
	}
	var rec quote.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return quote.Record{}, fmt.Errorf("%w: decode %s: %v", ErrIOFailure, path, err)
	}
	return rec, nil
}

func (s *Store) replace(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create dir %s: %v", ErrIOFailure, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", ErrIOFailure, path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrIOFailure, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrIOFailure, path, err)
	}

	perm := s.Perm
	if perm == 0 {
		perm = 0644
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("%w: chmod %s: %v", ErrIOFailure, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: rename into %s: %v", ErrIOFailure, path, err)
	}
	return nil
}
