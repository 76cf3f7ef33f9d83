package logstore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the log in a plain text file.
// The mutex only guards against the HTTP status server reading while the
// control loop appends; the control loop is the sole writer.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// Open prepares a FileStore at path. It creates the parent directory and
// checks that it is writable. A failure here means the device cannot keep
// logs at all.
func Open(path string) (*FileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrStorageUnavailable, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".write-check-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %s not writable: %v", ErrStorageUnavailable, dir, err)
	}
	name := tmp.Name()
	tmp.Close()
	os.Remove(name)

	return &FileStore{path: path}, nil
}

// Path returns the log file location.
func (s *FileStore) Path() string {
	return s.path
}

// Append writes one line to the end of the file.
func (s *FileStore) Append(e Entry) error {
	if err := validate(e); err != nil {
		return err
	}
	line := e.Line()

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open log: %v", ErrStorageUnavailable, err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("%w: write log: %v", ErrStorageUnavailable, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close log: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// ReadAll returns all entries in file order. A missing file is an empty log.
func (s *FileStore) ReadAll() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: open log: %v", ErrStorageUnavailable, err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		e := ParseLine(scanner.Text())
		if e.Timestamp == "" && e.Message == "" {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read log: %v", ErrStorageUnavailable, err)
	}
	return entries, nil
}

// Clear deletes the log file.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: remove log: %v", ErrStorageUnavailable, err)
	}
	return nil
}
