package json

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"imbridge/pkg/imbridge"
	"imbridge/pkg/journal"
)

// Store keeps the journal in a single JSON file, rewritten on every record.
// Fine for the event rates involved: humans do not switch layouts often.
type Store struct {
	mu      sync.Mutex
	file    *os.File
	entries []journal.Entry
}

func New(filename string) (*Store, error) {
	fileExists := true
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		fileExists = false
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	store := &Store{file: file}

	if fileExists {
		if err := store.load(); err != nil {
			file.Close()
			return nil, fmt.Errorf("load: %w", err)
		}
	}

	return store, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Seek(0, 0); err != nil {
		return fmt.Errorf("seek: %w", err)
	}

	dec := json.NewDecoder(s.file)
	if err := dec.Decode(&s.entries); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	return nil
}

func (s *Store) Record(ev imbridge.Event, decision imbridge.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, journal.Entry{
		Time:     time.Now(),
		Source:   ev.Source.String(),
		Layout:   string(ev.Layout),
		Decision: string(decision),
	})

	return s.persist()
}

func (s *Store) persist() error {
	if _, err := s.file.Seek(0, 0); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	if err := s.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	enc := json.NewEncoder(s.file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.entries); err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	return s.file.Sync()
}

func (s *Store) Recent(n int) ([]journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > len(s.entries) {
		n = len(s.entries)
	}

	out := make([]journal.Entry, 0, n)
	for i := len(s.entries) - 1; i >= len(s.entries)-n; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}

func (s *Store) Close() error {
	return s.file.Close()
}
