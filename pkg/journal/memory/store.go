package memory

import (
	"sync"
	"time"

	"imbridge/pkg/imbridge"
	"imbridge/pkg/journal"
)

type Store struct {
	mu      sync.Mutex
	entries []journal.Entry
}

func New() *Store {
	return &Store{}
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
	return nil
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
	return nil
}
