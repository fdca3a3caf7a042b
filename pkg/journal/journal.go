// Package journal persists debouncer decisions so suppression behavior can
// be inspected after the fact. Backends implement both this package's Store
// and imbridge.Journal.
package journal

import "time"

type Entry struct {
	Time     time.Time
	Source   string
	Layout   string
	Decision string
}

type Store interface {
	// Recent returns up to n entries, newest first.
	Recent(n int) ([]Entry, error)
	Close() error
}
