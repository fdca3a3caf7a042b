package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"imbridge/pkg/imbridge"
	"imbridge/pkg/journal"
	"imbridge/pkg/journal/sqlite/migrations"
)

type Store struct {
	db *sql.DB
}

func New(filename string, log *zap.SugaredLogger) (*Store, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := migrations.Migrate(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Record(ev imbridge.Event, decision imbridge.Decision) error {
	_, err := s.db.Exec(
		`INSERT INTO decisions (at, source, layout, decision) VALUES (?, ?, ?, ?)`,
		time.Now().UnixNano(),
		ev.Source.String(),
		string(ev.Layout),
		string(decision),
	)
	if err != nil {
		return fmt.Errorf("sqlite insert: %w", err)
	}
	return nil
}

func (s *Store) Recent(n int) ([]journal.Entry, error) {
	rows, err := s.db.Query(
		`SELECT at, source, layout, decision FROM decisions ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("sqlite select: %w", err)
	}
	defer rows.Close()

	var out []journal.Entry
	for rows.Next() {
		var at int64
		var entry journal.Entry
		if err := rows.Scan(&at, &entry.Source, &entry.Layout, &entry.Decision); err != nil {
			return nil, fmt.Errorf("sqlite scan: %w", err)
		}
		entry.Time = time.Unix(0, at)
		out = append(out, entry)
	}

	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
