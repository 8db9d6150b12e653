// Package sqlite provides SQLite-backed implementations of the store
// interfaces. The co-occurrence table keeps the record payload in its
// serialized text form; decoding is the cooc package's concern.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cognicore/lexrel/pkg/lexrel/store"
)

// CoocDB implements store.CoocStore on a SQLite file.
type CoocDB struct {
	db *sql.DB
}

// OpenCooc opens (creating if necessary) the co-occurrence score
// database at path.
func OpenCooc(ctx context.Context, path string) (*CoocDB, error) {
	db, err := open(ctx, path, coocSchema)
	if err != nil {
		return nil, fmt.Errorf("open cooc store %q: %w", path, err)
	}
	return &CoocDB{db: db}, nil
}

const coocSchema = `
CREATE TABLE IF NOT EXISTS cooc_scores (
	word TEXT PRIMARY KEY,
	payload TEXT NOT NULL
);`

// Close closes the database connection.
func (c *CoocDB) Close() error {
	return c.db.Close()
}

// Get implements store.CoocStore.
func (c *CoocDB) Get(ctx context.Context, word string) (string, bool, error) {
	var payload string
	err := c.db.QueryRowContext(ctx,
		"SELECT payload FROM cooc_scores WHERE word = ?", word).Scan(&payload)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return payload, true, nil
}

// PutRecord stores a serialized record. Used by store builders and test
// fixtures; the prediction path never writes.
func (c *CoocDB) PutRecord(ctx context.Context, word, payload string) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT INTO cooc_scores(word, payload) VALUES(?, ?) ON CONFLICT(word) DO UPDATE SET payload = excluded.payload",
		word, payload)
	return err
}

// EntryDB implements store.EntrySearcher on a SQLite file. List and
// feature columns are JSON-encoded.
type EntryDB struct {
	db *sql.DB
}

// OpenEntries opens (creating if necessary) the entry index database at
// path.
func OpenEntries(ctx context.Context, path string) (*EntryDB, error) {
	db, err := open(ctx, path, entrySchema)
	if err != nil {
		return nil, fmt.Errorf("open entry index %q: %w", path, err)
	}
	return &EntryDB{db: db}, nil
}

const entrySchema = `
CREATE TABLE IF NOT EXISTS entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	word TEXT NOT NULL,
	grade INTEGER NOT NULL DEFAULT 0,
	probability REAL NOT NULL DEFAULT 0,
	parents TEXT,
	children TEXT,
	related TEXT,
	features TEXT
);
CREATE INDEX IF NOT EXISTS idx_entries_word ON entries(word);
CREATE INDEX IF NOT EXISTS idx_entries_grade ON entries(grade);`

// Close closes the database connection.
func (e *EntryDB) Close() error {
	return e.db.Close()
}

// SearchExact implements store.EntrySearcher.
func (e *EntryDB) SearchExact(ctx context.Context, word string) ([]store.Entry, error) {
	rows, err := e.db.QueryContext(ctx,
		"SELECT word, grade, probability, parents, children, related, features FROM entries WHERE word = ? ORDER BY id",
		word)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// SearchByGrade implements store.EntrySearcher. pageIndex starts at 1.
func (e *EntryDB) SearchByGrade(ctx context.Context, pageSize, pageIndex int, ascending bool) ([]store.Entry, error) {
	if pageSize <= 0 || pageIndex <= 0 {
		return nil, fmt.Errorf("invalid page size %d / index %d", pageSize, pageIndex)
	}
	order := "ASC"
	if !ascending {
		order = "DESC"
	}
	query := fmt.Sprintf(
		"SELECT word, grade, probability, parents, children, related, features FROM entries ORDER BY grade %s, id %s LIMIT ? OFFSET ?",
		order, order)
	rows, err := e.db.QueryContext(ctx, query, pageSize, (pageIndex-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// PutEntry inserts an entry. Used by index builders and test fixtures.
func (e *EntryDB) PutEntry(ctx context.Context, entry store.Entry) error {
	parents, err := encodeList(entry.Parents)
	if err != nil {
		return err
	}
	children, err := encodeList(entry.Children)
	if err != nil {
		return err
	}
	related, err := encodeList(entry.Related)
	if err != nil {
		return err
	}
	features, err := json.Marshal(entry.Features)
	if err != nil {
		return err
	}
	_, err = e.db.ExecContext(ctx,
		"INSERT INTO entries(word, grade, probability, parents, children, related, features) VALUES(?, ?, ?, ?, ?, ?, ?)",
		entry.Word, entry.Grade, entry.Probability, parents, children, related, string(features))
	return err
}

func scanEntries(rows *sql.Rows) ([]store.Entry, error) {
	var out []store.Entry
	for rows.Next() {
		var entry store.Entry
		var parents, children, related, features sql.NullString
		if err := rows.Scan(&entry.Word, &entry.Grade, &entry.Probability,
			&parents, &children, &related, &features); err != nil {
			return nil, err
		}
		var err error
		if entry.Parents, err = decodeList(parents); err != nil {
			return nil, fmt.Errorf("entry %q parents: %w", entry.Word, err)
		}
		if entry.Children, err = decodeList(children); err != nil {
			return nil, fmt.Errorf("entry %q children: %w", entry.Word, err)
		}
		if entry.Related, err = decodeList(related); err != nil {
			return nil, fmt.Errorf("entry %q related: %w", entry.Word, err)
		}
		if features.Valid && features.String != "" {
			if err := json.Unmarshal([]byte(features.String), &entry.Features); err != nil {
				return nil, fmt.Errorf("entry %q features: %w", entry.Word, err)
			}
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func encodeList(list []string) (string, error) {
	if len(list) == 0 {
		return "", nil
	}
	data, err := json.Marshal(list)
	return string(data), err
}

func decodeList(col sql.NullString) ([]string, error) {
	if !col.Valid || col.String == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(col.String), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func open(ctx context.Context, path, schema string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
