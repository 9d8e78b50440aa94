// Package cache is the Collision Engine's persistent FSM cache
// (spec.md §4.4 "Cache"): a sqlite-backed store keyed by
// domain++canonical(match_tree), in front of which sits an in-process
// LRU so a single run doesn't round-trip to sqlite for a rule it has
// already rehydrated.
package cache

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"encoding/gob"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/svt/orm/internal/collision/automaton"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Store is the persistent FSM cache. Get and Stage are both called from
// pool workers during FSM construction; the staged set is guarded by a
// mutex, so concurrent Stage calls are safe.
type Store struct {
	db *sql.DB
	l1 *lru.Cache[string, *automaton.DFA]

	mu     sync.Mutex
	staged map[string]stagedEntry
}

type stagedEntry struct {
	regexSource string
	dfa         *automaton.DFA
}

// Open opens (creating if necessary) the sqlite file at path and
// brings its schema up to date via goose. l1Size bounds the in-process
// LRU layer; pass 0 for a sane default.
func Open(ctx context.Context, path string, l1Size int) (*Store, error) {
	if l1Size <= 0 {
		l1Size = 4096
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: opening sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite is not safe for concurrent writers

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: setting goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: running migrations: %w", err)
	}

	l1, err := lru.New[string, *automaton.DFA](l1Size)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: constructing L1 cache: %w", err)
	}

	return &Store{db: db, l1: l1, staged: make(map[string]stagedEntry)}, nil
}

// Close releases the underlying sqlite connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get looks up key, first in the L1 LRU, then in sqlite. A sqlite hit
// populates L1 before returning.
func (s *Store) Get(ctx context.Context, key string) (*automaton.DFA, bool, error) {
	if d, ok := s.l1.Get(key); ok {
		return d, true, nil
	}

	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT dfa_blob FROM fsm_cache WHERE cache_key = ?`, key).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: reading %q: %w", key, err)
	}

	d, err := decodeDFA(blob)
	if err != nil {
		return nil, false, fmt.Errorf("cache: decoding cached automaton for %q: %w", key, err)
	}
	s.l1.Add(key, d)
	return d, true, nil
}

// Stage records d under key as a candidate for persistence. Per
// spec.md §4.4, staged entries are only actually written by Flush for
// keys the caller never calls Discard on — "a cached FSM is retained
// only if it did not collide with anything in this run".
func (s *Store) Stage(key, regexSource string, d *automaton.DFA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged[key] = stagedEntry{regexSource: regexSource, dfa: d}
}

// Discard removes key from the staged set, e.g. because the rule it
// belongs to collided with another this run.
func (s *Store) Discard(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.staged, key)
}

// Flush rewrites the whole fsm_cache table from the staged set inside
// one transaction: spec.md §4.4 describes the cache as fully rebuilt
// each run from (retained disjoint entries ∪ fresh disjoint entries),
// which Stage/Discard have already reduced to "whatever is still
// staged at Flush time".
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cache: beginning flush transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fsm_cache`); err != nil {
		return fmt.Errorf("cache: clearing table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO fsm_cache (cache_key, regex_source, dfa_blob) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("cache: preparing insert: %w", err)
	}
	defer stmt.Close()

	for key, entry := range s.staged {
		blob, err := encodeDFA(entry.dfa)
		if err != nil {
			return fmt.Errorf("cache: encoding automaton for %q: %w", key, err)
		}
		if _, err := stmt.ExecContext(ctx, key, entry.regexSource, blob); err != nil {
			return fmt.Errorf("cache: writing %q: %w", key, err)
		}
	}

	return tx.Commit()
}

func encodeDFA(d *automaton.DFA) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeDFA(blob []byte) (*automaton.DFA, error) {
	var d automaton.DFA
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}
