// Package badgerdb implements the repository interfaces on an embedded
// BadgerDB document store. Entities are JSON documents under typed key
// prefixes; multi-entity mutations share one Badger transaction.
package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/juhorekonen/kanban/internal/errs"
	"github.com/juhorekonen/kanban/internal/repository"
)

// Config holds BadgerDB settings.
type Config struct {
	// Path is the database directory. Created if missing. Ignored when
	// InMemory is set.
	Path string
	// InMemory keeps all data in RAM; used by tests.
	InMemory bool
	// Logger receives BadgerDB's internal messages. Nil disables them.
	Logger *zap.Logger
}

// Store implements repository.Store on BadgerDB.
type Store struct {
	db *badger.DB
}

var _ repository.Store = (*Store)(nil)

// Open opens or creates the database.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("badgerdb: path is required for a persistent database")
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("badgerdb: create directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{s: cfg.Logger.Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerdb: open: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a throwaway in-memory store for tests.
func OpenInMemory() (*Store, error) {
	return Open(Config{InMemory: true})
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Users() repository.UserRepository       { return &userRepo{r: s.db} }
func (s *Store) Boards() repository.BoardRepository     { return &boardRepo{r: s.db} }
func (s *Store) Columns() repository.ColumnRepository   { return &columnRepo{r: s.db} }
func (s *Store) Cards() repository.CardRepository       { return &cardRepo{r: s.db} }
func (s *Store) Comments() repository.CommentRepository { return &commentRepo{r: s.db} }

// Update runs fn inside a single read-write transaction. Badger detects
// conflicting concurrent transactions at commit; that surfaces as ErrConflict.
func (s *Store) Update(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return fn(&storeTx{r: txnRunner{txn: txn}})
	})
	if errors.Is(err, badger.ErrConflict) {
		return errs.ErrConflict
	}
	return err
}

// storeTx binds the repositories to one open transaction.
type storeTx struct {
	r txnRunner
}

var _ repository.Tx = (*storeTx)(nil)

func (t *storeTx) Boards() repository.BoardRepository     { return &boardRepo{r: t.r} }
func (t *storeTx) Columns() repository.ColumnRepository   { return &columnRepo{r: t.r} }
func (t *storeTx) Cards() repository.CardRepository       { return &cardRepo{r: t.r} }
func (t *storeTx) Comments() repository.CommentRepository { return &commentRepo{r: t.r} }

// runner abstracts "run against the whole DB" from "run against an open txn"
// so the same repository code serves both.
type runner interface {
	View(fn func(txn *badger.Txn) error) error
	Update(fn func(txn *badger.Txn) error) error
}

type txnRunner struct {
	txn *badger.Txn
}

func (t txnRunner) View(fn func(txn *badger.Txn) error) error   { return fn(t.txn) }
func (t txnRunner) Update(fn func(txn *badger.Txn) error) error { return fn(t.txn) }

// badgerLogger adapts zap to BadgerDB's Logger interface.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...any)   { l.s.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...any) { l.s.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...any)    { l.s.Infof(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...any)   { l.s.Debugf(format, args...) }
