package badgerdb

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/gofrs/uuid/v5"

	"github.com/juhorekonen/kanban/internal/errs"
	"github.com/juhorekonen/kanban/internal/model"
)

// Key prefixes. One document per entity, keyed by its natural id.
const (
	userPrefix    = "user:"
	boardPrefix   = "board:"
	columnPrefix  = "col:"
	cardPrefix    = "card:"
	commentPrefix = "cmt:"
)

func userKey(username string) []byte  { return []byte(userPrefix + username) }
func boardKey(username string) []byte { return []byte(boardPrefix + username) }
func columnKey(id uuid.UUID) []byte   { return []byte(columnPrefix + id.String()) }
func cardKey(id uuid.UUID) []byte     { return []byte(cardPrefix + id.String()) }
func commentKey(id uuid.UUID) []byte  { return []byte(commentPrefix + id.String()) }

func getDoc(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return errs.ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setDoc(txn *badger.Txn, key []byte, v any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, buf)
}

// --- users ---

type userRepo struct{ r runner }

func (u *userRepo) Create(_ context.Context, usr *model.User) error {
	return u.r.Update(func(txn *badger.Txn) error {
		key := userKey(usr.Username)
		if _, err := txn.Get(key); err == nil {
			return errs.ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return setDoc(txn, key, usr)
	})
}

func (u *userRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	var usr model.User
	err := u.r.View(func(txn *badger.Txn) error {
		return getDoc(txn, userKey(username), &usr)
	})
	if err != nil {
		return nil, err
	}
	return &usr, nil
}

// --- boards ---

type boardRepo struct{ r runner }

func (b *boardRepo) Get(_ context.Context, username string) (*model.Board, error) {
	board := model.Board{Username: username}
	err := b.r.View(func(txn *badger.Txn) error {
		err := getDoc(txn, boardKey(username), &board)
		if errors.Is(err, errs.ErrNotFound) {
			// A user without columns has an empty board, not a missing one.
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &board, nil
}

func (b *boardRepo) Put(_ context.Context, board *model.Board) error {
	return b.r.Update(func(txn *badger.Txn) error {
		return setDoc(txn, boardKey(board.Username), board)
	})
}

// --- columns ---

type columnRepo struct{ r runner }

func (c *columnRepo) Put(_ context.Context, col *model.Column) error {
	return c.r.Update(func(txn *badger.Txn) error {
		return setDoc(txn, columnKey(col.ID), col)
	})
}

func (c *columnRepo) Get(_ context.Context, id uuid.UUID) (*model.Column, error) {
	var col model.Column
	err := c.r.View(func(txn *badger.Txn) error {
		return getDoc(txn, columnKey(id), &col)
	})
	if err != nil {
		return nil, err
	}
	return &col, nil
}

func (c *columnRepo) GetMany(_ context.Context, ids []uuid.UUID) ([]model.Column, error) {
	out := make([]model.Column, 0, len(ids))
	err := c.r.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			var col model.Column
			err := getDoc(txn, columnKey(id), &col)
			if errors.Is(err, errs.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			out = append(out, col)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *columnRepo) Delete(_ context.Context, id uuid.UUID) error {
	return c.r.Update(func(txn *badger.Txn) error {
		return txn.Delete(columnKey(id))
	})
}

// --- cards ---

type cardRepo struct{ r runner }

func (c *cardRepo) Put(_ context.Context, card *model.Card) error {
	return c.r.Update(func(txn *badger.Txn) error {
		return setDoc(txn, cardKey(card.ID), card)
	})
}

func (c *cardRepo) Get(_ context.Context, id uuid.UUID) (*model.Card, error) {
	var card model.Card
	err := c.r.View(func(txn *badger.Txn) error {
		return getDoc(txn, cardKey(id), &card)
	})
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *cardRepo) GetMany(_ context.Context, ids []uuid.UUID) ([]model.Card, error) {
	out := make([]model.Card, 0, len(ids))
	err := c.r.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			var card model.Card
			err := getDoc(txn, cardKey(id), &card)
			if errors.Is(err, errs.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			out = append(out, card)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *cardRepo) ListByColumn(_ context.Context, columnID uuid.UUID) ([]model.Card, error) {
	var out []model.Card
	err := c.r.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(cardPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var card model.Card
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &card)
			}); err != nil {
				return err
			}
			if card.ColumnID == columnID {
				out = append(out, card)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *cardRepo) Delete(_ context.Context, id uuid.UUID) error {
	return c.r.Update(func(txn *badger.Txn) error {
		return txn.Delete(cardKey(id))
	})
}

func (c *cardRepo) DeleteMany(_ context.Context, ids []uuid.UUID) error {
	return c.r.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := txn.Delete(cardKey(id)); err != nil {
				return err
			}
		}
		return nil
	})
}

// --- comments ---

type commentRepo struct{ r runner }

func (c *commentRepo) Put(_ context.Context, cm *model.Comment) error {
	return c.r.Update(func(txn *badger.Txn) error {
		return setDoc(txn, commentKey(cm.ID), cm)
	})
}

func (c *commentRepo) Get(_ context.Context, id uuid.UUID) (*model.Comment, error) {
	var cm model.Comment
	err := c.r.View(func(txn *badger.Txn) error {
		return getDoc(txn, commentKey(id), &cm)
	})
	if err != nil {
		return nil, err
	}
	return &cm, nil
}

func (c *commentRepo) GetMany(_ context.Context, ids []uuid.UUID) ([]model.Comment, error) {
	out := make([]model.Comment, 0, len(ids))
	err := c.r.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			var cm model.Comment
			err := getDoc(txn, commentKey(id), &cm)
			if errors.Is(err, errs.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			out = append(out, cm)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *commentRepo) DeleteMany(_ context.Context, ids []uuid.UUID) error {
	return c.r.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := txn.Delete(commentKey(id)); err != nil {
				return err
			}
		}
		return nil
	})
}
