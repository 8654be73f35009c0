package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/juhorekonen/kanban/internal/model"
)

// BoardRepository stores the per-user column order.
type BoardRepository interface {
	// Get returns the board for username, or an empty board if none is stored yet.
	Get(ctx context.Context, username string) (*model.Board, error)
	// Put stores the board.
	Put(ctx context.Context, b *model.Board) error
}

// ColumnRepository provides column storage. Put covers both create and update.
type ColumnRepository interface {
	Put(ctx context.Context, c *model.Column) error
	// Get loads a column; ErrNotFound if absent.
	Get(ctx context.Context, id uuid.UUID) (*model.Column, error)
	// GetMany loads columns preserving the order of ids; missing ids are skipped.
	GetMany(ctx context.Context, ids []uuid.UUID) ([]model.Column, error)
	// Delete removes a column. Deleting an absent id is a no-op; existence
	// checks belong to the caller.
	Delete(ctx context.Context, id uuid.UUID) error
}

// CardRepository provides card storage.
type CardRepository interface {
	Put(ctx context.Context, c *model.Card) error
	// Get loads a card; ErrNotFound if absent.
	Get(ctx context.Context, id uuid.UUID) (*model.Card, error)
	// GetMany loads cards preserving the order of ids; missing ids are skipped.
	GetMany(ctx context.Context, ids []uuid.UUID) ([]model.Card, error)
	// ListByColumn returns every card whose ColumnID equals columnID,
	// regardless of the column's sequence. Used by cascades and integrity checks.
	ListByColumn(ctx context.Context, columnID uuid.UUID) ([]model.Card, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, ids []uuid.UUID) error
}

// CommentRepository provides comment storage.
type CommentRepository interface {
	Put(ctx context.Context, c *model.Comment) error
	// Get loads a comment; ErrNotFound if absent.
	Get(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	// GetMany loads comments preserving the order of ids; missing ids are skipped.
	GetMany(ctx context.Context, ids []uuid.UUID) ([]model.Comment, error)
	DeleteMany(ctx context.Context, ids []uuid.UUID) error
}
