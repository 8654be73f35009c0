package repository

import "context"

// Tx exposes the board-side repositories bound to a single storage transaction.
type Tx interface {
	Boards() BoardRepository
	Columns() ColumnRepository
	Cards() CardRepository
	Comments() CommentRepository
}

// Store bundles the entity repositories with a transactional runner.
// Mutations that touch several entities (switching a card across columns,
// cascade deletes) run through Update so they commit or abort as one unit.
type Store interface {
	Users() UserRepository
	Boards() BoardRepository
	Columns() ColumnRepository
	Cards() CardRepository
	Comments() CommentRepository

	// Update runs fn inside one read-write transaction. ErrConflict is
	// returned when a concurrent transaction touched the same keys.
	Update(ctx context.Context, fn func(tx Tx) error) error
}
