package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/juhorekonen/kanban/internal/errs"
	"github.com/juhorekonen/kanban/internal/model"
	"github.com/juhorekonen/kanban/internal/repository"
)

// BoardService defines column, card and comment operations for one
// authenticated user. Every entity-targeting operation resolves the entity
// first (ErrNotFound) and rejects entities owned by someone else
// (ErrForbidden); the username recorded at creation never changes.
type BoardService interface {
	// ListColumns returns the user's columns in board order.
	ListColumns(ctx context.Context, username string) ([]model.Column, error)
	// CreateColumn appends a new column to the end of the board.
	CreateColumn(ctx context.Context, username, title string) (*model.Column, error)
	// RenameColumn replaces the column title.
	RenameColumn(ctx context.Context, username string, columnID uuid.UUID, cmd model.RenameColumn) (*model.Column, error)
	// DeleteColumn removes the column with all its cards and their comments.
	DeleteColumn(ctx context.Context, username string, columnID uuid.UUID) error

	// ListCards returns the column's cards in sequence order.
	ListCards(ctx context.Context, username string, columnID uuid.UUID) ([]model.Card, error)
	// CreateCard appends a new card to the end of the column.
	CreateCard(ctx context.Context, username string, columnID uuid.UUID, nc model.NewCard) (*model.Card, error)
	// UpdateCard applies the non-nil fields of cmd.
	UpdateCard(ctx context.Context, username string, cardID uuid.UUID, cmd model.UpdateCard) (*model.Card, error)
	// DeleteCard removes the card and its comments and pulls it from its column.
	DeleteCard(ctx context.Context, username string, cardID uuid.UUID) error

	// MoveCard swaps the card with its neighbor inside its column.
	// ErrBoundary when the card is already first/last.
	MoveCard(ctx context.Context, username string, cardID uuid.UUID, dir model.MoveDirection) (*model.Column, error)
	// SwitchCard transfers the card to the neighboring column, appending it
	// to the target's sequence. ErrBoundary when the source column is already
	// the first/last column of the board.
	SwitchCard(ctx context.Context, username string, cardID, sourceColumnID uuid.UUID, dir model.SwitchDirection) (*model.Card, error)

	// ListComments returns the card's comments in sequence order.
	ListComments(ctx context.Context, username string, cardID uuid.UUID) ([]model.Comment, error)
	// CreateComment appends a new comment to the card.
	CreateComment(ctx context.Context, username string, cardID uuid.UUID, content string) (*model.Comment, error)
	// UpdateComment replaces the comment content.
	UpdateComment(ctx context.Context, username string, commentID uuid.UUID, cmd model.UpdateComment) (*model.Comment, error)
}

type BoardServiceImpl struct {
	store repository.Store
}

// NewBoardService constructs BoardService on the given store.
func NewBoardService(store repository.Store) *BoardServiceImpl {
	return &BoardServiceImpl{store: store}
}

// --- ownership guard ---

func guardColumn(ctx context.Context, cols repository.ColumnRepository, username string, id uuid.UUID) (*model.Column, error) {
	col, err := cols.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if col.Username != username {
		return nil, errs.ErrForbidden
	}
	return col, nil
}

func guardCard(ctx context.Context, cards repository.CardRepository, username string, id uuid.UUID) (*model.Card, error) {
	card, err := cards.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if card.Username != username {
		return nil, errs.ErrForbidden
	}
	return card, nil
}

func guardComment(ctx context.Context, cms repository.CommentRepository, username string, id uuid.UUID) (*model.Comment, error) {
	cm, err := cms.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cm.Username != username {
		return nil, errs.ErrForbidden
	}
	return cm, nil
}

// --- columns ---

func (s *BoardServiceImpl) ListColumns(ctx context.Context, username string) ([]model.Column, error) {
	board, err := s.store.Boards().Get(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.store.Columns().GetMany(ctx, board.Columns)
}

func (s *BoardServiceImpl) CreateColumn(ctx context.Context, username, title string) (*model.Column, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	col := &model.Column{
		ID:        id,
		Username:  username,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	err = s.store.Update(ctx, func(tx repository.Tx) error {
		board, err := tx.Boards().Get(ctx, username)
		if err != nil {
			return err
		}
		board.Columns = append(board.Columns, id)
		if err := tx.Boards().Put(ctx, board); err != nil {
			return err
		}
		return tx.Columns().Put(ctx, col)
	})
	if err != nil {
		return nil, err
	}
	return col, nil
}

func (s *BoardServiceImpl) RenameColumn(ctx context.Context, username string, columnID uuid.UUID, cmd model.RenameColumn) (*model.Column, error) {
	col, err := guardColumn(ctx, s.store.Columns(), username, columnID)
	if err != nil {
		return nil, err
	}
	col.Title = cmd.Title
	if err := s.store.Columns().Put(ctx, col); err != nil {
		return nil, err
	}
	return col, nil
}

// DeleteColumn cascades: comments of the column's cards go first, then the
// cards, then the column itself and its slot in the board order. Everything
// happens in one transaction so no orphan survives a partial failure.
func (s *BoardServiceImpl) DeleteColumn(ctx context.Context, username string, columnID uuid.UUID) error {
	return s.store.Update(ctx, func(tx repository.Tx) error {
		col, err := guardColumn(ctx, tx.Columns(), username, columnID)
		if err != nil {
			return err
		}

		// Collect by ColumnID rather than by the column's sequence, so a
		// sequence that drifted out of sync still leaves zero orphans.
		cards, err := tx.Cards().ListByColumn(ctx, col.ID)
		if err != nil {
			return err
		}
		var cardIDs []uuid.UUID
		var commentIDs []uuid.UUID
		for i := range cards {
			cardIDs = append(cardIDs, cards[i].ID)
			commentIDs = append(commentIDs, cards[i].Comments...)
		}

		if err := tx.Comments().DeleteMany(ctx, commentIDs); err != nil {
			return err
		}
		if err := tx.Cards().DeleteMany(ctx, cardIDs); err != nil {
			return err
		}
		if err := tx.Columns().Delete(ctx, col.ID); err != nil {
			return err
		}

		board, err := tx.Boards().Get(ctx, username)
		if err != nil {
			return err
		}
		board.Columns = removeID(board.Columns, col.ID)
		return tx.Boards().Put(ctx, board)
	})
}

// --- cards ---

func (s *BoardServiceImpl) ListCards(ctx context.Context, username string, columnID uuid.UUID) ([]model.Card, error) {
	col, err := guardColumn(ctx, s.store.Columns(), username, columnID)
	if err != nil {
		return nil, err
	}
	return s.store.Cards().GetMany(ctx, col.Cards)
}

func (s *BoardServiceImpl) CreateCard(ctx context.Context, username string, columnID uuid.UUID, nc model.NewCard) (*model.Card, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	card := &model.Card{
		ID:        id,
		Username:  username,
		ColumnID:  columnID,
		Title:     nc.Title,
		Content:   nc.Content,
		Color:     nc.Color,
		Estimate:  nc.Estimate,
		CreatedAt: time.Now().UTC(),
	}
	err = s.store.Update(ctx, func(tx repository.Tx) error {
		col, err := guardColumn(ctx, tx.Columns(), username, columnID)
		if err != nil {
			return err
		}
		col.Cards = append(col.Cards, id)
		if err := tx.Columns().Put(ctx, col); err != nil {
			return err
		}
		return tx.Cards().Put(ctx, card)
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (s *BoardServiceImpl) UpdateCard(ctx context.Context, username string, cardID uuid.UUID, cmd model.UpdateCard) (*model.Card, error) {
	card, err := guardCard(ctx, s.store.Cards(), username, cardID)
	if err != nil {
		return nil, err
	}
	if cmd.Title != nil {
		card.Title = *cmd.Title
	}
	if cmd.Content != nil {
		card.Content = *cmd.Content
	}
	if cmd.Color != nil {
		card.Color = *cmd.Color
	}
	if cmd.Estimate != nil {
		card.Estimate = *cmd.Estimate
	}
	if err := s.store.Cards().Put(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// DeleteCard cascades to the card's comments and pulls the card id from its
// owning column's sequence, all in one transaction.
func (s *BoardServiceImpl) DeleteCard(ctx context.Context, username string, cardID uuid.UUID) error {
	return s.store.Update(ctx, func(tx repository.Tx) error {
		card, err := guardCard(ctx, tx.Cards(), username, cardID)
		if err != nil {
			return err
		}
		if err := tx.Comments().DeleteMany(ctx, card.Comments); err != nil {
			return err
		}
		if err := tx.Cards().Delete(ctx, card.ID); err != nil {
			return err
		}

		col, err := tx.Columns().Get(ctx, card.ColumnID)
		if err != nil {
			// The owning column is already gone; nothing left to unlink.
			if errors.Is(err, errs.ErrNotFound) {
				return nil
			}
			return err
		}
		col.Cards = removeID(col.Cards, card.ID)
		return tx.Columns().Put(ctx, col)
	})
}

// --- ordering engine ---

func (s *BoardServiceImpl) MoveCard(ctx context.Context, username string, cardID uuid.UUID, dir model.MoveDirection) (*model.Column, error) {
	var out *model.Column
	err := s.store.Update(ctx, func(tx repository.Tx) error {
		card, err := guardCard(ctx, tx.Cards(), username, cardID)
		if err != nil {
			return err
		}
		col, err := guardColumn(ctx, tx.Columns(), username, card.ColumnID)
		if err != nil {
			return err
		}

		i := indexOf(col.Cards, card.ID)
		if i < 0 {
			return errs.ErrNotInSequence
		}
		switch {
		case dir == model.MoveUp && i > 0:
			col.Cards[i-1], col.Cards[i] = col.Cards[i], col.Cards[i-1]
		case dir == model.MoveDown && i < len(col.Cards)-1:
			col.Cards[i+1], col.Cards[i] = col.Cards[i], col.Cards[i+1]
		default:
			return errs.ErrBoundary
		}
		if err := tx.Columns().Put(ctx, col); err != nil {
			return err
		}
		out = col
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SwitchCard pulls the card from the source column, appends it to the
// neighboring column in board order and reassigns the card's ColumnID. The
// three writes share one transaction; either all of them persist or none.
func (s *BoardServiceImpl) SwitchCard(ctx context.Context, username string, cardID, sourceColumnID uuid.UUID, dir model.SwitchDirection) (*model.Card, error) {
	var out *model.Card
	err := s.store.Update(ctx, func(tx repository.Tx) error {
		card, err := guardCard(ctx, tx.Cards(), username, cardID)
		if err != nil {
			return err
		}
		source, err := guardColumn(ctx, tx.Columns(), username, sourceColumnID)
		if err != nil {
			return err
		}
		board, err := tx.Boards().Get(ctx, username)
		if err != nil {
			return err
		}

		pos := indexOf(board.Columns, source.ID)
		if pos < 0 {
			return errs.ErrNotInSequence
		}
		if indexOf(source.Cards, card.ID) < 0 {
			return errs.ErrNotInSequence
		}

		var targetPos int
		switch {
		case dir == model.SwitchLeft && pos > 0:
			targetPos = pos - 1
		case dir == model.SwitchRight && pos < len(board.Columns)-1:
			targetPos = pos + 1
		default:
			return errs.ErrBoundary
		}

		target, err := guardColumn(ctx, tx.Columns(), username, board.Columns[targetPos])
		if err != nil {
			return err
		}

		source.Cards = removeID(source.Cards, card.ID)
		target.Cards = append(target.Cards, card.ID)
		card.ColumnID = target.ID

		if err := tx.Columns().Put(ctx, source); err != nil {
			return err
		}
		if err := tx.Columns().Put(ctx, target); err != nil {
			return err
		}
		if err := tx.Cards().Put(ctx, card); err != nil {
			return err
		}
		out = card
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// --- comments ---

func (s *BoardServiceImpl) ListComments(ctx context.Context, username string, cardID uuid.UUID) ([]model.Comment, error) {
	card, err := guardCard(ctx, s.store.Cards(), username, cardID)
	if err != nil {
		return nil, err
	}
	return s.store.Comments().GetMany(ctx, card.Comments)
}

func (s *BoardServiceImpl) CreateComment(ctx context.Context, username string, cardID uuid.UUID, content string) (*model.Comment, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	cm := &model.Comment{
		ID:        id,
		Username:  username,
		CardID:    cardID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	err = s.store.Update(ctx, func(tx repository.Tx) error {
		card, err := guardCard(ctx, tx.Cards(), username, cardID)
		if err != nil {
			return err
		}
		card.Comments = append(card.Comments, id)
		if err := tx.Cards().Put(ctx, card); err != nil {
			return err
		}
		return tx.Comments().Put(ctx, cm)
	})
	if err != nil {
		return nil, err
	}
	return cm, nil
}

func (s *BoardServiceImpl) UpdateComment(ctx context.Context, username string, commentID uuid.UUID, cmd model.UpdateComment) (*model.Comment, error) {
	cm, err := guardComment(ctx, s.store.Comments(), username, commentID)
	if err != nil {
		return nil, err
	}
	cm.Content = cmd.Content
	if err := s.store.Comments().Put(ctx, cm); err != nil {
		return nil, err
	}
	return cm, nil
}

// --- helpers ---

func indexOf(ids []uuid.UUID, id uuid.UUID) int {
	for i := range ids {
		if ids[i] == id {
			return i
		}
	}
	return -1
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
