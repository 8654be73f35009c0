package badgerdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/juhorekonen/kanban/internal/errs"
	"github.com/juhorekonen/kanban/internal/model"
	"github.com/juhorekonen/kanban/internal/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUserRepo_CreateAndDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: "juho",
		PwdHash:  []byte{1, 2, 3},
		SaltAuth: []byte{4, 5, 6},
	}
	require.NoError(t, s.Users().Create(ctx, u))

	got, err := s.Users().GetByUsername(ctx, "juho")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, u.PwdHash, got.PwdHash)

	err = s.Users().Create(ctx, &model.User{ID: uuid.Must(uuid.NewV4()), Username: "juho"})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)

	_, err = s.Users().GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestBoardRepo_EmptyUntilPut(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b, err := s.Boards().Get(ctx, "juho")
	require.NoError(t, err)
	require.Equal(t, "juho", b.Username)
	require.Empty(t, b.Columns)

	colID := uuid.Must(uuid.NewV4())
	b.Columns = append(b.Columns, colID)
	require.NoError(t, s.Boards().Put(ctx, b))

	b2, err := s.Boards().Get(ctx, "juho")
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{colID}, b2.Columns)
}

func TestColumnRepo_RoundTripAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	col := &model.Column{
		ID:        uuid.Must(uuid.NewV4()),
		Username:  "juho",
		Title:     "Todo",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Columns().Put(ctx, col))

	got, err := s.Columns().Get(ctx, col.ID)
	require.NoError(t, err)
	require.Equal(t, "Todo", got.Title)

	require.NoError(t, s.Columns().Delete(ctx, col.ID))
	_, err = s.Columns().Get(ctx, col.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)

	// deleting an absent id stays a no-op
	require.NoError(t, s.Columns().Delete(ctx, col.ID))
}

func TestCardRepo_GetManyPreservesOrderSkipsMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	colID := uuid.Must(uuid.NewV4())
	a := model.Card{ID: uuid.Must(uuid.NewV4()), ColumnID: colID, Title: "a"}
	b := model.Card{ID: uuid.Must(uuid.NewV4()), ColumnID: colID, Title: "b"}
	require.NoError(t, s.Cards().Put(ctx, &a))
	require.NoError(t, s.Cards().Put(ctx, &b))

	missing := uuid.Must(uuid.NewV4())
	got, err := s.Cards().GetMany(ctx, []uuid.UUID{b.ID, missing, a.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "b", got[0].Title)
	require.Equal(t, "a", got[1].Title)
}

func TestCardRepo_ListByColumn(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	colA := uuid.Must(uuid.NewV4())
	colB := uuid.Must(uuid.NewV4())
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Cards().Put(ctx, &model.Card{ID: uuid.Must(uuid.NewV4()), ColumnID: colA}))
	}
	require.NoError(t, s.Cards().Put(ctx, &model.Card{ID: uuid.Must(uuid.NewV4()), ColumnID: colB}))

	got, err := s.Cards().ListByColumn(ctx, colA)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, c := range got {
		require.Equal(t, colA, c.ColumnID)
	}
}

func TestCommentRepo_GetManyAndDeleteMany(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cardID := uuid.Must(uuid.NewV4())
	c1 := model.Comment{ID: uuid.Must(uuid.NewV4()), CardID: cardID, Content: "first"}
	c2 := model.Comment{ID: uuid.Must(uuid.NewV4()), CardID: cardID, Content: "second"}
	require.NoError(t, s.Comments().Put(ctx, &c1))
	require.NoError(t, s.Comments().Put(ctx, &c2))

	got, err := s.Comments().GetMany(ctx, []uuid.UUID{c1.ID, c2.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "first", got[0].Content)

	require.NoError(t, s.Comments().DeleteMany(ctx, []uuid.UUID{c1.ID, c2.ID}))
	got, err = s.Comments().GetMany(ctx, []uuid.UUID{c1.ID, c2.ID})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestStore_Update_AbortsAsOneUnit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	colID := uuid.Must(uuid.NewV4())
	boom := errors.New("boom")
	err := s.Update(ctx, func(tx repository.Tx) error {
		if err := tx.Columns().Put(ctx, &model.Column{ID: colID, Username: "juho"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Columns().Get(ctx, colID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStore_Update_CommitsAllWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	colID := uuid.Must(uuid.NewV4())
	cardID := uuid.Must(uuid.NewV4())
	err := s.Update(ctx, func(tx repository.Tx) error {
		if err := tx.Columns().Put(ctx, &model.Column{ID: colID, Username: "juho", Cards: []uuid.UUID{cardID}}); err != nil {
			return err
		}
		return tx.Cards().Put(ctx, &model.Card{ID: cardID, Username: "juho", ColumnID: colID})
	})
	require.NoError(t, err)

	col, err := s.Columns().Get(ctx, colID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{cardID}, col.Cards)

	card, err := s.Cards().Get(ctx, cardID)
	require.NoError(t, err)
	require.Equal(t, colID, card.ColumnID)
}
