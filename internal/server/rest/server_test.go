package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/juhorekonen/kanban/internal/limiter"
	"github.com/juhorekonen/kanban/internal/model"
	"github.com/juhorekonen/kanban/internal/repository/badgerdb"
	"github.com/juhorekonen/kanban/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := badgerdb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	key := []byte("test-signing-key")
	lim := limiter.NewMemory(time.Minute, 10, time.Minute)
	auth := service.NewAuthService(store.Users(), key, time.Hour, lim)
	board := service.NewBoardService(store)
	return New(auth, board, key, zap.NewNop()).Router()
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, h http.Handler, username string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": "sup3r!pass"}
	rec := doRequest(t, h, http.MethodPost, "/api/user/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/user/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestRegisterValidation(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name     string
		username string
		password string
		want     int
	}{
		{"ok", "alice", "sup3r!pass", http.StatusCreated},
		{"short username", "al", "sup3r!pass", http.StatusBadRequest},
		{"non alphanumeric username", "al ice", "sup3r!pass", http.StatusBadRequest},
		{"short password", "bob", "a1!", http.StatusBadRequest},
		{"password without digit", "bob", "passw!rd", http.StatusBadRequest},
		{"password without special", "bob", "passw0rd", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/api/user/register", "",
				map[string]string{"username": tt.username, "password": tt.password})
			require.Equal(t, tt.want, rec.Code)
		})
	}

	t.Run("duplicate username", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/user/register", "",
			map[string]string{"username": "alice", "password": "sup3r!pass"})
		require.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	h := newTestRouter(t)
	_ = registerAndLogin(t, h, "alice")

	rec := doRequest(t, h, http.MethodPost, "/api/user/login", "",
		map[string]string{"username": "alice", "password": "wrong-pass1!"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/user/login", "",
		map[string]string{"username": "nobody", "password": "sup3r!pass"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRateLimited(t *testing.T) {
	store, err := badgerdb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	key := []byte("test-signing-key")
	lim := limiter.NewMemory(time.Minute, 2, time.Minute)
	auth := service.NewAuthService(store.Users(), key, time.Hour, lim)
	h := New(auth, service.NewBoardService(store), key, zap.NewNop()).Router()

	creds := map[string]string{"username": "alice", "password": "sup3r!pass"}
	rec := doRequest(t, h, http.MethodPost, "/api/user/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code)

	bad := map[string]string{"username": "alice", "password": "wrong-pass1!"}
	rec = doRequest(t, h, http.MethodPost, "/api/user/login", "", bad)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doRequest(t, h, http.MethodPost, "/api/user/login", "", bad)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// blocked even with the right password
	rec = doRequest(t, h, http.MethodPost, "/api/user/login", "", creds)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	h := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/api/columns", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/columns", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestColumnLifecycle(t *testing.T) {
	h := newTestRouter(t)
	token := registerAndLogin(t, h, "alice")

	rec := doRequest(t, h, http.MethodGet, "/api/columns", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())

	var todo, doing model.Column
	rec = doRequest(t, h, http.MethodPost, "/api/columns/add", token, map[string]string{"title": "Todo"})
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeInto(t, rec, &todo)
	rec = doRequest(t, h, http.MethodPost, "/api/columns/add", token, map[string]string{"title": "Doing"})
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeInto(t, rec, &doing)

	var cols []model.Column
	rec = doRequest(t, h, http.MethodGet, "/api/columns", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeInto(t, rec, &cols)
	require.Len(t, cols, 2)
	require.Equal(t, todo.ID, cols[0].ID)
	require.Equal(t, doing.ID, cols[1].ID)

	rec = doRequest(t, h, http.MethodPut, "/api/columns/"+todo.ID.String(), token, map[string]string{"title": "Backlog"})
	require.Equal(t, http.StatusOK, rec.Code)
	var renamed model.Column
	decodeInto(t, rec, &renamed)
	require.Equal(t, "Backlog", renamed.Title)

	rec = doRequest(t, h, http.MethodDelete, "/api/columns/"+doing.ID.String(), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = doRequest(t, h, http.MethodDelete, "/api/columns/"+doing.ID.String(), token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodPut, "/api/columns/not-a-uuid", token, map[string]string{"title": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCardLifecycle(t *testing.T) {
	h := newTestRouter(t)
	token := registerAndLogin(t, h, "alice")

	var col model.Column
	rec := doRequest(t, h, http.MethodPost, "/api/columns/add", token, map[string]string{"title": "Todo"})
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeInto(t, rec, &col)

	var first, second model.Card
	rec = doRequest(t, h, http.MethodPost, "/api/cards/add/"+col.ID.String(), token,
		map[string]any{"title": "first", "content": "", "color": "white", "estimate": 1.5})
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeInto(t, rec, &first)
	rec = doRequest(t, h, http.MethodPost, "/api/cards/add/"+col.ID.String(), token,
		map[string]any{"title": "second", "content": "", "color": "red", "estimate": 0})
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeInto(t, rec, &second)

	var cards []model.Card
	rec = doRequest(t, h, http.MethodGet, "/api/cards/"+col.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeInto(t, rec, &cards)
	require.Len(t, cards, 2)
	require.Equal(t, first.ID, cards[0].ID)

	newTitle := "renamed"
	rec = doRequest(t, h, http.MethodPut, "/api/cards/"+first.ID.String(), token,
		map[string]any{"title": newTitle})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.Card
	decodeInto(t, rec, &updated)
	require.Equal(t, newTitle, updated.Title)
	require.Equal(t, "white", updated.Color)

	rec = doRequest(t, h, http.MethodDelete, "/api/cards/"+first.ID.String(), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = doRequest(t, h, http.MethodDelete, "/api/cards/"+first.ID.String(), token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/cards/"+col.ID.String(), token, nil)
	decodeInto(t, rec, &cards)
	require.Len(t, cards, 1)
	require.Equal(t, second.ID, cards[0].ID)
}

func TestMoveCard(t *testing.T) {
	h := newTestRouter(t)
	token := registerAndLogin(t, h, "alice")

	var col model.Column
	rec := doRequest(t, h, http.MethodPost, "/api/columns/add", token, map[string]string{"title": "Todo"})
	decodeInto(t, rec, &col)

	var c1, c2 model.Card
	rec = doRequest(t, h, http.MethodPost, "/api/cards/add/"+col.ID.String(), token,
		map[string]any{"title": "one", "color": "white", "estimate": 0})
	decodeInto(t, rec, &c1)
	rec = doRequest(t, h, http.MethodPost, "/api/cards/add/"+col.ID.String(), token,
		map[string]any{"title": "two", "color": "white", "estimate": 0})
	decodeInto(t, rec, &c2)

	// already first
	rec = doRequest(t, h, http.MethodPut, "/api/cards/move/"+c1.ID.String(), token,
		map[string]string{"direction": "up"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, h, http.MethodPut, "/api/cards/move/"+c2.ID.String(), token,
		map[string]string{"direction": "up"})
	require.Equal(t, http.StatusOK, rec.Code)
	var after model.Column
	decodeInto(t, rec, &after)
	require.Equal(t, []string{c2.ID.String(), c1.ID.String()},
		[]string{after.Cards[0].String(), after.Cards[1].String()})

	rec = doRequest(t, h, http.MethodPut, "/api/cards/move/"+c1.ID.String(), token,
		map[string]string{"direction": "sideways"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSwitchCard(t *testing.T) {
	h := newTestRouter(t)
	token := registerAndLogin(t, h, "alice")

	var todo, doing model.Column
	rec := doRequest(t, h, http.MethodPost, "/api/columns/add", token, map[string]string{"title": "Todo"})
	decodeInto(t, rec, &todo)
	rec = doRequest(t, h, http.MethodPost, "/api/columns/add", token, map[string]string{"title": "Doing"})
	decodeInto(t, rec, &doing)

	var card model.Card
	rec = doRequest(t, h, http.MethodPost, "/api/cards/add/"+todo.ID.String(), token,
		map[string]any{"title": "task", "color": "white", "estimate": 0})
	decodeInto(t, rec, &card)

	// leftmost column has no left neighbor
	rec = doRequest(t, h, http.MethodPut, "/api/cards/switch/"+todo.ID.String(), token,
		map[string]string{"cardId": card.ID.String(), "direction": "left"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, h, http.MethodPut, "/api/cards/switch/"+todo.ID.String(), token,
		map[string]string{"cardId": card.ID.String(), "direction": "right"})
	require.Equal(t, http.StatusOK, rec.Code)
	var moved model.Card
	decodeInto(t, rec, &moved)
	require.Equal(t, doing.ID, moved.ColumnID)

	var cards []model.Card
	rec = doRequest(t, h, http.MethodGet, "/api/cards/"+todo.ID.String(), token, nil)
	decodeInto(t, rec, &cards)
	require.Empty(t, cards)
	rec = doRequest(t, h, http.MethodGet, "/api/cards/"+doing.ID.String(), token, nil)
	decodeInto(t, rec, &cards)
	require.Len(t, cards, 1)
}

func TestComments(t *testing.T) {
	h := newTestRouter(t)
	token := registerAndLogin(t, h, "alice")

	var col model.Column
	rec := doRequest(t, h, http.MethodPost, "/api/columns/add", token, map[string]string{"title": "Todo"})
	decodeInto(t, rec, &col)
	var card model.Card
	rec = doRequest(t, h, http.MethodPost, "/api/cards/add/"+col.ID.String(), token,
		map[string]any{"title": "task", "color": "white", "estimate": 0})
	decodeInto(t, rec, &card)

	var cm model.Comment
	rec = doRequest(t, h, http.MethodPost, "/api/comments/add/"+card.ID.String(), token,
		map[string]string{"content": "looks good"})
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeInto(t, rec, &cm)

	rec = doRequest(t, h, http.MethodPut, "/api/comments/"+cm.ID.String(), token,
		map[string]string{"content": "needs work"})
	require.Equal(t, http.StatusOK, rec.Code)

	var cms []model.Comment
	rec = doRequest(t, h, http.MethodGet, "/api/comments/"+card.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeInto(t, rec, &cms)
	require.Len(t, cms, 1)
	require.Equal(t, "needs work", cms[0].Content)
}

func TestCrossUserAccessForbidden(t *testing.T) {
	h := newTestRouter(t)
	aliceTok := registerAndLogin(t, h, "alice")
	malloryTok := registerAndLogin(t, h, "mallory")

	var col model.Column
	rec := doRequest(t, h, http.MethodPost, "/api/columns/add", aliceTok, map[string]string{"title": "Todo"})
	decodeInto(t, rec, &col)

	for _, tc := range []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/cards/" + col.ID.String(), nil},
		{http.MethodPut, "/api/columns/" + col.ID.String(), map[string]string{"title": "x"}},
		{http.MethodDelete, "/api/columns/" + col.ID.String(), nil},
		{http.MethodPost, "/api/cards/add/" + col.ID.String(), map[string]any{"title": "t", "color": "white", "estimate": 0}},
	} {
		rec := doRequest(t, h, tc.method, tc.path, malloryTok, tc.body)
		require.Equal(t, http.StatusForbidden, rec.Code, fmt.Sprintf("%s %s", tc.method, tc.path))
	}
}

func TestUnknownBodyFieldRejected(t *testing.T) {
	h := newTestRouter(t)
	token := registerAndLogin(t, h, "alice")

	rec := doRequest(t, h, http.MethodPost, "/api/columns/add", token,
		map[string]string{"title": "Todo", "owner": "root"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
