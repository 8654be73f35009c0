package rest

import (
	"net"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/juhorekonen/kanban/internal/model"
	"github.com/juhorekonen/kanban/internal/service"
)

// Server wires the auth and board services into HTTP handlers.
type Server struct {
	auth     service.AuthService
	board    service.BoardService
	signKey  []byte
	log      *zap.Logger
	validate *validator.Validate
}

// New constructs the HTTP server with injected services.
func New(auth service.AuthService, board service.BoardService, signKey []byte, log *zap.Logger) *Server {
	return &Server{
		auth:     auth,
		board:    board,
		signKey:  signKey,
		log:      log,
		validate: newValidator(),
	}
}

// Router builds the API route table. Board routes require a valid token.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(Recover(s.log), Logging(s.log))

	r.HandleFunc("/api/user/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/user/login", s.handleLogin).Methods(http.MethodPost)

	api := r.NewRoute().Subrouter()
	api.Use(s.Auth)
	api.HandleFunc("/api/columns", s.handleListColumns).Methods(http.MethodGet)
	api.HandleFunc("/api/columns/add", s.handleCreateColumn).Methods(http.MethodPost)
	api.HandleFunc("/api/columns/{columnId}", s.handleRenameColumn).Methods(http.MethodPut)
	api.HandleFunc("/api/columns/{columnId}", s.handleDeleteColumn).Methods(http.MethodDelete)

	api.HandleFunc("/api/cards/add/{columnId}", s.handleCreateCard).Methods(http.MethodPost)
	api.HandleFunc("/api/cards/move/{cardId}", s.handleMoveCard).Methods(http.MethodPut)
	api.HandleFunc("/api/cards/switch/{columnId}", s.handleSwitchCard).Methods(http.MethodPut)
	api.HandleFunc("/api/cards/{columnId}", s.handleListCards).Methods(http.MethodGet)
	api.HandleFunc("/api/cards/{cardId}", s.handleUpdateCard).Methods(http.MethodPut)
	api.HandleFunc("/api/cards/{cardId}", s.handleDeleteCard).Methods(http.MethodDelete)

	api.HandleFunc("/api/comments/add/{cardId}", s.handleCreateComment).Methods(http.MethodPost)
	api.HandleFunc("/api/comments/{cardId}", s.handleListComments).Methods(http.MethodGet)
	api.HandleFunc("/api/comments/{commentId}", s.handleUpdateComment).Methods(http.MethodPut)

	return r
}

func pathID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.FromString(mux.Vars(r)[name])
	return id, err == nil
}

func principal(w http.ResponseWriter, r *http.Request) (string, bool) {
	username, ok := UsernameFromCtx(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "access denied")
	}
	return username, ok
}

// --- auth ---

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid username or password format")
		return
	}
	id, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	tok, err := s.auth.LoginWithIP(r.Context(), req.Username, req.Password, ip)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: tok.AccessToken, ExpiresAt: tok.ExpiresAt.Unix()})
}

// --- columns ---

func (s *Server) handleListColumns(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}
	cols, err := s.board.ListColumns(r.Context(), username)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if cols == nil {
		cols = []model.Column{}
	}
	writeJSON(w, http.StatusOK, cols)
}

func (s *Server) handleCreateColumn(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}
	var req createColumnRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	col, err := s.board.CreateColumn(r.Context(), username, req.Title)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, col)
}

func (s *Server) handleRenameColumn(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "columnId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid column id")
		return
	}
	var req renameColumnRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	col, err := s.board.RenameColumn(r.Context(), username, id, model.RenameColumn{Title: req.Title})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, col)
}

func (s *Server) handleDeleteColumn(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "columnId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid column id")
		return
	}
	if err := s.board.DeleteColumn(r.Context(), username, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- cards ---

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "columnId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid column id")
		return
	}
	cards, err := s.board.ListCards(r.Context(), username, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if cards == nil {
		cards = []model.Card{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}
	columnID, ok := pathID(r, "columnId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid column id")
		return
	}
	var req createCardRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	card, err := s.board.CreateCard(r.Context(), username, columnID, model.NewCard{
		Title:    req.Title,
		Content:  req.Content,
		Color:    req.Color,
		Estimate: req.Estimate,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "cardId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid card id")
		return
	}
	var req updateCardRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	card, err := s.board.UpdateCard(r.Context(), username, id, model.UpdateCard{
		Title:    req.Title,
		Content:  req.Content,
		Color:    req.Color,
		Estimate: req.Estimate,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "cardId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid card id")
		return
	}
	if err := s.board.DeleteCard(r.Context(), username, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveCard(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "cardId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid card id")
		return
	}
	var req moveCardRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	col, err := s.board.MoveCard(r.Context(), username, id, model.MoveDirection(req.Direction))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, col)
}

func (s *Server) handleSwitchCard(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}
	columnID, ok := pathID(r, "columnId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid column id")
		return
	}
	var req switchCardRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cardID, err := uuid.FromString(req.CardID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid card id")
		return
	}
	card, err := s.board.SwitchCard(r.Context(), username, cardID, columnID, model.SwitchDirection(req.Direction))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// --- comments ---

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "cardId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid card id")
		return
	}
	cms, err := s.board.ListComments(r.Context(), username, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if cms == nil {
		cms = []model.Comment{}
	}
	writeJSON(w, http.StatusOK, cms)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "cardId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid card id")
		return
	}
	var req commentRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cm, err := s.board.CreateComment(r.Context(), username, id, req.Content)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cm)
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "commentId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid comment id")
		return
	}
	var req commentRequest
	if err := s.decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cm, err := s.board.UpdateComment(r.Context(), username, id, model.UpdateComment{Content: req.Content})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cm)
}
