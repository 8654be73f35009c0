package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/juhorekonen/kanban/internal/errs"
)

// Request bodies. Unknown JSON fields are rejected so updates stay limited
// to the fields enumerated here.

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20,alphanum"`
	Password string `json:"password" validate:"required,min=5,pwchars"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createColumnRequest struct {
	Title string `json:"title" validate:"required,max=100"`
}

type renameColumnRequest struct {
	Title string `json:"title" validate:"required,max=100"`
}

type createCardRequest struct {
	Title    string  `json:"title" validate:"required,max=100"`
	Content  string  `json:"content"`
	Color    string  `json:"color" validate:"required"`
	Estimate float64 `json:"estimate" validate:"gte=0"`
}

type updateCardRequest struct {
	Title    *string  `json:"title" validate:"omitempty,max=100"`
	Content  *string  `json:"content"`
	Color    *string  `json:"color"`
	Estimate *float64 `json:"estimate" validate:"omitempty,gte=0"`
}

type moveCardRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

type switchCardRequest struct {
	CardID    string `json:"cardId" validate:"required,uuid"`
	Direction string `json:"direction" validate:"required,oneof=left right"`
}

type commentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// newValidator builds the request validator with the password rule: at
// least one digit and one special character, matching the registration
// rules the frontend presents.
func newValidator() *validator.Validate {
	v := validator.New()
	// the tag never fails to register on a func with a valid name
	_ = v.RegisterValidation("pwchars", func(fl validator.FieldLevel) bool {
		var digit, special bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsDigit(r):
				digit = true
			case strings.ContainsRune(`!@#$%^&*(),.?":{}|<>`, r):
				special = true
			}
		}
		return digit && special
	})
	return v
}

// decodeBody decodes and validates a JSON request body.
func (s *Server) decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return s.validate.Struct(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeServiceError maps sentinel errors to status codes. Integrity
// violations and unknown errors are logged; expected outcomes are not.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, errs.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, errs.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, errs.ErrRateLimited):
		writeMessage(w, http.StatusTooManyRequests, "too many attempts, try again later")
	case errors.Is(err, errs.ErrAlreadyExists):
		writeMessage(w, http.StatusConflict, "username already in use")
	case errors.Is(err, errs.ErrBoundary):
		writeMessage(w, http.StatusConflict, "already at the boundary")
	case errors.Is(err, errs.ErrConflict):
		writeMessage(w, http.StatusConflict, "concurrent modification, retry")
	case errors.Is(err, errs.ErrNotInSequence):
		s.log.Error("sequence integrity violation",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	default:
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
