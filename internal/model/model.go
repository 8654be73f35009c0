// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// User represents an account. The password is stored as Argon2id(password, SaltAuth).
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"` // unique
	PwdHash   []byte    `json:"-"`
	SaltAuth  []byte    `json:"-"` // per-user auth salt
	CreatedAt time.Time `json:"createdAt"`
}

// Board is the per-user ordered sequence of column ids. Index position is
// the visible left-to-right order of the board.
type Board struct {
	Username string      `json:"username"`
	Columns  []uuid.UUID `json:"columns"`
}

// Column is an ordered list of cards with a title. Cards holds card ids in
// top-to-bottom display order; every listed card has ColumnID pointing back.
type Column struct {
	ID        uuid.UUID   `json:"id"`
	Username  string      `json:"username"`
	Title     string      `json:"title"`
	Cards     []uuid.UUID `json:"cards"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Card is a unit of work. A card belongs to exactly one column at a time.
type Card struct {
	ID        uuid.UUID   `json:"id"`
	Username  string      `json:"username"`
	ColumnID  uuid.UUID   `json:"columnId"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Color     string      `json:"color"`
	Estimate  float64     `json:"estimate"` // estimated hours to finish
	Comments  []uuid.UUID `json:"comments"` // comment ids in creation order
	CreatedAt time.Time   `json:"createdAt"`
}

// Comment is a timestamped note attached to a card.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CardID    uuid.UUID `json:"cardId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// MoveDirection selects the neighbor a card is swapped with inside its column.
type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// Valid reports whether d is a known vertical direction.
func (d MoveDirection) Valid() bool { return d == MoveUp || d == MoveDown }

// SwitchDirection selects the neighboring column a card is transferred to.
type SwitchDirection string

const (
	SwitchLeft  SwitchDirection = "left"
	SwitchRight SwitchDirection = "right"
)

// Valid reports whether d is a known horizontal direction.
func (d SwitchDirection) Valid() bool { return d == SwitchLeft || d == SwitchRight }

// NewCard carries the caller-supplied fields of a card being created.
type NewCard struct {
	Title    string
	Content  string
	Color    string
	Estimate float64
}

// RenameColumn is the only mutation a column title accepts.
type RenameColumn struct {
	Title string
}

// UpdateCard enumerates the mutable card fields. Nil pointers leave the
// current value untouched.
type UpdateCard struct {
	Title    *string
	Content  *string
	Color    *string
	Estimate *float64
}

// UpdateComment enumerates the mutable comment fields.
type UpdateComment struct {
	Content string
}
