package comic

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no comic has the requested id.
	ErrNotFound = errors.New("comic not found")
	// ErrPersistence wraps failures to read or write the underlying store.
	ErrPersistence = errors.New("comic store unavailable")
)

// Comic is a single gallery entry.
type Comic struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Thumbnail   string    `json:"thumbnail"`
	Featured    bool      `json:"featured"`
}

// Input holds the mutable fields accepted by Create and Update.
// Fields left out of an update are reset to their zero value.
type Input struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Thumbnail   string `json:"thumbnail" validate:"required,max=2048"`
	Featured    bool   `json:"featured"`
}

func (in Input) normalized() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Thumbnail = strings.TrimSpace(in.Thumbnail)
	return in
}

// apply copies the mutable fields onto c.
func (in Input) apply(c Comic) Comic {
	c.Title = in.Title
	c.Description = in.Description
	c.Thumbnail = in.Thumbnail
	c.Featured = in.Featured
	return c
}

type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists the fields that made a request invalid.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return "invalid comic: " + strings.Join(parts, "; ")
}

// Change describes a successful mutation, published to downstream listeners.
type Change struct {
	Op   string    `json:"op"`
	ID   string    `json:"id"`
	Time time.Time `json:"time"`
}

const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)
