package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ID represents a unique identifier
type ID string

// GenerateUUID creates a new UUID
func GenerateUUID() ID {
	return ID(uuid.New().String())
}

// IDOrGenerate returns the caller supplied identifier or a fresh UUID when it is blank.
// Caller supplied identifiers are not required to be UUIDs.
func IDOrGenerate(id string) ID {
	if strings.TrimSpace(id) == "" {
		return GenerateUUID()
	}
	return ID(strings.TrimSpace(id))
}

// String returns string representation
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty
func (id ID) IsZero() bool {
	return id == ""
}

// Timestamps represents creation and update times
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTimestamps creates new timestamps
func NewTimestamps(now time.Time) Timestamps {
	return Timestamps{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Update updates the UpdatedAt timestamp
func (t Timestamps) Update(now time.Time) Timestamps {
	t.UpdatedAt = now
	return t
}

// Page describes a zero based page request
type Page struct {
	Number int
	Size   int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Normalize clamps the page to sane bounds
func (p Page) Normalize() Page {
	if p.Number < 0 {
		p.Number = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset returns the row offset of the page
func (p Page) Offset() int {
	n := p.Normalize()
	return n.Number * n.Size
}
