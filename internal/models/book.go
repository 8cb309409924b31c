package models

import (
	"time"

	"github.com/google/uuid"
)

type Book struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Title         string
	Publisher     string
	PublishedDate time.Time
	PageCount     int
	Language      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
