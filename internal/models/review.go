package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	BookID     uuid.UUID
	Rating     int
	ReviewText string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
