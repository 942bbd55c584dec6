package entity

import (
	"time"

	"github.com/google/uuid"
)

type Chat struct {
	Id          uuid.UUID
	Title       string
	WorkspaceId uuid.UUID
	OwnerId     uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
