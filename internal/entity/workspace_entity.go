package entity

import (
	"time"

	"github.com/google/uuid"
)

type Workspace struct {
	Id        uuid.UUID
	Name      string
	OwnerId   uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
