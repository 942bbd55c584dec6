package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chat struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string         `gorm:"type:text;not null;default:'New Chat'"`
	WorkspaceId uuid.UUID      `gorm:"type:uuid;not null;index"`
	OwnerId     uuid.UUID      `gorm:"type:uuid;not null;index"` // ownership for data isolation
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Chat) TableName() string {
	return "chats"
}
