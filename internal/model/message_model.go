package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Message has no UpdatedAt/DeletedAt on purpose: the transcript is an
// append-only log ordered by (chat_id, created_at).
type Message struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatId     uuid.UUID      `gorm:"type:uuid;not null;index:idx_messages_chat_created,priority:1"`
	Role       string         `gorm:"type:varchar(20);not null"`
	Content    string         `gorm:"type:text;not null;default:''"`
	ToolName   *string        `gorm:"type:varchar(100)"`
	ToolResult datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index:idx_messages_chat_created,priority:2"`
}

func (Message) TableName() string {
	return "messages"
}
