package entity

import (
	"time"

	"github.com/google/uuid"
)

// Message rows are append-only: no updates, no soft delete.
type Message struct {
	Id         uuid.UUID
	ChatId     uuid.UUID
	Role       string
	Content    string
	ToolName   *string
	ToolResult []byte // raw JSON, nil when the row carries no tool output
	CreatedAt  time.Time
}
