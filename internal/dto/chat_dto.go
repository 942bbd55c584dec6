package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CreateChatRequest struct {
	WorkspaceId uuid.UUID `json:"workspace_id" validate:"required"`
}

type CreateChatResponse struct {
	Id    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type RenameChatRequest struct {
	Id    uuid.UUID
	Title string `json:"title" validate:"required,max=80"`
}

type RenameChatResponse struct {
	Id uuid.UUID `json:"id"`
}

type ChatResponse struct {
	Id          uuid.UUID  `json:"id"`
	WorkspaceId uuid.UUID  `json:"workspace_id"`
	Title       string     `json:"title"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type MessageResponse struct {
	Id         uuid.UUID       `json:"id"`
	Role       string          `json:"role"`
	Content    string          `json:"content"`
	ToolName   *string         `json:"tool_name,omitempty"`
	ToolResult json.RawMessage `json:"tool_result,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TurnMessage is one client-side history entry sent with a turn submission.
// Only the last user message is persisted; the rest provide model context.
type TurnMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type SubmitTurnRequest struct {
	ChatId   uuid.UUID     `json:"chat_id" validate:"required"`
	Messages []TurnMessage `json:"messages" validate:"required,min=1,dive"`
}
