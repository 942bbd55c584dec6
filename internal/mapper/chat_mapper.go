package mapper

import (
	"time"

	"ai-chatspace-be/internal/entity"
	"ai-chatspace-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Workspace Mappers

func (m *ChatMapper) WorkspaceToEntity(w *model.Workspace) *entity.Workspace {
	if w == nil {
		return nil
	}

	var deletedAt *time.Time
	if w.DeletedAt.Valid {
		t := w.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !w.UpdatedAt.IsZero() {
		t := w.UpdatedAt
		updatedAt = &t
	}

	return &entity.Workspace{
		Id:        w.Id,
		Name:      w.Name,
		OwnerId:   w.OwnerId,
		CreatedAt: w.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: w.DeletedAt.Valid,
	}
}

func (m *ChatMapper) WorkspaceToModel(w *entity.Workspace) *model.Workspace {
	if w == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if w.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *w.DeletedAt, Valid: true}
	} else if w.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if w.UpdatedAt != nil {
		updatedAt = *w.UpdatedAt
	}

	return &model.Workspace{
		Id:        w.Id,
		Name:      w.Name,
		OwnerId:   w.OwnerId,
		CreatedAt: w.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

// Chat Mappers

func (m *ChatMapper) ChatToEntity(c *model.Chat) *entity.Chat {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Chat{
		Id:          c.Id,
		Title:       c.Title,
		WorkspaceId: c.WorkspaceId,
		OwnerId:     c.OwnerId,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   c.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatToModel(c *entity.Chat) *model.Chat {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Chat{
		Id:          c.Id,
		Title:       c.Title,
		WorkspaceId: c.WorkspaceId,
		OwnerId:     c.OwnerId,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	var toolResult []byte
	if len(msg.ToolResult) > 0 {
		toolResult = []byte(msg.ToolResult)
	}

	return &entity.Message{
		Id:         msg.Id,
		ChatId:     msg.ChatId,
		Role:       msg.Role,
		Content:    msg.Content,
		ToolName:   msg.ToolName,
		ToolResult: toolResult,
		CreatedAt:  msg.CreatedAt,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	var toolResult datatypes.JSON
	if len(msg.ToolResult) > 0 {
		toolResult = datatypes.JSON(msg.ToolResult)
	}

	return &model.Message{
		Id:         msg.Id,
		ChatId:     msg.ChatId,
		Role:       msg.Role,
		Content:    msg.Content,
		ToolName:   msg.ToolName,
		ToolResult: toolResult,
		CreatedAt:  msg.CreatedAt,
	}
}

func (m *ChatMapper) MessagesToEntities(models []*model.Message) []*entity.Message {
	entities := make([]*entity.Message, len(models))
	for i, msg := range models {
		entities[i] = m.MessageToEntity(msg)
	}
	return entities
}
