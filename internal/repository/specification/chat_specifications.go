package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByWorkspaceID struct {
	WorkspaceID uuid.UUID
}

func (s ByWorkspaceID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("workspace_id = ?", s.WorkspaceID)
}

type ByWorkspaceIDs struct {
	WorkspaceIDs []uuid.UUID
}

func (s ByWorkspaceIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("workspace_id IN ?", s.WorkspaceIDs)
}

type ByChatID struct {
	ChatID uuid.UUID
}

func (s ByChatID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatID)
}

type ByChatIDs struct {
	ChatIDs []uuid.UUID
}

func (s ByChatIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id IN ?", s.ChatIDs)
}

type ByRole struct {
	Role string
}

func (s ByRole) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("role = ?", s.Role)
}
