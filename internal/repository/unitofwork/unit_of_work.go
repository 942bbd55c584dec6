package unitofwork

import (
	"context"

	"ai-chatspace-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	WorkspaceRepository() contract.WorkspaceRepository
	ChatRepository() contract.ChatRepository
	MessageRepository() contract.MessageRepository
}
