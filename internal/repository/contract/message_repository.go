package contract

import (
	"context"

	"ai-chatspace-be/internal/entity"
	"ai-chatspace-be/internal/repository/specification"

	"github.com/google/uuid"
)

// MessageRepository is append-only: no Update, transcripts are immutable.
type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	DeleteByChatId(ctx context.Context, chatId uuid.UUID) error
	DeleteByChatIds(ctx context.Context, chatIds []uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
