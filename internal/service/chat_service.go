package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-chatspace-be/internal/constant"
	"ai-chatspace-be/internal/dto"
	"ai-chatspace-be/internal/entity"
	"ai-chatspace-be/internal/pkg/serverutils"
	"ai-chatspace-be/internal/repository/specification"
	"ai-chatspace-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IChatService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateChatRequest) (*dto.CreateChatResponse, error)
	List(ctx context.Context, userId uuid.UUID, workspaceId uuid.UUID) ([]*dto.ChatResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ChatResponse, error)
	Rename(ctx context.Context, userId uuid.UUID, req *dto.RenameChatRequest) (*dto.RenameChatResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Messages(ctx context.Context, userId uuid.UUID, chatId uuid.UUID) ([]*dto.MessageResponse, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewChatService(uowFactory unitofwork.RepositoryFactory) IChatService {
	return &chatService{uowFactory: uowFactory}
}

func (s *chatService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateChatRequest) (*dto.CreateChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	workspace, err := uow.WorkspaceRepository().FindOne(ctx,
		specification.ByID{ID: req.WorkspaceId},
		specification.OwnedBy{OwnerID: userId},
	)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, fmt.Errorf("workspace not found: %w", serverutils.ErrNotFound)
	}

	chat := entity.Chat{
		Id:          uuid.New(),
		Title:       constant.DefaultChatTitle,
		WorkspaceId: req.WorkspaceId,
		OwnerId:     userId,
		CreatedAt:   time.Now(),
	}

	if err := uow.ChatRepository().Create(ctx, &chat); err != nil {
		return nil, err
	}

	return &dto.CreateChatResponse{Id: chat.Id, Title: chat.Title}, nil
}

func (s *chatService) List(ctx context.Context, userId uuid.UUID, workspaceId uuid.UUID) ([]*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chats, err := uow.ChatRepository().FindAll(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceId},
		specification.OwnedBy{OwnerID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ChatResponse, 0, len(chats))
	for _, c := range chats {
		res = append(res, toChatResponse(c))
	}
	return res, nil
}

func (s *chatService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := findOwnedChat(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}
	return toChatResponse(chat), nil
}

func (s *chatService) Rename(ctx context.Context, userId uuid.UUID, req *dto.RenameChatRequest) (*dto.RenameChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := findOwnedChat(ctx, uow, userId, req.Id)
	if err != nil {
		return nil, err
	}

	chat.Title = truncateTitle(req.Title)
	now := time.Now()
	chat.UpdatedAt = &now

	if err := uow.ChatRepository().Update(ctx, chat); err != nil {
		return nil, err
	}

	return &dto.RenameChatResponse{Id: chat.Id}, nil
}

func (s *chatService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := findOwnedChat(ctx, uow, userId, id); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().DeleteByChatId(ctx, id); err != nil {
		return err
	}
	if err := uow.ChatRepository().Delete(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}

// Messages returns the full transcript in chronological order.
func (s *chatService) Messages(ctx context.Context, userId uuid.UUID, chatId uuid.UUID) ([]*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := findOwnedChat(ctx, uow, userId, chatId); err != nil {
		return nil, err
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByChatID{ChatID: chatId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		res = append(res, toMessageResponse(m))
	}
	return res, nil
}

// findOwnedChat answers not-found for both missing and foreign chats.
func findOwnedChat(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.Chat, error) {
	chat, err := uow.ChatRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{OwnerID: userId},
	)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, fmt.Errorf("chat not found: %w", serverutils.ErrNotFound)
	}
	return chat, nil
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) > constant.ChatTitleMaxLength {
		return string(runes[:constant.ChatTitleMaxLength])
	}
	return title
}

func toChatResponse(c *entity.Chat) *dto.ChatResponse {
	return &dto.ChatResponse{
		Id:          c.Id,
		WorkspaceId: c.WorkspaceId,
		Title:       c.Title,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toMessageResponse(m *entity.Message) *dto.MessageResponse {
	var toolResult json.RawMessage
	if len(m.ToolResult) > 0 {
		toolResult = json.RawMessage(m.ToolResult)
	}
	return &dto.MessageResponse{
		Id:         m.Id,
		Role:       m.Role,
		Content:    m.Content,
		ToolName:   m.ToolName,
		ToolResult: toolResult,
		CreatedAt:  m.CreatedAt,
	}
}
