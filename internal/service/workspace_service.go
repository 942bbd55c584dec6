package service

import (
	"context"
	"fmt"
	"time"

	"ai-chatspace-be/internal/dto"
	"ai-chatspace-be/internal/entity"
	"ai-chatspace-be/internal/pkg/serverutils"
	"ai-chatspace-be/internal/repository/specification"
	"ai-chatspace-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IWorkspaceService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateWorkspaceRequest) (*dto.CreateWorkspaceResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.WorkspaceResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.WorkspaceResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateWorkspaceRequest) (*dto.UpdateWorkspaceResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type workspaceService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewWorkspaceService(uowFactory unitofwork.RepositoryFactory) IWorkspaceService {
	return &workspaceService{uowFactory: uowFactory}
}

func (s *workspaceService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateWorkspaceRequest) (*dto.CreateWorkspaceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	workspace := entity.Workspace{
		Id:        uuid.New(),
		Name:      req.Name,
		OwnerId:   userId,
		CreatedAt: time.Now(),
	}

	if err := uow.WorkspaceRepository().Create(ctx, &workspace); err != nil {
		return nil, err
	}

	return &dto.CreateWorkspaceResponse{Id: workspace.Id}, nil
}

func (s *workspaceService) List(ctx context.Context, userId uuid.UUID) ([]*dto.WorkspaceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	workspaces, err := uow.WorkspaceRepository().FindAll(ctx,
		specification.OwnedBy{OwnerID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.WorkspaceResponse, 0, len(workspaces))
	for _, w := range workspaces {
		res = append(res, toWorkspaceResponse(w))
	}
	return res, nil
}

func (s *workspaceService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.WorkspaceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	workspace, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}
	return toWorkspaceResponse(workspace), nil
}

func (s *workspaceService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateWorkspaceRequest) (*dto.UpdateWorkspaceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	workspace, err := s.findOwned(ctx, uow, userId, req.Id)
	if err != nil {
		return nil, err
	}

	workspace.Name = req.Name
	now := time.Now()
	workspace.UpdatedAt = &now

	if err := uow.WorkspaceRepository().Update(ctx, workspace); err != nil {
		return nil, err
	}

	return &dto.UpdateWorkspaceResponse{Id: workspace.Id}, nil
}

// Delete removes the workspace and everything under it: messages first, then
// chats, then the workspace itself, all in one transaction.
func (s *workspaceService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.findOwned(ctx, uow, userId, id); err != nil {
		return err
	}

	chats, err := uow.ChatRepository().FindAll(ctx, specification.ByWorkspaceID{WorkspaceID: id})
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if len(chats) > 0 {
		chatIds := make([]uuid.UUID, 0, len(chats))
		for _, c := range chats {
			chatIds = append(chatIds, c.Id)
		}
		if err := uow.MessageRepository().DeleteByChatIds(ctx, chatIds); err != nil {
			return err
		}
		if err := uow.ChatRepository().DeleteByWorkspaceId(ctx, id); err != nil {
			return err
		}
	}

	if err := uow.WorkspaceRepository().Delete(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}

// findOwned answers not-found for both missing and foreign workspaces so the
// API never reveals whether an id exists under another account.
func (s *workspaceService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.Workspace, error) {
	workspace, err := uow.WorkspaceRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{OwnerID: userId},
	)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, fmt.Errorf("workspace not found: %w", serverutils.ErrNotFound)
	}
	return workspace, nil
}

func toWorkspaceResponse(w *entity.Workspace) *dto.WorkspaceResponse {
	return &dto.WorkspaceResponse{
		Id:        w.Id,
		Name:      w.Name,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
