package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateWorkspaceRequest struct {
	Name string `json:"name" validate:"required"`
}

type CreateWorkspaceResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateWorkspaceRequest struct {
	Id   uuid.UUID
	Name string `json:"name" validate:"required"`
}

type UpdateWorkspaceResponse struct {
	Id uuid.UUID `json:"id"`
}

type WorkspaceResponse struct {
	Id        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
