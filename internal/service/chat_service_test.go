package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-chatspace-be/internal/constant"
	"ai-chatspace-be/internal/dto"
	"ai-chatspace-be/internal/entity"
	"ai-chatspace-be/internal/pkg/serverutils"
)

func seedChatFixture(factory *fakeFactory) (userId, workspaceId uuid.UUID) {
	userId = uuid.New()
	workspaceId = uuid.New()
	factory.store.users = append(factory.store.users, &entity.User{Id: userId, Email: "owner@example.com"})
	factory.store.workspaces = append(factory.store.workspaces, &entity.Workspace{Id: workspaceId, OwnerId: userId, Name: "ws"})
	return userId, workspaceId
}

func TestChatCreateDefaultsTitle(t *testing.T) {
	factory := newFakeFactory()
	userId, workspaceId := seedChatFixture(factory)
	svc := NewChatService(factory)

	res, err := svc.Create(context.Background(), userId, &dto.CreateChatRequest{WorkspaceId: workspaceId})
	require.NoError(t, err)
	assert.Equal(t, constant.DefaultChatTitle, res.Title)
}

func TestChatCreateForeignWorkspaceIsNotFound(t *testing.T) {
	factory := newFakeFactory()
	_, workspaceId := seedChatFixture(factory)
	svc := NewChatService(factory)

	_, err := svc.Create(context.Background(), uuid.New(), &dto.CreateChatRequest{WorkspaceId: workspaceId})
	require.Error(t, err)
	assert.ErrorIs(t, err, serverutils.ErrNotFound)
}

func TestChatRenameTruncates(t *testing.T) {
	factory := newFakeFactory()
	userId, workspaceId := seedChatFixture(factory)
	svc := NewChatService(factory)

	created, err := svc.Create(context.Background(), userId, &dto.CreateChatRequest{WorkspaceId: workspaceId})
	require.NoError(t, err)

	_, err = svc.Rename(context.Background(), userId, &dto.RenameChatRequest{Id: created.Id, Title: strings.Repeat("x", 80)})
	require.NoError(t, err)

	chat, err := svc.Show(context.Background(), userId, created.Id)
	require.NoError(t, err)
	assert.Len(t, chat.Title, 80)
}

func TestChatDeleteCascadesMessages(t *testing.T) {
	factory := newFakeFactory()
	userId, workspaceId := seedChatFixture(factory)
	svc := NewChatService(factory)

	created, err := svc.Create(context.Background(), userId, &dto.CreateChatRequest{WorkspaceId: workspaceId})
	require.NoError(t, err)

	factory.store.messages = append(factory.store.messages,
		&entity.Message{Id: uuid.New(), ChatId: created.Id, Role: constant.MessageRoleUser, Content: "hi"},
		&entity.Message{Id: uuid.New(), ChatId: created.Id, Role: constant.MessageRoleAssistant, Content: "hello"},
	)

	require.NoError(t, svc.Delete(context.Background(), userId, created.Id))

	assert.Empty(t, factory.store.chats)
	assert.Empty(t, factory.store.messages)
}

func TestChatMessagesRequiresOwnership(t *testing.T) {
	factory := newFakeFactory()
	userId, workspaceId := seedChatFixture(factory)
	svc := NewChatService(factory)

	created, err := svc.Create(context.Background(), userId, &dto.CreateChatRequest{WorkspaceId: workspaceId})
	require.NoError(t, err)

	_, err = svc.Messages(context.Background(), uuid.New(), created.Id)
	require.Error(t, err)
	assert.ErrorIs(t, err, serverutils.ErrNotFound)
}

func TestChatMessagesChronological(t *testing.T) {
	factory := newFakeFactory()
	userId, workspaceId := seedChatFixture(factory)
	svc := NewChatService(factory)

	created, err := svc.Create(context.Background(), userId, &dto.CreateChatRequest{WorkspaceId: workspaceId})
	require.NoError(t, err)

	base := time.Now()
	factory.store.messages = append(factory.store.messages,
		&entity.Message{Id: uuid.New(), ChatId: created.Id, Role: constant.MessageRoleUser, Content: "first", CreatedAt: base},
		&entity.Message{Id: uuid.New(), ChatId: created.Id, Role: constant.MessageRoleAssistant, Content: "second", CreatedAt: base.Add(time.Second)},
	)

	msgs, err := svc.Messages(context.Background(), userId, created.Id)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content)
}
