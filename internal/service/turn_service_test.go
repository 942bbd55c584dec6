package service

import (
	"context"
	"encoding/json"
	"errors"
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
	"ai-chatspace-be/internal/repository/memory"
	"ai-chatspace-be/pkg/agent"
	"ai-chatspace-be/pkg/llm"
)

type scriptedProvider struct {
	rounds [][]llm.Chunk
	calls  int
}

func (p *scriptedProvider) ChatStream(ctx context.Context, history []llm.Message, tools []llm.ToolDefinition, options ...llm.Option) (<-chan llm.Chunk, error) {
	round := p.rounds[p.calls%len(p.rounds)]
	p.calls++

	ch := make(chan llm.Chunk, len(round)+1)
	for _, c := range round {
		ch <- c
	}
	ch <- llm.Chunk{Done: true}
	close(ch)
	return ch, nil
}

type fakeSearchTool struct {
	output json.RawMessage
}

func (t *fakeSearchTool) Name() string { return "web_search" }

func (t *fakeSearchTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{Name: "web_search", Parameters: map[string]interface{}{"type": "object"}}
}

func (t *fakeSearchTool) Execute(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	return t.output, nil
}

type turnFixture struct {
	factory  *fakeFactory
	service  ITurnService
	registry *memory.TurnRegistry
	userId   uuid.UUID
	chatId   uuid.UUID
}

func newTurnFixture(t *testing.T, rounds [][]llm.Chunk, tools ...agent.Tool) *turnFixture {
	t.Helper()

	factory := newFakeFactory()

	userId := uuid.New()
	workspaceId := uuid.New()
	chatId := uuid.New()

	factory.store.users = append(factory.store.users, &entity.User{Id: userId, Email: "owner@example.com"})
	factory.store.workspaces = append(factory.store.workspaces, &entity.Workspace{Id: workspaceId, OwnerId: userId, Name: "ws"})
	factory.store.chats = append(factory.store.chats, &entity.Chat{
		Id:          chatId,
		Title:       constant.DefaultChatTitle,
		WorkspaceId: workspaceId,
		OwnerId:     userId,
		CreatedAt:   time.Now(),
	})

	runtime := agent.NewRuntime(&scriptedProvider{rounds: rounds}, agent.Config{MaxIterations: 3}, nopLogger{}, tools...)
	registry := memory.NewTurnRegistry()
	svc := NewTurnService(factory, runtime, registry, nil, nopLogger{}, time.Minute)

	return &turnFixture{
		factory:  factory,
		service:  svc,
		registry: registry,
		userId:   userId,
		chatId:   chatId,
	}
}

// drain plays the multiplexer's role: accumulate text, find the terminal,
// then invoke the completion callback.
func drain(t *testing.T, turn *TurnStream) (string, error) {
	t.Helper()

	var text strings.Builder
	var turnErr error
	for ev := range turn.Events {
		switch e := ev.(type) {
		case agent.TextDelta:
			text.WriteString(e.Text)
		case agent.TurnError:
			turnErr = e.Err
		}
	}
	turn.OnComplete(text.String(), turnErr)
	return text.String(), turnErr
}

func userTurn(chatId uuid.UUID, content string) *dto.SubmitTurnRequest {
	return &dto.SubmitTurnRequest{
		ChatId:   chatId,
		Messages: []dto.TurnMessage{{Role: constant.MessageRoleUser, Content: content}},
	}
}

func (f *turnFixture) chat() *entity.Chat {
	for _, c := range f.factory.store.chats {
		if c.Id == f.chatId {
			return c
		}
	}
	return nil
}

func (f *turnFixture) messages() []*entity.Message {
	return f.factory.store.messages
}

func TestSubmitTurnPersistsTranscript(t *testing.T) {
	toolOut := json.RawMessage(`{"query":"go","results":[]}`)
	call := llm.ToolCall{Id: "call_1", Name: "web_search", Arguments: json.RawMessage(`{"query":"go"}`)}
	fx := newTurnFixture(t, [][]llm.Chunk{
		{{ToolCall: &call}},
		{{Text: "Go 1.25 is the latest release."}},
	}, &fakeSearchTool{output: toolOut})

	turn, err := fx.service.SubmitTurn(context.Background(), fx.userId, userTurn(fx.chatId, "what is the latest go release"))
	require.NoError(t, err)

	text, turnErr := drain(t, turn)
	require.NoError(t, turnErr)
	assert.Equal(t, "Go 1.25 is the latest release.", text)

	msgs := fx.messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, constant.MessageRoleUser, msgs[0].Role)
	assert.Equal(t, "what is the latest go release", msgs[0].Content)
	assert.Equal(t, constant.MessageRoleTool, msgs[1].Role)
	require.NotNil(t, msgs[1].ToolName)
	assert.Equal(t, "web_search", *msgs[1].ToolName)
	assert.JSONEq(t, string(toolOut), string(msgs[1].ToolResult))
	assert.Equal(t, constant.MessageRoleAssistant, msgs[2].Role)
	assert.Equal(t, text, msgs[2].Content)
}

func TestSubmitTurnDerivesTitleOnceAndTruncates(t *testing.T) {
	fx := newTurnFixture(t, [][]llm.Chunk{{{Text: "hi"}}})

	long := strings.Repeat("a", 100)
	turn, err := fx.service.SubmitTurn(context.Background(), fx.userId, userTurn(fx.chatId, long))
	require.NoError(t, err)
	drain(t, turn)

	title := fx.chat().Title
	assert.Equal(t, strings.Repeat("a", 80), title)

	// A later turn must not touch the title again.
	turn, err = fx.service.SubmitTurn(context.Background(), fx.userId, userTurn(fx.chatId, "second question"))
	require.NoError(t, err)
	drain(t, turn)

	assert.Equal(t, title, fx.chat().Title)
}

func TestSubmitTurnEmptyCompletionSkipsAssistant(t *testing.T) {
	fx := newTurnFixture(t, [][]llm.Chunk{{}})

	turn, err := fx.service.SubmitTurn(context.Background(), fx.userId, userTurn(fx.chatId, "hello"))
	require.NoError(t, err)

	text, turnErr := drain(t, turn)
	require.NoError(t, turnErr)
	assert.Empty(t, text)

	msgs := fx.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, constant.MessageRoleUser, msgs[0].Role)
}

func TestSubmitTurnFailureDiscardsPartialText(t *testing.T) {
	fx := newTurnFixture(t, [][]llm.Chunk{{
		{Text: "partial answer"},
		{Err: errors.New("upstream reset")},
	}})

	turn, err := fx.service.SubmitTurn(context.Background(), fx.userId, userTurn(fx.chatId, "hello"))
	require.NoError(t, err)

	text, turnErr := drain(t, turn)
	assert.Equal(t, "partial answer", text)
	require.Error(t, turnErr)

	msgs := fx.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, constant.MessageRoleUser, msgs[0].Role)

	// The failed turn must release the chat for the next submission.
	assert.True(t, fx.registry.TryAcquire(fx.chatId.String()))
}

func TestSubmitTurnForeignChatIsNotFound(t *testing.T) {
	fx := newTurnFixture(t, [][]llm.Chunk{{{Text: "hi"}}})

	_, err := fx.service.SubmitTurn(context.Background(), uuid.New(), userTurn(fx.chatId, "hello"))
	require.Error(t, err)
	assert.ErrorIs(t, err, serverutils.ErrNotFound)
	assert.Empty(t, fx.messages())
}

func TestSubmitTurnRejectsConcurrentTurn(t *testing.T) {
	fx := newTurnFixture(t, [][]llm.Chunk{{{Text: "hi"}}})

	require.True(t, fx.registry.TryAcquire(fx.chatId.String()))

	_, err := fx.service.SubmitTurn(context.Background(), fx.userId, userTurn(fx.chatId, "hello"))
	require.Error(t, err)
	assert.ErrorIs(t, err, serverutils.ErrConflict)
}

func TestSubmitTurnLastMessageMustBeUser(t *testing.T) {
	fx := newTurnFixture(t, [][]llm.Chunk{{{Text: "hi"}}})

	req := &dto.SubmitTurnRequest{
		ChatId: fx.chatId,
		Messages: []dto.TurnMessage{
			{Role: constant.MessageRoleUser, Content: "hello"},
			{Role: constant.MessageRoleAssistant, Content: "hi there"},
		},
	}
	_, err := fx.service.SubmitTurn(context.Background(), fx.userId, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, serverutils.ErrBadRequest)
}

func TestSubmitTurnReleasesRegistryAfterCompletion(t *testing.T) {
	fx := newTurnFixture(t, [][]llm.Chunk{{{Text: "hi"}}})

	turn, err := fx.service.SubmitTurn(context.Background(), fx.userId, userTurn(fx.chatId, "hello"))
	require.NoError(t, err)
	assert.True(t, fx.registry.InFlight(fx.chatId.String()))

	drain(t, turn)
	assert.False(t, fx.registry.InFlight(fx.chatId.String()))
}
