package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-chatspace-be/internal/constant"
	"ai-chatspace-be/internal/dto"
	"ai-chatspace-be/internal/entity"
	"ai-chatspace-be/internal/pkg/logger"
	"ai-chatspace-be/internal/pkg/serverutils"
	"ai-chatspace-be/internal/repository/memory"
	"ai-chatspace-be/internal/repository/specification"
	"ai-chatspace-be/internal/repository/unitofwork"
	"ai-chatspace-be/pkg/agent"
	"ai-chatspace-be/pkg/events"
	"ai-chatspace-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// TurnStream is a running agent turn handed to the transport layer. The
// caller must drain Events and then invoke OnComplete exactly once with the
// accumulated text; OnComplete owns persistence and completion signalling.
type TurnStream struct {
	ChatId     uuid.UUID
	Events     <-chan agent.Event
	OnComplete func(text string, turnErr error)
}

type ITurnService interface {
	SubmitTurn(ctx context.Context, userId uuid.UUID, req *dto.SubmitTurnRequest) (*TurnStream, error)
}

type turnService struct {
	uowFactory  unitofwork.RepositoryFactory
	runtime     *agent.Runtime
	registry    *memory.TurnRegistry
	busPub      message.Publisher
	logger      logger.ILogger
	turnTimeout time.Duration
}

func NewTurnService(
	uowFactory unitofwork.RepositoryFactory,
	runtime *agent.Runtime,
	registry *memory.TurnRegistry,
	busPub message.Publisher,
	log logger.ILogger,
	turnTimeout time.Duration,
) ITurnService {
	if turnTimeout <= 0 {
		turnTimeout = 60 * time.Second
	}
	return &turnService{
		uowFactory:  uowFactory,
		runtime:     runtime,
		registry:    registry,
		busPub:      busPub,
		logger:      log,
		turnTimeout: turnTimeout,
	}
}

// SubmitTurn validates everything a 4xx can come from, persists the user
// message (deriving the chat title on the first one), then starts the agent
// on a context detached from the request. The client disconnecting mid-stream
// must never abort the turn or its persistence.
func (s *turnService) SubmitTurn(ctx context.Context, userId uuid.UUID, req *dto.SubmitTurnRequest) (*TurnStream, error) {
	last := req.Messages[len(req.Messages)-1]
	if last.Role != constant.MessageRoleUser {
		return nil, fmt.Errorf("last message must be from the user: %w", serverutils.ErrBadRequest)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := findOwnedChat(ctx, uow, userId, req.ChatId)
	if err != nil {
		return nil, err
	}

	if !s.registry.TryAcquire(chat.Id.String()) {
		return nil, fmt.Errorf("a turn is already running for this chat: %w", serverutils.ErrConflict)
	}

	renamedTitle, err := s.persistUserMessage(ctx, uow, chat, last.Content)
	if err != nil {
		s.registry.Release(chat.Id.String())
		return nil, err
	}
	if renamedTitle != "" {
		s.publish(events.TopicChatRenamed, events.NewChatRenamed(userId.String(), chat.Id.String(), renamedTitle))
	}

	history := make([]llm.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	// Detached from the request: the turn outlives a dropped connection but
	// never the wall-clock ceiling. The request ctx cannot be reused here,
	// fasthttp recycles it once the handler returns.
	agentCtx, cancel := context.WithTimeout(context.Background(), s.turnTimeout)

	rawEvents := s.runtime.Run(agentCtx, history)

	// Tee the stream so tool results can be persisted with the transcript.
	out := make(chan agent.Event, 64)
	var toolRows []toolInvocation
	go func() {
		defer close(out)
		pending := map[string]string{}
		for ev := range rawEvents {
			switch e := ev.(type) {
			case agent.ToolCallStart:
				pending[e.ToolCallId] = e.ToolName
			case agent.ToolResult:
				toolRows = append(toolRows, toolInvocation{name: pending[e.ToolCallId], output: e.Output})
			}
			out <- ev
		}
	}()

	chatId := chat.Id
	onComplete := func(text string, turnErr error) {
		defer cancel()
		defer s.registry.Release(chatId.String())

		s.persistCompletion(chatId, text, toolRows, turnErr)
		s.publish(events.TopicTurnCompleted, events.NewTurnCompleted(userId.String(), chatId.String(), turnErr != nil))
	}

	return &TurnStream{
		ChatId:     chatId,
		Events:     out,
		OnComplete: onComplete,
	}, nil
}

type toolInvocation struct {
	name   string
	output json.RawMessage
}

// persistUserMessage appends the user message and, on the chat's first user
// message, derives the title from it. Returns the new title when one was set.
func (s *turnService) persistUserMessage(ctx context.Context, uow unitofwork.UnitOfWork, chat *entity.Chat, content string) (string, error) {
	prior, err := uow.MessageRepository().Count(ctx,
		specification.ByChatID{ChatID: chat.Id},
		specification.ByRole{Role: constant.MessageRoleUser},
	)
	if err != nil {
		return "", err
	}

	if err := uow.Begin(ctx); err != nil {
		return "", err
	}
	defer uow.Rollback()

	msg := entity.Message{
		Id:        uuid.New(),
		ChatId:    chat.Id,
		Role:      constant.MessageRoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, &msg); err != nil {
		return "", err
	}

	var renamed string
	if prior == 0 {
		chat.Title = truncateTitle(content)
		now := time.Now()
		chat.UpdatedAt = &now
		if err := uow.ChatRepository().Update(ctx, chat); err != nil {
			return "", err
		}
		renamed = chat.Title
	}

	if err := uow.Commit(); err != nil {
		return "", err
	}
	return renamed, nil
}

// persistCompletion writes the assistant side of the turn. A failed turn or
// an empty completion leaves the transcript at the user message; write errors
// are logged and swallowed because the client already has the streamed text.
func (s *turnService) persistCompletion(chatId uuid.UUID, text string, toolRows []toolInvocation, turnErr error) {
	if turnErr != nil {
		s.logger.Warn("Turn", "turn failed, discarding partial output", map[string]interface{}{
			"chat_id": chatId,
			"error":   turnErr.Error(),
		})
		return
	}
	if text == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		s.logger.Error("Turn", "failed to open transaction for completion", map[string]interface{}{"chat_id": chatId, "error": err.Error()})
		return
	}
	defer uow.Rollback()

	for _, row := range toolRows {
		name := row.name
		msg := entity.Message{
			Id:         uuid.New(),
			ChatId:     chatId,
			Role:       constant.MessageRoleTool,
			ToolName:   &name,
			ToolResult: row.output,
			CreatedAt:  time.Now(),
		}
		if err := uow.MessageRepository().Create(ctx, &msg); err != nil {
			s.logger.Error("Turn", "failed to persist tool result", map[string]interface{}{"chat_id": chatId, "error": err.Error()})
			return
		}
	}

	assistant := entity.Message{
		Id:        uuid.New(),
		ChatId:    chatId,
		Role:      constant.MessageRoleAssistant,
		Content:   text,
		CreatedAt: time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, &assistant); err != nil {
		s.logger.Error("Turn", "failed to persist assistant message", map[string]interface{}{"chat_id": chatId, "error": err.Error()})
		return
	}

	if err := uow.Commit(); err != nil {
		s.logger.Error("Turn", "failed to commit completion", map[string]interface{}{"chat_id": chatId, "error": err.Error()})
	}
}

func (s *turnService) publish(topic string, evt events.Event) {
	if s.busPub == nil {
		return
	}
	payload, err := json.Marshal(evt.Payload())
	if err != nil {
		s.logger.Error("Turn", "failed to marshal event", map[string]interface{}{"topic": topic, "error": err.Error()})
		return
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("event_type", evt.EventType())
	if err := s.busPub.Publish(topic, msg); err != nil {
		s.logger.Warn("Turn", "failed to publish event", map[string]interface{}{"topic": topic, "error": err.Error()})
	}
}
