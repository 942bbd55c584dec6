package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-chatspace-be/internal/pkg/logger"
	"ai-chatspace-be/internal/websocket"
	"ai-chatspace-be/pkg/events"
	pkgnats "ai-chatspace-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// INotifierService bridges the in-process event bus to the delivery edges:
// the websocket hub for connected clients and NATS for external consumers.
type INotifierService interface {
	Start(ctx context.Context) error
}

type notifierService struct {
	subscriber message.Subscriber
	hub        *websocket.Hub
	natsPub    *pkgnats.Publisher
	logger     logger.ILogger
}

func NewNotifierService(
	subscriber message.Subscriber,
	hub *websocket.Hub,
	natsPub *pkgnats.Publisher,
	log logger.ILogger,
) INotifierService {
	return &notifierService{
		subscriber: subscriber,
		hub:        hub,
		natsPub:    natsPub,
		logger:     log,
	}
}

func (s *notifierService) Start(ctx context.Context) error {
	topics := map[string]string{
		events.TopicTurnCompleted: "turn_completed",
		events.TopicChatRenamed:   "chat_renamed",
	}

	for topic, noticeType := range topics {
		msgs, err := s.subscriber.Subscribe(ctx, topic)
		if err != nil {
			return err
		}
		go s.consume(msgs, noticeType)
	}

	return nil
}

func (s *notifierService) consume(msgs <-chan *message.Message, noticeType string) {
	for msg := range msgs {
		s.handle(msg, noticeType)
		msg.Ack()
	}
}

func (s *notifierService) handle(msg *message.Message, noticeType string) {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Warn("Notifier", "bad event payload", map[string]interface{}{"error": err.Error()})
		return
	}

	userIdStr, _ := payload["user_id"].(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		s.logger.Warn("Notifier", "event without valid user_id", map[string]interface{}{"type": noticeType})
		return
	}

	if s.hub != nil {
		s.hub.Send(userId, websocket.Notice{Type: noticeType, Data: payload})
	}

	// NATS is best-effort; a down bus must not block local delivery.
	if s.natsPub != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		evt := events.BaseEvent{
			Type:       msg.Metadata.Get("event_type"),
			Data:       payload,
			OccurredAt: time.Now(),
		}
		if err := s.natsPub.Publish(ctx, evt); err != nil {
			s.logger.Warn("Notifier", "failed to publish to NATS", map[string]interface{}{"error": err.Error()})
		}
	}
}
