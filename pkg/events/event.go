package events

import "time"

const (
	TypeTurnCompleted = "TURN_COMPLETED"
	TypeChatRenamed   = "CHAT_RENAMED"
)

// In-process bus topics.
const (
	TopicTurnCompleted = "turn.completed"
	TopicChatRenamed   = "chat.renamed"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewTurnCompleted marks the end of an agent turn for a chat. Failed is true
// when the turn ended in an error terminal.
func NewTurnCompleted(userId, chatId string, failed bool) Event {
	return BaseEvent{
		Type: TypeTurnCompleted,
		Data: map[string]interface{}{
			"user_id": userId,
			"chat_id": chatId,
			"failed":  failed,
		},
		OccurredAt: time.Now(),
	}
}

// NewChatRenamed fires when a turn derives a chat title from its first user
// message.
func NewChatRenamed(userId, chatId, title string) Event {
	return BaseEvent{
		Type: TypeChatRenamed,
		Data: map[string]interface{}{
			"user_id": userId,
			"chat_id": chatId,
			"title":   title,
		},
		OccurredAt: time.Now(),
	}
}
