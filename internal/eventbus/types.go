package eventbus

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	ServerID  string                 `json:"server_id"`
	Payload   map[string]interface{} `json:"payload"`
}

func NewEvent(eventType, source, serverID string, payload map[string]interface{}) Event {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	return Event{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Source:    source,
		ServerID:  serverID,
		Payload:   payload,
	}
}
