// Package auditlog implements the moderation audit trail service.
package auditlog

import (
	"context"
	"log"

	"banwarden/internal/eventbus"
)

// Service consumes moderation events and records them in the audit graph.
type Service struct {
	bus    *eventbus.EventBus
	client *Neo4jClient
}

// NewService creates a new audit log service.
func NewService(bus *eventbus.EventBus, client *Neo4jClient) *Service {
	return &Service{bus: bus, client: client}
}

// Run starts the service and blocks until context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.bus.Subscribe(ctx, eventbus.TopicModerationEvents, "audit-log-group", s.handleModerationEvent)
	<-ctx.Done()
	return ctx.Err()
}

func (s *Service) handleModerationEvent(ev eventbus.Event) {
	player, _ := ev.Payload["player"].(string)
	if player == "" {
		log.Printf("Moderation event %s missing player, skipping", ev.EventID)
		return
	}

	moderator := "system"
	switch ev.EventType {
	case eventbus.EventBanIssued:
		if by, ok := ev.Payload["issued_by"].(string); ok && by != "" {
			moderator = by
		}
	case eventbus.EventBanLifted:
		if by, ok := ev.Payload["lifted_by"].(string); ok && by != "" {
			moderator = by
		}
	case eventbus.EventBanExpired:
		// Expiry is automatic; attributed to the system moderator.
	default:
		return
	}

	details := make(map[string]interface{})
	if reason, ok := ev.Payload["reason"].(string); ok {
		details["reason"] = reason
	}
	if permanent, ok := ev.Payload["permanent"].(bool); ok {
		details["permanent"] = permanent
	}

	if err := s.client.RecordAction(ev.EventID, ev.EventType, moderator, player, ev.Timestamp, details); err != nil {
		log.Printf("Failed to record %s for %s: %v", ev.EventType, player, err)
	}
}
