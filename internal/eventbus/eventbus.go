package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

type EventBus struct {
	writers map[string]*kafka.Writer
	brokers []string
}

func NewEventBus(brokers []string) *EventBus {
	topics := []string{
		TopicModerationEvents,
		TopicSessionEvents,
		TopicSystemEvents,
	}
	writers := make(map[string]*kafka.Writer)
	for _, topic := range topics {
		writers[topic] = &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		}
	}
	return &EventBus{
		writers: writers,
		brokers: brokers,
	}
}

func (eb *EventBus) Publish(ctx context.Context, topic string, event Event) error {
	if event.EventID == "" || event.EventType == "" || event.ServerID == "" {
		return fmt.Errorf("event missing required fields: event_id=%q, event_type=%q, server_id=%q",
			event.EventID, event.EventType, event.ServerID)
	}
	msg, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return eb.writers[topic].WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ServerID),
		Value: msg,
	})
}

func (eb *EventBus) Subscribe(ctx context.Context, topic, groupID string, handler func(Event)) {
	// Poll frequency is tunable so moderation consumers can trade latency for load.
	pollFreqStr := os.Getenv("KAFKA_POLL_FREQUENCY_MS")
	if pollFreqStr == "" {
		pollFreqStr = "1000"
	}
	pollFreqMs, err := strconv.Atoi(pollFreqStr)
	if err != nil {
		log.Printf("Invalid KAFKA_POLL_FREQUENCY_MS value: %v, using default 1000ms", err)
		pollFreqMs = 1000
	}

	maxWait := time.Millisecond * time.Duration(pollFreqMs)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  eb.brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
		MaxWait:  maxWait,
	})
	defer reader.Close()
	log.Printf("Subscribed to %s as %s", topic, groupID)
	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				log.Printf("Subscription to %s stopped: %v", topic, ctx.Err())
				return
			default:
				log.Printf("Read error on %s: %v", topic, err)
			}
			continue
		}
		var event Event
		if err := json.Unmarshal(m.Value, &event); err != nil {
			log.Printf("Parse error on %s key=%s: %v", topic, string(m.Key), err)
			continue
		}
		handler(event)
	}
}

func (eb *EventBus) Close() error {
	var errs []error
	for topic, writer := range eb.writers {
		if err := writer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close writer for topic %s: %w", topic, err))
		}
	}
	if len(errs) > 0 {
		for _, err := range errs[1:] {
			log.Printf("Additional close error: %v", err)
		}
		return errs[0]
	}
	return nil
}

func (eb *EventBus) PublishModerationEvent(ctx context.Context, event Event) error {
	return eb.Publish(ctx, TopicModerationEvents, event)
}

func (eb *EventBus) PublishSessionEvent(ctx context.Context, event Event) error {
	return eb.Publish(ctx, TopicSessionEvents, event)
}

func (eb *EventBus) PublishSystemEvent(ctx context.Context, event Event) error {
	return eb.Publish(ctx, TopicSystemEvents, event)
}
