// Package main is the entry point for the moderation audit log.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"banwarden/internal/eventbus"
	"banwarden/services/auditlog"
)

func main() {
	brokers := strings.Split(os.Getenv("KAFKA_BROKERS"), ",")
	if len(brokers) == 0 || brokers[0] == "" {
		brokers = []string{"redpanda:9092"}
	}
	bus := eventbus.NewEventBus(brokers)
	defer bus.Close()

	client, err := auditlog.NewNeo4jClient()
	if err != nil {
		log.Fatal("Failed to connect to Neo4j: ", err)
	}
	defer client.Close()

	service := auditlog.NewService(bus, client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down audit log...")
		cancel()
	}()

	log.Println("Audit log starting...")
	if err := service.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal("Service failed:", err)
	}
	log.Println("Audit log stopped.")
}
