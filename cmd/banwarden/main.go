// Package main is the entry point for the BanWarden gateway.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"banwarden/internal/config"
	"banwarden/internal/eventbus"
	"banwarden/internal/objstore"
	"banwarden/services/banregistry"
	"banwarden/services/gateway"
)

func main() {
	brokers := strings.Split(os.Getenv("KAFKA_BROKERS"), ",")
	if len(brokers) == 0 || brokers[0] == "" {
		brokers = []string{"redpanda:9092"}
	}
	bus := eventbus.NewEventBus(brokers)
	defer bus.Close()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	serverID := os.Getenv("SERVER_ID")
	if serverID == "" {
		serverID = "main"
	}
	bucket := os.Getenv("MODERATION_BUCKET")
	if bucket == "" {
		bucket = "moderation"
	}

	objects, err := objstore.NewMinIOClientFromEnv()
	if err != nil {
		log.Fatal("Failed to create object storage client: ", err)
	}

	profiles := config.NewStore(objects, bucket)
	store := banregistry.NewStore(objects, bucket)
	effects := banregistry.NewApplicator(profiles)

	wsServer := gateway.NewWebSocketServer(bus, serverID)
	registry := banregistry.NewRegistry(store, wsServer, effects, profiles, bus, wsServer, serverID)
	banService := banregistry.NewService(registry)
	wsServer.SetConnectHook(banService.OnSessionConnect)

	gatewayService := gateway.NewService(gateway.Config{
		HTTPAddr: httpAddr,
		ServerID: serverID,
	}, wsServer, registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down BanWarden...")
		cancel()
	}()

	log.Println("BanWarden starting...")
	gatewayService.Start(ctx)
	defer gatewayService.Stop()

	if err := banService.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal("Service failed:", err)
	}
	log.Println("BanWarden stopped.")
}
