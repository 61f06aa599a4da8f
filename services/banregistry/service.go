// Package banregistry implements the ban lifecycle service.
package banregistry

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"banwarden/internal/session"
)

// Service drives the reconciler on a fixed tick and exposes the connect hook
// the gateway invokes for every joining session.
type Service struct {
	registry   *Registry
	reconciler *Reconciler
}

// NewService creates the ban lifecycle service.
func NewService(registry *Registry) *Service {
	return &Service{
		registry:   registry,
		reconciler: NewReconciler(registry),
	}
}

// Registry returns the moderator-facing operations.
func (s *Service) Registry() *Registry {
	return s.registry
}

// OnSessionConnect reconciles one session at connect time.
func (s *Service) OnSessionConnect(ctx context.Context, sess session.Session) {
	s.reconciler.OnConnect(ctx, sess)
}

// Run ticks the reconciliation pass until the context is cancelled. The
// interval comes from MODERATION_TICK_MS (default 5000).
func (s *Service) Run(ctx context.Context) error {
	tickStr := os.Getenv("MODERATION_TICK_MS")
	if tickStr == "" {
		tickStr = "5000"
	}
	tickMs, err := strconv.Atoi(tickStr)
	if err != nil || tickMs <= 0 {
		log.Printf("Invalid MODERATION_TICK_MS value %q, using default 5000ms", tickStr)
		tickMs = 5000
	}

	ticker := time.NewTicker(time.Duration(tickMs) * time.Millisecond)
	defer ticker.Stop()

	log.Printf("Ban registry reconciling every %dms", tickMs)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.reconciler.Pass(ctx)
		}
	}
}
