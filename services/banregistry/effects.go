package banregistry

import (
	"context"
	"log"
	"strings"

	"banwarden/internal/config"
	"banwarden/internal/session"
)

// Applicator mutates session-visible state to reflect restricted status and
// back. Both operations are idempotent: re-applying writes the same values.
// Failures from the underlying session calls never propagate past this
// boundary; they are logged and reported as a boolean.
type Applicator struct {
	profiles *config.Store
}

// NewApplicator creates an effect applicator using the presentation profile
// for the restricted display-name prefix.
func NewApplicator(profiles *config.Store) *Applicator {
	return &Applicator{profiles: profiles}
}

// ApplyRestriction marks the session's display name, forces the restricted
// interaction mode and mutes the player until the ban deadline.
func (a *Applicator) ApplyRestriction(ctx context.Context, s session.Session, rec Record) bool {
	prefix := a.profiles.Profile().BannedNamePrefix

	if err := s.SetDisplayName(ctx, prefix+s.Name()); err != nil {
		log.Printf("Error applying ban effects to %s: %v", s.Name(), err)
		return false
	}
	if err := s.SetMode(ctx, session.ModeRestricted); err != nil {
		log.Printf("Error applying ban effects to %s: %v", s.Name(), err)
		return false
	}
	if err := s.SetMuted(ctx, true, rec.BannedUntil); err != nil {
		log.Printf("Error applying ban effects to %s: %v", s.Name(), err)
		return false
	}
	return true
}

// RestoreNormal clears the restriction markers and returns the session to its
// unrestricted state.
func (a *Applicator) RestoreNormal(ctx context.Context, s session.Session) bool {
	if err := s.RemoveTag(ctx, session.TagPermanentBan); err != nil {
		log.Printf("Error during unban of %s: %v", s.Name(), err)
		return false
	}
	for _, tag := range s.Tags() {
		if !strings.HasPrefix(tag, session.TagBannedPrefix) && !strings.HasPrefix(tag, session.TagReasonPrefix) {
			continue
		}
		if err := s.RemoveTag(ctx, tag); err != nil {
			log.Printf("Error during unban of %s: %v", s.Name(), err)
			return false
		}
	}

	if err := s.SetMode(ctx, session.ModeNormal); err != nil {
		log.Printf("Error during unban of %s: %v", s.Name(), err)
		return false
	}
	if err := s.SetDisplayName(ctx, s.Name()); err != nil {
		log.Printf("Error during unban of %s: %v", s.Name(), err)
		return false
	}
	if err := s.SetMuted(ctx, false, 0); err != nil {
		log.Printf("Error during unban of %s: %v", s.Name(), err)
		return false
	}

	if err := s.SendMessage(ctx, "Your ban has been lifted! Welcome back!"); err != nil {
		log.Printf("Failed to notify %s about unban: %v", s.Name(), err)
	}
	return true
}
