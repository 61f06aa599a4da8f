package banregistry

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"banwarden/internal/config"
	"banwarden/internal/eventbus"
	"banwarden/internal/session"
)

// Publisher is the slice of the event bus the registry needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, event eventbus.Event) error
}

// Announcer broadcasts a public notice to every connected session.
type Announcer interface {
	Announce(message string)
}

// IssueRequest carries the moderator input for a new ban.
type IssueRequest struct {
	Days          int
	Hours         int
	Minutes       int
	Permanent     bool
	Reason        string
	CustomTitle   string
	CustomMessage string
	AppealInfo    string
	IssuedBy      string
	Announce      bool
}

// Registry exposes the moderator-facing ban operations. Every
// read-modify-write cycle on the store is serialized behind mu, since the
// HTTP handlers and the reconciliation ticker run on separate goroutines.
type Registry struct {
	mu       sync.Mutex
	store    *Store
	sessions session.Directory
	effects  *Applicator
	profiles *config.Store
	bus      Publisher
	announce Announcer
	serverID string

	now func() time.Time
}

// NewRegistry wires a ban registry.
func NewRegistry(store *Store, sessions session.Directory, effects *Applicator,
	profiles *config.Store, bus Publisher, announce Announcer, serverID string) *Registry {
	return &Registry{
		store:    store,
		sessions: sessions,
		effects:  effects,
		profiles: profiles,
		bus:      bus,
		announce: announce,
		serverID: serverID,
		now:      time.Now,
	}
}

// IssueBan validates the request, persists the record and then applies
// session effects and disconnects the target. The record is written before
// any effect runs: a failed persist means no session mutation at all.
func (g *Registry) IssueBan(ctx context.Context, target string, req IssueRequest) (Record, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return Record{}, ErrEmptyReason
	}

	target = strings.TrimSpace(target)
	s, ok := g.sessions.Find(target)
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	}

	nowMs := g.now().UnixMilli()
	until := BannedForever
	if !req.Permanent {
		until = nowMs + int64(req.Days)*86400000 + int64(req.Hours)*3600000 + int64(req.Minutes)*60000
	}

	rec := Record{
		BannedUntil:   until,
		Reason:        reason,
		BannedBy:      req.IssuedBy,
		IsPermanent:   req.Permanent,
		BannedAt:      nowMs,
		CustomTitle:   optional(req.CustomTitle),
		CustomMessage: optional(req.CustomMessage),
		AppealInfo:    optional(req.AppealInfo),
	}

	g.mu.Lock()
	records := g.store.Get()
	records[target] = rec
	if !g.store.Set(records) {
		g.mu.Unlock()
		return Record{}, ErrPersistence
	}
	g.mu.Unlock()

	if !g.effects.ApplyRestriction(ctx, s, rec) {
		// The record is persisted either way; the next pass re-applies.
		return rec, ErrEffects
	}
	g.markSession(ctx, s, rec)

	profile := g.profiles.Profile()
	if req.Announce && profile.AnnounceBans != nil && *profile.AnnounceBans {
		g.announce.Announce(fmt.Sprintf(
			"[BAN SYSTEM]\nPlayer: %s\nBanned By: %s\nReason: %s\nDuration: %s",
			target, req.IssuedBy, reason, rec.TimeLeft(nowMs)))
	}
	g.publishModeration(ctx, eventbus.EventBanIssued, map[string]interface{}{
		"player":    target,
		"issued_by": req.IssuedBy,
		"reason":    reason,
		"permanent": req.Permanent,
		"until":     until,
	})

	if err := s.Disconnect(ctx, banNotice(rec, target, profile, nowMs)); err != nil {
		log.Printf("Failed to disconnect %s after ban: %v", target, err)
	}

	return rec, nil
}

// LiftBan deletes the record and, if the target is connected, restores the
// session to normal.
func (g *Registry) LiftBan(ctx context.Context, target, liftedBy string) error {
	g.mu.Lock()
	records := g.store.Get()
	if _, ok := records[target]; !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotBanned, target)
	}
	delete(records, target)
	if !g.store.Set(records) {
		g.mu.Unlock()
		return ErrPersistence
	}
	g.mu.Unlock()

	if s, ok := g.sessions.Find(target); ok {
		if !g.effects.RestoreNormal(ctx, s) {
			return ErrEffects
		}
	}

	profile := g.profiles.Profile()
	if profile.AnnounceLifts != nil && *profile.AnnounceLifts {
		g.announce.Announce(fmt.Sprintf(
			"[UNBAN SYSTEM]\n%s has been unbanned by %s", target, liftedBy))
	}
	g.publishModeration(ctx, eventbus.EventBanLifted, map[string]interface{}{
		"player":    target,
		"lifted_by": liftedBy,
	})

	return nil
}

// ActiveBans returns every record that is permanent or not yet expired,
// sorted by player name.
func (g *Registry) ActiveBans() []ActiveBan {
	records := g.store.Get()
	nowMs := g.now().UnixMilli()

	bans := make([]ActiveBan, 0, len(records))
	for name, rec := range records {
		if !rec.Active(nowMs) {
			continue
		}
		bans = append(bans, ActiveBan{
			Name:     name,
			TimeLeft: rec.TimeLeft(nowMs),
			Reason:   rec.Reason,
			BannedBy: rec.BannedBy,
			BannedAt: formatTimestamp(rec.BannedAt),
		})
	}
	sort.Slice(bans, func(i, j int) bool { return bans[i].Name < bans[j].Name })
	return bans
}

// deleteRecord removes one record under the write lock. Used by the expiry
// branch of the reconciler.
func (g *Registry) deleteRecord(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	records := g.store.Get()
	if _, ok := records[name]; !ok {
		return true
	}
	delete(records, name)
	return g.store.Set(records)
}

// markSession attaches the denormalized restriction markers to the live
// session. Marker failures are cosmetic; the store stays authoritative.
func (g *Registry) markSession(ctx context.Context, s session.Session, rec Record) {
	if err := s.AddTag(ctx, fmt.Sprintf("%s%d", session.TagBannedPrefix, rec.BannedUntil)); err != nil {
		log.Printf("Error adding ban tags to %s: %v", s.Name(), err)
	}
	if err := s.AddTag(ctx, session.TagReasonPrefix+rec.Reason); err != nil {
		log.Printf("Error adding ban tags to %s: %v", s.Name(), err)
	}
	if rec.IsPermanent {
		if err := s.AddTag(ctx, session.TagPermanentBan); err != nil {
			log.Printf("Error adding ban tags to %s: %v", s.Name(), err)
		}
	}
}

func (g *Registry) publishModeration(ctx context.Context, eventType string, payload map[string]interface{}) {
	event := eventbus.NewEvent(eventType, "ban-registry", g.serverID, payload)
	if err := g.bus.Publish(ctx, eventbus.TopicModerationEvents, event); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", eventType, err)
	}
}

// banNotice builds the message shown to a banned player on disconnect,
// falling back to the presentation profile where the record carries no
// custom overrides.
func banNotice(rec Record, name string, profile *config.Profile, nowMs int64) string {
	title := profile.DefaultTitle
	if rec.CustomTitle != nil {
		title = *rec.CustomTitle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", title)
	fmt.Fprintf(&b, "Player: %s\n", name)
	fmt.Fprintf(&b, "Reason: %s\n", rec.Reason)
	fmt.Fprintf(&b, "Duration: %s\n", rec.TimeLeft(nowMs))
	if rec.CustomMessage != nil {
		fmt.Fprintf(&b, "\n%s\n", *rec.CustomMessage)
	}
	if rec.AppealInfo != nil {
		fmt.Fprintf(&b, "\n%s", *rec.AppealInfo)
	} else {
		fmt.Fprintf(&b, "\n%s", profile.AppealContact)
	}
	return b.String()
}
