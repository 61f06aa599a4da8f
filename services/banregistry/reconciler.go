package banregistry

import (
	"context"
	"fmt"
	"log"
	"time"

	"banwarden/internal/eventbus"
	"banwarden/internal/session"
)

// Reconciler compares every connected session against the record store and
// resolves any disagreement: expired bans are lifted, active bans are
// re-enforced, and stray session markers with no backing record are cleared.
type Reconciler struct {
	reg *Registry
	now func() time.Time
}

// NewReconciler creates a reconciler over the registry's store and sessions.
func NewReconciler(reg *Registry) *Reconciler {
	return &Reconciler{reg: reg, now: time.Now}
}

// Pass runs one reconciliation over all connected sessions. Invoked on the
// periodic tick; safe to re-run at any frequency since every branch is
// idempotent.
func (r *Reconciler) Pass(ctx context.Context) {
	records := r.reg.store.Get()
	nowMs := r.now().UnixMilli()

	for _, s := range r.reg.sessions.Sessions() {
		rec, ok := records[s.Name()]
		switch {
		case ok && rec.Expired(nowMs):
			// Expiry is checked before enforcement so an exactly-expired
			// record resolves in this pass instead of next tick.
			r.expire(ctx, s)
		case ok:
			r.reg.effects.ApplyRestriction(ctx, s, rec)
		case s.HasTag(session.TagPermanentBan):
			// Record removed out-of-band while the session marker survived
			// a reconnect.
			r.reg.effects.RestoreNormal(ctx, s)
		}
	}
}

// OnConnect reconciles a single session at connect time. Unlike the periodic
// pass, an active ban here also disconnects the player: connecting would
// otherwise sidestep the tick's passive enforcement.
func (r *Reconciler) OnConnect(ctx context.Context, s session.Session) {
	records := r.reg.store.Get()
	nowMs := r.now().UnixMilli()

	rec, ok := records[s.Name()]
	switch {
	case ok && rec.Expired(nowMs):
		r.expire(ctx, s)
	case ok:
		r.reg.effects.ApplyRestriction(ctx, s, rec)
		notice := banNotice(rec, s.Name(), r.reg.profiles.Profile(), nowMs)
		if err := s.Disconnect(ctx, notice); err != nil {
			log.Printf("Failed to disconnect banned player %s: %v", s.Name(), err)
		}
	case s.HasTag(session.TagPermanentBan):
		r.reg.effects.RestoreNormal(ctx, s)
	}
}

// expire restores the session and only then deletes the record. If the
// restore fails the record is kept so the next pass retries; both steps are
// idempotent.
func (r *Reconciler) expire(ctx context.Context, s session.Session) {
	if !r.reg.effects.RestoreNormal(ctx, s) {
		return
	}
	if !r.reg.deleteRecord(s.Name()) {
		log.Printf("Failed to persist ban expiry for %s, retrying next pass", s.Name())
		return
	}

	r.reg.announce.Announce(fmt.Sprintf(
		"[BAN SYSTEM]\n%s's ban has expired and they have been unbanned.", s.Name()))
	r.reg.publishModeration(ctx, eventbus.EventBanExpired, map[string]interface{}{
		"player": s.Name(),
	})
}
