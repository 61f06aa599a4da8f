// Package session defines the surface the moderation engine uses to inspect
// and mutate live player sessions. The store stays authoritative for ban
// state; tags kept on sessions are denormalized hints only.
package session

import "context"

// Mode is the interaction mode a session runs under.
type Mode string

const (
	ModeNormal     Mode = "normal"
	ModeRestricted Mode = "restricted"
)

// Tag conventions for the session-side restriction markers.
const (
	TagPermanentBan = "permanent_ban"
	TagBannedPrefix = "banned:"
	TagReasonPrefix = "reason:"
)

// Session is one connected player. Every mutator may fail; callers on
// best-effort paths convert failures to logged warnings.
type Session interface {
	Name() string
	DisplayName() string
	Mode() Mode
	Muted() bool
	MutedUntil() int64
	Tags() []string
	HasTag(tag string) bool

	SetDisplayName(ctx context.Context, name string) error
	SetMode(ctx context.Context, mode Mode) error
	SetMuted(ctx context.Context, muted bool, until int64) error
	AddTag(ctx context.Context, tag string) error
	RemoveTag(ctx context.Context, tag string) error
	SendMessage(ctx context.Context, message string) error

	// Disconnect forcibly removes the player, presenting the message.
	Disconnect(ctx context.Context, message string) error
}

// Directory lists currently connected sessions. The moderation engine never
// invents session identities; this is its only source of them.
type Directory interface {
	Sessions() []Session
	Find(name string) (Session, bool)
}
