package banregistry

import "errors"

var (
	// ErrEmptyReason rejects issue requests with a blank reason.
	ErrEmptyReason = errors.New("ban reason is required")

	// ErrTargetNotFound means the target session is not currently resolvable.
	ErrTargetNotFound = errors.New("target player is not online")

	// ErrNotBanned means a lift was requested for a player with no record.
	ErrNotBanned = errors.New("player is not banned")

	// ErrPersistence means the record store failed to persist a write.
	// No session effects are applied when this is returned.
	ErrPersistence = errors.New("failed to persist ban records")

	// ErrEffects means the record persisted but mutating the target session
	// failed. The ban stays in force; the next reconciliation pass re-applies.
	ErrEffects = errors.New("failed to apply session effects")
)
