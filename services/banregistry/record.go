// Package banregistry implements the authoritative ban-state lifecycle:
// the persisted record store, the reconciliation pass over live sessions,
// and the moderator-facing issue/lift operations.
package banregistry

import (
	"fmt"
	"strings"
	"time"
)

// BannedForever marks permanent bans. It is 2^53-1 so the persisted JSON
// stays readable by consumers that only handle double-precision numbers.
const BannedForever int64 = 1<<53 - 1

// Record is the authoritative description of one player's ban. Field names
// match the persisted blob format exactly.
type Record struct {
	BannedUntil   int64   `json:"bannedUntil"`
	Reason        string  `json:"reason"`
	BannedBy      string  `json:"bannedBy"`
	IsPermanent   bool    `json:"isPermanent"`
	BannedAt      int64   `json:"bannedAt"`
	CustomTitle   *string `json:"customTitle"`
	CustomMessage *string `json:"customMessage"`
	AppealInfo    *string `json:"appealInfo"`
}

// Active reports whether the ban is still in force at the given instant.
func (r Record) Active(nowMs int64) bool {
	return r.IsPermanent || r.BannedUntil > nowMs
}

// Expired reports whether the ban should be removed at the given instant.
// Exact equality counts as expired, so a record is never both active and
// expired in the same pass.
func (r Record) Expired(nowMs int64) bool {
	return !r.IsPermanent && r.BannedUntil <= nowMs
}

// TimeLeft renders the remaining duration, or "PERMANENT".
func (r Record) TimeLeft(nowMs int64) string {
	if r.IsPermanent {
		return "PERMANENT"
	}
	return FormatDuration(r.BannedUntil - nowMs)
}

// ActiveBan is one entry of the read-only active-ban listing.
type ActiveBan struct {
	Name     string `json:"name"`
	TimeLeft string `json:"time_left"`
	Reason   string `json:"reason"`
	BannedBy string `json:"banned_by"`
	BannedAt string `json:"banned_at"`
}

// FormatDuration renders a millisecond duration as "1d 2h 3m". Durations
// under a minute render as "less than 1m".
func FormatDuration(ms int64) string {
	minutes := ms / 1000 / 60
	hours := minutes / 60
	days := hours / 24

	remainingHours := hours % 24
	remainingMinutes := minutes % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if remainingHours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", remainingHours))
	}
	if remainingMinutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", remainingMinutes))
	}

	if len(parts) == 0 {
		return "less than 1m"
	}
	return strings.Join(parts, " ")
}

func formatTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
