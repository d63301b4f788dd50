// Package domain contains core concepts of the room.
// This file defines Participant entities and related invariants.
// No transport, storage, or scheduling logic should be added here.
package domain

import "time"

// Participant is an active member of the room.
// Name is self-asserted and unique among active participants.
type Participant struct {
	Name     string
	LastSeen time.Time
}

// Idle reports whether the participant has been silent longer than timeout.
// The check uses the absolute distance to now, so a LastSeen stamped in the
// future (clock skew) also counts as idle.
func (p Participant) Idle(now time.Time, timeout time.Duration) bool {
	d := now.Sub(p.LastSeen)
	if d < 0 {
		d = -d
	}
	return d > timeout
}
