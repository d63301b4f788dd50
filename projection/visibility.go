// Package projection computes per-viewer views of the message log.
// It handles visibility and recency limits; it never mutates the log.
package projection

import "room-lab/domain"

// Visible reports whether viewer may read m. Broadcast and system traffic is
// readable by everyone; private traffic only by its two ends.
func Visible(m domain.Message, viewer string) bool {
	return m.Kind == domain.Public ||
		m.Kind == domain.System ||
		m.From == viewer ||
		m.To == viewer
}

// Timeline selects the messages of log visible to viewer, oldest first.
// A non-nil limit caps the result to the limit most recent visible messages;
// the scan walks newest-to-oldest and stops as soon as enough visible
// messages are collected, not after limit raw messages. A limit of zero
// yields an empty timeline.
func Timeline(log []domain.Message, viewer string, limit *int) []domain.Message {
	if limit == nil {
		var visible []domain.Message
		for _, m := range log {
			if Visible(m, viewer) {
				visible = append(visible, m)
			}
		}
		return visible
	}

	if *limit <= 0 {
		return []domain.Message{}
	}

	collected := make([]domain.Message, 0, *limit)
	for i := len(log) - 1; i >= 0 && len(collected) < *limit; i-- {
		if Visible(log[i], viewer) {
			collected = append(collected, log[i])
		}
	}

	// Collected newest-to-oldest; restore chronological order.
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	return collected
}
