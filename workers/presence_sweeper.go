package workers

import (
	"context"
	"log/slog"
	"time"

	"room-lab/domain"
	"room-lab/repositories"
	"room-lab/search"
)

// PresenceSweeper evicts participants that stopped sending heartbeats.
// Each cycle scans the whole registry; for every idle participant it records
// a departure notice and then removes the registry entry. Those two writes
// are independent, so a failed notice keeps the participant for the next
// cycle rather than dropping them silently.
type PresenceSweeper struct {
	registry repositories.IParticipantRepository
	messages repositories.IMessageRepository
	index    *search.Index
	log      *slog.Logger
	period   time.Duration
	timeout  time.Duration
	now      func() time.Time
}

func NewPresenceSweeper(
	registry repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	index *search.Index,
	log *slog.Logger,
	period, timeout time.Duration,
) *PresenceSweeper {
	return &PresenceSweeper{
		registry: registry,
		messages: messages,
		index:    index,
		log:      log,
		period:   period,
		timeout:  timeout,
		now:      time.Now,
	}
}

func (w *PresenceSweeper) Run(ctx context.Context) error {
	w.log.Info("Starting presence sweeper", "period", w.period, "idle_timeout", w.timeout)
	ticker := time.NewTicker(w.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.sweep()
		}
	}
}

// sweep runs one eviction cycle. A failure on one participant is logged and
// never aborts the cycle for the others.
func (w *PresenceSweeper) sweep() {
	participants, err := w.registry.List()
	if err != nil {
		w.log.Error("Listing participants failed, skipping cycle", "error", err)
		return
	}

	now := w.now().UTC()
	for _, p := range participants {
		if !p.Idle(now, w.timeout) {
			continue
		}
		w.evict(p, now)
	}
}

func (w *PresenceSweeper) evict(p domain.Participant, now time.Time) {
	notice, err := w.messages.Append(domain.DepartureNotice(p.Name, now))
	if err != nil {
		w.log.Error("Departure notice failed, keeping participant", "name", p.Name, "error", err)
		return
	}
	if w.index != nil {
		if err = w.index.Add(notice); err != nil {
			w.log.Warn("Indexing departure notice failed", "name", p.Name, "error", err)
		}
	}
	if err = w.registry.Remove(p.Name); err != nil {
		w.log.Error("Removing participant failed after departure notice", "name", p.Name, "error", err)
		return
	}
	w.log.Info("Evicted idle participant", "name", p.Name, "last_seen", p.LastSeen)
}
