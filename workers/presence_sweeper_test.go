package workers

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"room-lab/domain"
	"room-lab/repositories"
)

const (
	sweepPeriod = 15 * time.Second
	idleTimeout = 10 * time.Second
)

func newSweeperFixture(t *testing.T) (repositories.ParticipantRepository, *repositories.MessageRepository) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	messages, err := repositories.NewMessageRepository(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = messages.Close() })

	return repositories.NewParticipantRepository(db), messages
}

func Test_Sweep_Evicts_Idle_Participant_Once(t *testing.T) {
	req := require.New(t)
	registry, messages := newSweeperFixture(t)

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	req.NoError(registry.Create(domain.Participant{Name: "P", LastSeen: now.Add(-20 * time.Second)}))

	sweeper := NewPresenceSweeper(registry, messages, nil, logs.GetLoggerFromLevel(slog.LevelDebug), sweepPeriod, idleTimeout)
	sweeper.now = func() time.Time { return now }
	sweeper.sweep()

	participants, err := registry.List()
	req.NoError(err)
	req.Empty(participants)

	log, err := messages.ListAll()
	req.NoError(err)
	req.Len(log, 1)
	req.Equal("P", log[0].From)
	req.Equal(domain.Broadcast, log[0].To)
	req.Equal("left the room", log[0].Text)
	req.Equal(domain.System, log[0].Kind)

	// A second cycle has no one left to evict.
	sweeper.sweep()
	log, err = messages.ListAll()
	req.NoError(err)
	req.Len(log, 1)
}

func Test_Sweep_Keeps_Fresh_Participants(t *testing.T) {
	req := require.New(t)
	registry, messages := newSweeperFixture(t)

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	req.NoError(registry.Create(domain.Participant{Name: "Fresh", LastSeen: now.Add(-5 * time.Second)}))

	sweeper := NewPresenceSweeper(registry, messages, nil, logs.GetLoggerFromLevel(slog.LevelDebug), sweepPeriod, idleTimeout)
	sweeper.now = func() time.Time { return now }
	sweeper.sweep()

	participants, err := registry.List()
	req.NoError(err)
	req.Len(participants, 1)

	log, err := messages.ListAll()
	req.NoError(err)
	req.Empty(log)
}

func Test_Sweep_Treats_Future_Timestamps_As_Idle(t *testing.T) {
	req := require.New(t)
	registry, messages := newSweeperFixture(t)

	// The idle check uses the absolute clock distance, so a LastSeen skewed
	// into the future is evicted like any idle participant.
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	req.NoError(registry.Create(domain.Participant{Name: "Skewed", LastSeen: now.Add(30 * time.Second)}))

	sweeper := NewPresenceSweeper(registry, messages, nil, logs.GetLoggerFromLevel(slog.LevelDebug), sweepPeriod, idleTimeout)
	sweeper.now = func() time.Time { return now }
	sweeper.sweep()

	participants, err := registry.List()
	req.NoError(err)
	req.Empty(participants)
}

// flakyMessageRepo fails departure notices for one participant.
type flakyMessageRepo struct {
	*repositories.MessageRepository
	failFor string
}

func (f flakyMessageRepo) Append(m domain.Message) (domain.Message, error) {
	if m.From == f.failFor {
		return domain.Message{}, fmt.Errorf("disk full")
	}
	return f.MessageRepository.Append(m)
}

func Test_Sweep_Isolates_Failures_Per_Participant(t *testing.T) {
	req := require.New(t)
	registry, messages := newSweeperFixture(t)

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	stale := now.Add(-time.Minute)
	req.NoError(registry.Create(domain.Participant{Name: "Bad", LastSeen: stale}))
	req.NoError(registry.Create(domain.Participant{Name: "Good", LastSeen: stale}))

	flaky := flakyMessageRepo{MessageRepository: messages, failFor: "Bad"}
	sweeper := NewPresenceSweeper(registry, flaky, nil, logs.GetLoggerFromLevel(slog.LevelDebug), sweepPeriod, idleTimeout)
	sweeper.now = func() time.Time { return now }
	sweeper.sweep()

	// Good was evicted despite Bad's failure; Bad stays for the next cycle
	// because its departure notice was never recorded.
	participants, err := registry.List()
	req.NoError(err)
	req.Len(participants, 1)
	req.Equal("Bad", participants[0].Name)

	log, err := messages.ListAll()
	req.NoError(err)
	req.Len(log, 1)
	req.Equal("Good", log[0].From)
}
