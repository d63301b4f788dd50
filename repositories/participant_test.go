package repositories

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"room-lab/domain"
	apperrors "room-lab/errors"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Create_And_List_Participants(t *testing.T) {
	req := require.New(t)
	repository := NewParticipantRepository(openTestDB(t))

	now := time.Now().UTC().Truncate(time.Nanosecond)
	names := []string{"Ann", "Bob", "Clara"}
	for _, name := range names {
		req.NoError(repository.Create(domain.Participant{Name: name, LastSeen: now}))
	}

	participants, err := repository.List()
	req.NoError(err)
	req.Len(participants, len(names))
	for _, p := range participants {
		req.Contains(names, p.Name)
		req.Equal(now, p.LastSeen)
	}
}

func Test_Create_Duplicate_Name_Is_Rejected(t *testing.T) {
	req := require.New(t)
	repository := NewParticipantRepository(openTestDB(t))

	first := domain.Participant{Name: "Ann", LastSeen: time.Now().UTC()}
	req.NoError(repository.Create(first))

	err := repository.Create(domain.Participant{Name: "Ann", LastSeen: time.Now().UTC()})
	req.ErrorIs(err, apperrors.ErrNameTaken)

	// The registry is unchanged.
	participants, err := repository.List()
	req.NoError(err)
	req.Len(participants, 1)
	req.Equal(first.Name, participants[0].Name)
}

func Test_Names_Are_Case_Sensitive(t *testing.T) {
	req := require.New(t)
	repository := NewParticipantRepository(openTestDB(t))

	now := time.Now().UTC()
	req.NoError(repository.Create(domain.Participant{Name: "ann", LastSeen: now}))
	req.NoError(repository.Create(domain.Participant{Name: "Ann", LastSeen: now}))

	participants, err := repository.List()
	req.NoError(err)
	req.Len(participants, 2)
}

func Test_Refresh_Updates_LastSeen(t *testing.T) {
	req := require.New(t)
	repository := NewParticipantRepository(openTestDB(t))

	joined := time.Now().UTC().Add(-time.Minute)
	req.NoError(repository.Create(domain.Participant{Name: "Ann", LastSeen: joined}))

	seen := time.Now().UTC()
	req.NoError(repository.Refresh("Ann", seen))

	participants, err := repository.List()
	req.NoError(err)
	req.Len(participants, 1)
	req.Equal(seen, participants[0].LastSeen)
}

func Test_Refresh_Unknown_Participant(t *testing.T) {
	req := require.New(t)
	repository := NewParticipantRepository(openTestDB(t))

	err := repository.Refresh("Ghost", time.Now().UTC())
	req.ErrorIs(err, apperrors.ErrParticipantNotFound)
}

func Test_Exists_And_Remove(t *testing.T) {
	req := require.New(t)
	repository := NewParticipantRepository(openTestDB(t))

	req.NoError(repository.Create(domain.Participant{Name: "Ann", LastSeen: time.Now().UTC()}))

	exists, err := repository.Exists("Ann")
	req.NoError(err)
	req.True(exists)

	req.NoError(repository.Remove("Ann"))

	exists, err = repository.Exists("Ann")
	req.NoError(err)
	req.False(exists)
}
