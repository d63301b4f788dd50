package search

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"room-lab/domain"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	index, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func Test_Indexed_Broadcast_Message_Is_Found(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)

	m := domain.Message{
		ID: uuid.New(), From: "Ann", To: domain.Broadcast,
		Text: "the deployment finished", Kind: domain.Public, Time: "10:00:00",
	}
	req.NoError(index.Add(m))

	ids, err := index.Search(context.Background(), "deployment", 10)
	req.NoError(err)
	req.Equal([]uuid.UUID{m.ID}, ids)
}

func Test_Private_Messages_Are_Never_Indexed(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)

	m := domain.Message{
		ID: uuid.New(), From: "Ann", To: "Bob",
		Text: "secret handshake", Kind: domain.Private, Time: "10:00:00",
	}
	req.NoError(index.Add(m))

	ids, err := index.Search(context.Background(), "secret", 10)
	req.NoError(err)
	req.Empty(ids)
}

func Test_Sync_Removes_Message_Edited_To_Private(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)

	m := domain.Message{
		ID: uuid.New(), From: "Ann", To: domain.Broadcast,
		Text: "loud thought", Kind: domain.Public, Time: "10:00:00",
	}
	req.NoError(index.Add(m))

	m.Kind = domain.Private
	m.To = "Bob"
	req.NoError(index.Sync(m))

	ids, err := index.Search(context.Background(), "loud", 10)
	req.NoError(err)
	req.Empty(ids)
}

func Test_Remove_Deindexes(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)

	m := domain.Message{
		ID: uuid.New(), From: "Ann", To: domain.Broadcast,
		Text: "short lived", Kind: domain.Public, Time: "10:00:00",
	}
	req.NoError(index.Add(m))
	req.NoError(index.Remove(m.ID))

	ids, err := index.Search(context.Background(), "lived", 10)
	req.NoError(err)
	req.Empty(ids)
}
