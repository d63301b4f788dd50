//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repositories

import (
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"

	"room-lab/domain"
	apperrors "room-lab/errors"
)

const participantPrefix = "participant:"

type IParticipantRepository interface {
	List() ([]domain.Participant, error)
	Create(p domain.Participant) error
	Refresh(name string, seen time.Time) error
	Exists(name string) (bool, error)
	Remove(name string) error
}

type ParticipantRepository struct {
	db *badger.DB
}

func NewParticipantRepository(db *badger.DB) ParticipantRepository {
	return ParticipantRepository{db: db}
}

// diskParticipant is the persisted form of a participant.
// LastSeen is stored as Unix nanoseconds.
type diskParticipant struct {
	Name     string
	LastSeen int64
}

func participantKey(name string) []byte {
	return []byte(participantPrefix + name)
}

// Create inserts the participant, failing when the name is already held by
// an active participant. The existence check and the insert share one
// transaction so two concurrent joins cannot both win.
func (r ParticipantRepository) Create(p domain.Participant) error {
	data, err := cbor.Marshal(fromParticipant(p))
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		key := participantKey(p.Name)
		_, err := txn.Get(key)
		if err == nil {
			return apperrors.ErrNameTaken
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})
}

// Refresh updates LastSeen for an active participant.
func (r ParticipantRepository) Refresh(name string, seen time.Time) error {
	return r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(participantKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.ErrParticipantNotFound
		}
		if err != nil {
			return err
		}
		var dp diskParticipant
		if err = item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &dp)
		}); err != nil {
			return err
		}
		dp.LastSeen = seen.UnixNano()
		data, err := cbor.Marshal(dp)
		if err != nil {
			return err
		}
		return txn.Set(participantKey(name), data)
	})
}

func (r ParticipantRepository) Exists(name string) (bool, error) {
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(participantKey(name))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the participant record. Removing an absent name is a no-op.
func (r ParticipantRepository) Remove(name string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(participantKey(name))
	})
}

func (r ParticipantRepository) List() ([]domain.Participant, error) {
	var participants []domain.Participant
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(participantPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var dp diskParticipant
			err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &dp)
			})
			if err != nil {
				return err
			}
			participants = append(participants, toParticipant(dp))
		}
		return nil
	})
	return participants, err
}

func fromParticipant(p domain.Participant) diskParticipant {
	return diskParticipant{Name: p.Name, LastSeen: p.LastSeen.UnixNano()}
}

func toParticipant(dp diskParticipant) domain.Participant {
	return domain.Participant{Name: dp.Name, LastSeen: time.Unix(0, dp.LastSeen).UTC()}
}
