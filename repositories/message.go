//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"room-lab/domain"
	apperrors "room-lab/errors"
)

const (
	messagePrefix    = "msg:"
	messageIdxPrefix = "idx:msg:"
	messageSeqKey    = "seq:msg"
)

type IMessageRepository interface {
	Append(m domain.Message) (domain.Message, error)
	Get(id uuid.UUID) (domain.Message, error)
	Update(id uuid.UUID, to, text string, kind domain.Kind) (domain.Message, error)
	Delete(id uuid.UUID) error
	ListAll() ([]domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

func NewMessageRepository(db *badger.DB) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte(messageSeqKey), 64)
	if err != nil {
		return nil, err
	}
	return &MessageRepository{db: db, seq: seq}, nil
}

// Close releases the append sequence. Call once on shutdown.
func (r *MessageRepository) Close() error {
	return r.seq.Release()
}

type diskMessage struct {
	ID   string
	From string
	To   string
	Text string
	Kind string
	Time string
}

// Append persists the message at the tail of the log and assigns its id.
// The key is "msg:{seq_padded}:{uuid}": the 20-digit zero-padded sequence
// makes lexicographical key order equal insertion order, and the uuid doubles
// as the public identity reachable through a secondary "idx:msg:" key.
func (r *MessageRepository) Append(m domain.Message) (domain.Message, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	n, err := r.seq.Next()
	if err != nil {
		return domain.Message{}, err
	}
	data, err := cbor.Marshal(fromMessage(m))
	if err != nil {
		return domain.Message{}, err
	}

	key := []byte(fmt.Sprintf("%s%020d:%s", messagePrefix, n, m.ID))
	err = r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(messageIdxKey(m.ID), key)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return m, nil
}

func (r *MessageRepository) Get(id uuid.UUID) (domain.Message, error) {
	var dm diskMessage
	err := r.db.View(func(txn *badger.Txn) error {
		key, err := resolveMessageKey(txn, id)
		if err != nil {
			return err
		}
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &dm)
		})
	})
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(dm)
}

// Update rewrites to, text, and kind in place. The log position, id, and
// display time of the message are untouched.
func (r *MessageRepository) Update(id uuid.UUID, to, text string, kind domain.Kind) (domain.Message, error) {
	var updated domain.Message
	err := r.db.Update(func(txn *badger.Txn) error {
		key, err := resolveMessageKey(txn, id)
		if err != nil {
			return err
		}
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		var dm diskMessage
		if err = item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &dm)
		}); err != nil {
			return err
		}
		dm.To = to
		dm.Text = text
		dm.Kind = string(kind)
		data, err := cbor.Marshal(dm)
		if err != nil {
			return err
		}
		if updated, err = toMessage(dm); err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return updated, nil
}

// Delete removes the message and its index key. A second delete of the same
// id reports ErrMessageNotFound and leaves the log untouched.
func (r *MessageRepository) Delete(id uuid.UUID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key, err := resolveMessageKey(txn, id)
		if err != nil {
			return err
		}
		if err = txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(messageIdxKey(id))
	})
}

// ListAll returns the whole log, oldest first.
func (r *MessageRepository) ListAll() ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(messagePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var dm diskMessage
			err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &dm)
			})
			if err != nil {
				return err
			}
			m, err := toMessage(dm)
			if err != nil {
				return err
			}
			messages = append(messages, m)
		}
		return nil
	})
	return messages, err
}

func messageIdxKey(id uuid.UUID) []byte {
	return []byte(messageIdxPrefix + id.String())
}

// resolveMessageKey looks the primary log key up through the secondary index.
func resolveMessageKey(txn *badger.Txn, id uuid.UUID) ([]byte, error) {
	item, err := txn.Get(messageIdxKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, apperrors.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func fromMessage(m domain.Message) diskMessage {
	return diskMessage{
		ID:   m.ID.String(),
		From: m.From,
		To:   m.To,
		Text: m.Text,
		Kind: string(m.Kind),
		Time: m.Time,
	}
}

func toMessage(dm diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(dm.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:   parsedID,
		From: dm.From,
		To:   dm.To,
		Text: dm.Text,
		Kind: domain.Kind(dm.Kind),
		Time: dm.Time,
	}, nil
}
