//go:generate go run go.uber.org/mock/mockgen -source=room_service.go -destination=../mocks/mock_room_service.go -package=mocks
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"room-lab/domain"
	apperrors "room-lab/errors"
	"room-lab/moderation"
	"room-lab/projection"
	"room-lab/repositories"
	"room-lab/sanitize"
	"room-lab/search"
	"room-lab/validate"
)

const defaultSearchLimit = 10

type IRoomService interface {
	Participants() ([]domain.Participant, error)
	Join(name string) error
	Heartbeat(name string) error
	Messages(q domain.ListMessagesQuery) ([]domain.Message, error)
	Post(cmd domain.PostMessageCommand) (domain.Message, error)
	Edit(cmd domain.EditMessageCommand) (domain.Message, error)
	Delete(actor string, id uuid.UUID) error
	SearchMessages(ctx context.Context, terms string, limit int) ([]domain.Message, error)
}

// RoomService orders every user action through the same pipeline:
// sanitize, validate, authorize, then touch the store.
type RoomService struct {
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	index        *search.Index
	masker       *moderation.Masker
	log          *slog.Logger
	now          func() time.Time
}

// NewRoomService wires the service. index and masker are optional; a nil
// index disables search, a nil masker disables profanity masking.
func NewRoomService(
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	index *search.Index,
	masker *moderation.Masker,
	log *slog.Logger,
) *RoomService {
	return &RoomService{
		participants: participants,
		messages:     messages,
		index:        index,
		masker:       masker,
		log:          log,
		now:          time.Now,
	}
}

func (s *RoomService) Participants() ([]domain.Participant, error) {
	return s.participants.List()
}

// Join registers a new participant and records their entrance in the log.
// The two writes are independent: when the notice append fails after the
// registry insert succeeded, the error says exactly that instead of
// pretending the whole join failed.
func (s *RoomService) Join(rawName string) error {
	name := sanitize.Clean(rawName)
	if err := validate.Check(validate.ParticipantSubmission{Name: name}); err != nil {
		return err
	}

	now := s.now().UTC()
	if err := s.participants.Create(domain.Participant{Name: name, LastSeen: now}); err != nil {
		return err
	}

	notice, err := s.messages.Append(domain.JoinNotice(name, now))
	if err != nil {
		s.log.Error("join notice append failed", "name", name, "error", err)
		return fmt.Errorf("participant %q joined but the entrance notice was not recorded: %w", name, err)
	}
	s.indexAdd(notice)
	return nil
}

// Heartbeat refreshes the caller's LastSeen.
func (s *RoomService) Heartbeat(rawName string) error {
	return s.participants.Refresh(sanitize.Clean(rawName), s.now().UTC())
}

// Messages returns the slice of history the viewer is allowed to read.
func (s *RoomService) Messages(q domain.ListMessagesQuery) ([]domain.Message, error) {
	log, err := s.messages.ListAll()
	if err != nil {
		return nil, err
	}
	return projection.Timeline(log, sanitize.Clean(q.Viewer), q.Limit), nil
}

func (s *RoomService) Post(cmd domain.PostMessageCommand) (domain.Message, error) {
	submission := validate.MessageSubmission{
		From: sanitize.Clean(cmd.From),
		To:   sanitize.Clean(cmd.To),
		Text: sanitize.Clean(cmd.Text),
		Kind: sanitize.Clean(cmd.Kind),
		Time: s.now().Format(domain.TimeLayout),
	}
	if err := validate.Check(submission); err != nil {
		return domain.Message{}, err
	}
	if err := s.requireParticipant(submission.From, apperrors.ErrSenderNotFound); err != nil {
		return domain.Message{}, err
	}
	if submission.To != domain.Broadcast {
		if err := s.requireParticipant(submission.To, apperrors.ErrRecipientNotFound); err != nil {
			return domain.Message{}, err
		}
	}

	stored, err := s.messages.Append(domain.Message{
		From: submission.From,
		To:   submission.To,
		Text: s.masker.Mask(submission.Text),
		Kind: domain.Kind(submission.Kind),
		Time: submission.Time,
	})
	if err != nil {
		return domain.Message{}, err
	}
	s.indexAdd(stored)
	return stored, nil
}

// Edit rewrites to, text, and kind of a message the actor authored.
func (s *RoomService) Edit(cmd domain.EditMessageCommand) (domain.Message, error) {
	actor := sanitize.Clean(cmd.Actor)

	target, err := s.messages.Get(cmd.ID)
	if err != nil {
		return domain.Message{}, err
	}
	if target.From != actor {
		return domain.Message{}, apperrors.ErrUnauthorized
	}

	update := validate.MessageUpdate{
		To:   sanitize.Clean(cmd.To),
		Text: sanitize.Clean(cmd.Text),
		Kind: sanitize.Clean(cmd.Kind),
	}
	if err = validate.Check(update); err != nil {
		return domain.Message{}, err
	}
	if update.To != domain.Broadcast {
		if err = s.requireParticipant(update.To, apperrors.ErrRecipientNotFound); err != nil {
			return domain.Message{}, err
		}
	}

	updated, err := s.messages.Update(cmd.ID, update.To, s.masker.Mask(update.Text), domain.Kind(update.Kind))
	if err != nil {
		return domain.Message{}, err
	}
	if s.index != nil {
		if err = s.index.Sync(updated); err != nil {
			s.log.Warn("reindexing edited message failed", "id", updated.ID, "error", err)
		}
	}
	return updated, nil
}

func (s *RoomService) Delete(rawActor string, id uuid.UUID) error {
	actor := sanitize.Clean(rawActor)

	target, err := s.messages.Get(id)
	if err != nil {
		return err
	}
	if target.From != actor {
		return apperrors.ErrUnauthorized
	}

	if err = s.messages.Delete(id); err != nil {
		return err
	}
	if s.index != nil {
		if err = s.index.Remove(id); err != nil {
			s.log.Warn("deindexing deleted message failed", "id", id, "error", err)
		}
	}
	return nil
}

// SearchMessages resolves full-text matches back through the log. Only
// broadcast traffic is ever indexed, so no visibility filtering is needed.
func (s *RoomService) SearchMessages(ctx context.Context, rawTerms string, limit int) ([]domain.Message, error) {
	if s.index == nil {
		return nil, nil
	}
	terms := sanitize.Clean(rawTerms)
	if terms == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	ids, err := s.index.Search(ctx, terms, limit)
	if err != nil {
		return nil, err
	}

	var results []domain.Message
	for _, id := range ids {
		m, err := s.messages.Get(id)
		if errors.Is(err, apperrors.ErrMessageNotFound) {
			// The index can briefly trail a delete.
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, nil
}

func (s *RoomService) requireParticipant(name string, missing error) error {
	exists, err := s.participants.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		return missing
	}
	return nil
}

func (s *RoomService) indexAdd(m domain.Message) {
	if s.index == nil {
		return
	}
	if err := s.index.Add(m); err != nil {
		s.log.Warn("indexing message failed", "id", m.ID, "error", err)
	}
}
