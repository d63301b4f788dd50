package httpapi

import (
	"time"

	"github.com/samber/lo"

	"room-lab/domain"
)

type joinRequest struct {
	Name string `json:"name"`
}

type messageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
	Kind string `json:"kind"`
}

type participantResponse struct {
	Name     string    `json:"name"`
	LastSeen time.Time `json:"lastSeen"`
}

type messageResponse struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Kind string `json:"kind"`
	Time string `json:"time"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type violationsResponse struct {
	Errors []string `json:"errors"`
}

func toParticipantResponses(participants []domain.Participant) []participantResponse {
	return lo.Map(participants, func(p domain.Participant, _ int) participantResponse {
		return participantResponse{Name: p.Name, LastSeen: p.LastSeen}
	})
}

func toMessageResponses(messages []domain.Message) []messageResponse {
	return lo.Map(messages, func(m domain.Message, _ int) messageResponse {
		return toMessageResponse(m)
	})
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:   m.ID.String(),
		From: m.From,
		To:   m.To,
		Text: m.Text,
		Kind: string(m.Kind),
		Time: m.Time,
	}
}
