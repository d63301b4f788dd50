// Package domain contains core concepts of the room.
// This file defines Message records and the Kind variant set.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Broadcast is the reserved recipient meaning "everyone in the room".
const Broadcast = "Todos"

// Kind tags a message. Only Public and Private are user-authorable;
// System marks join and departure notices.
type Kind string

const (
	Public  Kind = "public"
	Private Kind = "private"
	System  Kind = "system"
)

// TimeLayout is the display format of Message.Time.
const TimeLayout = "15:04:05"

// Message is one entry of the append-only room log.
// From and To reference participants by name; both may outlive them.
type Message struct {
	ID   uuid.UUID
	From string
	To   string
	Text string
	Kind Kind
	Time string // wall clock at creation, display only
}

// JoinNotice builds the system message recorded when name enters the room.
func JoinNotice(name string, at time.Time) Message {
	return Message{
		From: name,
		To:   Broadcast,
		Text: "entered the room",
		Kind: System,
		Time: at.Format(TimeLayout),
	}
}

// DepartureNotice builds the system message recorded when name is evicted.
func DepartureNotice(name string, at time.Time) Message {
	return Message{
		From: name,
		To:   Broadcast,
		Text: "left the room",
		Kind: System,
		Time: at.Format(TimeLayout),
	}
}
