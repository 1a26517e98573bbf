package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/room4-2/converselink/widgets"
)

// Sender identifies who authored a timeline message.
type Sender string

// Senders
const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// Kind classifies a timeline message.
type Kind int

// Message kinds
const (
	KindPlain Kind = iota
	KindWidget
)

// Message is one entry in the conversation timeline. Entries are never
// mutated after insertion, only appended; Timestamp exists purely for stable
// ordering.
type Message struct {
	ID        string
	Sender    Sender
	Kind      Kind
	Body      string
	Widget    widgets.Payload // set when Kind == KindWidget
	Timestamp time.Time
}

func newPlainMessage(sender Sender, body string) Message {
	return Message{
		ID:        uuid.New().String(),
		Sender:    sender,
		Kind:      KindPlain,
		Body:      body,
		Timestamp: time.Now(),
	}
}

func newWidgetMessage(w widgets.Payload) Message {
	return Message{
		ID:        uuid.New().String(),
		Sender:    SenderAgent,
		Kind:      KindWidget,
		Widget:    w,
		Timestamp: time.Now(),
	}
}
