// Package notify delivers messages to guardians by email or SMS.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Channel is a delivery medium.
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
)

var (
	ErrUnsupportedChannel = errors.New("unsupported notification channel")
	ErrNoRecipient        = errors.New("message has no recipient")
)

// Message is one notification to one recipient.
type Message struct {
	Channel       Channel
	Recipient     string // email address or phone number
	RecipientName string
	Subject       string
	Body          string
}

// Outcome records how a message was delivered.
type Outcome struct {
	Provider string
	SentAt   time.Time
}

// Sender delivers messages over one channel.
type Sender interface {
	Send(ctx context.Context, msg Message) (Outcome, error)
}

// Dispatcher routes each message to the sender registered for its channel.
type Dispatcher struct {
	senders map[Channel]Sender
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{senders: make(map[Channel]Sender)}
}

// Register sets the sender for ch, replacing any previous one.
func (d *Dispatcher) Register(ch Channel, s Sender) *Dispatcher {
	d.senders[ch] = s
	return d
}

func (d *Dispatcher) Send(ctx context.Context, msg Message) (Outcome, error) {
	if msg.Recipient == "" {
		return Outcome{}, ErrNoRecipient
	}
	s, ok := d.senders[msg.Channel]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnsupportedChannel, msg.Channel)
	}
	return s.Send(ctx, msg)
}
