// Package notify delivers viewer actions to whoever hosts the session.
// Delivery is fire-and-forget: failures are logged, never returned.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Kind string

const (
	KindHelpful   Kind = "helpful"
	KindLike      Kind = "like"
	KindReplyLike Kind = "reply_like"
	KindReport    Kind = "report"
	KindReply     Kind = "reply"
)

type Event struct {
	ID        uuid.UUID `json:"id"`
	Kind      Kind      `json:"kind"`
	CommentID int64     `json:"comment_id"`
	ReplyID   int64     `json:"reply_id,omitempty"`
	Active    bool      `json:"active"`
	At        time.Time `json:"at"`
}

func NewEvent(kind Kind, commentID, replyID int64, active bool) Event {
	return Event{
		ID:        uuid.New(),
		Kind:      kind,
		CommentID: commentID,
		ReplyID:   replyID,
		Active:    active,
		At:        time.Now().UTC(),
	}
}

type Notifier interface {
	Notify(ctx context.Context, e Event)
}

type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// Log writes each event as a structured log line.
type Log struct{}

func (Log) Notify(_ context.Context, e Event) {
	log.Info().
		Str("event_id", e.ID.String()).
		Str("kind", string(e.Kind)).
		Int64("comment_id", e.CommentID).
		Int64("reply_id", e.ReplyID).
		Bool("active", e.Active).
		Msg("viewer action")
}

// Multi fans an event out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, e Event) {
	for _, n := range m {
		n.Notify(ctx, e)
	}
}
