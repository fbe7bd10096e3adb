package storage

import (
	"context"
	"errors"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
)

var ErrNotFound = errors.New("comment not found")

// Source yields the canonical comment collection. It is read once at startup.
type Source interface {
	Load(ctx context.Context) ([]model.Comment, error)
}

// Store owns the canonical collection for the lifetime of a session.
type Store interface {
	All(ctx context.Context) ([]model.Comment, error)
	Get(ctx context.Context, id int64) (model.Comment, error)
	AdjustHelpful(ctx context.Context, id int64, delta int) (model.Comment, error)
	Replies(ctx context.Context, commentID int64) ([]model.Reply, error)
	AppendReply(ctx context.Context, commentID int64, r model.Reply) error
}
