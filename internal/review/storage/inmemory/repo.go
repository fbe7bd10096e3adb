package inmemory

import (
	"context"
	"sync"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/storage"
)

type Repo struct {
	mu sync.RWMutex

	comments []model.Comment
	byID     map[int64]int
}

func New(comments []model.Comment) *Repo {
	r := &Repo{
		comments: make([]model.Comment, 0, len(comments)),
		byID:     make(map[int64]int, len(comments)),
	}
	for _, c := range comments {
		if _, dup := r.byID[c.ID]; dup {
			continue
		}
		c.Replies = append([]model.Reply(nil), c.Replies...)
		r.byID[c.ID] = len(r.comments)
		r.comments = append(r.comments, c)
	}
	return r
}

// All returns a snapshot in load order. Reply slices are shared read-only;
// appends always allocate a fresh slice.
func (r *Repo) All(ctx context.Context) ([]model.Comment, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.Comment(nil), r.comments...), nil
}

func (r *Repo) Get(ctx context.Context, id int64) (model.Comment, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return model.Comment{}, storage.ErrNotFound
	}
	return r.comments[i], nil
}

// AdjustHelpful changes the helpful counter in place; it never drops below zero.
func (r *Repo) AdjustHelpful(ctx context.Context, id int64, delta int) (model.Comment, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.byID[id]
	if !ok {
		return model.Comment{}, storage.ErrNotFound
	}
	c := &r.comments[i]
	c.HelpfulCount = max(c.HelpfulCount+delta, 0)
	return *c, nil
}

func (r *Repo) Replies(ctx context.Context, commentID int64) ([]model.Reply, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[commentID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return r.comments[i].Replies, nil
}

func (r *Repo) AppendReply(ctx context.Context, commentID int64, reply model.Reply) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.byID[commentID]
	if !ok {
		return storage.ErrNotFound
	}
	old := r.comments[i].Replies
	next := make([]model.Reply, 0, len(old)+1)
	next = append(next, old...)
	r.comments[i].Replies = append(next, reply)
	return nil
}
