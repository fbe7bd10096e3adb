package replytree

import (
	"sync"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
)

// Sequence hands out reply ids for one comment. It starts above every id
// already in use and only moves forward, so top-level and nested replies
// share one id space.
type Sequence struct {
	mu   sync.Mutex
	next int64
}

func NewSequence(existing []model.Reply) *Sequence {
	var top int64
	for _, r := range existing {
		if r.ID > top {
			top = r.ID
		}
	}
	return &Sequence{next: top + 1}
}

func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	return id
}
