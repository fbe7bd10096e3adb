// Package replytree turns the flat reply list of a comment into a forest of
// parent/child relations and walks it depth first.
package replytree

import (
	"fmt"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
)

// OrphanPolicy decides what happens to replies whose parent id is not in the list.
type OrphanPolicy string

const (
	// OrphanDrop keeps orphans out of the rendered forest. They are still
	// reachable through Orphans and ChildrenOf(unknownID).
	OrphanDrop OrphanPolicy = "drop"
	// OrphanPromote lists orphans among the top-level replies.
	OrphanPromote OrphanPolicy = "promote"
)

func ParseOrphanPolicy(s string) (OrphanPolicy, error) {
	switch OrphanPolicy(s) {
	case "", OrphanDrop:
		return OrphanDrop, nil
	case OrphanPromote:
		return OrphanPromote, nil
	}
	return "", fmt.Errorf("unknown orphan policy %q", s)
}

type Option func(*Forest)

func WithOrphanPolicy(p OrphanPolicy) Option {
	return func(f *Forest) {
		f.policy = p
	}
}

// Forest indexes a reply list. It holds positions into its own copy of the
// input, so every bucket keeps insertion order.
type Forest struct {
	policy   OrphanPolicy
	replies  []model.Reply
	top      []int
	children map[int64][]int
	orphans  []int
}

// Build buckets replies by parent id in one pass. The input is copied and
// never modified.
func Build(replies []model.Reply, opts ...Option) *Forest {
	f := &Forest{
		policy:   OrphanDrop,
		replies:  append([]model.Reply(nil), replies...),
		children: make(map[int64][]int),
	}
	for _, opt := range opts {
		opt(f)
	}

	known := make(map[int64]struct{}, len(f.replies))
	for _, r := range f.replies {
		known[r.ID] = struct{}{}
	}

	for i, r := range f.replies {
		if r.ParentID == 0 {
			f.top = append(f.top, i)
			continue
		}
		if _, ok := known[r.ParentID]; !ok {
			f.orphans = append(f.orphans, i)
			if f.policy == OrphanPromote {
				f.top = append(f.top, i)
				continue
			}
		}
		f.children[r.ParentID] = append(f.children[r.ParentID], i)
	}

	return f
}

func (f *Forest) Len() int {
	return len(f.replies)
}

func (f *Forest) Policy() OrphanPolicy {
	return f.policy
}

func (f *Forest) TopLevel() []model.Reply {
	return f.pick(f.top)
}

func (f *Forest) ChildrenOf(id int64) []model.Reply {
	return f.pick(f.children[id])
}

func (f *Forest) Orphans() []model.Reply {
	return f.pick(f.orphans)
}

func (f *Forest) pick(idx []int) []model.Reply {
	out := make([]model.Reply, 0, len(idx))
	for _, i := range idx {
		out = append(out, f.replies[i])
	}
	return out
}

// Walk visits the forest in pre-order starting from the top-level replies at
// depth 0. Returning false from fn skips the children of that reply. Every
// record is visited at most once, so duplicate ids and parent cycles terminate.
func (f *Forest) Walk(fn func(r model.Reply, depth int) bool) {
	seen := make([]bool, len(f.replies))
	for _, i := range f.top {
		f.walk(i, 0, seen, fn)
	}
}

func (f *Forest) walk(i, depth int, seen []bool, fn func(model.Reply, int) bool) {
	if seen[i] {
		return
	}
	seen[i] = true

	r := f.replies[i]
	if !fn(r, depth) {
		return
	}
	for _, ch := range f.children[r.ID] {
		f.walk(ch, depth+1, seen, fn)
	}
}

// Nodes materializes the forest as a value tree. likes may be nil, in which
// case every node reports the reply's own counter.
func (f *Forest) Nodes(indent Indent, likes func(model.Reply) model.LikeState) []model.ReplyNode {
	if likes == nil {
		likes = func(r model.Reply) model.LikeState {
			return model.LikeState{Count: r.Likes}
		}
	}

	seen := make([]bool, len(f.replies))
	out := make([]model.ReplyNode, 0, len(f.top))
	for _, i := range f.top {
		if n, ok := f.node(i, 0, seen, indent, likes); ok {
			out = append(out, n)
		}
	}
	return out
}

func (f *Forest) node(i, depth int, seen []bool, indent Indent, likes func(model.Reply) model.LikeState) (model.ReplyNode, bool) {
	if seen[i] {
		return model.ReplyNode{}, false
	}
	seen[i] = true

	r := f.replies[i]
	n := model.ReplyNode{
		Reply:    r,
		Depth:    depth,
		Indent:   indent.At(depth),
		Like:     likes(r),
		Children: make([]model.ReplyNode, 0, len(f.children[r.ID])),
	}
	for _, ch := range f.children[r.ID] {
		if c, ok := f.node(ch, depth+1, seen, indent, likes); ok {
			n.Children = append(n.Children, c)
		}
	}
	return n, true
}

// Append returns a new list with r added at the end. Placement in the forest
// is decided by r.ParentID on the next Build, not by position.
func Append(replies []model.Reply, r model.Reply) []model.Reply {
	out := make([]model.Reply, 0, len(replies)+1)
	out = append(out, replies...)
	return append(out, r)
}
