package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/notify"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/query"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/replytree"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/storage"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrEditorClosed reports a submission dropped because its editor was
	// closed (or never existed) by the time the submit delay elapsed.
	ErrEditorClosed = errors.New("editor closed")
)

const (
	DefaultSubmitDelay = 500 * time.Millisecond
	DefaultAuthor      = "Current User"
	maxContentLen      = 2000
)

type Options struct {
	PageSize     int
	OrphanPolicy replytree.OrphanPolicy
	SubmitDelay  time.Duration
	Author       string
	Notifier     notify.Notifier
	Now          func() time.Time
}

type replyKey struct {
	commentID int64
	replyID   int64
}

// Service is the single-viewer session over a canonical collection.
type Service struct {
	store storage.Store
	opts  Options

	mu         sync.Mutex
	query      query.Query
	pager      *query.Pager
	helpful    map[int64]bool
	likes      map[int64]model.LikeState
	replyLikes map[replyKey]model.LikeState
	reported   map[replyKey]bool
	editors    map[uuid.UUID]Editor
	sequences  map[int64]*replytree.Sequence
}

var _ ReviewService = (*Service)(nil)

func New(store storage.Store, opts Options) *Service {
	if opts.OrphanPolicy == "" {
		opts.OrphanPolicy = replytree.OrphanDrop
	}
	if opts.SubmitDelay < 0 {
		opts.SubmitDelay = 0
	}
	if opts.Author == "" {
		opts.Author = DefaultAuthor
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		store:      store,
		opts:       opts,
		query:      query.Default(),
		pager:      query.NewPager(opts.PageSize),
		helpful:    make(map[int64]bool),
		likes:      make(map[int64]model.LikeState),
		replyLikes: make(map[replyKey]model.LikeState),
		reported:   make(map[replyKey]bool),
		editors:    make(map[uuid.UUID]Editor),
		sequences:  make(map[int64]*replytree.Sequence),
	}
}

func (s *Service) View(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.viewLocked(ctx, nil)
}

func (s *Service) SetQuery(ctx context.Context, q query.Query) (View, error) {
	f, err := query.ParseFilter(string(q.Filter))
	if err != nil {
		return View{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	o, err := query.ParseSort(string(q.Sort))
	if err != nil {
		return View{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	q.Filter, q.Sort = f, o

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setQueryLocked(ctx, q)
}

// ChangeQuery updates only the controls set in ch and keeps the others.
func (s *Service) ChangeQuery(ctx context.Context, ch QueryChange) (View, error) {
	var (
		f   query.Filter
		o   query.Sort
		err error
	)
	if ch.Filter != nil {
		if f, err = query.ParseFilter(string(*ch.Filter)); err != nil {
			return View{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if ch.Sort != nil {
		if o, err = query.ParseSort(string(*ch.Sort)); err != nil {
			return View{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.query
	if ch.Text != nil {
		q.Text = *ch.Text
	}
	if ch.Filter != nil {
		q.Filter = f
	}
	if ch.Sort != nil {
		q.Sort = o
	}
	return s.setQueryLocked(ctx, q)
}

func (s *Service) setQueryLocked(ctx context.Context, q query.Query) (View, error) {
	if q == s.query {
		return s.viewLocked(ctx, nil)
	}
	s.query = q
	return s.viewLocked(ctx, func(total int) { s.pager.Reset(total) })
}

func (s *Service) SetText(ctx context.Context, text string) (View, error) {
	return s.ChangeQuery(ctx, QueryChange{Text: &text})
}

func (s *Service) SetFilter(ctx context.Context, f query.Filter) (View, error) {
	return s.ChangeQuery(ctx, QueryChange{Filter: &f})
}

func (s *Service) SetSort(ctx context.Context, o query.Sort) (View, error) {
	return s.ChangeQuery(ctx, QueryChange{Sort: &o})
}

func (s *Service) LoadMore(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.viewLocked(ctx, func(total int) { s.pager.More(total) })
}

// viewLocked re-runs the pipeline over the canonical collection. adjust, when
// set, moves the pager against the fresh result length before slicing.
func (s *Service) viewLocked(ctx context.Context, adjust func(total int)) (View, error) {
	all, err := s.store.All(ctx)
	if err != nil {
		return View{}, err
	}

	result := query.Evaluate(all, s.query)
	if adjust != nil {
		adjust(len(result))
	}
	items := query.Window(result, s.pager)

	return View{
		Query:   s.query,
		Items:   items,
		Visible: len(items),
		Total:   len(result),
		HasMore: len(items) < len(result),
	}, nil
}

func (s *Service) Stats(ctx context.Context) (model.Statistics, error) {
	all, err := s.store.All(ctx)
	if err != nil {
		return model.Statistics{}, err
	}
	return query.Stats(all), nil
}

func (s *Service) Comment(ctx context.Context, id int64) (CommentView, error) {
	c, err := s.get(ctx, id)
	if err != nil {
		return CommentView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return CommentView{
		Comment:  c,
		Helpful:  model.LikeState{Liked: s.helpful[id], Count: c.HelpfulCount},
		Like:     s.likeLocked(c),
		Reported: s.reported[replyKey{commentID: id}],
	}, nil
}

// ToggleHelpful marks or unmarks the comment as helpful. Unlike likes this
// moves the canonical counter, so statistics and the helpful sort see it.
func (s *Service) ToggleHelpful(ctx context.Context, id int64) (model.LikeState, error) {
	if id <= 0 {
		return model.LikeState{}, ErrInvalidInput
	}

	s.mu.Lock()
	marked := !s.helpful[id]
	delta := 1
	if !marked {
		delta = -1
	}
	c, err := s.store.AdjustHelpful(ctx, id, delta)
	if err != nil {
		s.mu.Unlock()
		return model.LikeState{}, mapStoreErr(err)
	}
	s.helpful[id] = marked
	s.mu.Unlock()

	s.opts.Notifier.Notify(ctx, notify.NewEvent(notify.KindHelpful, id, 0, marked))
	return model.LikeState{Liked: marked, Count: c.HelpfulCount}, nil
}

func (s *Service) ToggleLike(ctx context.Context, id int64) (model.LikeState, error) {
	c, err := s.get(ctx, id)
	if err != nil {
		return model.LikeState{}, err
	}

	s.mu.Lock()
	st := s.likeLocked(c).Toggle()
	s.likes[id] = st
	s.mu.Unlock()

	s.opts.Notifier.Notify(ctx, notify.NewEvent(notify.KindLike, id, 0, st.Liked))
	return st, nil
}

func (s *Service) likeLocked(c model.Comment) model.LikeState {
	if st, ok := s.likes[c.ID]; ok {
		return st
	}
	return model.LikeState{Count: c.Likes}
}

func (s *Service) ToggleReplyLike(ctx context.Context, commentID, replyID int64) (model.LikeState, error) {
	r, err := s.reply(ctx, commentID, replyID)
	if err != nil {
		return model.LikeState{}, err
	}

	s.mu.Lock()
	st := s.replyLikeLocked(commentID, r).Toggle()
	s.replyLikes[replyKey{commentID, replyID}] = st
	s.mu.Unlock()

	s.opts.Notifier.Notify(ctx, notify.NewEvent(notify.KindReplyLike, commentID, replyID, st.Liked))
	return st, nil
}

// replyLikeLocked seeds the viewer state from the reply's counter the first
// time the reply is seen.
func (s *Service) replyLikeLocked(commentID int64, r model.Reply) model.LikeState {
	key := replyKey{commentID, r.ID}
	st, ok := s.replyLikes[key]
	if !ok {
		st = model.LikeState{Count: r.Likes}
		s.replyLikes[key] = st
	}
	return st
}

// Report flags a comment (replyID == 0) or one of its replies. Only the first
// report of an entity is recorded and announced.
func (s *Service) Report(ctx context.Context, commentID, replyID int64) (bool, error) {
	if replyID < 0 {
		return false, ErrInvalidInput
	}
	if replyID == 0 {
		if _, err := s.get(ctx, commentID); err != nil {
			return false, err
		}
	} else if _, err := s.reply(ctx, commentID, replyID); err != nil {
		return false, err
	}

	key := replyKey{commentID, replyID}
	s.mu.Lock()
	if s.reported[key] {
		s.mu.Unlock()
		return false, nil
	}
	s.reported[key] = true
	s.mu.Unlock()

	s.opts.Notifier.Notify(ctx, notify.NewEvent(notify.KindReport, commentID, replyID, true))
	return true, nil
}

// Replies rebuilds the forest from the flat list on every call.
func (s *Service) Replies(ctx context.Context, commentID int64, vp model.Viewport) ([]model.ReplyNode, error) {
	replies, err := s.store.Replies(ctx, commentID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	forest := replytree.Build(replies, replytree.WithOrphanPolicy(s.opts.OrphanPolicy))

	s.mu.Lock()
	defer s.mu.Unlock()

	return forest.Nodes(replytree.IndentFor(vp), func(r model.Reply) model.LikeState {
		return s.replyLikeLocked(commentID, r)
	}), nil
}

// OpenEditor starts a reply draft. parentReplyID 0 answers the comment itself;
// an id that matches no reply is accepted and handled by the orphan policy.
func (s *Service) OpenEditor(ctx context.Context, commentID, parentReplyID int64) (Editor, error) {
	if parentReplyID < 0 {
		return Editor{}, ErrInvalidInput
	}
	if _, err := s.get(ctx, commentID); err != nil {
		return Editor{}, err
	}

	ed := Editor{
		ID:            uuid.New(),
		CommentID:     commentID,
		ParentReplyID: parentReplyID,
		OpenedAt:      s.opts.Now().UTC(),
	}

	s.mu.Lock()
	s.editors[ed.ID] = ed
	s.mu.Unlock()

	return ed, nil
}

func (s *Service) CloseEditor(ctx context.Context, id uuid.UUID) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.editors[id]; !ok {
		return ErrNotFound
	}
	delete(s.editors, id)
	return nil
}

// Submit posts the editor's draft after the configured delay. Blank content is
// a no-op that leaves the editor open. A submission whose editor was closed
// during the delay is dropped with ErrEditorClosed.
func (s *Service) Submit(ctx context.Context, editorID uuid.UUID, content string) (model.Reply, bool, error) {
	content = strings.TrimSpace(content)

	s.mu.Lock()
	_, open := s.editors[editorID]
	s.mu.Unlock()
	if !open {
		return model.Reply{}, false, ErrEditorClosed
	}
	if content == "" {
		return model.Reply{}, false, nil
	}
	if len(content) > maxContentLen {
		return model.Reply{}, false, ErrInvalidInput
	}

	if s.opts.SubmitDelay > 0 {
		timer := time.NewTimer(s.opts.SubmitDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return model.Reply{}, false, ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	ed, open := s.editors[editorID]
	if !open {
		s.mu.Unlock()
		log.Debug().Str("editor_id", editorID.String()).Msg("reply dropped, editor closed during submit")
		return model.Reply{}, false, ErrEditorClosed
	}

	seq, err := s.sequenceLocked(ctx, ed.CommentID)
	if err != nil {
		s.mu.Unlock()
		return model.Reply{}, false, err
	}
	reply := model.Reply{
		ID:        seq.Next(),
		Author:    s.opts.Author,
		Content:   content,
		Timestamp: s.opts.Now().UTC(),
		ParentID:  ed.ParentReplyID,
	}
	if err := s.store.AppendReply(ctx, ed.CommentID, reply); err != nil {
		s.mu.Unlock()
		return model.Reply{}, false, mapStoreErr(err)
	}
	delete(s.editors, editorID)
	s.replyLikes[replyKey{ed.CommentID, reply.ID}] = model.LikeState{}
	s.mu.Unlock()

	log.Info().
		Int64("comment_id", ed.CommentID).
		Int64("reply_id", reply.ID).
		Int64("parent_id", reply.ParentID).
		Msg("reply posted")
	s.opts.Notifier.Notify(ctx, notify.NewEvent(notify.KindReply, ed.CommentID, reply.ID, true))
	return reply, true, nil
}

// SubmitReply is OpenEditor followed by Submit.
func (s *Service) SubmitReply(ctx context.Context, commentID, parentReplyID int64, content string) (model.Reply, bool, error) {
	if strings.TrimSpace(content) == "" {
		if _, err := s.get(ctx, commentID); err != nil {
			return model.Reply{}, false, err
		}
		return model.Reply{}, false, nil
	}

	ed, err := s.OpenEditor(ctx, commentID, parentReplyID)
	if err != nil {
		return model.Reply{}, false, err
	}
	reply, ok, err := s.Submit(ctx, ed.ID, content)
	if err != nil || !ok {
		_ = s.CloseEditor(ctx, ed.ID)
	}
	return reply, ok, err
}

func (s *Service) sequenceLocked(ctx context.Context, commentID int64) (*replytree.Sequence, error) {
	if seq, ok := s.sequences[commentID]; ok {
		return seq, nil
	}
	replies, err := s.store.Replies(ctx, commentID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	seq := replytree.NewSequence(replies)
	s.sequences[commentID] = seq
	return seq, nil
}

func (s *Service) get(ctx context.Context, id int64) (model.Comment, error) {
	if id <= 0 {
		return model.Comment{}, ErrInvalidInput
	}
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Comment{}, mapStoreErr(err)
	}
	return c, nil
}

func (s *Service) reply(ctx context.Context, commentID, replyID int64) (model.Reply, error) {
	if commentID <= 0 || replyID <= 0 {
		return model.Reply{}, ErrInvalidInput
	}
	replies, err := s.store.Replies(ctx, commentID)
	if err != nil {
		return model.Reply{}, mapStoreErr(err)
	}
	for _, r := range replies {
		if r.ID == replyID {
			return r, nil
		}
	}
	return model.Reply{}, ErrNotFound
}

func mapStoreErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
