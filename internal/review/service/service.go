package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/query"
)

// View is the revealed prefix of the current query result.
type View struct {
	Query   query.Query     `json:"query"`
	Items   []model.Comment `json:"items"`
	Visible int             `json:"visible"`
	Total   int             `json:"total"`
	HasMore bool            `json:"has_more"`
}

// CommentView is a comment together with the viewer's state for it.
type CommentView struct {
	model.Comment
	Helpful  model.LikeState `json:"helpful"`
	Like     model.LikeState `json:"like"`
	Reported bool            `json:"reported"`
}

// QueryChange names the controls a caller touched. Nil fields keep their
// current value.
type QueryChange struct {
	Text   *string
	Filter *query.Filter
	Sort   *query.Sort
}

type Editor struct {
	ID            uuid.UUID `json:"id"`
	CommentID     int64     `json:"comment_id"`
	ParentReplyID int64     `json:"parent_reply_id,omitempty"`
	OpenedAt      time.Time `json:"opened_at"`
}

type ReviewService interface {
	View(ctx context.Context) (View, error)
	SetQuery(ctx context.Context, q query.Query) (View, error)
	ChangeQuery(ctx context.Context, ch QueryChange) (View, error)
	SetText(ctx context.Context, text string) (View, error)
	SetFilter(ctx context.Context, f query.Filter) (View, error)
	SetSort(ctx context.Context, s query.Sort) (View, error)
	LoadMore(ctx context.Context) (View, error)
	Stats(ctx context.Context) (model.Statistics, error)

	Comment(ctx context.Context, id int64) (CommentView, error)
	ToggleHelpful(ctx context.Context, id int64) (model.LikeState, error)
	ToggleLike(ctx context.Context, id int64) (model.LikeState, error)
	ToggleReplyLike(ctx context.Context, commentID, replyID int64) (model.LikeState, error)
	Report(ctx context.Context, commentID, replyID int64) (bool, error)

	Replies(ctx context.Context, commentID int64, vp model.Viewport) ([]model.ReplyNode, error)
	OpenEditor(ctx context.Context, commentID, parentReplyID int64) (Editor, error)
	CloseEditor(ctx context.Context, id uuid.UUID) error
	Submit(ctx context.Context, editorID uuid.UUID, content string) (model.Reply, bool, error)
	SubmitReply(ctx context.Context, commentID, parentReplyID int64, content string) (model.Reply, bool, error)
}
