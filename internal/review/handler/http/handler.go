package http

import (
	"errors"
	stdhttp "net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/query"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/service"
)

type Handler struct {
	svc      service.ReviewService
	viewport model.Viewport
	limits   RateLimit
}

type Option func(*Handler)

// WithViewport sets the layout used when a request does not name one.
func WithViewport(v model.Viewport) Option {
	return func(h *Handler) {
		h.viewport = v
	}
}

func WithRateLimit(rl RateLimit) Option {
	return func(h *Handler) {
		h.limits = rl
	}
}

func New(svc service.ReviewService, opts ...Option) *Handler {
	h := &Handler{svc: svc, viewport: model.ViewportDesktop}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// queryRequest carries only the controls the client changed.
type queryRequest struct {
	Text   *string `json:"text"`
	Filter *string `json:"filter"`
	Sort   *string `json:"sort"`
}

type submitRequest struct {
	Content  string `json:"content"`
	ParentID int64  `json:"parent_id"`
}

type openEditorRequest struct {
	ParentID int64 `json:"parent_id"`
}

func (h *Handler) GetComments(c echo.Context) error {
	ctx := c.Request().Context()

	params := c.QueryParams()
	var req queryRequest
	if params.Has("q") {
		v := params.Get("q")
		req.Text = &v
	}
	if params.Has("filter") {
		v := params.Get("filter")
		req.Filter = &v
	}
	if params.Has("sort") {
		v := params.Get("sort")
		req.Sort = &v
	}

	if req == (queryRequest{}) {
		v, err := h.svc.View(ctx)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(stdhttp.StatusOK, v)
	}

	v, err := h.svc.ChangeQuery(ctx, req.change())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(stdhttp.StatusOK, v)
}

func (h *Handler) PutQuery(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]any{"error": "bad json"})
	}
	v, err := h.svc.ChangeQuery(c.Request().Context(), req.change())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(stdhttp.StatusOK, v)
}

func (h *Handler) LoadMore(c echo.Context) error {
	v, err := h.svc.LoadMore(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(stdhttp.StatusOK, v)
}

func (h *Handler) GetStats(c echo.Context) error {
	s, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(stdhttp.StatusOK, s)
}

func (h *Handler) GetComment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeErr(c, err)
	}
	cv, err := h.svc.Comment(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(stdhttp.StatusOK, cv)
}

func (h *Handler) ToggleHelpful(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeErr(c, err)
	}
	st, err := h.svc.ToggleHelpful(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(stdhttp.StatusOK, st)
}

func (h *Handler) ToggleLike(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeErr(c, err)
	}
	st, err := h.svc.ToggleLike(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(stdhttp.StatusOK, st)
}

func (h *Handler) ReportComment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeErr(c, err)
	}
	first, err := h.svc.Report(c.Request().Context(), id, 0)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(stdhttp.StatusOK, map[string]any{"reported": true, "first": first})
}

func (h *Handler) GetReplies(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeErr(c, err)
	}
	vp := h.viewport
	if v := c.QueryParam("viewport"); v != "" {
		vp, err = model.ParseViewport(v)
		if err != nil {
			return c.JSON(stdhttp.StatusBadRequest, map[string]any{"error": "invalid viewport"})
		}
	}
	nodes, err := h.svc.Replies(c.Request().Context(), id, vp)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(stdhttp.StatusOK, map[string]any{"items": nodes, "viewport": vp})
}

func (h *Handler) CreateReply(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeErr(c, err)
	}
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]any{"error": "bad json"})
	}

	r, ok, err := h.svc.SubmitReply(c.Request().Context(), id, req.ParentID, req.Content)
	return writeSubmission(c, r, ok, err)
}

func (h *Handler) ToggleReplyLike(c echo.Context) error {
	id, replyID, err := replyPath(c)
	if err != nil {
		return writeErr(c, err)
	}
	st, err := h.svc.ToggleReplyLike(c.Request().Context(), id, replyID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(stdhttp.StatusOK, st)
}

func (h *Handler) ReportReply(c echo.Context) error {
	id, replyID, err := replyPath(c)
	if err != nil {
		return writeErr(c, err)
	}
	first, err := h.svc.Report(c.Request().Context(), id, replyID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(stdhttp.StatusOK, map[string]any{"reported": true, "first": first})
}

func (h *Handler) OpenEditor(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeErr(c, err)
	}
	var req openEditorRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(stdhttp.StatusBadRequest, map[string]any{"error": "bad json"})
		}
	}
	ed, err := h.svc.OpenEditor(c.Request().Context(), id, req.ParentID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(stdhttp.StatusCreated, ed)
}

func (h *Handler) SubmitEditor(c echo.Context) error {
	edID, err := uuid.Parse(c.Param("editorID"))
	if err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]any{"error": "invalid editor id"})
	}
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]any{"error": "bad json"})
	}

	r, ok, err := h.svc.Submit(c.Request().Context(), edID, req.Content)
	return writeSubmission(c, r, ok, err)
}

func (h *Handler) CloseEditor(c echo.Context) error {
	edID, err := uuid.Parse(c.Param("editorID"))
	if err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]any{"error": "invalid editor id"})
	}
	if err := h.svc.CloseEditor(c.Request().Context(), edID); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(stdhttp.StatusNoContent)
}

func writeSubmission(c echo.Context, r model.Reply, ok bool, err error) error {
	if err != nil {
		return writeErr(c, err)
	}
	if !ok {
		return c.NoContent(stdhttp.StatusNoContent)
	}
	return c.JSON(stdhttp.StatusCreated, r)
}

func writeErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, query.ErrInvalidQuery):
		return c.JSON(stdhttp.StatusBadRequest, map[string]any{"error": "invalid input"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(stdhttp.StatusNotFound, map[string]any{"error": "not found"})
	case errors.Is(err, service.ErrEditorClosed):
		return c.JSON(stdhttp.StatusGone, map[string]any{"error": "editor closed"})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.JSON(stdhttp.StatusInternalServerError, map[string]any{"error": "internal error"})
	}
}

func (req queryRequest) change() service.QueryChange {
	var ch service.QueryChange
	ch.Text = req.Text
	if req.Filter != nil {
		f := query.Filter(*req.Filter)
		ch.Filter = &f
	}
	if req.Sort != nil {
		o := query.Sort(*req.Sort)
		ch.Sort = &o
	}
	return ch
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.ErrInvalidInput
	}
	return id, nil
}

func replyPath(c echo.Context) (int64, int64, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	replyID, err := pathID(c, "replyID")
	if err != nil {
		return 0, 0, err
	}
	return id, replyID, nil
}
