package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "github.com/MyNameIsWhaaat/reviewtree/internal/review/handler/http"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/query"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/service"
	inm "github.com/MyNameIsWhaaat/reviewtree/internal/review/storage/inmemory"
)

func seed() []model.Comment {
	out := make([]model.Comment, 0, 8)
	for i := 1; i <= 8; i++ {
		out = append(out, model.Comment{
			ID:           int64(i),
			Title:        "Review " + strconv.Itoa(i),
			Body:         "fine",
			ReviewerName: "user",
			Rating:       1 + i%5,
			HelpfulCount: i,
			Timestamp:    time.Date(2024, 1, i, 0, 0, 0, 0, time.UTC),
		})
	}
	out[2].Body = "Great value"
	out[0].Replies = []model.Reply{
		{ID: 1, Author: "John", Content: "Where?", Likes: 2},
		{ID: 2, Author: "Anna", Content: "Online", ParentID: 1},
	}
	return out
}

func newServer(opts ...handler.Option) *httptest.Server {
	svc := service.New(inm.New(seed()), service.Options{})
	return httptest.NewServer(handler.New(svc, opts...).Routes())
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, data
}

func TestCommentsQueryAndLoadMore(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	res, body := do(t, http.MethodGet, srv.URL+"/comments", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var v service.View
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, 8, v.Total)
	assert.Equal(t, 6, v.Visible)
	assert.True(t, v.HasMore)

	res, body = do(t, http.MethodPost, srv.URL+"/query/more", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, 8, v.Visible)
	assert.False(t, v.HasMore)

	res, body = do(t, http.MethodPut, srv.URL+"/query", map[string]any{"text": "great"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &v))
	require.Equal(t, 1, v.Total)
	assert.Equal(t, int64(3), v.Items[0].ID)

	res, body = do(t, http.MethodGet, srv.URL+"/comments?q=&sort=helpful&filter=all", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, 8, v.Total)
	assert.Equal(t, 6, v.Visible)
	assert.Equal(t, int64(8), v.Items[0].ID)
}

func TestQueryControlsChangeIndependently(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	var v service.View
	res, body := do(t, http.MethodPut, srv.URL+"/query", map[string]any{"text": "great"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &v))
	require.Equal(t, 1, v.Total)

	res, body = do(t, http.MethodPut, srv.URL+"/query", map[string]any{"sort": "rating"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, query.Query{Text: "great", Filter: query.FilterAll, Sort: query.SortRating}, v.Query)
	assert.Equal(t, 1, v.Total)

	res, body = do(t, http.MethodGet, srv.URL+"/comments?filter=verified", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, query.Query{Text: "great", Filter: query.FilterVerified, Sort: query.SortRating}, v.Query)

	res, _ = do(t, http.MethodPut, srv.URL+"/query", map[string]any{"sort": "oldest"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, body = do(t, http.MethodGet, srv.URL+"/comments", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, query.SortRating, v.Query.Sort)
	assert.Equal(t, "great", v.Query.Text)
}

func TestQueryValidation(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	res, _ := do(t, http.MethodGet, srv.URL+"/comments?sort=oldest", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = do(t, http.MethodPut, srv.URL+"/query", map[string]any{"filter": "cheap"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/query", bytes.NewReader([]byte("{bad json")))
	req.Header.Set("Content-Type", "application/json")
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestHelpfulAndStats(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	res, body := do(t, http.MethodPost, srv.URL+"/comments/2/helpful", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var st model.LikeState
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, model.LikeState{Liked: true, Count: 3}, st)

	res, body = do(t, http.MethodGet, srv.URL+"/stats", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var s model.Statistics
	require.NoError(t, json.Unmarshal(body, &s))
	assert.Equal(t, 8, s.Total)
	assert.Equal(t, 1, s.WithReplies)

	res, _ = do(t, http.MethodPost, srv.URL+"/comments/99/helpful", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res, _ = do(t, http.MethodPost, srv.URL+"/comments/abc/like", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestRepliesFlow(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	res, body := do(t, http.MethodPost, srv.URL+"/comments/1/replies", map[string]any{"content": "thanks", "parent_id": 2})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var r model.Reply
	require.NoError(t, json.Unmarshal(body, &r))
	assert.Equal(t, int64(3), r.ID)
	assert.Equal(t, int64(2), r.ParentID)

	res, _ = do(t, http.MethodPost, srv.URL+"/comments/1/replies", map[string]any{"content": "   "})
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res, body = do(t, http.MethodGet, srv.URL+"/comments/1/replies?viewport=mobile", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var out struct {
		Items    []model.ReplyNode `json:"items"`
		Viewport model.Viewport    `json:"viewport"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, model.ViewportMobile, out.Viewport)
	require.Len(t, out.Items, 1)
	require.Len(t, out.Items[0].Children, 1)
	require.Len(t, out.Items[0].Children[0].Children, 1)
	leaf := out.Items[0].Children[0].Children[0]
	assert.Equal(t, int64(3), leaf.ID)
	assert.Equal(t, 2, leaf.Depth)
	assert.Equal(t, 6, leaf.Indent)

	res, body = do(t, http.MethodPost, srv.URL+"/comments/1/replies/1/like", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var st model.LikeState
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, model.LikeState{Liked: true, Count: 3}, st)

	res, _ = do(t, http.MethodPost, srv.URL+"/comments/1/replies/9/report", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = do(t, http.MethodGet, srv.URL+"/comments/1/replies?viewport=tv", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestEditorFlow(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	res, body := do(t, http.MethodPost, srv.URL+"/comments/4/editors", map[string]any{"parent_id": 0})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var ed service.Editor
	require.NoError(t, json.Unmarshal(body, &ed))

	res, _ = do(t, http.MethodDelete, srv.URL+"/editors/"+ed.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	res, _ = do(t, http.MethodPost, srv.URL+"/editors/"+ed.ID.String()+"/submit", map[string]any{"content": "too late"})
	assert.Equal(t, http.StatusGone, res.StatusCode)

	res, body = do(t, http.MethodPost, srv.URL+"/comments/4/editors", nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &ed))

	res, body = do(t, http.MethodPost, srv.URL+"/editors/"+ed.ID.String()+"/submit", map[string]any{"content": "first!"})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var r model.Reply
	require.NoError(t, json.Unmarshal(body, &r))
	assert.Equal(t, int64(1), r.ID)

	res, _ = do(t, http.MethodPost, srv.URL+"/editors/not-a-uuid/submit", map[string]any{"content": "x"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res, _ = do(t, http.MethodDelete, srv.URL+"/editors/"+ed.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestReportComment(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	res, body := do(t, http.MethodPost, srv.URL+"/comments/5/report", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"reported":true,"first":true}`, string(body))

	res, body = do(t, http.MethodPost, srv.URL+"/comments/5/report", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"reported":true,"first":false}`, string(body))

	res, body = do(t, http.MethodGet, srv.URL+"/comments/5", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var cv service.CommentView
	require.NoError(t, json.Unmarshal(body, &cv))
	assert.True(t, cv.Reported)
	assert.Equal(t, int64(5), cv.ID)
}

func TestRateLimit(t *testing.T) {
	srv := newServer(handler.WithRateLimit(handler.RateLimit{RPS: 0.001, Burst: 1}))
	defer srv.Close()

	res, _ := do(t, http.MethodPost, srv.URL+"/comments/1/like", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res, _ = do(t, http.MethodPost, srv.URL+"/comments/1/like", nil)
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)

	res, _ = do(t, http.MethodGet, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
