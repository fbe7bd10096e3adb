package http

import (
	stdhttp "net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

func (h *Handler) Routes() stdhttp.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogger())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(stdhttp.StatusOK, map[string]any{"result": "ok"})
	})

	writes := h.limits.middleware()

	e.GET("/comments", h.GetComments)
	e.PUT("/query", h.PutQuery)
	e.POST("/query/more", h.LoadMore)
	e.GET("/stats", h.GetStats)

	e.GET("/comments/:id", h.GetComment)
	e.POST("/comments/:id/helpful", h.ToggleHelpful, writes)
	e.POST("/comments/:id/like", h.ToggleLike, writes)
	e.POST("/comments/:id/report", h.ReportComment, writes)

	e.GET("/comments/:id/replies", h.GetReplies)
	e.POST("/comments/:id/replies", h.CreateReply, writes)
	e.POST("/comments/:id/replies/:replyID/like", h.ToggleReplyLike, writes)
	e.POST("/comments/:id/replies/:replyID/report", h.ReportReply, writes)

	e.POST("/comments/:id/editors", h.OpenEditor, writes)
	e.POST("/editors/:editorID/submit", h.SubmitEditor, writes)
	e.DELETE("/editors/:editorID", h.CloseEditor)

	return e
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			log.Debug().
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Dur("took", time.Since(start)).
				Msg("http request")
			return nil
		}
	}
}
