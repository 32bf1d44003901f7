package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pfrederiksen/rastreio/internal/event"
)

// Tracker scrapes a batch of tracking codes. *scraper.Scraper satisfies it.
type Tracker interface {
	ScrapeBatch(ctx context.Context, codes []string) event.BatchResult
}

// TrackRequest is the body of POST /track
type TrackRequest struct {
	TrackCodes []string `json:"trackCodes" validate:"required,min=1"`
}

// TrackHandler serves the tracking endpoints
type TrackHandler struct {
	tracker  Tracker
	maxCodes int
	timeout  time.Duration
}

// NewTrackHandler creates a handler. A batch is aborted after timeout and may
// hold at most maxCodes codes.
func NewTrackHandler(tracker Tracker, maxCodes int, timeout time.Duration) *TrackHandler {
	return &TrackHandler{
		tracker:  tracker,
		maxCodes: maxCodes,
		timeout:  timeout,
	}
}

// Root reports that the service is up
func (h *TrackHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "online"})
}

// Health is the liveness probe
func (h *TrackHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Track scrapes every code in the request and returns one outcome per code,
// in request order.
func (h *TrackHandler) Track(c echo.Context) error {
	var req TrackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if h.maxCodes > 0 && len(req.TrackCodes) > h.maxCodes {
		return echo.NewHTTPError(http.StatusUnprocessableEntity,
			fmt.Sprintf("trackCodes must have at most %d item(s)", h.maxCodes))
	}

	ctx := c.Request().Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	res := h.tracker.ScrapeBatch(ctx, req.TrackCodes)
	// A batch cut short by its deadline is still reported per code unless
	// nothing in it got through.
	if err := ctx.Err(); errors.Is(err, context.DeadlineExceeded) && !anySucceeded(res) {
		return fmt.Errorf("track %d code(s): %w", len(req.TrackCodes), err)
	}

	return c.JSON(http.StatusOK, res)
}

func anySucceeded(res event.BatchResult) bool {
	for _, out := range res.Results {
		if out.Success {
			return true
		}
	}
	return false
}
