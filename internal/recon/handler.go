package recon

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/labrecon/labrecon/internal/platform/auth"
)

// SourceFactory builds the message source a triggered run reads from.
type SourceFactory func() Source

// Handler exposes the admin trigger API: operations staff kick off a
// batch run over HTTP instead of waiting for the scheduled CLI run.
type Handler struct {
	coord     *Coordinator
	newSource SourceFactory
	defaults  RunContext
	log       zerolog.Logger
}

func NewHandler(coord *Coordinator, newSource SourceFactory, defaults RunContext, log zerolog.Logger) *Handler {
	return &Handler{coord: coord, newSource: newSource, defaults: defaults, log: log}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/runs", h.triggerRun)
}

type runRequest struct {
	Lab  string `json:"lab_id,omitempty"`
	From string `json:"from,omitempty"`
	Thru string `json:"thru,omitempty"`
	Max  int    `json:"max,omitempty"`
}

// triggerRun executes a batch synchronously and returns its summary.
// Batches are small enough that a blocking request is simpler and more
// honest than a job queue.
func (h *Handler) triggerRun(c echo.Context) error {
	var req runRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	rc := h.defaults
	rc.Lab = req.Lab
	rc.From = req.From
	rc.Thru = req.Thru
	if req.Max > 0 {
		rc.MaxMessages = req.Max
	}
	if op := auth.OperatorFromContext(c); op != "" {
		rc.Operator = op
	}

	sum, err := h.coord.Run(c.Request().Context(), h.newSource(), rc)
	if err != nil {
		h.log.Error().Err(err).Msg("triggered run failed")
		if sum != nil {
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"error":   err.Error(),
				"summary": sum,
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sum)
}
