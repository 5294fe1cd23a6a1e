package api

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/ensemble"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/events"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/impact"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/observability"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/session"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/stats"
)

const sessionCookie = "biodash_session"

type Handler struct {
	sessions        *session.Manager
	broadcaster     *events.Broadcaster
	metrics         *observability.Metrics
	ensembleWorkers int
}

func NewHandler(sessions *session.Manager, broadcaster *events.Broadcaster, metrics *observability.Metrics, ensembleWorkers int) *Handler {
	return &Handler{
		sessions:        sessions,
		broadcaster:     broadcaster,
		metrics:         metrics,
		ensembleWorkers: ensembleWorkers,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.dashboard)
	r.POST("/", h.submitDashboard)
	r.GET("/health", h.health)

	api := r.Group("/api")
	api.GET("/targets", h.getTargets)
	api.GET("/impact", h.getImpact)
	api.GET("/ensemble", h.getEnsemble)

	api.POST("/sessions", h.createSession)
	api.GET("/sessions/:id", h.getSession)
	api.PUT("/sessions/:id/controls", h.updateControls)
	api.POST("/sessions/:id/regenerate", h.regenerate)
	api.GET("/sessions/:id/events", h.streamEvents)
	api.GET("/sessions/:id/charts/:chart", h.getChart)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getTargets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"targets": impact.TargetOptions})
}

func (h *Handler) getImpact(c *gin.Context) {
	target, err := parseFinite(c.Query("target"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target must be a finite number"})
		return
	}

	result := impact.Assess(target)
	h.metrics.Classifications.WithLabelValues(result.Tier.String()).Inc()
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getEnsemble(c *gin.Context) {
	draws := 100
	if d := c.Query("draws"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "draws must be an integer"})
			return
		}
		draws = n
	}
	var seed int64 = 1
	if s := c.Query("seed"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "seed must be an integer"})
			return
		}
		seed = n
	}

	summary, err := ensemble.Run(c.Request.Context(), h.sessions.Params(), seed, draws, h.ensembleWorkers)
	if errors.Is(err, ensemble.ErrInvalidDraws) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, stats.ErrInsufficientData) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "scenario produces no fittable draws"})
		return
	}
	if err != nil {
		slog.Error("ensemble failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to run ensemble"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) createSession(c *gin.Context) {
	view, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		slog.Error("failed to create session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) getSession(c *gin.Context) {
	view, err := h.sessions.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type controlsRequest struct {
	From   *int     `json:"from" binding:"required"`
	To     *int     `json:"to" binding:"required"`
	Target *float64 `json:"target" binding:"required"`
}

func (h *Handler) updateControls(c *gin.Context) {
	var req controlsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from, to and target are required"})
		return
	}

	controls := models.Controls{From: *req.From, To: *req.To, Target: *req.Target}
	view, err := h.sessions.UpdateControls(c.Request.Context(), c.Param("id"), controls)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) regenerate(c *gin.Context) {
	view, err := h.sessions.Regenerate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// streamEvents pushes the session's view to the client as server-sent events
// whenever its controls change.
func (h *Handler) streamEvents(c *gin.Context) {
	id := c.Param("id")
	view, err := h.sessions.View(c.Request.Context(), id)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	subID, ch := h.broadcaster.Subscribe(id)
	defer h.broadcaster.Unsubscribe(subID)
	slog.Info("client subscribed to view stream", "session_id", id, "subscriber_id", subID)

	c.SSEvent("view", view)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			slog.Info("client disconnected from view stream", "subscriber_id", subID)
			return false
		case v, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("view", v)
			return true
		}
	})
}

func (h *Handler) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, session.ErrInvalidControls):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error("session request failed", "session_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not finite")
	}
	return v, nil
}
