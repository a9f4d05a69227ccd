package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "market-alerts/internal/errors"
	"market-alerts/internal/models"
)

// respondError maps engine errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	var ve *apperrors.ValidationError
	switch {
	case apperrors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
	case apperrors.Is(err, apperrors.ErrAlertNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.Is(err, apperrors.ErrCompletionUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) listAlerts(c *gin.Context) {
	alerts, err := s.deps.Store.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// createAlertRequest distinguishes an omitted price from a zero price.
type createAlertRequest struct {
	Symbol     string           `json:"symbol"`
	AlertPrice *float64         `json:"alert_price"`
	Direction  models.Direction `json:"direction"`
	Label      string           `json:"label"`
}

func (s *Server) createAlert(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.AlertPrice == nil {
		respondError(c, apperrors.NewValidationError("alert_price", nil, "price is required"))
		return
	}

	alert, err := s.deps.Store.Create(c.Request.Context(), models.AlertRule{
		Symbol:     req.Symbol,
		AlertPrice: *req.AlertPrice,
		Direction:  req.Direction,
		Label:      req.Label,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

func (s *Server) removeAlert(c *gin.Context) {
	if err := s.deps.Store.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) toggleAlert(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if err := s.deps.Store.ToggleActive(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	alert, err := s.deps.Store.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (s *Server) listNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Sink.List())
}

func (s *Server) dismissNotification(c *gin.Context) {
	if !s.deps.Sink.Dismiss(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) clearNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cleared": s.deps.Sink.ClearAll()})
}

func (s *Server) coachNotification(c *gin.Context) {
	t, ok := s.deps.Sink.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	if s.deps.Coach == nil {
		respondError(c, apperrors.ErrCompletionUnavailable)
		return
	}

	text, err := s.deps.Coach.Explain(c.Request.Context(), t)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": t.ID, "coaching": text})
}

func (s *Server) getMonitoring(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Controller.Status())
}

type monitoringRequest struct {
	Active *bool `json:"active"`
}

func (s *Server) setMonitoring(c *gin.Context) {
	var req monitoringRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"active\": bool}", "field": "active"})
		return
	}
	s.deps.Controller.SetPaused(!*req.Active)
	c.JSON(http.StatusOK, s.deps.Controller.Status())
}

func (s *Server) getFeed(c *gin.Context) {
	snap := s.deps.Feed.Snapshot(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"snapshot": snap,
		"status":   s.deps.Feed.Status(),
	})
}

func (s *Server) getHealth(c *gin.Context) {
	health := s.health.Check(c.Request.Context())
	status := http.StatusOK
	if !health.Operational() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}
