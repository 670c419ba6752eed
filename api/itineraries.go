package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripweaver/internal/domain"
	"tripweaver/internal/service/itinerary"
)

// ReportStore serves the last fill report computed for an itinerary,
// typically written by the background worker.
type ReportStore interface {
	GetFillReport(ctx context.Context, itineraryID string) (*itinerary.FillReport, error)
}

type ItineraryHandler struct {
	service itinerary.ItineraryUseCase
	reports ReportStore
}

type gapsResponse struct {
	Gaps []domain.Gap `json:"gaps"`
}

type shiftRequest struct {
	Itinerary    domain.Itinerary `json:"itinerary"`
	SegmentID    string           `json:"segmentId"`
	DeltaMinutes int              `json:"deltaMinutes"`
}

func NewItineraryHandler(service itinerary.ItineraryUseCase, reports ReportStore) *ItineraryHandler {
	return &ItineraryHandler{service: service, reports: reports}
}

func (h *ItineraryHandler) Register(router *gin.RouterGroup) {
	router.POST("/gaps", h.gaps)
	router.POST("/fill", h.fill)
	router.POST("/validate", h.validate)
	router.POST("/shift", h.shift)
	router.POST("/export", h.export)
	router.GET("/:id/report", h.report)
}

func (h *ItineraryHandler) gaps(c *gin.Context) {
	var it domain.Itinerary
	if err := c.ShouldBindJSON(&it); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gaps, err := h.service.DetectGaps(c.Request.Context(), &it)
	if err != nil {
		h.fail(c, err)
		return
	}

	if gaps == nil {
		gaps = []domain.Gap{}
	}
	c.JSON(http.StatusOK, gapsResponse{Gaps: gaps})
}

func (h *ItineraryHandler) fill(c *gin.Context) {
	var it domain.Itinerary
	if err := c.ShouldBindJSON(&it); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.service.FillGaps(c.Request.Context(), &it)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ItineraryHandler) validate(c *gin.Context) {
	var it domain.Itinerary
	if err := c.ShouldBindJSON(&it); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.service.Validate(c.Request.Context(), &it)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ItineraryHandler) shift(c *gin.Context) {
	var req shiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SegmentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "segmentId is required"})
		return
	}

	delta := time.Duration(req.DeltaMinutes) * time.Minute
	report, err := h.service.ShiftSegment(c.Request.Context(), &req.Itinerary, req.SegmentID, delta)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ItineraryHandler) export(c *gin.Context) {
	var it domain.Itinerary
	if err := c.ShouldBindJSON(&it); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := h.service.Export(c.Request.Context(), &it)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

func (h *ItineraryHandler) report(c *gin.Context) {
	if h.reports == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "fill reports are not enabled"})
		return
	}

	report, err := h.reports.GetFillReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no fill report for itinerary"})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ItineraryHandler) fail(c *gin.Context, err error) {
	var cycleErr *domain.CycleError
	var boundsErr *domain.BoundsError

	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, itinerary.ErrFillInProgress),
		errors.As(err, &cycleErr),
		errors.As(err, &boundsErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
