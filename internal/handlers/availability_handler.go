package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	ucBooking "github.com/BruksfildServices01/barber-booking/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

// AvailabilityHandler lets a barber edit their own weekly template and breaks.
type AvailabilityHandler struct {
	schedule *ucBooking.ManageSchedule
	barbers  BarberLookup
}

func NewAvailabilityHandler(schedule *ucBooking.ManageSchedule, barbers BarberLookup) *AvailabilityHandler {
	return &AvailabilityHandler{schedule: schedule, barbers: barbers}
}

// ======================================================
// REQUESTS
// ======================================================

type AvailabilityRowRequest struct {
	DayOfWeek   int    `json:"day_of_week"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	IsAvailable *bool  `json:"is_available"`
}

type ReplaceAvailabilityRequest struct {
	Rows []AvailabilityRowRequest `json:"rows" binding:"dive"`
}

type CreateBreakRequest struct {
	Date      string `json:"date"`
	DayOfWeek *int   `json:"day_of_week"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Label     string `json:"label"`
}

// ======================================================
// ENDPOINTS
// ======================================================

func (h *AvailabilityHandler) Get(c *gin.Context) {
	barber, ok := currentBarber(c, h.barbers)
	if !ok {
		return
	}

	s, err := h.schedule.Get(c.Request.Context(), barber.ID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, s)
}

func (h *AvailabilityHandler) ReplaceWeek(c *gin.Context) {
	barber, ok := currentBarber(c, h.barbers)
	if !ok {
		return
	}

	var req ReplaceAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	rows := make([]ucBooking.AvailabilityRow, 0, len(req.Rows))
	for _, r := range req.Rows {
		enabled := true
		if r.IsAvailable != nil {
			enabled = *r.IsAvailable
		}
		rows = append(rows, ucBooking.AvailabilityRow{
			DayOfWeek:   r.DayOfWeek,
			StartTime:   r.StartTime,
			EndTime:     r.EndTime,
			IsAvailable: enabled,
		})
	}

	saved, err := h.schedule.ReplaceWeek(c.Request.Context(), barber.ID, rows)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, saved)
}

func (h *AvailabilityHandler) AddBreak(c *gin.Context) {
	barber, ok := currentBarber(c, h.barbers)
	if !ok {
		return
	}

	var req CreateBreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	br, err := h.schedule.AddBreak(c.Request.Context(), barber.ID, ucBooking.BreakInput{
		Date:      req.Date,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Label:     req.Label,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Created(c, br)
}

func (h *AvailabilityHandler) RemoveBreak(c *gin.Context) {
	barber, ok := currentBarber(c, h.barbers)
	if !ok {
		return
	}
	breakID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.schedule.RemoveBreak(c.Request.Context(), barber.ID, breakID); err != nil {
		httperr.Respond(c, err)
		return
	}
	c.Status(204)
}
