package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	appevent "github.com/t1tandr/uevent/internal/application/event"
)

// AttendeeHandler serves the organizer's view of ticket holders
type AttendeeHandler struct {
	BaseHandler
	attendees *appevent.AttendeeService
}

// NewAttendeeHandler creates a new attendee handler
func NewAttendeeHandler(attendees *appevent.AttendeeService) *AttendeeHandler {
	return &AttendeeHandler{attendees: attendees}
}

// List godoc
// @Summary      Event attendees
// @Tags         attendees
// @Produce      json
// @Param        id     path  string true  "Event ID"
// @Param        status query string false "ACTIVE or CANCELLED"
// @Param        search query string false "User name or email"
// @Success      200 {object} dto.Response{data=[]appevent.AttendeeResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /events/{id}/attendees [get]
func (h *AttendeeHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	eventID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var q appevent.AttendeeQuery
	if !h.BindQuery(c, &q) {
		return
	}
	attendees, err := h.attendees.List(c.Request.Context(), eventID, userID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, attendees)
}

// Statistics godoc
// @Summary      Ticket counts per status
// @Tags         attendees
// @Produce      json
// @Param        id path string true "Event ID"
// @Success      200 {object} dto.Response{data=appevent.AttendeeStatistics}
// @Security     BearerAuth
// @Router       /events/{id}/attendees/statistics [get]
func (h *AttendeeHandler) Statistics(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	eventID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	stats, err := h.attendees.Statistics(c.Request.Context(), eventID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Export godoc
// @Summary      Export attendees
// @Description  Spreadsheet of every ticket holder
// @Tags         attendees
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id path string true "Event ID"
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /events/{id}/attendees/export [get]
func (h *AttendeeHandler) Export(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	eventID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	export, err := h.attendees.Export(c.Request.Context(), eventID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Data)
}

// CancelTicket godoc
// @Summary      Cancel an attendee's ticket
// @Tags         attendees
// @Produce      json
// @Param        id       path string true "Event ID"
// @Param        ticketId path string true "Ticket ID"
// @Success      200 {object} dto.Response{data=appevent.AttendeeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /events/{id}/attendees/{ticketId} [delete]
func (h *AttendeeHandler) CancelTicket(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	eventID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	ticketID, ok := h.parseUUIDParam(c, "ticketId")
	if !ok {
		return
	}
	attendee, err := h.attendees.CancelTicket(c.Request.Context(), eventID, ticketID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, attendee)
}
