package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"immo/internal/app/dto"
	bookingssvc "immo/internal/app/services/bookings"
	domainad "immo/internal/domain/ad"
	domainbooking "immo/internal/domain/booking"
	domainproperty "immo/internal/domain/property"
	domainuser "immo/internal/domain/user"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	UpdateStatus(c *gin.Context)
	Delete(c *gin.Context)
	ClientFeedback(c *gin.Context)
	OwnerFeedback(c *gin.Context)
	ListByProperty(c *gin.Context)
}

type BookingHandler struct {
	Service *bookingssvc.Service
	Logger  *slog.Logger
}

type timeSlotRequest struct {
	Start string `json:"start" binding:"required,timeslot"`
	End   string `json:"end" binding:"required,timeslot"`
}

type createBookingRequest struct {
	AdID       string          `json:"ad_id" binding:"required"`
	PropertyID string          `json:"property_id" binding:"required"`
	Date       time.Time       `json:"date" binding:"required"`
	Slot       timeSlotRequest `json:"time_slot" binding:"required"`
	Message    string          `json:"message"`
}

type updateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

type clientFeedbackRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type ownerFeedbackRequest struct {
	Comment string `json:"comment" binding:"required"`
}

func (h BookingHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	b, err := h.Service.Create(c.Request.Context(), bookingssvc.CreateParams{
		AdID:       domainad.ID(req.AdID),
		PropertyID: domainproperty.ID(req.PropertyID),
		ClientID:   domainuser.ID(p.ID),
		Date:       req.Date,
		Slot:       domainbooking.TimeSlot{Start: req.Slot.Start, End: req.Slot.End},
		Message:    req.Message,
		Now:        time.Now(),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewBooking(b))
}

func (h BookingHandler) Get(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	b, err := h.Service.GetByID(c.Request.Context(), p.actor(), domainbooking.ID(c.Param("id")))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBooking(b))
}

func (h BookingHandler) List(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	filter := domainbooking.ListFilter{
		Status: domainbooking.Status(c.Query("status")),
		Page:   intQuery(c, "page", 1),
		Limit:  intQuery(c, "limit", 10),
	}
	result, err := h.Service.List(c.Request.Context(), p.actor(), filter)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	normalized := filter.Normalized()
	c.JSON(http.StatusOK, dto.NewPage(dto.NewBookings(result.Items), result.Total, normalized.Page, normalized.Limit))
}

func (h BookingHandler) UpdateStatus(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req updateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	b, err := h.Service.UpdateStatus(c.Request.Context(), p.actor(), bookingssvc.UpdateStatusParams{
		BookingID: domainbooking.ID(c.Param("id")),
		Status:    req.Status,
		Notes:     req.Notes,
		Now:       time.Now(),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBooking(b))
}

func (h BookingHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), p.actor(), domainbooking.ID(c.Param("id"))); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h BookingHandler) ClientFeedback(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req clientFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	b, err := h.Service.AddClientFeedback(c.Request.Context(), p.actor(), bookingssvc.ClientFeedbackParams{
		BookingID: domainbooking.ID(c.Param("id")),
		Rating:    req.Rating,
		Comment:   req.Comment,
		Now:       time.Now(),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBooking(b))
}

func (h BookingHandler) OwnerFeedback(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req ownerFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	b, err := h.Service.AddOwnerFeedback(c.Request.Context(), p.actor(), bookingssvc.OwnerFeedbackParams{
		BookingID: domainbooking.ID(c.Param("id")),
		Comment:   req.Comment,
		Now:       time.Now(),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBooking(b))
}

func (h BookingHandler) ListByProperty(c *gin.Context) {
	p, ok := requireRole(c, domainuser.RoleOwner, domainuser.RoleAdmin)
	if !ok {
		return
	}
	filter := domainbooking.ListFilter{
		Status: domainbooking.Status(c.Query("status")),
		Page:   intQuery(c, "page", 1),
		Limit:  intQuery(c, "limit", 10),
	}
	result, err := h.Service.ListByProperty(c.Request.Context(), p.actor(), domainproperty.ID(c.Param("propertyId")), filter)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	normalized := filter.Normalized()
	c.JSON(http.StatusOK, dto.NewPage(dto.NewBookings(result.Items), result.Total, normalized.Page, normalized.Limit))
}

var _ BookingHTTP = (*BookingHandler)(nil)
