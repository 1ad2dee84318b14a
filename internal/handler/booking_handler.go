package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campus-sports/service-booking/internal/application"
	"github.com/campus-sports/service-booking/internal/domain"
	"github.com/campus-sports/service-booking/internal/platform/auth"
	"github.com/campus-sports/service-booking/internal/platform/middleware"
	"github.com/campus-sports/service-booking/internal/platform/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	bookings  *application.BookingService
	rights    *application.RightsService
	penalties *application.PenaltyService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(
	bookings *application.BookingService,
	rights *application.RightsService,
	penalties *application.PenaltyService,
) *BookingHandler {
	return &BookingHandler{bookings: bookings, rights: rights, penalties: penalties}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtManager))
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/me", h.MyBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id/status", h.UpdateStatus)
		bookings.POST("/:id/checkin", h.CheckInWithProof)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}

	courts := r.Group("/courts")
	courts.Use(middleware.AuthMiddleware(jwtManager))
	{
		courts.GET("/:id/schedule", h.CourtSchedule)
	}

	me := r.Group("/me")
	me.Use(middleware.AuthMiddleware(jwtManager))
	{
		me.GET("/rights", h.MyRights)
		me.GET("/penalties", h.MyPenalties)
	}
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, errUnauthorized())
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.Create(c.Request.Context(), userID, req)
	if err != nil {
		var replace *application.ReplaceRequiredError
		if errors.As(err, &replace) {
			response.Conflict(c, replace.Error(), gin.H{
				"requiresConfirmation": true,
				"existingBookings":     replace.Existing,
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.Created(c, "booking created", result)
}

// MyBookings handles GET /api/v1/bookings/me
func (h *BookingHandler) MyBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, errUnauthorized())
		return
	}

	dtos, err := h.bookings.UserBookings(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", dtos)
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Error(c, errUnauthorized())
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	dto, err := h.bookings.GetBooking(c.Request.Context(), identity.UserID, identity.Role == auth.RoleAdmin, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", dto)
}

// UpdateStatus handles PATCH /api/v1/bookings/:id/status
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Error(c, errUnauthorized())
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.bookings.UpdateStatus(c.Request.Context(), identity.UserID, identity.Role == auth.RoleAdmin, bookingID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "booking status updated", dto)
}

// CheckInWithProof handles POST /api/v1/bookings/:id/checkin
func (h *BookingHandler) CheckInWithProof(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, errUnauthorized())
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	dto, err := h.bookings.CheckInWithProof(c.Request.Context(), userID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "checked in", dto)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, errUnauthorized())
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// Reason is optional; an empty body is fine.
	_ = c.ShouldBindJSON(&req)

	dto, err := h.bookings.Cancel(c.Request.Context(), userID, bookingID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "booking cancelled", dto)
}

// CourtSchedule handles GET /api/v1/courts/:id/schedule?date=YYYY-MM-DD
func (h *BookingHandler) CourtSchedule(c *gin.Context) {
	courtID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid court ID")
		return
	}
	date := c.Query("date")
	if date == "" {
		response.BadRequest(c, "date query parameter is required")
		return
	}

	occupied, err := h.bookings.CourtSchedule(c.Request.Context(), courtID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", occupied)
}

// MyRights handles GET /api/v1/me/rights
func (h *BookingHandler) MyRights(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, errUnauthorized())
		return
	}

	status, err := h.rights.Status(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", status)
}

// MyPenalties handles GET /api/v1/me/penalties
func (h *BookingHandler) MyPenalties(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, errUnauthorized())
		return
	}

	history, err := h.penalties.History(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", history)
}

func errUnauthorized() error {
	return domain.NewUnauthorizedError("authentication required")
}
