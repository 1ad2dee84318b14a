package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campus-sports/service-booking/internal/application"
	"github.com/campus-sports/service-booking/internal/platform/auth"
	"github.com/campus-sports/service-booking/internal/platform/middleware"
	"github.com/campus-sports/service-booking/internal/platform/response"
	"github.com/campus-sports/service-booking/internal/watcher"
)

// Sweeper triggers an expiry pass on demand.
type Sweeper interface {
	RunSweep(ctx context.Context) (*watcher.SweepResult, error)
}

// AdminHandler handles the administrative HTTP surface.
type AdminHandler struct {
	admin    *application.AdminService
	bookings *application.BookingService
	sweeper  Sweeper
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin *application.AdminService, bookings *application.BookingService, sweeper Sweeper) *AdminHandler {
	return &AdminHandler{admin: admin, bookings: bookings, sweeper: sweeper}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/settings", h.ListSettings)
		admin.PUT("/settings/:key", h.UpdateSetting)
		admin.PUT("/users/:id/extra-rights", h.SetExtraRights)
		admin.PUT("/users/:id/consumed-rights", h.CorrectConsumedRights)
		admin.PUT("/users/:id/booking-ban", h.SetBookingBan)
		admin.POST("/courts", h.CreateCourt)
		admin.GET("/courts", h.ListCourts)
		admin.POST("/bookings/privileged", h.CreatePrivilegedBooking)
		admin.GET("/bookings/expired-today", h.ExpiredToday)
		admin.POST("/bookings/check-expired", h.CheckExpired)
	}
}

// ListSettings handles GET /api/v1/admin/settings
func (h *AdminHandler) ListSettings(c *gin.Context) {
	all, err := h.admin.ListSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", all)
}

// UpdateSetting handles PUT /api/v1/admin/settings/:key
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	var req struct {
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.admin.UpdateSetting(c.Request.Context(), c.Param("key"), req.Value); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "setting updated", nil)
}

// SetExtraRights handles PUT /api/v1/admin/users/:id/extra-rights
func (h *AdminHandler) SetExtraRights(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user ID")
		return
	}

	var req struct {
		ExtraDailyRights int `json:"extraDailyRights"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	applied, err := h.admin.SetExtraDailyRights(c.Request.Context(), userID, req.ExtraDailyRights)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "extra daily rights updated", gin.H{"extraDailyRights": applied})
}

// CorrectConsumedRights handles PUT /api/v1/admin/users/:id/consumed-rights
func (h *AdminHandler) CorrectConsumedRights(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user ID")
		return
	}

	var req struct {
		Date  string `json:"date" binding:"required"`
		Count int    `json:"count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.admin.CorrectConsumedRights(c.Request.Context(), userID, req.Date, req.Count); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "consumed rights corrected", nil)
}

// SetBookingBan handles PUT /api/v1/admin/users/:id/booking-ban
func (h *AdminHandler) SetBookingBan(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user ID")
		return
	}

	var req struct {
		Date string `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.admin.SetBookingBan(c.Request.Context(), userID, req.Date); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "booking ban updated", nil)
}

// CreateCourt handles POST /api/v1/admin/courts
func (h *AdminHandler) CreateCourt(c *gin.Context) {
	var req struct {
		Name            string `json:"name" binding:"required"`
		Category        string `json:"category" binding:"required"`
		RequiredPlayers int    `json:"requiredPlayers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.admin.CreateCourt(c.Request.Context(), req.Name, req.Category, req.RequiredPlayers)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "court created", dto)
}

// ListCourts handles GET /api/v1/admin/courts
func (h *AdminHandler) ListCourts(c *gin.Context) {
	courts, err := h.admin.ListCourts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", courts)
}

// CreatePrivilegedBooking handles POST /api/v1/admin/bookings/privileged
func (h *AdminHandler) CreatePrivilegedBooking(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, errUnauthorized())
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.bookings.CreatePrivileged(c.Request.Context(), adminID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "privileged booking created", dto)
}

// ExpiredToday handles GET /api/v1/admin/bookings/expired-today
func (h *AdminHandler) ExpiredToday(c *gin.Context) {
	callerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, errUnauthorized())
		return
	}
	dtos, err := h.bookings.ExpiredToday(c.Request.Context(), callerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", dtos)
}

// CheckExpired handles POST /api/v1/admin/bookings/check-expired
func (h *AdminHandler) CheckExpired(c *gin.Context) {
	result, err := h.sweeper.RunSweep(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "expiry sweep completed", result)
}
