package handler

import (
	"net/http"

	"github.com/Matrix-F25/matrix-events-sub000/internal/cache"
	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	"github.com/Matrix-F25/matrix-events-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profiles *cache.ProfileCache
	cascade  service.CascadeService
}

func NewProfileHandler(profiles *cache.ProfileCache, cascade service.CascadeService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, cascade: cascade}
}

func (h *ProfileHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("profiles", h.List)
		router.GET("profiles/:id", h.GetByID)
		router.GET("profiles/device/:deviceId", h.GetByDeviceID)
		router.POST("profiles", h.Create)
		router.PUT("profiles/:id", h.Update)
		router.DELETE("profiles/:id", h.Delete)
	}
}

type CreateProfileRequest struct {
	DeviceID             string `json:"device_id" binding:"required"`
	Name                 string `json:"name" binding:"required"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

type UpdateProfileRequest struct {
	Name                 *string `json:"name"`
	Email                *string `json:"email"`
	Phone                *string `json:"phone"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
}

type ListProfilesQuery struct {
	Admin bool `form:"admin"`
}

func (h *ProfileHandler) List(c *gin.Context) {
	var q ListProfilesQuery
	if err := BindQuery(c, &q); err != nil {
		return
	}
	if q.Admin {
		c.JSON(http.StatusOK, h.profiles.Admins())
		return
	}
	c.JSON(http.StatusOK, h.profiles.GetAll())
}

func (h *ProfileHandler) GetByID(c *gin.Context) {
	profile, err := h.profiles.GetProfile(c.Param("id"))
	if err != nil {
		handleError(c, err, "GetByID")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) GetByDeviceID(c *gin.Context) {
	profile, err := h.profiles.ByDeviceID(c.Param("deviceId"))
	if err != nil {
		handleError(c, err, "GetByDeviceID")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) Create(c *gin.Context) {
	var req CreateProfileRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	profile := &model.Profile{
		DeviceID:             req.DeviceID,
		Name:                 req.Name,
		Email:                req.Email,
		Phone:                req.Phone,
		NotificationsEnabled: req.NotificationsEnabled,
	}
	if err := h.profiles.Create(c, profile); err != nil {
		handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req UpdateProfileRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	profile, err := h.profiles.GetProfile(c.Param("id"))
	if err != nil {
		handleError(c, err, "Update")
		return
	}

	updated := *profile
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.Email != nil {
		updated.Email = *req.Email
	}
	if req.Phone != nil {
		updated.Phone = *req.Phone
	}
	if req.NotificationsEnabled != nil {
		updated.NotificationsEnabled = *req.NotificationsEnabled
	}
	if err := h.profiles.Update(c, &updated); err != nil {
		handleError(c, err, "Update")
		return
	}
	c.JSON(http.StatusOK, &updated)
}

// Delete removes the profile and cascades: organized events are cancelled and
// the device id is scrubbed from every other event.
func (h *ProfileHandler) Delete(c *gin.Context) {
	if err := h.cascade.DeleteProfile(c, c.Param("id")); err != nil {
		handleError(c, err, "Delete")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile deleted"})
}
