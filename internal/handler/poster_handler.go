package handler

import (
	"net/http"

	"github.com/Matrix-F25/matrix-events-sub000/internal/cache"
	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	"github.com/Matrix-F25/matrix-events-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type PosterHandler struct {
	posters *cache.PosterCache
	events  *cache.EventCache
	cascade service.CascadeService
}

func NewPosterHandler(posters *cache.PosterCache, events *cache.EventCache, cascade service.CascadeService) *PosterHandler {
	return &PosterHandler{posters: posters, events: events, cascade: cascade}
}

func (h *PosterHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("posters/:id", h.GetByID)
		router.GET("posters/event/:eventId", h.GetByEventID)
		router.POST("posters", h.Create)
		router.DELETE("posters/:id", h.Delete)
	}
}

type CreatePosterRequest struct {
	EventID  string `json:"event_id" binding:"required"`
	ImageURL string `json:"image_url" binding:"required"`
}

func (h *PosterHandler) GetByID(c *gin.Context) {
	poster, err := h.posters.GetPoster(c.Param("id"))
	if err != nil {
		handleError(c, err, "GetByID")
		return
	}
	c.JSON(http.StatusOK, poster)
}

func (h *PosterHandler) GetByEventID(c *gin.Context) {
	poster, err := h.posters.ByEventID(c.Param("eventId"))
	if err != nil {
		handleError(c, err, "GetByEventID")
		return
	}
	c.JSON(http.StatusOK, poster)
}

// Create stores the poster and attaches it to its event.
func (h *PosterHandler) Create(c *gin.Context) {
	var req CreatePosterRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	event, err := h.events.GetEvent(req.EventID)
	if err != nil {
		handleError(c, err, "Create")
		return
	}

	poster := &model.Poster{EventID: req.EventID, ImageURL: req.ImageURL}
	if err := h.posters.Create(c, poster); err != nil {
		handleError(c, err, "Create")
		return
	}

	updated := event.Clone()
	updated.PosterID = poster.GetID()
	if err := h.events.UpdateEvent(c, updated); err != nil {
		handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, poster)
}

// Delete removes the poster and clears the referencing event's poster field.
func (h *PosterHandler) Delete(c *gin.Context) {
	if err := h.cascade.DeletePoster(c, c.Param("id")); err != nil {
		handleError(c, err, "Delete")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Poster deleted"})
}
