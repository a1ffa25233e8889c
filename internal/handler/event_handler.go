package handler

import (
	"net/http"
	"time"

	"github.com/Matrix-F25/matrix-events-sub000/internal/cache"
	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	"github.com/Matrix-F25/matrix-events-sub000/internal/service"
	apperrors "github.com/Matrix-F25/matrix-events-sub000/pkg/app_errors"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	events       *cache.EventCache
	registration service.RegistrationService
	lottery      service.LotteryService
}

func NewEventHandler(events *cache.EventCache, registration service.RegistrationService, lottery service.LotteryService) *EventHandler {
	return &EventHandler{
		events:       events,
		registration: registration,
		lottery:      lottery,
	}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("events", h.List)
		router.GET("events/:id", h.GetByID)
		router.GET("events/qr/:hash", h.GetByQRHash)
		router.POST("events", h.Create)
		router.PUT("events/:id", h.Update)
		router.DELETE("events/:id", h.Delete)

		router.POST("events/:id/open", h.OpenRegistration)
		router.POST("events/:id/lottery", h.RunLottery)
		router.POST("events/:id/expire", h.ExpirePending)

		router.POST("events/:id/waitlist", h.JoinWaitlist)
		router.DELETE("events/:id/waitlist/:deviceId", h.LeaveWaitlist)
		router.POST("events/:id/accept", h.Accept)
		router.POST("events/:id/decline", h.Decline)
	}
}

// CreateEventRequest carries the organizer's event definition.
type CreateEventRequest struct {
	Name              string     `json:"name" binding:"required"`
	Description       string     `json:"description"`
	OrganizerID       string     `json:"organizer_id" binding:"required"`
	Location          string     `json:"location"`
	EventStart        time.Time  `json:"event_start" binding:"required"`
	EventEnd          time.Time  `json:"event_end" binding:"required"`
	RegistrationStart time.Time  `json:"registration_start" binding:"required"`
	RegistrationEnd   time.Time  `json:"registration_end" binding:"required"`
	EventCapacity     int        `json:"event_capacity" binding:"required"`
	WaitlistCapacity  int        `json:"waitlist_capacity" binding:"required"`
	IsReoccurring     bool       `json:"is_reoccurring"`
	ReoccurringEnd    *time.Time `json:"reoccurring_end"`
	ReoccurringType   string     `json:"reoccurring_type"`
}

// UpdateEventRequest carries the organizer-editable fields; nil means keep.
type UpdateEventRequest struct {
	Name              *string    `json:"name"`
	Description       *string    `json:"description"`
	Location          *string    `json:"location"`
	EventStart        *time.Time `json:"event_start"`
	EventEnd          *time.Time `json:"event_end"`
	RegistrationStart *time.Time `json:"registration_start"`
	RegistrationEnd   *time.Time `json:"registration_end"`
	EventCapacity     *int       `json:"event_capacity"`
	WaitlistCapacity  *int       `json:"waitlist_capacity"`
}

// ListEventsQuery narrows the listing to one of the cache's filtered views.
type ListEventsQuery struct {
	Open      bool   `form:"open"`
	Organizer string `form:"organizer"`
	Entrant   string `form:"entrant"`
	Pending   string `form:"pending"`
}

// EntrantRequest identifies the entrant performing a list transition.
type EntrantRequest struct {
	DeviceID  string   `json:"device_id" binding:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (h *EventHandler) List(c *gin.Context) {
	var q ListEventsQuery
	if err := BindQuery(c, &q); err != nil {
		return
	}

	var events []*model.Event
	switch {
	case q.Open:
		events = h.events.OpenForRegistration(time.Now())
	case q.Organizer != "":
		events = h.events.ByOrganizer(q.Organizer)
	case q.Pending != "":
		events = h.events.PendingFor(q.Pending)
	case q.Entrant != "":
		events = h.events.WithEntrant(q.Entrant)
	default:
		events = h.events.GetAll()
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetByID(c *gin.Context) {
	event, err := h.events.GetEvent(c.Param("id"))
	if err != nil {
		handleError(c, err, "GetByID")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) GetByQRHash(c *gin.Context) {
	event, err := h.events.ByQRHash(c.Param("hash"))
	if err != nil {
		handleError(c, err, "GetByQRHash")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	event, err := h.registration.CreateEvent(c, model.CreateEventParams{
		Name:              req.Name,
		Description:       req.Description,
		OrganizerID:       req.OrganizerID,
		Location:          req.Location,
		EventStart:        req.EventStart,
		EventEnd:          req.EventEnd,
		RegistrationStart: req.RegistrationStart,
		RegistrationEnd:   req.RegistrationEnd,
		EventCapacity:     req.EventCapacity,
		WaitlistCapacity:  req.WaitlistCapacity,
		IsReoccurring:     req.IsReoccurring,
		ReoccurringEnd:    req.ReoccurringEnd,
		ReoccurringType:   model.RecurrenceType(req.ReoccurringType),
	})
	if err != nil {
		handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, event)
}

// Update applies organizer field edits to a clone of the cached event and
// persists it. Membership lists and lifecycle flags are not editable here;
// those change only through their own transitions.
func (h *EventHandler) Update(c *gin.Context) {
	var req UpdateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	event, err := h.events.GetEvent(c.Param("id"))
	if err != nil {
		handleError(c, err, "Update")
		return
	}
	if req.EventCapacity != nil && *req.EventCapacity <= 0 {
		handleError(c, apperrors.ErrInvalidInput, "Update")
		return
	}
	if req.WaitlistCapacity != nil && *req.WaitlistCapacity <= 0 && *req.WaitlistCapacity != model.UnlimitedWaitlist {
		handleError(c, apperrors.ErrInvalidInput, "Update")
		return
	}

	updated := event.Clone()
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Location != nil {
		updated.Location = *req.Location
	}
	if req.EventStart != nil {
		updated.EventStart = *req.EventStart
	}
	if req.EventEnd != nil {
		updated.EventEnd = *req.EventEnd
	}
	if req.RegistrationStart != nil {
		updated.RegistrationStart = *req.RegistrationStart
	}
	if req.RegistrationEnd != nil {
		updated.RegistrationEnd = *req.RegistrationEnd
	}
	if req.EventCapacity != nil {
		updated.EventCapacity = *req.EventCapacity
	}
	if req.WaitlistCapacity != nil {
		updated.WaitlistCapacity = *req.WaitlistCapacity
	}
	if err := h.registration.UpdateEvent(c, updated); err != nil {
		handleError(c, err, "Update")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.registration.DeleteEvent(c, c.Param("id")); err != nil {
		handleError(c, err, "Delete")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

func (h *EventHandler) OpenRegistration(c *gin.Context) {
	if err := h.registration.OpenRegistration(c, c.Param("id")); err != nil {
		handleError(c, err, "OpenRegistration")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Registration opened"})
}

func (h *EventHandler) RunLottery(c *gin.Context) {
	winners, err := h.lottery.RunLottery(c, c.Param("id"))
	if err != nil {
		handleError(c, err, "RunLottery")
		return
	}
	c.JSON(http.StatusOK, gin.H{"winners": winners})
}

func (h *EventHandler) ExpirePending(c *gin.Context) {
	if err := h.lottery.ExpirePending(c, c.Param("id")); err != nil {
		handleError(c, err, "ExpirePending")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pending invitations expired"})
}

func (h *EventHandler) JoinWaitlist(c *gin.Context) {
	var req EntrantRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	var location *model.GeoPoint
	if req.Latitude != nil && req.Longitude != nil {
		location = &model.GeoPoint{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}
	if err := h.registration.JoinWaitlist(c, c.Param("id"), req.DeviceID, location); err != nil {
		handleError(c, err, "JoinWaitlist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Joined waitlist"})
}

func (h *EventHandler) LeaveWaitlist(c *gin.Context) {
	if err := h.registration.LeaveWaitlist(c, c.Param("id"), c.Param("deviceId")); err != nil {
		handleError(c, err, "LeaveWaitlist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Left waitlist"})
}

func (h *EventHandler) Accept(c *gin.Context) {
	var req EntrantRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	if err := h.registration.AcceptInvitation(c, c.Param("id"), req.DeviceID); err != nil {
		handleError(c, err, "Accept")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation accepted"})
}

func (h *EventHandler) Decline(c *gin.Context) {
	var req EntrantRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	if err := h.registration.DeclineInvitation(c, c.Param("id"), req.DeviceID); err != nil {
		handleError(c, err, "Decline")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation declined"})
}
