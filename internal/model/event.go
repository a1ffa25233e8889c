package model

import (
	"math/rand"
	"time"

	apperrors "github.com/Matrix-F25/matrix-events-sub000/pkg/app_errors"

	"github.com/google/uuid"
)

// RecurrenceType describes how often a reoccurring event repeats.
type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

// IsValid reports whether the recurrence type is one of the known values.
func (t RecurrenceType) IsValid() bool {
	switch t {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// UnlimitedWaitlist marks a waitlist with no size cap.
const UnlimitedWaitlist = -1

// GeoPoint is the coordinate recorded for entrants who join with location
// tracking enabled.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Event is the registration document. The four membership lists hold entrant
// device ids and are kept disjoint: a device appears on at most one list at a
// time. WaitList is ordered by join time; second-chance promotion always pops
// the head.
type Event struct {
	Base
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OrganizerID string `json:"organizer_id"`
	Location    string `json:"location,omitempty"`
	PosterID    string `json:"poster_id,omitempty"`
	QRCodeHash  string `json:"qr_code_hash"`

	EventStart        time.Time `json:"event_start"`
	EventEnd          time.Time `json:"event_end"`
	RegistrationStart time.Time `json:"registration_start"`
	RegistrationEnd   time.Time `json:"registration_end"`

	EventCapacity    int `json:"event_capacity"`
	WaitlistCapacity int `json:"waitlist_capacity"` // UnlimitedWaitlist for no cap

	IsReoccurring   bool           `json:"is_reoccurring"`
	ReoccurringEnd  *time.Time     `json:"reoccurring_end,omitempty"`
	ReoccurringType RecurrenceType `json:"reoccurring_type,omitempty"`

	RegistrationOpened bool       `json:"registration_opened"`
	LotteryProcessed   bool       `json:"lottery_processed"`
	PendingExpired     bool       `json:"pending_expired"`
	LotteryDrawnAt     *time.Time `json:"lottery_drawn_at,omitempty"`

	WaitList     []string `json:"wait_list"`
	PendingList  []string `json:"pending_list"`
	AcceptedList []string `json:"accepted_list"`
	DeclinedList []string `json:"declined_list"`

	GeolocationMap map[string]GeoPoint `json:"geolocation_map,omitempty"`
}

func (e *Event) Kind() string { return "events" }

// CreateEventParams carries the organizer-supplied fields validated by NewEvent.
type CreateEventParams struct {
	Name              string
	Description       string
	OrganizerID       string
	Location          string
	EventStart        time.Time
	EventEnd          time.Time
	RegistrationStart time.Time
	RegistrationEnd   time.Time
	EventCapacity     int
	WaitlistCapacity  int
	IsReoccurring     bool
	ReoccurringEnd    *time.Time
	ReoccurringType   RecurrenceType
}

// NewEvent validates the date ordering and recurrence fields once, at
// construction. Invariants checked here are not re-checked later except where
// an operation's own precondition depends on them.
func NewEvent(p CreateEventParams) (*Event, error) {
	if p.Name == "" || p.OrganizerID == "" {
		return nil, apperrors.ErrInvalidInput
	}
	if p.EventCapacity <= 0 {
		return nil, apperrors.ErrInvalidInput
	}
	if p.WaitlistCapacity <= 0 && p.WaitlistCapacity != UnlimitedWaitlist {
		return nil, apperrors.ErrInvalidInput
	}
	if !p.RegistrationStart.After(time.Now()) {
		return nil, apperrors.ErrInvalidInput
	}
	// registrationStart < registrationEnd <= eventStart <= eventEnd
	if !p.RegistrationStart.Before(p.RegistrationEnd) ||
		p.RegistrationEnd.After(p.EventStart) ||
		p.EventStart.After(p.EventEnd) {
		return nil, apperrors.ErrInvalidInput
	}
	// recurrence fields are jointly absent or jointly valid
	if p.IsReoccurring {
		if p.ReoccurringEnd == nil || !p.ReoccurringEnd.After(p.EventEnd) {
			return nil, apperrors.ErrInvalidInput
		}
		if !p.ReoccurringType.IsValid() {
			return nil, apperrors.ErrInvalidInput
		}
	} else if p.ReoccurringEnd != nil || p.ReoccurringType != "" {
		return nil, apperrors.ErrInvalidInput
	}

	return &Event{
		Name:              p.Name,
		Description:       p.Description,
		OrganizerID:       p.OrganizerID,
		Location:          p.Location,
		QRCodeHash:        uuid.NewString(),
		EventStart:        p.EventStart,
		EventEnd:          p.EventEnd,
		RegistrationStart: p.RegistrationStart,
		RegistrationEnd:   p.RegistrationEnd,
		EventCapacity:     p.EventCapacity,
		WaitlistCapacity:  p.WaitlistCapacity,
		IsReoccurring:     p.IsReoccurring,
		ReoccurringEnd:    p.ReoccurringEnd,
		ReoccurringType:   p.ReoccurringType,
		WaitList:          []string{},
		PendingList:       []string{},
		AcceptedList:      []string{},
		DeclinedList:      []string{},
		GeolocationMap:    map[string]GeoPoint{},
	}, nil
}

// IsOpen reports whether waitlist joins and leaves are currently accepted.
func (e *Event) IsOpen() bool {
	return e.RegistrationOpened && !e.LotteryProcessed
}

// IsAwaitingResponses reports whether pending entrants may still accept.
func (e *Event) IsAwaitingResponses() bool {
	return e.RegistrationOpened && e.LotteryProcessed && !e.PendingExpired
}

func contains(list []string, deviceID string) bool {
	for _, id := range list {
		if id == deviceID {
			return true
		}
	}
	return false
}

func remove(list []string, deviceID string) []string {
	for i, id := range list {
		if id == deviceID {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func (e *Event) InWaitlist(deviceID string) bool { return contains(e.WaitList, deviceID) }
func (e *Event) InPending(deviceID string) bool  { return contains(e.PendingList, deviceID) }
func (e *Event) InAccepted(deviceID string) bool { return contains(e.AcceptedList, deviceID) }
func (e *Event) InDeclined(deviceID string) bool { return contains(e.DeclinedList, deviceID) }

// OnAnyList reports whether the device appears on any of the four lists.
func (e *Event) OnAnyList(deviceID string) bool {
	return e.InWaitlist(deviceID) || e.InPending(deviceID) ||
		e.InAccepted(deviceID) || e.InDeclined(deviceID)
}

// JoinWaitlist enrols a device on the waitlist. Only allowed while
// registration is open; duplicates and full waitlists are rejected. A non-nil
// location is recorded in the geolocation map.
func (e *Event) JoinWaitlist(deviceID string, location *GeoPoint) error {
	if !e.IsOpen() {
		return apperrors.ErrWrongState
	}
	if e.OnAnyList(deviceID) {
		return apperrors.ErrAlreadyMember
	}
	if e.WaitlistCapacity != UnlimitedWaitlist && len(e.WaitList) >= e.WaitlistCapacity {
		return apperrors.ErrWaitlistFull
	}

	e.WaitList = append(e.WaitList, deviceID)
	if location != nil {
		if e.GeolocationMap == nil {
			e.GeolocationMap = map[string]GeoPoint{}
		}
		e.GeolocationMap[deviceID] = *location
	}
	return nil
}

// LeaveWaitlist removes a device from the waitlist and drops its geolocation
// entry.
func (e *Event) LeaveWaitlist(deviceID string) error {
	if !e.InWaitlist(deviceID) {
		return apperrors.ErrNotMember
	}
	e.WaitList = remove(e.WaitList, deviceID)
	delete(e.GeolocationMap, deviceID)
	return nil
}

// JoinAccepted moves a pending entrant to the accepted list. Only allowed
// while responses are awaited and while capacity remains.
func (e *Event) JoinAccepted(deviceID string) error {
	if !e.IsAwaitingResponses() {
		return apperrors.ErrWrongState
	}
	if !e.InPending(deviceID) {
		return apperrors.ErrNotMember
	}
	if len(e.AcceptedList) >= e.EventCapacity {
		return apperrors.ErrCapacityFull
	}

	e.PendingList = remove(e.PendingList, deviceID)
	e.AcceptedList = append(e.AcceptedList, deviceID)
	return nil
}

// JoinDeclined moves a pending entrant to the declined list and, if the
// waitlist is non-empty, promotes exactly one waitlisted entrant to pending
// (the second chance). The promoted device id is returned, empty when the
// waitlist was empty. Declining stays possible after the response deadline so
// the expiry sweep can reuse it.
func (e *Event) JoinDeclined(deviceID string) (string, error) {
	if !e.LotteryProcessed {
		return "", apperrors.ErrWrongState
	}
	if !e.InPending(deviceID) {
		return "", apperrors.ErrNotMember
	}

	e.PendingList = remove(e.PendingList, deviceID)
	e.DeclinedList = append(e.DeclinedList, deviceID)

	promoted, _ := e.promoteFromWaitlist()
	return promoted, nil
}

// promoteFromWaitlist pops the head of the waitlist into the pending list,
// FIFO by join order. The geolocation entry is kept: it still describes where
// the entrant registered from.
func (e *Event) promoteFromWaitlist() (string, bool) {
	if len(e.WaitList) == 0 {
		return "", false
	}
	deviceID := e.WaitList[0]
	e.WaitList = e.WaitList[1:]
	e.PendingList = append(e.PendingList, deviceID)
	return deviceID, true
}

// DrawLottery selects up to EventCapacity entrants uniformly at random from
// the waitlist into the pending list and closes registration for new joins.
// Returns the selected device ids.
func (e *Event) DrawLottery(rng *rand.Rand) ([]string, error) {
	if !e.RegistrationOpened || e.LotteryProcessed {
		return nil, apperrors.ErrWrongState
	}

	n := e.EventCapacity
	if n > len(e.WaitList) {
		n = len(e.WaitList)
	}

	pool := make([]string, len(e.WaitList))
	copy(pool, e.WaitList)
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	winners := pool[:n]
	for _, deviceID := range winners {
		e.WaitList = remove(e.WaitList, deviceID)
		e.PendingList = append(e.PendingList, deviceID)
	}

	e.LotteryProcessed = true
	now := time.Now().UTC()
	e.LotteryDrawnAt = &now
	return winners, nil
}

// ExpirePending closes the response window: every entrant still pending is
// declined, each decline backfilling from the waitlist. Returns the expired
// entrants and the entrants promoted in their place.
func (e *Event) ExpirePending() (expired, promoted []string, err error) {
	if !e.LotteryProcessed || e.PendingExpired {
		return nil, nil, apperrors.ErrWrongState
	}
	e.PendingExpired = true

	expired = make([]string, len(e.PendingList))
	copy(expired, e.PendingList)
	for _, deviceID := range expired {
		p, declineErr := e.JoinDeclined(deviceID)
		if declineErr != nil {
			return expired, promoted, declineErr
		}
		if p != "" {
			promoted = append(promoted, p)
		}
	}
	return expired, promoted, nil
}

// RemoveEverywhere scrubs a device from every list and the geolocation map.
// Used when the device's profile is deleted. Reports whether anything changed.
func (e *Event) RemoveEverywhere(deviceID string) bool {
	changed := e.OnAnyList(deviceID)
	e.WaitList = remove(e.WaitList, deviceID)
	e.PendingList = remove(e.PendingList, deviceID)
	e.AcceptedList = remove(e.AcceptedList, deviceID)
	e.DeclinedList = remove(e.DeclinedList, deviceID)
	if _, ok := e.GeolocationMap[deviceID]; ok {
		delete(e.GeolocationMap, deviceID)
		changed = true
	}
	return changed
}

// Clone returns a deep copy. Mutations are always applied to a copy and only
// become visible to other consumers once the update round-trips through the
// store and the full-list callback fires.
func (e *Event) Clone() *Event {
	c := *e
	c.WaitList = append([]string{}, e.WaitList...)
	c.PendingList = append([]string{}, e.PendingList...)
	c.AcceptedList = append([]string{}, e.AcceptedList...)
	c.DeclinedList = append([]string{}, e.DeclinedList...)
	c.GeolocationMap = make(map[string]GeoPoint, len(e.GeolocationMap))
	for k, v := range e.GeolocationMap {
		c.GeolocationMap[k] = v
	}
	if e.ReoccurringEnd != nil {
		end := *e.ReoccurringEnd
		c.ReoccurringEnd = &end
	}
	if e.LotteryDrawnAt != nil {
		drawn := *e.LotteryDrawnAt
		c.LotteryDrawnAt = &drawn
	}
	return &c
}
