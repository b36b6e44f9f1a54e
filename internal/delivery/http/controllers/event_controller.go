package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "sportsregistration/internal/delivery/http/helpers"
	"sportsregistration/internal/domain"
)

// CreateEventRequest is the request body for POST /admin/events.
type CreateEventRequest struct {
	SportName           string   `json:"sport_name" validate:"required,max=100"`
	EventName           string   `json:"event_name" validate:"required,max=200"`
	Date                string   `json:"date" validate:"required"`
	EntryFee            *float64 `json:"entry_fee" validate:"omitempty,gte=0"`
	Prize               *string  `json:"prize" validate:"omitempty,max=200"`
	AgeGroup            *string  `json:"age_group" validate:"omitempty,max=50"`
	AdditionalNote      *string  `json:"additional_note" validate:"omitempty,max=2000"`
	IsTeamBased         bool     `json:"is_team_based"`
	ParticipantsPerTeam *int     `json:"participants_per_team" validate:"omitempty,gt=0"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Date != "" {
		if _, err := parseDate(c.Date); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// UpdateEventRequest is the request body for PUT /admin/events/{eventID}. All fields optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	SportName           *string  `json:"sport_name" validate:"omitempty,max=100"`
	EventName           *string  `json:"event_name" validate:"omitempty,max=200"`
	Date                *string  `json:"date"`
	EntryFee            *float64 `json:"entry_fee" validate:"omitempty,gte=0"`
	Prize               *string  `json:"prize" validate:"omitempty,max=200"`
	AgeGroup            *string  `json:"age_group" validate:"omitempty,max=50"`
	AdditionalNote      *string  `json:"additional_note" validate:"omitempty,max=2000"`
	IsTeamBased         *bool    `json:"is_team_based"`
	ParticipantsPerTeam *int     `json:"participants_per_team" validate:"omitempty,gt=0"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Date != nil {
		if _, err := parseDate(*u.Date); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if u.SportName == nil && u.EventName == nil && u.Date == nil && u.EntryFee == nil && u.Prize == nil &&
		u.AgeGroup == nil && u.AdditionalNote == nil && u.IsTeamBased == nil && u.ParticipantsPerTeam == nil {
		errs = append(errs, "at least one field must be provided")
	}
	return errs
}

func (u UpdateEventRequest) toDomain() domain.EventUpdate {
	upd := domain.EventUpdate{
		SportName:           u.SportName,
		EventName:           u.EventName,
		EntryFee:            u.EntryFee,
		Prize:               u.Prize,
		AgeGroup:            u.AgeGroup,
		AdditionalNote:      u.AdditionalNote,
		IsTeamBased:         u.IsTeamBased,
		ParticipantsPerTeam: u.ParticipantsPerTeam,
	}
	if u.Date != nil {
		d, _ := parseDate(*u.Date)
		upd.Date = &d
	}
	return upd
}

// ListEventsResponse is the data of GET /events.
type ListEventsResponse struct {
	Events     []*domain.Event  `json:"events"`
	Pagination h.PaginationMeta `json:"pagination"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// ListEvents godoc
// @Summary Browse events
// @Description Lists events ordered by date. Filters combine with AND.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param sport query string false "Sport name (case-insensitive exact match)"
// @Param team_based query bool false "Only team-based (true) or individual (false) events"
// @Param from query string false "Earliest date (YYYY-MM-DD or RFC 3339)"
// @Param to query string false "Latest date (YYYY-MM-DD or RFC 3339)"
// @Param q query string false "Substring of event or sport name"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains events and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Sport: strings.TrimSpace(q.Get("sport")),
		Query: strings.TrimSpace(q.Get("q")),
	}
	var err error
	if filter.TeamBased, err = parseOptionalBool(q.Get("team_based")); err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "team_based: "+err.Error())
		return
	}
	if filter.From, err = parseOptionalDate(q.Get("from")); err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "from: "+err.Error())
		return
	}
	if filter.To, err = parseOptionalDate(q.Get("to")); err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "to: "+err.Error())
		return
	}
	page, err := h.ParsePagination(q)
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
		return
	}

	events, total, err := c.Service.ListEvents(r.Context(), filter, page)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events:     events,
		Pagination: h.NewPaginationMeta(page, total),
	})
}

// GetEvent godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Admin only. Free text fields are stripped of HTML. The event starts with no registrations.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	date, _ := parseDate(req.Date)
	now := time.Now()
	event := domain.NewEvent(req.SportName, req.EventName, date, now, now)
	event.EntryFee = req.EntryFee
	event.Prize = req.Prize
	event.AgeGroup = req.AgeGroup
	event.AdditionalNote = req.AdditionalNote
	event.IsTeamBased = req.IsTeamBased
	event.ParticipantsPerTeam = req.ParticipantsPerTeam
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Admin only. Partial update; omitted fields are unchanged. Team mode and team size cannot change once the event has registrations.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, req.toDomain())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Admin only. Deletes the event and its registrations.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, MessageResponse{Message: "Event deleted successfully"})
}

// ListAllEvents godoc
// @Summary List all events with registrations
// @Description Admin only. Every event, each with its registrations embedded.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events [get]
func (c *EventController) ListAllEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListEventsWithRegistrations(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}
