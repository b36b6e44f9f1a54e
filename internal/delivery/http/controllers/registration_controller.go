package controllers

import (
	"log/slog"
	"net/http"

	h "sportsregistration/internal/delivery/http/helpers"
	"sportsregistration/internal/delivery/http/middleware"
	"sportsregistration/internal/domain"
)

// RegisterRequest is the optional body of POST /events/{eventID}/register.
// Team fields are required for team-based events and ignored otherwise; their
// limits are checked by the service once the event's mode is known.
// The snake_case spellings used elsewhere in the API are accepted as aliases.
type RegisterRequest struct {
	TeamName    *string  `json:"teamName"`
	TeamMembers []string `json:"teamMembers"`

	TeamNameAlias    *string  `json:"team_name,omitempty" swaggerignore:"true"`
	TeamMembersAlias []string `json:"team_members,omitempty" swaggerignore:"true"`
}

// Validate implements Validator.
func (req RegisterRequest) Validate() []string {
	var errs []string
	if req.TeamName != nil && req.TeamNameAlias != nil {
		errs = append(errs, "send either teamName or team_name, not both")
	}
	if req.TeamMembers != nil && req.TeamMembersAlias != nil {
		errs = append(errs, "send either teamMembers or team_members, not both")
	}
	return errs
}

func (req RegisterRequest) toDomain() domain.RegistrationRequest {
	out := domain.RegistrationRequest{TeamName: req.TeamName, TeamMembers: req.TeamMembers}
	if out.TeamName == nil {
		out.TeamName = req.TeamNameAlias
	}
	if out.TeamMembers == nil {
		out.TeamMembers = req.TeamMembersAlias
	}
	return out
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterResponse is the data of a successful registration.
type RegisterResponse struct {
	Message      string               `json:"message"`
	Registration *domain.Registration `json:"registration"`
}

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// Register godoc
// @Summary Register for an event
// @Description Registers the caller for the event. Team-based events need teamName and teamMembers (team_name and team_members are accepted too); when the event fixes a team size the member count must match it. Individual events ignore team fields.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body RegisterRequest false "Team data for team-based events"
// @Success 200 {object} helpers.APIResponse "data contains a message and the registration"
// @Failure 400 {object} helpers.APIResponse "error.code: already_registered, invalid_team_composition or bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/register [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req RegisterRequest
	if r.ContentLength != 0 {
		if !h.DecodeAndValidate(w, r, &req) {
			return
		}
	}
	reg, err := c.Service.Register(r.Context(), eventID, p, req.toDomain())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, RegisterResponse{
		Message:      "Successfully registered for the event",
		Registration: reg,
	})
}

// ListRegisteredEvents godoc
// @Summary List my registered events
// @Description Events the caller is registered for, in the order the registrations were made.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /user/registered-events [get]
func (c *RegistrationController) ListRegisteredEvents(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListRegisteredEvents(r.Context(), p)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// ListEventRegistrations godoc
// @Summary List registrations of an event
// @Description Admin only. Registrations in the order they were made.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the registrations"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/registrations [get]
func (c *RegistrationController) ListEventRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	regs, err := c.Service.ListEventRegistrations(r.Context(), eventID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, regs)
}
