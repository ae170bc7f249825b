package handlers

import (
	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/services/event"
	"eventflex/internal/utils/pagination"
	"eventflex/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type EventHandler struct {
	eventService event.Service
}

func NewEventHandler(eventService event.Service) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) Create(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	var req event.EventRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	ev, err := h.eventService.Create(c.UserContext(), claims.UserID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Event created", ev)
}

// List returns the host's own events, optionally filtered by ?status=.
func (h *EventHandler) List(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	p := pagination.ParseFromRequest(c)
	f := repositories.EventFilter{HostID: claims.UserID, Status: c.Query("status")}

	events, total, err := h.eventService.List(c.UserContext(), f, p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, events))
}

func (h *EventHandler) Get(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}

	ev, err := h.eventService.Get(c.UserContext(), claims.UserID, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Event", ev)
}

func (h *EventHandler) Update(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req event.EventRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	ev, err := h.eventService.Update(c.UserContext(), claims.UserID, id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Event updated", ev)
}

func (h *EventHandler) Delete(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}

	if err := h.eventService.Delete(c.UserContext(), claims.UserID, id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Event deleted", nil)
}

// Transition handles /events/:id/:action for publish, start, complete and cancel.
func (h *EventHandler) Transition(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}

	ev, err := h.eventService.Transition(c.UserContext(), claims.UserID, id, c.Params("action"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Event "+ev.Status, ev)
}

func (h *EventHandler) AssignOrganizer(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var input struct {
		OrganizerID uint `json:"organizer_id"`
	}
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	if input.OrganizerID == 0 {
		return response.BadRequest(c, "organizer_id is required")
	}

	ev, err := h.eventService.AssignOrganizer(c.UserContext(), claims.UserID, id, input.OrganizerID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Organizer assigned", ev)
}

// ListPublished is the event board every signed-in user sees, filterable by ?city=.
func (h *EventHandler) ListPublished(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	f := repositories.EventFilter{Status: models.EventStatusPublished, City: c.Query("city")}

	events, total, err := h.eventService.List(c.UserContext(), f, p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, events))
}

func (h *EventHandler) GetPublished(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ev, err := h.eventService.GetPublished(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Event", ev)
}
