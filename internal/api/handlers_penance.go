package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/integra/internal/channels"
	"github.com/terraincognita07/integra/internal/services"
)

type penanceInput struct {
	Substance            string            `json:"substance"`
	UnitsOver            float64           `json:"units_over"`
	RelapseCountThisWeek int               `json:"relapse_count_this_week"`
	Answers              map[string]string `json:"answers"`
}

type haltInput struct {
	Substance string            `json:"substance"`
	Answers   map[string]string `json:"answers"`
}

type resolveInput struct {
	Verdict string `json:"verdict"`
}

// TriggerPenance runs the tiered violation diary. Escalated severity
// blocks on HIL approval, so the caller may need to resolve a pending
// confirmation from another session for the request to complete.
func (handler *Handler) TriggerPenance(c *fiber.Ctx) error {
	input := penanceInput{}
	if err := c.BodyParser(&input); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if input.Substance == "" {
		return jsonError(c, fiber.StatusBadRequest, "substance is required")
	}

	record, err := handler.penance.Trigger(
		c.Context(),
		input.Substance,
		input.UnitsOver,
		input.RelapseCountThisWeek,
		&services.AnswersUI{Answers: input.Answers},
	)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "penance trigger failed")
	}
	return c.JSON(record)
}

func (handler *Handler) RunHaltCheck(c *fiber.Ctx) error {
	input := haltInput{}
	if err := c.BodyParser(&input); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if input.Substance == "" {
		return jsonError(c, fiber.StatusBadRequest, "substance is required")
	}

	record, err := services.RunHaltCheck(c.Context(), input.Substance, &services.AnswersUI{Answers: input.Answers}, handler.store)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "HALT check failed")
	}
	return c.JSON(record)
}

func (handler *Handler) ListConfirmations(c *fiber.Ctx) error {
	return c.JSON(handler.hub.Pending())
}

// ResolveConfirmation delivers a human verdict for a pending HIL request.
func (handler *Handler) ResolveConfirmation(c *fiber.Ctx) error {
	input := resolveInput{}
	if err := c.BodyParser(&input); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if input.Verdict == "" {
		input.Verdict = channels.VerdictDenied
	}

	if err := handler.hub.Resolve(c.Params("id"), input.Verdict); err != nil {
		if errors.Is(err, channels.ErrUnknownConfirmation) {
			return jsonError(c, fiber.StatusNotFound, "unknown confirmation id")
		}
		return jsonError(c, fiber.StatusInternalServerError, "resolve failed")
	}
	return c.JSON(fiber.Map{"status": "resolved"})
}

func (handler *Handler) DrainNotifications(c *fiber.Ctx) error {
	return c.JSON(handler.hub.DrainNotifications())
}
