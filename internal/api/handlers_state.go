package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/integra/internal/models"
	"github.com/terraincognita07/integra/internal/services"
)

// GetQuotaState returns the derived quota state for one substance, or 404
// when the substance is not quota-tracked.
func (handler *Handler) GetQuotaState(c *fiber.Ctx) error {
	substance := c.Params("substance")
	referenceDate := handler.referenceDate(c)

	state, err := handler.quotas.State(substance, referenceDate)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "quota state failed")
	}
	if state == nil {
		return jsonError(c, fiber.StatusNotFound, "substance is not quota-tracked")
	}
	return c.JSON(state)
}

func (handler *Handler) GetStreakState(c *fiber.Ctx) error {
	habit := c.Params("habit")
	referenceDate := handler.referenceDate(c)

	state, err := handler.streaks.State(habit, referenceDate)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "streak state failed")
	}
	return c.JSON(state)
}

func (handler *Handler) GetAllStreaks(c *fiber.Ctx) error {
	referenceDate := handler.referenceDate(c)

	states := make([]services.StreakState, 0, len(handler.rules.Habits))
	for _, habit := range handler.rules.Habits {
		state, err := handler.streaks.State(habit, referenceDate)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "streak state failed")
		}
		states = append(states, state)
	}
	return c.JSON(states)
}

func (handler *Handler) GetAdvisorState(c *fiber.Ctx) error {
	state, err := handler.advisor.ComputeState(handler.referenceDate(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "advisor state failed")
	}
	return c.JSON(fiber.Map{"state": state})
}

type advisorRunInput struct {
	Answers map[string]string `json:"answers"`
}

// RunAdvisor executes a full advisor cycle and reports the computed state.
// The assembled coaching message goes out through the notification channel.
func (handler *Handler) RunAdvisor(c *fiber.Ctx) error {
	input := advisorRunInput{}
	if err := c.BodyParser(&input); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	state, err := handler.advisor.Run(c.Context(), input.Answers, handler.referenceDate(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "advisor run failed")
	}
	return c.JSON(fiber.Map{"state": state})
}

// referenceDate honors an optional ?date=2006-01-02 override, defaulting to
// now in the configured timezone.
func (handler *Handler) referenceDate(c *fiber.Ctx) time.Time {
	raw := c.Query("date")
	if raw != "" {
		if parsed, ok := models.ParseTimestamp(raw); ok {
			return parsed
		}
	}
	return handler.now()
}
