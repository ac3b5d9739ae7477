package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/integra/internal/services"
)

type intakeInput struct {
	Substance string `json:"substance"`
	Amount    string `json:"amount"`
	Unit      string `json:"unit"`
	Category  string `json:"category"`
	Notes     string `json:"notes"`
	Timestamp string `json:"timestamp"`
}

type supplementInput struct {
	Name      string `json:"name"`
	Dose      string `json:"dose"`
	Unit      string `json:"unit"`
	Frequency string `json:"frequency"`
	TimeOfDay string `json:"time_of_day"`
	Category  string `json:"category"`
	Notes     string `json:"notes"`
}

type mealInput struct {
	MealType  string `json:"meal_type"`
	Items     string `json:"items"`
	Notes     string `json:"notes"`
	Timestamp string `json:"timestamp"`
}

type diaryInput struct {
	Answers map[string]string `json:"answers"`
}

// LogIntake stores one intake event, running controlled-use evaluation when
// the category calls for it.
func (handler *Handler) LogIntake(c *fiber.Ctx) error {
	input := intakeInput{}
	if err := c.BodyParser(&input); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := handler.collector.LogIntake(input.Substance, input.Amount, input.Unit, input.Category, input.Notes, input.Timestamp)
	if err != nil {
		if errors.Is(err, services.ErrMissingSubstance) {
			return jsonError(c, fiber.StatusBadRequest, err.Error())
		}
		return jsonError(c, fiber.StatusInternalServerError, "store intake failed")
	}

	return c.JSON(fiber.Map{
		"status":           "logged",
		"violations":       result.Violations,
		"coaching_needed":  result.CoachingNeeded,
		"coaching_message": result.CoachingMessage,
	})
}

func (handler *Handler) CollectSupplement(c *fiber.Ctx) error {
	input := supplementInput{}
	if err := c.BodyParser(&input); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := handler.collector.CollectSupplement(input.Name, input.Dose, input.Unit, input.Frequency, input.TimeOfDay, input.Category, input.Notes)
	if err != nil {
		if errors.Is(err, services.ErrMissingName) {
			return jsonError(c, fiber.StatusBadRequest, err.Error())
		}
		return jsonError(c, fiber.StatusInternalServerError, "store supplement failed")
	}
	return c.JSON(fiber.Map{"status": "stored", "record": record})
}

func (handler *Handler) LogMeal(c *fiber.Ctx) error {
	input := mealInput{}
	if err := c.BodyParser(&input); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := handler.collector.LogMeal(input.MealType, input.Items, input.Notes, input.Timestamp)
	if err != nil {
		if errors.Is(err, services.ErrMissingMeal) {
			return jsonError(c, fiber.StatusBadRequest, err.Error())
		}
		return jsonError(c, fiber.StatusInternalServerError, "store meal failed")
	}
	return c.JSON(fiber.Map{"status": "logged", "record": record})
}

func (handler *Handler) CollectDiary(c *fiber.Ctx) error {
	input := diaryInput{}
	if err := c.BodyParser(&input); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := handler.collector.CollectDiary(input.Answers)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "store diary failed")
	}
	return c.JSON(fiber.Map{"status": "stored", "record": record})
}

// QueryRecords runs a filtered lake query. Every query-string pair becomes
// an exact-match filter.
func (handler *Handler) QueryRecords(c *fiber.Ctx) error {
	category := c.Params("category")

	filters := make(map[string]string)
	for key, values := range c.Queries() {
		filters[key] = values
	}
	if len(filters) == 0 {
		filters = nil
	}

	records, err := handler.collector.Query(category, filters)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "query failed")
	}
	return c.JSON(records)
}
