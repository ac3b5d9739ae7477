package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/integra/internal/tools"
)

// DispatchTool executes one typed tool call. Gated tools go through the
// HIL confirmation channel before their handler runs.
func (handler *Handler) DispatchTool(c *fiber.Ctx) error {
	call := tools.Call{}
	if err := c.BodyParser(&call); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	confirm := func(ctx context.Context, tool string, input json.RawMessage) (string, error) {
		return handler.hub.AskConfirmation(ctx, "Approve tool call "+tool+"?")
	}

	result, err := handler.registry.Dispatch(c.Context(), call, confirm)
	if err != nil {
		switch {
		case errors.Is(err, tools.ErrUnknownTool):
			return jsonError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, tools.ErrDenied):
			return jsonError(c, fiber.StatusForbidden, err.Error())
		default:
			return jsonError(c, fiber.StatusInternalServerError, "tool dispatch failed")
		}
	}

	return c.Type("json").SendString(result)
}

func (handler *Handler) ListAuditEntries(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	entries, err := handler.audit.ListRecent(limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "audit query failed")
	}
	return c.JSON(entries)
}
