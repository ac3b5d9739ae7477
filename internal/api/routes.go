package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")
	api.Post("/auth/login", handler.Login)

	protected := api.Group("", handler.AuthRequired)

	protected.Post("/intake", handler.LogIntake)
	protected.Post("/supplements", handler.CollectSupplement)
	protected.Post("/meals", handler.LogMeal)
	protected.Post("/diary", handler.CollectDiary)
	protected.Get("/records/:category", handler.QueryRecords)

	protected.Get("/quota/:substance", handler.GetQuotaState)
	protected.Get("/streaks", handler.GetAllStreaks)
	protected.Get("/streaks/:habit", handler.GetStreakState)

	protected.Get("/advisor/state", handler.GetAdvisorState)
	protected.Post("/advisor/run", handler.RunAdvisor)

	protected.Post("/penance", handler.TriggerPenance)
	protected.Post("/halt", handler.RunHaltCheck)

	protected.Get("/confirmations", handler.ListConfirmations)
	protected.Post("/confirmations/:id", handler.ResolveConfirmation)
	protected.Get("/notifications", handler.DrainNotifications)

	protected.Post("/tools/dispatch", handler.DispatchTool)
	protected.Get("/audit", handler.ListAuditEntries)
}
