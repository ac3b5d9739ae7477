package api

import (
	"time"

	"github.com/terraincognita07/integra/internal/channels"
	"github.com/terraincognita07/integra/internal/config"
	"github.com/terraincognita07/integra/internal/db"
	"github.com/terraincognita07/integra/internal/lake"
	"github.com/terraincognita07/integra/internal/services"
	"github.com/terraincognita07/integra/internal/tools"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	collector *services.CollectorService
	quotas    *services.QuotaService
	streaks   *services.StreakService
	penance   *services.PenanceService
	advisor   *services.AdvisorService
	store     *lake.Store
	hub       *channels.Hub
	registry  *tools.Registry
	audit     *db.AuditRepository
	rules     *config.Rules
	location  *time.Location

	secretKey      []byte
	passphraseHash string
}

// HandlerDeps carries the wiring for NewHandler.
type HandlerDeps struct {
	Collector *services.CollectorService
	Quotas    *services.QuotaService
	Streaks   *services.StreakService
	Penance   *services.PenanceService
	Advisor   *services.AdvisorService
	Store     *lake.Store
	Hub       *channels.Hub
	Registry  *tools.Registry
	Audit     *db.AuditRepository
	Rules     *config.Rules
	Location  *time.Location

	SecretKey      string
	PassphraseHash string
}

func NewHandler(deps HandlerDeps) *Handler {
	location := deps.Location
	if location == nil {
		location = time.Local
	}
	return &Handler{
		collector:      deps.Collector,
		quotas:         deps.Quotas,
		streaks:        deps.Streaks,
		penance:        deps.Penance,
		advisor:        deps.Advisor,
		store:          deps.Store,
		hub:            deps.Hub,
		registry:       deps.Registry,
		audit:          deps.Audit,
		rules:          deps.Rules,
		location:       location,
		secretKey:      []byte(deps.SecretKey),
		passphraseHash: deps.PassphraseHash,
	}
}

func (handler *Handler) now() time.Time {
	return time.Now().In(handler.location)
}
