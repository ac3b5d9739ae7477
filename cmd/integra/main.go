package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/terraincognita07/integra/internal/api"
	"github.com/terraincognita07/integra/internal/channels"
	"github.com/terraincognita07/integra/internal/config"
	"github.com/terraincognita07/integra/internal/db"
	"github.com/terraincognita07/integra/internal/lake"
	"github.com/terraincognita07/integra/internal/security"
	"github.com/terraincognita07/integra/internal/services"
	"github.com/terraincognita07/integra/internal/tools"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config init failed: %v", err)
	}
	time.Local = cfg.Location

	secretKey, err := resolveSecretKey(cfg.SecretKey)
	if err != nil {
		log.Fatalf("secret key init failed: %v", err)
	}

	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		log.Fatalf("rules init failed: %v", err)
	}

	recipient, identity, err := resolveLakeKeys(cfg.LakeRecipient, cfg.LakeIdentity)
	if err != nil {
		log.Fatalf("lake key init failed: %v", err)
	}

	database, err := db.OpenSQLite(cfg.AuditDBPath)
	if err != nil {
		log.Fatalf("audit database init failed: %v", err)
	}
	auditRepo := db.NewAuditRepository(database)

	store := lake.NewStore(cfg.DataLakePath, recipient, identity, auditRepo)

	hub := channels.NewHub(0)
	router := channels.NewRouter(hub)

	collector := services.NewCollectorService(store, rules, cfg.Location)
	quotas := services.NewQuotaService(store, rules)
	streaks := services.NewStreakService(store)
	penance := services.NewPenanceService(store, router)
	advisor := services.NewAdvisorService(quotas, streaks, rules, router)

	registry, err := tools.DefaultRegistry(tools.Deps{
		Collector: collector,
		Penance:   penance,
		Advisor:   advisor,
	})
	if err != nil {
		log.Fatalf("tool registry init failed: %v", err)
	}

	handler := api.NewHandler(api.HandlerDeps{
		Collector:      collector,
		Quotas:         quotas,
		Streaks:        streaks,
		Penance:        penance,
		Advisor:        advisor,
		Store:          store,
		Hub:            hub,
		Registry:       registry,
		Audit:          auditRepo,
		Rules:          rules,
		Location:       cfg.Location,
		SecretKey:      secretKey,
		PassphraseHash: cfg.PassphraseHash,
	})

	app := fiber.New(fiber.Config{
		AppName:               "Integra",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Integra listening on http://0.0.0.0:%s (lake: %s, tz: %s)", cfg.Port, cfg.DataLakePath, cfg.Location.String())
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// resolveSecretKey rejects the shipped placeholder and generates an
// ephemeral key when none is configured. Ephemeral keys invalidate issued
// tokens on restart.
func resolveSecretKey(configured string) (string, error) {
	if configured == "" || configured == "change_me_in_production" {
		generated, err := security.RandomString(48, security.Alphanumeric)
		if err != nil {
			return "", fmt.Errorf("generate secret key: %w", err)
		}
		log.Printf("SECRET_KEY not configured, using an ephemeral key")
		return generated, nil
	}
	if len(configured) < 32 {
		return "", fmt.Errorf("SECRET_KEY must be at least 32 characters, got %d", len(configured))
	}
	return configured, nil
}

// resolveLakeKeys generates a fresh pair when none is configured. The pair
// is printed once so the operator can persist it; records written under a
// lost identity cannot be decrypted again.
func resolveLakeKeys(recipient string, identity string) (string, string, error) {
	if recipient != "" && identity != "" {
		return recipient, identity, nil
	}
	if recipient != "" || identity != "" {
		return "", "", fmt.Errorf("LAKE_RECIPIENT and LAKE_IDENTITY must be set together")
	}

	generatedRecipient, generatedIdentity, err := lake.GenerateKeyPair()
	if err != nil {
		return "", "", err
	}
	fmt.Fprintf(os.Stderr, "generated lake keypair:\n  LAKE_RECIPIENT=%s\n  LAKE_IDENTITY=%s\n", generatedRecipient, generatedIdentity)
	log.Printf("lake keys not configured, generated a fresh pair")
	return generatedRecipient, generatedIdentity, nil
}
