package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/veridianlabs/governport-backend/api/routes"
	"github.com/veridianlabs/governport-backend/internal/audit"
	"github.com/veridianlabs/governport-backend/internal/auth"
	"github.com/veridianlabs/governport-backend/internal/billing"
	"github.com/veridianlabs/governport-backend/internal/chat"
	"github.com/veridianlabs/governport-backend/internal/decisions"
	"github.com/veridianlabs/governport-backend/internal/documents"
	"github.com/veridianlabs/governport-backend/internal/findings"
	"github.com/veridianlabs/governport-backend/internal/incidents"
	"github.com/veridianlabs/governport-backend/internal/memberships"
	"github.com/veridianlabs/governport-backend/internal/monitoring"
	"github.com/veridianlabs/governport-backend/internal/organizations"
	"github.com/veridianlabs/governport-backend/internal/policies"
	"github.com/veridianlabs/governport-backend/internal/risks"
	"github.com/veridianlabs/governport-backend/internal/subscriptions"
	"github.com/veridianlabs/governport-backend/internal/users"
	"github.com/veridianlabs/governport-backend/internal/vendors"
	stripewebhook "github.com/veridianlabs/governport-backend/internal/webhooks/stripe"
	"github.com/veridianlabs/governport-backend/pkg/auth/session"
	"github.com/veridianlabs/governport-backend/pkg/config"
	"github.com/veridianlabs/governport-backend/pkg/db"
	"github.com/veridianlabs/governport-backend/pkg/logger"
	"github.com/veridianlabs/governport-backend/pkg/metrics"
	"github.com/veridianlabs/governport-backend/pkg/migrate"
	"github.com/veridianlabs/governport-backend/pkg/pubsub"
	"github.com/veridianlabs/governport-backend/pkg/redis"
	"github.com/veridianlabs/governport-backend/pkg/storage/gcs"
	"github.com/veridianlabs/governport-backend/pkg/stripe"
)

const webhookIdempotencyTTL = 24 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	// Audit publishing degrades to a no-op when Pub/Sub is not configured so
	// local runs do not need GCP credentials beyond storage.
	var pubsubClient *pubsub.Client
	if client, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg); err != nil {
		logg.Warn(context.Background(), "pubsub unavailable, audit events disabled")
	} else {
		pubsubClient = client
		defer pubsubClient.Close()
	}
	auditor := audit.NewPublisher(pubsubClient, logg)

	gdb := dbClient.DB()

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:        users.NewRepository(gdb),
		MembershipsRepo: memberships.NewRepository(gdb),
		SessionManager:  sessionManager,
		JWTConfig:       cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	orgRepo := organizations.NewRepository(gdb)
	orgService, err := organizations.NewService(orgRepo, memberships.NewRepository(gdb), users.NewRepository(gdb), cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create organization service", err)
		os.Exit(1)
	}

	billingRepo := billing.NewRepository(gdb)
	billingService, err := billing.NewService(billing.ServiceParams{
		Repo:    billingRepo,
		OrgRepo: orgRepo,
		Stripe:  billing.NewStripeClient(stripeClient),
		Config:  cfg.Stripe,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		BillingRepo:       billingRepo,
		OrgRepo:           orgRepo,
		StripeClient:      subscriptions.NewStripeClient(stripeClient),
		TransactionRunner: dbClient,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, webhookIdempotencyTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	chatService, err := chat.NewService(chat.NewUpstreamClient(cfg.Chat, logg), cfg.Chat, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create chat service", err)
		os.Exit(1)
	}

	riskService, err := risks.NewService(risks.NewRepository(gdb), auditor)
	if err != nil {
		logg.Error(context.Background(), "failed to create risk service", err)
		os.Exit(1)
	}
	incidentService, err := incidents.NewService(incidents.NewRepository(gdb), auditor)
	if err != nil {
		logg.Error(context.Background(), "failed to create incident service", err)
		os.Exit(1)
	}
	policyService, err := policies.NewService(policies.NewRepository(gdb), auditor)
	if err != nil {
		logg.Error(context.Background(), "failed to create policy service", err)
		os.Exit(1)
	}
	vendorService, err := vendors.NewService(vendors.NewRepository(gdb), auditor)
	if err != nil {
		logg.Error(context.Background(), "failed to create vendor service", err)
		os.Exit(1)
	}
	decisionService, err := decisions.NewService(decisions.NewRepository(gdb), auditor)
	if err != nil {
		logg.Error(context.Background(), "failed to create decision service", err)
		os.Exit(1)
	}
	findingService, err := findings.NewService(findings.NewRepository(gdb), auditor)
	if err != nil {
		logg.Error(context.Background(), "failed to create finding service", err)
		os.Exit(1)
	}
	monitoringService, err := monitoring.NewService(monitoring.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create monitoring service", err)
		os.Exit(1)
	}
	documentService, err := documents.NewService(documents.NewRepository(gdb), gcsClient, cfg.GCS, auditor)
	if err != nil {
		logg.Error(context.Background(), "failed to create document service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, gcsClient, routes.Services{
			Sessions:      sessionManager,
			Auth:          authService,
			Register:      registerService,
			Organizations: orgService,
			Billing:       billingService,
			Chat:          chatService,
			ChatLimiter:   chat.NewRateLimiter(cfg.ChatRateLimit),
			Risks:         riskService,
			Incidents:     incidentService,
			Policies:      policyService,
			Vendors:       vendorService,
			Decisions:     decisionService,
			Findings:      findingService,
			Monitoring:    monitoringService,
			Documents:     documentService,
			StripeClient:  stripeClient,
			WebhookSvc:    webhookService,
			WebhookGuard:  webhookGuard,
			Metrics:       metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
