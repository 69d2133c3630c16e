package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veridianlabs/governport-backend/api/controllers"
	webhookcontrollers "github.com/veridianlabs/governport-backend/api/controllers/webhooks"
	"github.com/veridianlabs/governport-backend/api/middleware"
	"github.com/veridianlabs/governport-backend/internal/auth"
	"github.com/veridianlabs/governport-backend/internal/billing"
	"github.com/veridianlabs/governport-backend/internal/chat"
	"github.com/veridianlabs/governport-backend/internal/decisions"
	"github.com/veridianlabs/governport-backend/internal/documents"
	"github.com/veridianlabs/governport-backend/internal/findings"
	"github.com/veridianlabs/governport-backend/internal/incidents"
	"github.com/veridianlabs/governport-backend/internal/monitoring"
	"github.com/veridianlabs/governport-backend/internal/organizations"
	"github.com/veridianlabs/governport-backend/internal/policies"
	"github.com/veridianlabs/governport-backend/internal/risks"
	"github.com/veridianlabs/governport-backend/internal/vendors"
	stripewebhook "github.com/veridianlabs/governport-backend/internal/webhooks/stripe"
	"github.com/veridianlabs/governport-backend/pkg/auth/session"
	"github.com/veridianlabs/governport-backend/pkg/config"
	"github.com/veridianlabs/governport-backend/pkg/db"
	"github.com/veridianlabs/governport-backend/pkg/logger"
	"github.com/veridianlabs/governport-backend/pkg/metrics"
	"github.com/veridianlabs/governport-backend/pkg/redis"
	"github.com/veridianlabs/governport-backend/pkg/storage/gcs"
	"github.com/veridianlabs/governport-backend/pkg/stripe"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services bundles everything the router mounts.
type Services struct {
	Sessions      sessionManager
	Auth          auth.Service
	Register      auth.RegisterService
	Organizations organizations.Service
	Billing       *billing.Service
	Chat          *chat.Service
	ChatLimiter   *chat.RateLimiter
	Risks         *risks.Service
	Incidents     *incidents.Service
	Policies      *policies.Service
	Vendors       *vendors.Service
	Decisions     *decisions.Service
	Findings      *findings.Service
	Monitoring    *monitoring.Service
	Documents     *documents.Service

	StripeClient *stripe.Client
	WebhookSvc   *stripewebhook.Service
	WebhookGuard *stripewebhook.IdempotencyGuard

	Metrics *metrics.HTTPMetrics
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		svcs.Metrics.Middleware,
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, gcsClient))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		// The marketing widget hits this without a session; the limiter is
		// the only thing between it and the upstream model.
		r.Post("/chat", controllers.ChatRelay(svcs.Chat, svcs.ChatLimiter, logg))
		// The pricing page lists plans before anyone signs up.
		r.Get("/billing/plans", controllers.BillingListPlans(svcs.Billing, logg))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(svcs.WebhookSvc, svcs.StripeClient, svcs.WebhookGuard, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Register, svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Sessions, cfg.JWT, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AdminAuthLogin(svcs.Auth, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, svcs.Sessions, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Post("/v1/chat", controllers.ChatRelay(svcs.Chat, nil, logg))

		r.Route("/v1/organization", func(r chi.Router) {
			r.Get("/", controllers.OrganizationGet(svcs.Organizations, logg))
			r.Put("/", controllers.OrganizationUpdate(svcs.Organizations, logg))
			r.Get("/users", controllers.OrganizationListUsers(svcs.Organizations, logg))
			r.Post("/users/invite", controllers.OrganizationInviteUser(svcs.Organizations, logg))
			r.Delete("/users/{userID}", controllers.OrganizationRemoveUser(svcs.Organizations, logg))
		})

		r.Route("/v1/billing", func(r chi.Router) {
			r.Get("/subscription", controllers.BillingGetSubscription(svcs.Billing, logg))
			r.Post("/checkout", controllers.BillingCreateCheckout(svcs.Billing, logg))
			r.Post("/portal", controllers.BillingCreatePortal(svcs.Billing, logg))
		})

		r.Route("/v1/risks", func(r chi.Router) {
			r.Post("/", controllers.RiskCreate(svcs.Risks, logg))
			r.Get("/", controllers.RiskList(svcs.Risks, logg))
			r.Get("/{riskID}", controllers.RiskGet(svcs.Risks, logg))
			r.Patch("/{riskID}", controllers.RiskUpdate(svcs.Risks, logg))
			r.Delete("/{riskID}", controllers.RiskDelete(svcs.Risks, logg))
		})

		r.Route("/v1/incidents", func(r chi.Router) {
			r.Post("/", controllers.IncidentReport(svcs.Incidents, logg))
			r.Get("/", controllers.IncidentList(svcs.Incidents, logg))
			r.Get("/{incidentID}", controllers.IncidentGet(svcs.Incidents, logg))
			r.Patch("/{incidentID}", controllers.IncidentUpdate(svcs.Incidents, logg))
		})

		r.Route("/v1/policies", func(r chi.Router) {
			r.Post("/", controllers.PolicyCreate(svcs.Policies, logg))
			r.Get("/", controllers.PolicyList(svcs.Policies, logg))
			r.Get("/{policyID}", controllers.PolicyGet(svcs.Policies, logg))
			r.Patch("/{policyID}", controllers.PolicyUpdate(svcs.Policies, logg))
			r.Post("/{policyID}/transition", controllers.PolicyTransition(svcs.Policies, logg))
		})

		r.Route("/v1/vendors", func(r chi.Router) {
			r.Post("/", controllers.VendorCreate(svcs.Vendors, logg))
			r.Get("/", controllers.VendorList(svcs.Vendors, logg))
			r.Get("/{vendorID}", controllers.VendorGet(svcs.Vendors, logg))
			r.Patch("/{vendorID}", controllers.VendorUpdate(svcs.Vendors, logg))
			r.Delete("/{vendorID}", controllers.VendorDelete(svcs.Vendors, logg))
		})

		r.Route("/v1/decisions", func(r chi.Router) {
			r.Post("/", controllers.DecisionLog(svcs.Decisions, logg))
			r.Get("/", controllers.DecisionList(svcs.Decisions, logg))
			r.Get("/{decisionID}", controllers.DecisionGet(svcs.Decisions, logg))
			r.Delete("/{decisionID}", controllers.DecisionDelete(svcs.Decisions, logg))
		})

		r.Route("/v1/findings", func(r chi.Router) {
			r.Post("/", controllers.FindingRecord(svcs.Findings, logg))
			r.Get("/", controllers.FindingList(svcs.Findings, logg))
			r.Get("/{findingID}", controllers.FindingGet(svcs.Findings, logg))
			r.Patch("/{findingID}", controllers.FindingUpdate(svcs.Findings, logg))
		})

		r.Route("/v1/metrics", func(r chi.Router) {
			r.Post("/", controllers.MetricRecord(svcs.Monitoring, logg))
			r.Get("/", controllers.MetricList(svcs.Monitoring, logg))
		})

		r.Route("/v1/documents", func(r chi.Router) {
			r.Post("/", controllers.DocumentRequestUpload(svcs.Documents, logg))
			r.Get("/", controllers.DocumentList(svcs.Documents, logg))
			r.Get("/{documentID}", controllers.DocumentGet(svcs.Documents, logg))
			r.Post("/{documentID}/confirm", controllers.DocumentConfirmUpload(svcs.Documents, logg))
			r.Get("/{documentID}/download", controllers.DocumentDownload(svcs.Documents, logg))
			r.Delete("/{documentID}", controllers.DocumentDelete(svcs.Documents, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, svcs.Sessions, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Get("/ping", controllers.AdminPing())
	})

	return r
}
