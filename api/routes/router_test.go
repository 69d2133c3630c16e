package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/veridianlabs/governport-backend/internal/auth"
	"github.com/veridianlabs/governport-backend/internal/billing"
	"github.com/veridianlabs/governport-backend/internal/chat"
	pkgauth "github.com/veridianlabs/governport-backend/pkg/auth"
	"github.com/veridianlabs/governport-backend/pkg/auth/session"
	"github.com/veridianlabs/governport-backend/pkg/config"
	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	"github.com/veridianlabs/governport-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionManager struct{}

func (stubSessionManager) HasSession(context.Context, string) (bool, error) { return true, nil }

func (stubSessionManager) Rotate(context.Context, string, string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(context.Context, string) error { return nil }

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

func (stubAuthService) AdminLogin(context.Context, auth.LoginRequest) (*auth.AdminLoginResponse, error) {
	return &auth.AdminLoginResponse{}, nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(context.Context, auth.RegisterRequest) error { return nil }

// stubBillingRepo answers the plan list; the embedded interface panics if
// anything else is called.
type stubBillingRepo struct {
	billing.Repository
}

func (stubBillingRepo) ListBillingPlans(context.Context, billing.ListBillingPlansQuery) ([]models.BillingPlan, error) {
	return []models.BillingPlan{{ID: "observer-monthly", Plan: enums.PlanObserver, Period: enums.BillingPeriodMonthly}}, nil
}

type stubOrgReader struct{}

func (stubOrgReader) FindByID(context.Context, uuid.UUID) (*models.Organization, error) {
	return nil, nil
}

type stubStripeBilling struct{}

func (stubStripeBilling) CreateCheckoutSession(context.Context, *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return nil, nil
}

func (stubStripeBilling) CreatePortalSession(context.Context, *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	return nil, nil
}

type stubUpstream struct{}

func (stubUpstream) Stream(context.Context, []chat.Message) (io.ReadCloser, error) {
	body := "data: {\"choices\":[{\"delta\":{\"content\":\"hello\"}}]}\n\ndata: [DONE]\n\n"
	return io.NopCloser(strings.NewReader(body)), nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
	}
}

func newTestRouter(t *testing.T, limiter *chat.RateLimiter) http.Handler {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test"})
	chatService, err := chat.NewService(stubUpstream{}, config.ChatConfig{}, logg)
	if err != nil {
		t.Fatalf("chat service: %v", err)
	}
	billingService, err := billing.NewService(billing.ServiceParams{
		Repo:    stubBillingRepo{},
		OrgRepo: stubOrgReader{},
		Stripe:  stubStripeBilling{},
	})
	if err != nil {
		t.Fatalf("billing service: %v", err)
	}

	return NewRouter(testConfig(), logg, stubPinger{}, nil, stubPinger{}, Services{
		Sessions:    stubSessionManager{},
		Auth:        stubAuthService{},
		Register:    stubRegisterService{},
		Billing:     billingService,
		Chat:        chatService,
		ChatLimiter: limiter,
	})
}

func mintToken(t *testing.T, role enums.MemberRole) string {
	t.Helper()
	orgID := uuid.New()
	payload := pkgauth.AccessTokenPayload{
		UserID:      uuid.New(),
		ActiveOrgID: &orgID,
		Role:        role,
		JTI:         session.NewAccessID(),
	}
	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterHealthLive(t *testing.T) {
	router := newTestRouter(t, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterPublicPing(t *testing.T) {
	router := newTestRouter(t, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/public/ping", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterRejectsUnauthenticated(t *testing.T) {
	router := newTestRouter(t, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRouterAllowsAuthenticated(t *testing.T) {
	router := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.MemberRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterAdminRequiresRole(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.MemberRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.MemberRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestRouterBillingPlansArePublic(t *testing.T) {
	router := newTestRouter(t, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/public/billing/plans", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 without a session, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"plans"`) {
		t.Fatalf("expected plan list, got %s", resp.Body.String())
	}
}

func TestRouterPublicChatStreamsAndThrottles(t *testing.T) {
	limiter := chat.NewRateLimiter(config.ChatRateLimitConfig{
		Window: time.Minute,
		Limit:  1,
	})
	router := newTestRouter(t, limiter)

	body := `{"messages":[{"role":"user","content":"hi"}]}`

	req := httptest.NewRequest(http.MethodPost, "/api/public/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event stream got %q", ct)
	}
	if !strings.Contains(resp.Body.String(), "data:") {
		t.Fatalf("expected SSE frames, got %q", resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/public/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}
