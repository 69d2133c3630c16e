package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	stripewebhook "github.com/veridianlabs/governport-backend/internal/webhooks/stripe"
	pkgstripe "github.com/veridianlabs/governport-backend/pkg/stripe"
)

func newWebhookHandler(t *testing.T, service *fakeStripeWebhookService) http.HandlerFunc {
	t.Helper()
	guard, err := stripewebhook.NewIdempotencyGuard(newInMemoryStore(), time.Minute, "stripe-webhook")
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}
	return StripeWebhook(service, &fakeSigningClient{secret: "whsec_test"}, guard, nil)
}

func postEvent(handler http.HandlerFunc, payload []byte, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	if header != "" {
		req.Header.Set("Stripe-Signature", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestStripeWebhookSuccessAndIdempotent(t *testing.T) {
	payload, header := buildSignedEvent(t)
	service := &fakeStripeWebhookService{}
	handler := newWebhookHandler(t, service)

	rec := postEvent(handler, payload, header)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"received":true`)) {
		t.Fatalf("expected received ack, got %s", rec.Body.String())
	}
	if service.calls != 1 {
		t.Fatalf("expected service called once, got %d", service.calls)
	}

	rec2 := postEvent(handler, payload, header)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200 on duplicate, got %d (%s)", rec2.Code, rec2.Body.String())
	}
	if service.calls != 1 {
		t.Fatalf("expected duplicate not processed, call count %d", service.calls)
	}
}

func TestStripeWebhookMissingSignature(t *testing.T) {
	payload, _ := buildSignedEvent(t)
	service := &fakeStripeWebhookService{}
	handler := newWebhookHandler(t, service)

	rec := postEvent(handler, payload, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing signature, got %d", rec.Code)
	}
	if service.calls != 0 {
		t.Fatalf("service should not be invoked without a signature")
	}
}

func TestStripeWebhookInvalidSignature(t *testing.T) {
	payload, _ := buildSignedEvent(t)
	service := &fakeStripeWebhookService{}
	handler := newWebhookHandler(t, service)

	header := pkgstripe.SignPayload(payload, "whsec_wrong", time.Now())
	rec := postEvent(handler, payload, header)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid signature, got %d", rec.Code)
	}
	if service.calls != 0 {
		t.Fatalf("service should not be invoked on invalid signature")
	}
}

func TestStripeWebhookExpiredSignature(t *testing.T) {
	payload, _ := buildSignedEvent(t)
	service := &fakeStripeWebhookService{}
	handler := newWebhookHandler(t, service)

	header := pkgstripe.SignPayload(payload, "whsec_test", time.Now().Add(-10*time.Minute))
	rec := postEvent(handler, payload, header)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired signature, got %d", rec.Code)
	}
}

func TestStripeWebhookUnparseableSignedBody(t *testing.T) {
	payload := []byte("not-json")
	service := &fakeStripeWebhookService{}
	handler := newWebhookHandler(t, service)

	header := pkgstripe.SignPayload(payload, "whsec_test", time.Now())
	rec := postEvent(handler, payload, header)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for verified but unparseable body, got %d (%s)", rec.Code, rec.Body.String())
	}
	if service.calls != 0 {
		t.Fatalf("service should not be invoked when the body does not parse")
	}
}

func TestStripeWebhookHandlerErrorReleasesGuard(t *testing.T) {
	payload, header := buildSignedEvent(t)
	service := &fakeStripeWebhookService{err: fmt.Errorf("boom")}
	handler := newWebhookHandler(t, service)

	rec := postEvent(handler, payload, header)
	if rec.Code == http.StatusOK {
		t.Fatalf("expected error status when handler fails, got 200")
	}

	// the retry should reach the service again
	service.err = nil
	rec2 := postEvent(handler, payload, header)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected retry to succeed, got %d", rec2.Code)
	}
	if service.calls != 2 {
		t.Fatalf("expected retry to reach service, call count %d", service.calls)
	}
}

func buildSignedEvent(t *testing.T) ([]byte, string) {
	t.Helper()
	subscription := &stripe.Subscription{
		ID:     "sub_" + uuid.NewString(),
		Status: stripe.SubscriptionStatusActive,
		Metadata: map[string]string{
			"organization_id": uuid.NewString(),
			"plan":            "professional",
		},
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{
					CurrentPeriodStart: 1700000000,
					CurrentPeriodEnd:   1702592000,
					Price:              &stripe.Price{ID: "price_1"},
				},
			},
		},
	}
	rawSub, err := json.Marshal(subscription)
	if err != nil {
		t.Fatalf("marshal subscription: %v", err)
	}
	event := &stripe.Event{
		ID:         "evt_" + uuid.NewString(),
		Type:       stripe.EventTypeCustomerSubscriptionCreated,
		Object:     "event",
		APIVersion: stripe.APIVersion,
		Data:       &stripe.EventData{Raw: rawSub},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return payload, pkgstripe.SignPayload(payload, "whsec_test", time.Now())
}

type fakeStripeWebhookService struct {
	calls int
	err   error
}

func (f *fakeStripeWebhookService) HandleEvent(ctx context.Context, event *stripe.Event) error {
	f.calls++
	return f.err
}

type fakeSigningClient struct {
	secret string
}

func (c *fakeSigningClient) SigningSecret() string {
	return c.secret
}

type inMemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newInMemoryStore() *inMemoryStore {
	return &inMemoryStore{data: make(map[string]string)}
}

func (s *inMemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *inMemoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = fmt.Sprintf("%v", value)
	return true, nil
}

func (s *inMemoryStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("gp:idempotency:%s:%s", scope, id)
}

func (s *inMemoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}
