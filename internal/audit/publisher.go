package audit

import (
	"context"
	"encoding/json"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/pkg/logger"
	pkgpubsub "github.com/veridianlabs/governport-backend/pkg/pubsub"
)

const publishTimeout = 10 * time.Second

// Event is one activity record emitted by the governance services.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	OrgID      uuid.UUID         `json:"org_id"`
	ActorID    *uuid.UUID        `json:"actor_id,omitempty"`
	Action     string            `json:"action"`
	Resource   string            `json:"resource"`
	ResourceID string            `json:"resource_id,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Publisher records audit events. Recording is fire-and-forget from the
// caller's point of view; failures are logged, never surfaced to the request.
type Publisher interface {
	Record(ctx context.Context, event Event)
}

type topicPublisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) *gcppubsub.PublishResult
}

type pubsubPublisher struct {
	topic topicPublisher
	logg  *logger.Logger
}

// NewPublisher wraps the configured audit topic. A nil client yields a no-op
// publisher so local development works without Pub/Sub.
func NewPublisher(client *pkgpubsub.Client, logg *logger.Logger) Publisher {
	if client == nil {
		return NopPublisher{}
	}
	topic := client.AuditPublisher()
	if topic == nil {
		return NopPublisher{}
	}
	return &pubsubPublisher{topic: topic, logg: logg}
}

func (p *pubsubPublisher) Record(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logError(ctx, "encode audit event", err)
		return
	}

	msg := &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_id":    event.ID.String(),
			"org_id":      event.OrgID.String(),
			"action":      event.Action,
			"resource":    event.Resource,
			"occurred_at": event.OccurredAt.Format(time.RFC3339Nano),
		},
	}

	// Detached from the request context so an aborted request still gets
	// its audit trail; the Get happens off the request goroutine.
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	result := p.topic.Publish(publishCtx, msg)
	if result == nil {
		cancel()
		p.logError(ctx, "audit publisher returned nil result", nil)
		return
	}
	go func() {
		defer cancel()
		if _, err := result.Get(publishCtx); err != nil {
			p.logError(publishCtx, "publish audit event", err)
		}
	}()
}

func (p *pubsubPublisher) logError(ctx context.Context, msg string, err error) {
	if p.logg == nil {
		return
	}
	p.logg.Error(ctx, msg, err)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Record(ctx context.Context, event Event) {}
