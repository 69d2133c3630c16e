package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/internal/billing"
	"github.com/veridianlabs/governport-backend/internal/subscriptions"
	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/logger"
)

type orgRepository interface {
	FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Organization, error)
	UpdateWithTx(tx *gorm.DB, org *models.Organization) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	BillingRepo       billing.Repository
	OrgRepo           orgRepository
	StripeClient      subscriptions.StripeSubscriptionClient
	TransactionRunner txRunner
	Logger            *logger.Logger
}

type Service struct {
	billingRepo billing.Repository
	orgRepo     orgRepository
	stripe      subscriptions.StripeSubscriptionClient
	txRunner    txRunner
	logg        *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.BillingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "billing repo required")
	}
	if params.OrgRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "organization repo required")
	}
	if params.StripeClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		billingRepo: params.BillingRepo,
		orgRepo:     params.OrgRepo,
		stripe:      params.StripeClient,
		txRunner:    params.TransactionRunner,
		logg:        params.Logger,
	}, nil
}

// HandleEvent routes a verified Stripe event. Unknown event types return nil
// so the controller acknowledges them and Stripe stops retrying.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
		}
		return s.handleCheckoutCompleted(ctx, &session)
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated:
		var stripeSub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode subscription event")
		}
		return s.syncSubscription(ctx, &stripeSub)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		var stripeSub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode subscription event")
		}
		return s.handleSubscriptionDeleted(ctx, &stripeSub)
	case stripe.EventTypeInvoicePaid, stripe.EventTypeInvoicePaymentFailed:
		subscriptionID := event.GetObjectValue("subscription")
		if subscriptionID == "" {
			// Invoices without a subscription (one-off charges) are not ours.
			return nil
		}
		stripeSub, err := s.stripe.Get(ctx, subscriptionID, &stripe.SubscriptionParams{})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch stripe subscription")
		}
		return s.syncSubscription(ctx, stripeSub)
	default:
		return nil
	}
}

// handleCheckoutCompleted links the new Stripe customer to the organization
// that initiated checkout, then syncs the subscription if one was created.
func (s *Service) handleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	if session == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session is required")
	}

	orgID, err := subscriptions.OrgIDFromMetadata(session.Metadata)
	if err != nil {
		s.warn(ctx, fmt.Sprintf("checkout.session.completed %s has no organization_id metadata, skipping", session.ID))
		return nil
	}

	customerID := ""
	if session.Customer != nil {
		customerID = session.Customer.ID
	}

	if err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		org, err := s.orgRepo.FindByIDWithTx(tx, orgID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load organization")
		}
		if customerID != "" && (org.StripeCustomerID == nil || *org.StripeCustomerID != customerID) {
			org.StripeCustomerID = &customerID
			if err := s.orgRepo.UpdateWithTx(tx, org); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link stripe customer")
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if session.Subscription == nil || session.Subscription.ID == "" {
		return nil
	}
	stripeSub, err := s.stripe.Get(ctx, session.Subscription.ID, &stripe.SubscriptionParams{})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch checkout subscription")
	}
	return s.syncSubscription(ctx, stripeSub)
}

// syncSubscription upserts local state from Stripe and keeps the org's access
// flag in step, all in one transaction.
func (s *Service) syncSubscription(ctx context.Context, stripeSub *stripe.Subscription) error {
	if stripeSub == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription is required")
	}
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.billingRepo.WithTx(tx)
		stored, err := repo.FindSubscriptionByStripeID(ctx, stripeSub.ID)
		if err != nil {
			return err
		}

		orgID, metadataErr := subscriptions.OrgIDFromMetadata(stripeSub.Metadata)
		if metadataErr != nil && stored != nil {
			orgID = stored.OrgID
			metadataErr = nil
		}
		if metadataErr != nil {
			s.warn(ctx, fmt.Sprintf("stripe subscription %s has no organization_id metadata and no stored row, skipping", stripeSub.ID))
			return nil
		}

		customerID := ""
		if stripeSub.Customer != nil {
			customerID = stripeSub.Customer.ID
		}

		var current *models.Subscription
		if stored == nil {
			built, buildErr := subscriptions.BuildSubscriptionFromStripe(stripeSub, orgID, customerID)
			if buildErr != nil {
				return buildErr
			}
			if err := repo.UpsertSubscription(ctx, built); err != nil {
				return err
			}
			current = built
		} else {
			if err := subscriptions.UpdateSubscriptionFromStripe(stored, stripeSub); err != nil {
				return err
			}
			if err := repo.UpsertSubscription(ctx, stored); err != nil {
				return err
			}
			current = stored
		}

		return s.syncOrgAccess(ctx, tx, orgID, current)
	})
}

// handleSubscriptionDeleted soft-resets the tenant to the free tier. The local
// row is kept with its Stripe customer link so a later re-subscribe reuses it.
func (s *Service) handleSubscriptionDeleted(ctx context.Context, stripeSub *stripe.Subscription) error {
	if stripeSub == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription is required")
	}
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.billingRepo.WithTx(tx)
		stored, err := repo.FindSubscriptionByStripeID(ctx, stripeSub.ID)
		if err != nil {
			return err
		}

		orgID, metadataErr := subscriptions.OrgIDFromMetadata(stripeSub.Metadata)
		if metadataErr != nil && stored != nil {
			orgID = stored.OrgID
			metadataErr = nil
		}
		if metadataErr != nil {
			s.warn(ctx, fmt.Sprintf("stripe subscription %s deleted with no organization_id metadata and no stored row, skipping", stripeSub.ID))
			return nil
		}

		if stored == nil {
			customerID := ""
			if stripeSub.Customer != nil {
				customerID = stripeSub.Customer.ID
			}
			built, buildErr := subscriptions.BuildSubscriptionFromStripe(stripeSub, orgID, customerID)
			if buildErr != nil {
				return buildErr
			}
			stored = built
		}

		if err := subscriptions.SoftResetSubscription(stored, time.Now()); err != nil {
			return err
		}
		if err := repo.UpsertSubscription(ctx, stored); err != nil {
			return err
		}

		return s.syncOrgAccess(ctx, tx, orgID, stored)
	})
}

func (s *Service) syncOrgAccess(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, sub *models.Subscription) error {
	if sub == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "subscription not persisted")
	}
	org, err := s.orgRepo.FindByIDWithTx(tx, orgID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load organization")
	}

	active := subscriptions.IsActiveStatus(sub.Status)
	plan := sub.Plan
	if !plan.IsValid() || !active {
		plan = enums.PlanObserver
	}
	if org.SubscriptionActive != active || org.Plan != plan {
		org.SubscriptionActive = active
		org.Plan = plan
		if err := s.orgRepo.UpdateWithTx(tx, org); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update organization subscription flag")
		}
	}
	return nil
}

func (s *Service) warn(ctx context.Context, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(ctx, msg)
}
