package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/obralabs/sentinela/pkg/billing"
	"github.com/obralabs/sentinela/svc/profile"
)

// Service keeps per-user subscription state consistent across the profile
// row, the billing provider's subscription objects, and webhook delivery.
// Webhook push is the primary sync path; Sync is the pull-based backstop.
type Service struct {
	provider billing.Provider
	profiles profile.Store
	log      *slog.Logger
}

// NewService wires the service. Panics on nil dependencies to fail fast
// during initialization.
func NewService(provider billing.Provider, profiles profile.Store, log *slog.Logger) *Service {
	if provider == nil {
		panic("billing: Provider is required")
	}
	if profiles == nil {
		panic("billing: profile.Store is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{provider: provider, profiles: profiles, log: log}
}

// CreateCheckoutSession creates a hosted checkout session for the user.
// Session creation is not retried: it is not idempotent-safe to retry blindly.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID, email, origin string) (*billing.CheckoutSession, error) {
	if userID == "" || email == "" {
		return nil, ErrMissingUserOrEmail
	}

	return s.provider.CreateCheckoutSession(ctx, billing.CheckoutSessionRequest{
		UserID:     userID,
		Email:      email,
		SuccessURL: origin + "/settings?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  origin + "/settings",
	})
}

// CreatePortalSession creates a billing portal session for an existing
// billing customer.
func (s *Service) CreatePortalSession(ctx context.Context, customerID, origin string) (*billing.PortalSession, error) {
	if customerID == "" {
		return nil, ErrMissingCustomerID
	}

	return s.provider.CreatePortalSession(ctx, customerID, origin+"/settings")
}

// HandleWebhook verifies and applies a billing lifecycle event. Signature
// failures return billing.ErrInvalidSignature with no state change. Errors
// after verification propagate so the transport returns non-2xx and the
// provider retries delivery; transitions are full overwrites of
// provider-supplied data, so replays converge to the same state.
//
// Events carry no sequence numbers and are not deduplicated by event ID, so
// out-of-order delivery can leave a stale status until the next event or a
// pull sync. Accepted risk; Sync exists as the backstop.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}

	switch event.Kind {
	case billing.EventCheckoutCompleted:
		return s.applyCheckoutCompleted(ctx, event)
	case billing.EventSubscriptionUpdated:
		return s.applySubscriptionUpdated(ctx, event)
	case billing.EventSubscriptionDeleted:
		return s.applySubscriptionDeleted(ctx, event)
	default:
		s.log.DebugContext(ctx, "ignoring webhook event", slog.String("type", event.Type))
		return nil
	}
}

// applyCheckoutCompleted correlates the new subscription back to the profile
// via the userId the checkout session carried as metadata. The subscription
// is re-fetched because checkout completion and subscription activation are
// distinct: any status embedded in the checkout event itself is not trusted.
func (s *Service) applyCheckoutCompleted(ctx context.Context, event *billing.WebhookEvent) error {
	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return fmt.Errorf("invalid userId in checkout session metadata: %w", err)
	}

	sub, err := s.provider.GetSubscription(ctx, event.SubscriptionID)
	if err != nil {
		return err
	}

	upd := profile.BillingUpdate{
		SubscriptionStatus: profile.Status(sub.Status),
		StripeCustomerID:   optional(event.CustomerID),
		PriceID:            optional(sub.FirstPriceID()),
	}
	if err := s.profiles.UpdateBilling(ctx, userID, upd); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "checkout completed",
		slog.String("user_id", userID.String()),
		slog.String("customer_id", event.CustomerID),
		slog.String("status", string(upd.SubscriptionStatus)))
	return nil
}

// applySubscriptionUpdated overwrites status and price from the event's
// subscription object. A customer ID with no matching profile is a silent
// no-op: erroring would make the provider retry an event we can never apply.
func (s *Service) applySubscriptionUpdated(ctx context.Context, event *billing.WebhookEvent) error {
	p, err := s.profiles.GetByCustomerID(ctx, event.CustomerID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			s.log.WarnContext(ctx, "subscription update for unknown customer",
				slog.String("customer_id", event.CustomerID))
			return nil
		}
		return err
	}

	return s.profiles.UpdateBilling(ctx, p.ID, profile.BillingUpdate{
		SubscriptionStatus: profile.Status(event.Status),
		StripeCustomerID:   p.StripeCustomerID,
		PriceID:            optional(event.PriceID),
	})
}

// applySubscriptionDeleted forces the status to canceled. Whatever status the
// deleted object carries is ignored: deletion always means canceled.
func (s *Service) applySubscriptionDeleted(ctx context.Context, event *billing.WebhookEvent) error {
	p, err := s.profiles.GetByCustomerID(ctx, event.CustomerID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			s.log.WarnContext(ctx, "subscription deletion for unknown customer",
				slog.String("customer_id", event.CustomerID))
			return nil
		}
		return err
	}

	return s.profiles.UpdateBilling(ctx, p.ID, profile.BillingUpdate{
		SubscriptionStatus: profile.StatusCanceled,
		StripeCustomerID:   p.StripeCustomerID,
		PriceID:            p.PriceID,
	})
}

// Sync forces the profile's subscription fields to match the provider's
// current truth, independent of webhook delivery. At least one of userID or
// email is required. Customer existence alone never promotes the user: only
// an active subscription does.
func (s *Service) Sync(ctx context.Context, userID, email string) (*profile.BillingUpdate, error) {
	if userID == "" && email == "" {
		return nil, ErrMissingUserOrEmail
	}

	p, err := s.lookupProfile(ctx, userID, email)
	if err != nil {
		return nil, err
	}

	// Default to free, preserving any previously known billing identity.
	upd := profile.BillingUpdate{
		SubscriptionStatus: profile.StatusFree,
		StripeCustomerID:   p.StripeCustomerID,
		PriceID:            nil,
	}

	customerID, err := s.provider.FindCustomerID(ctx, p.Email)
	if err != nil {
		return nil, err
	}

	if customerID != "" {
		upd.StripeCustomerID = &customerID

		sub, err := s.provider.FindActiveSubscription(ctx, customerID)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			upd.SubscriptionStatus = profile.Status(sub.Status)
			upd.PriceID = optional(sub.FirstPriceID())
		}
	}

	s.log.InfoContext(ctx, "syncing subscription",
		slog.String("email", p.Email),
		slog.String("status", string(upd.SubscriptionStatus)))

	if err := s.profiles.UpdateBilling(ctx, p.ID, upd); err != nil {
		return nil, err
	}

	return &upd, nil
}

func (s *Service) lookupProfile(ctx context.Context, userID, email string) (*profile.Profile, error) {
	if userID != "" {
		id, err := uuid.Parse(userID)
		if err != nil {
			return nil, profile.ErrNotFound
		}
		return s.profiles.GetByID(ctx, id)
	}
	return s.profiles.GetByEmail(ctx, email)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
