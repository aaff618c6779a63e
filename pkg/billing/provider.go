package billing

import (
	"context"
	"time"
)

// Provider defines the billing provider surface the application depends on.
// The concrete implementation wraps the provider's SDK; handlers and services
// receive a Provider explicitly instead of reaching for a package-level client.
type Provider interface {
	// CreateCheckoutSession creates a hosted checkout session for the
	// configured subscription price. The user ID travels as opaque session
	// metadata so the webhook handler can correlate the subscription back to
	// a profile without a lookup.
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)

	// CreatePortalSession creates a self-service billing portal session for
	// an existing billing customer.
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error)

	// ParseWebhook verifies a signed webhook payload against the raw body
	// bytes and normalizes it into a WebhookEvent. Verification failure of
	// any kind returns ErrInvalidSignature; the payload must not be trusted.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)

	// GetSubscription fetches the current subscription object by ID.
	GetSubscription(ctx context.Context, id string) (*Subscription, error)

	// FindCustomerID looks up a billing customer by email.
	// Returns an empty string when no customer matches.
	FindCustomerID(ctx context.Context, email string) (string, error)

	// FindActiveSubscription returns the customer's first active
	// subscription, or nil when there is none.
	FindActiveSubscription(ctx context.Context, customerID string) (*Subscription, error)

	// ListActiveSubscriptions returns every active subscription, following
	// the provider's pagination cursor until exhausted. O(total active
	// subscriptions); callers should cache results where possible.
	ListActiveSubscriptions(ctx context.Context) ([]Subscription, error)
}

// CheckoutSessionRequest carries the inputs for a hosted checkout session.
type CheckoutSessionRequest struct {
	UserID     string // internal user ID, embedded as session metadata
	Email      string // pre-filled billing email
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is a created hosted checkout session.
type CheckoutSession struct {
	ID  string
	URL string
}

// PortalSession is a created billing portal session.
type PortalSession struct {
	URL string
}

// EventKind is the normalized webhook event classification.
type EventKind string

const (
	EventCheckoutCompleted   EventKind = "checkout_completed"
	EventSubscriptionUpdated EventKind = "subscription_updated"
	EventSubscriptionDeleted EventKind = "subscription_deleted"

	// EventIgnored covers every unrecognized provider event. The event
	// catalog is an open set; unknown kinds are acknowledged, never errors.
	EventIgnored EventKind = "ignored"
)

// WebhookEvent is a verified, normalized billing webhook event.
type WebhookEvent struct {
	Kind EventKind
	Type string // raw provider event type, for logging

	// UserID is present on checkout completion events only (from metadata).
	UserID string

	CustomerID     string
	SubscriptionID string

	// Status and PriceID are populated from the subscription object embedded
	// in subscription lifecycle events.
	Status  string
	PriceID string
}

// Interval is a price's billing interval.
type Interval string

const (
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

// Subscription is a normalized view of a provider subscription object.
type Subscription struct {
	ID         string
	CustomerID string
	Status     string
	Created    time.Time
	Items      []SubscriptionItem
}

// FirstPriceID returns the first line item's price ID, or empty when the
// subscription has no items. Multi-item subscriptions are not fully modeled;
// only the first item's price is ever propagated.
func (s *Subscription) FirstPriceID() string {
	if len(s.Items) == 0 {
		return ""
	}
	return s.Items[0].PriceID
}

// SubscriptionItem is a normalized subscription line item.
type SubscriptionItem struct {
	PriceID       string
	ProductName   string // product ID when known, else price nickname
	UnitAmount    int64  // currency minor units
	Currency      string
	Interval      Interval
	IntervalCount int64
	Quantity      int64
}
