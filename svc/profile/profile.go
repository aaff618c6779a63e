package profile

import (
	"time"

	"github.com/google/uuid"
)

// Status is the subscription state tracked on a profile.
type Status string

const (
	StatusFree       Status = "free"
	StatusActive     Status = "active"
	StatusTrialing   Status = "trialing"
	StatusPastDue    Status = "past_due"
	StatusCanceled   Status = "canceled"
	StatusIncomplete Status = "incomplete"
)

// Profile is the per-user record tracking subscription state. It is created
// at registration with StatusFree and mutated only by the webhook handler and
// the pull reconciler. Invariant: a non-free status always has a billing
// customer ID; the reverse does not hold, because checkout creates the
// customer before the first webhook confirms activation.
type Profile struct {
	ID                 uuid.UUID
	Email              string
	SubscriptionStatus Status
	StripeCustomerID   *string
	PriceID            *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsPaying reports whether the profile is on a paid or trialing plan.
func (p *Profile) IsPaying() bool {
	return p.SubscriptionStatus == StatusActive || p.SubscriptionStatus == StatusTrialing
}

// BillingUpdate is a full overwrite of the profile's billing fields.
// Writes are last-write-wins; there is no optimistic concurrency token.
type BillingUpdate struct {
	SubscriptionStatus Status  `json:"subscription_status"`
	StripeCustomerID   *string `json:"stripe_customer_id"`
	PriceID            *string `json:"price_id"`
}
