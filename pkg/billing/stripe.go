package billing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeConfig holds Stripe credentials loaded from the environment.
// The secret key and webhook secret are privileged server-side credentials
// and must never reach a browser bundle.
type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`
	PriceID       string `env:"STRIPE_PRICE_ID,required"`
}

// StripeProvider implements Provider on top of the official Stripe SDK.
type StripeProvider struct {
	client        *client.API
	webhookSecret string
	priceID       string
}

// NewStripeProvider constructs the provider after confirming configuration is
// complete. It is called once at process startup and the instance is passed
// to handlers explicitly; there is no lazily initialized package-level client.
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}
	if cfg.PriceID == "" {
		return nil, ErrMissingPriceID
	}

	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)

	return &StripeProvider{
		client:        sc,
		webhookSecret: cfg.WebhookSecret,
		priceID:       cfg.PriceID,
	}, nil
}

// CreateCheckoutSession creates a hosted subscription checkout session.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CustomerEmail:      stripe.String(req.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.AddMetadata("userId", req.UserID)

	sess, err := p.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.Join(ErrProviderError, err)
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// CreatePortalSession creates a billing portal session for a customer.
func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error) {
	params := &stripe.BillingPortalSessionParams{
		Params:    stripe.Params{Context: ctx},
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}

	sess, err := p.client.BillingPortalSessions.New(params)
	if err != nil {
		return nil, errors.Join(ErrProviderError, err)
	}

	return &PortalSession{URL: sess.URL}, nil
}

// ParseWebhook verifies the signature over the exact payload bytes and
// normalizes the event. Any verification failure fails closed.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, errors.Join(ErrInvalidSignature, err)
	}

	out := &WebhookEvent{Kind: EventIgnored, Type: string(event.Type)}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, errors.Join(ErrProviderError, err)
		}
		out.Kind = EventCheckoutCompleted
		out.UserID = sess.Metadata["userId"]
		if sess.Customer != nil {
			out.CustomerID = sess.Customer.ID
		}
		if sess.Subscription != nil {
			out.SubscriptionID = sess.Subscription.ID
		}

	case stripe.EventTypeCustomerSubscriptionUpdated, stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, errors.Join(ErrProviderError, err)
		}
		if event.Type == stripe.EventTypeCustomerSubscriptionDeleted {
			out.Kind = EventSubscriptionDeleted
		} else {
			out.Kind = EventSubscriptionUpdated
		}
		out.SubscriptionID = sub.ID
		out.Status = string(sub.Status)
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
		if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
			out.PriceID = sub.Items.Data[0].Price.ID
		}
	}

	return out, nil
}

// GetSubscription fetches a subscription by ID.
func (p *StripeProvider) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	sub, err := p.client.Subscriptions.Get(id, &stripe.SubscriptionParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, errors.Join(ErrProviderError, err)
	}
	normalized := normalizeSubscription(sub)
	return &normalized, nil
}

// FindCustomerID looks up a customer by email, limit 1.
func (p *StripeProvider) FindCustomerID(ctx context.Context, email string) (string, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := p.client.Customers.List(params)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", errors.Join(ErrProviderError, err)
	}
	return "", nil
}

// FindActiveSubscription returns the customer's first active subscription.
func (p *StripeProvider) FindActiveSubscription(ctx context.Context, customerID string) (*Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := p.client.Subscriptions.List(params)
	if iter.Next() {
		normalized := normalizeSubscription(iter.Subscription())
		return &normalized, nil
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Join(ErrProviderError, err)
	}
	return nil, nil
}

// ListActiveSubscriptions pages through every active subscription. The SDK
// iterator follows the has_more flag and starting_after cursor internally.
func (p *StripeProvider) ListActiveSubscriptions(ctx context.Context) ([]Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Status: stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(100)
	params.AddExpand("data.items.data.price")

	var subs []Subscription
	iter := p.client.Subscriptions.List(params)
	for iter.Next() {
		subs = append(subs, normalizeSubscription(iter.Subscription()))
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Join(ErrProviderError, err)
	}
	return subs, nil
}

// normalizeSubscription maps a Stripe subscription object into the provider
// neutral shape, defaulting missing recurring data to monthly/1/1 the same
// way the revenue report expects it.
func normalizeSubscription(sub *stripe.Subscription) Subscription {
	out := Subscription{
		ID:      sub.ID,
		Status:  string(sub.Status),
		Created: time.Unix(sub.Created, 0).UTC(),
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items == nil {
		return out
	}

	for _, item := range sub.Items.Data {
		if item == nil || item.Price == nil {
			continue
		}
		price := item.Price

		normalized := SubscriptionItem{
			PriceID:       price.ID,
			UnitAmount:    price.UnitAmount,
			Currency:      string(price.Currency),
			Interval:      IntervalMonth,
			IntervalCount: 1,
			Quantity:      item.Quantity,
		}
		if normalized.Quantity == 0 {
			normalized.Quantity = 1
		}
		if price.Recurring != nil {
			if price.Recurring.Interval != "" {
				normalized.Interval = Interval(price.Recurring.Interval)
			}
			if price.Recurring.IntervalCount > 0 {
				normalized.IntervalCount = price.Recurring.IntervalCount
			}
		}
		switch {
		case price.Product != nil && price.Product.ID != "":
			normalized.ProductName = price.Product.ID
		case price.Nickname != "":
			normalized.ProductName = price.Nickname
		default:
			normalized.ProductName = "Unknown Plan"
		}

		out.Items = append(out.Items, normalized)
	}

	return out
}
