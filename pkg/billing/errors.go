package billing

import "errors"

var (
	ErrMissingAPIKey        = errors.New("billing provider API key is required")
	ErrMissingWebhookSecret = errors.New("billing provider webhook secret is required")
	ErrMissingPriceID       = errors.New("billing provider default price ID is required")

	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrProviderError    = errors.New("billing provider request failed")
)
