// Package billing abstracts the subscription billing provider behind a small
// interface and ships a Stripe implementation. Checkout and portal flows are
// fully hosted by the provider; this package only creates sessions, verifies
// webhooks and reads subscription state.
package billing
