package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/obralabs/sentinela/core"
	pkgbilling "github.com/obralabs/sentinela/pkg/billing"
	"github.com/obralabs/sentinela/svc/billing"
	"github.com/obralabs/sentinela/svc/profile"
)

// webhookBodyLimit bounds webhook payload size; provider events are small.
const webhookBodyLimit = 1 << 20 // 1 MiB

type billingHandler struct {
	svc     BillingService
	baseURL string
	log     *slog.Logger
}

// origin returns the redirect origin for hosted billing flows, preferring
// the request's Origin header.
func (h *billingHandler) origin(r *http.Request) string {
	if o := r.Header.Get("Origin"); o != "" {
		return o
	}
	return h.baseURL
}

func (h *billingHandler) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
	}
	// A malformed body is treated the same as missing fields.
	_ = json.NewDecoder(r.Body).Decode(&req)

	sess, err := h.svc.CreateCheckoutSession(r.Context(), req.UserID, req.Email, h.origin(r))
	if err != nil {
		if errors.Is(err, billing.ErrMissingUserOrEmail) {
			core.WriteError(w, http.StatusBadRequest, "Missing userId or email")
			return
		}
		h.log.ErrorContext(r.Context(), "checkout session creation failed",
			slog.String("user_id", req.UserID), slog.Any("error", err))
		core.WriteError(w, http.StatusInternalServerError, "Error creating checkout session")
		return
	}

	core.WriteJSON(w, http.StatusOK, map[string]string{
		"sessionId": sess.ID,
		"url":       sess.URL,
	})
}

func (h *billingHandler) createPortalSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID string `json:"customerId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	sess, err := h.svc.CreatePortalSession(r.Context(), req.CustomerID, h.origin(r))
	if err != nil {
		if errors.Is(err, billing.ErrMissingCustomerID) {
			core.WriteError(w, http.StatusBadRequest, "Missing customerId")
			return
		}
		h.log.ErrorContext(r.Context(), "portal session creation failed",
			slog.String("customer_id", req.CustomerID), slog.Any("error", err))
		core.WriteError(w, http.StatusInternalServerError, "Error creating portal session")
		return
	}

	core.WriteJSON(w, http.StatusOK, map[string]string{"url": sess.URL})
}

// webhook receives signed billing events. The body is read raw and passed to
// signature verification untouched: the signature is computed over the exact
// bytes, so no middleware may parse or normalize this endpoint's body.
func (h *billingHandler) webhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, webhookBodyLimit)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		core.WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	err = h.svc.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, pkgbilling.ErrInvalidSignature) {
			h.log.WarnContext(r.Context(), "webhook signature verification failed", slog.Any("error", err))
			core.WriteError(w, http.StatusBadRequest, "Webhook Error: invalid signature")
			return
		}
		// Non-2xx makes the provider retry delivery; the webhook is the only
		// push-based sync path, so retry is wanted here.
		h.log.ErrorContext(r.Context(), "webhook processing failed", slog.Any("error", err))
		core.WriteError(w, http.StatusInternalServerError, "Webhook handler failed")
		return
	}

	core.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *billingHandler) syncSubscription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	data, err := h.svc.Sync(r.Context(), req.UserID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrMissingUserOrEmail):
			core.WriteError(w, http.StatusBadRequest, "Missing userId or email")
		case errors.Is(err, profile.ErrNotFound):
			core.WriteError(w, http.StatusNotFound, "User not found")
		default:
			h.log.ErrorContext(r.Context(), "subscription sync failed",
				slog.String("user_id", req.UserID), slog.String("email", req.Email), slog.Any("error", err))
			core.WriteError(w, http.StatusInternalServerError, "Subscription sync failed")
		}
		return
	}

	core.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}
