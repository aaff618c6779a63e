package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	pkgbilling "github.com/obralabs/sentinela/pkg/billing"
	"github.com/obralabs/sentinela/svc/billing"
	"github.com/obralabs/sentinela/svc/profile"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateCheckoutSession(ctx context.Context, req pkgbilling.CheckoutSessionRequest) (*pkgbilling.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if s := args.Get(0); s != nil {
		return s.(*pkgbilling.CheckoutSession), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*pkgbilling.PortalSession, error) {
	args := m.Called(ctx, customerID, returnURL)
	if s := args.Get(0); s != nil {
		return s.(*pkgbilling.PortalSession), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) ParseWebhook(payload []byte, signature string) (*pkgbilling.WebhookEvent, error) {
	args := m.Called(payload, signature)
	if e := args.Get(0); e != nil {
		return e.(*pkgbilling.WebhookEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) GetSubscription(ctx context.Context, id string) (*pkgbilling.Subscription, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*pkgbilling.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) FindCustomerID(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) FindActiveSubscription(ctx context.Context, customerID string) (*pkgbilling.Subscription, error) {
	args := m.Called(ctx, customerID)
	if s := args.Get(0); s != nil {
		return s.(*pkgbilling.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) ListActiveSubscriptions(ctx context.Context) ([]pkgbilling.Subscription, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.([]pkgbilling.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockProfileStore struct {
	mock.Mock
}

func (m *mockProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*profile.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileStore) GetByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	args := m.Called(ctx, email)
	if p := args.Get(0); p != nil {
		return p.(*profile.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileStore) GetByCustomerID(ctx context.Context, customerID string) (*profile.Profile, error) {
	args := m.Called(ctx, customerID)
	if p := args.Get(0); p != nil {
		return p.(*profile.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileStore) UpdateBilling(ctx context.Context, id uuid.UUID, upd profile.BillingUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *mockProfileStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func strPtr(s string) *string { return &s }

func TestService_CreateCheckoutSession(t *testing.T) {
	t.Parallel()

	t.Run("missing user or email", func(t *testing.T) {
		t.Parallel()

		svc := billing.NewService(new(mockProvider), new(mockProfileStore), nil)

		_, err := svc.CreateCheckoutSession(context.Background(), "", "user@example.com", "https://app.test")
		assert.ErrorIs(t, err, billing.ErrMissingUserOrEmail)

		_, err = svc.CreateCheckoutSession(context.Background(), uuid.NewString(), "", "https://app.test")
		assert.ErrorIs(t, err, billing.ErrMissingUserOrEmail)
	})

	t.Run("builds redirect urls from origin", func(t *testing.T) {
		t.Parallel()

		userID := uuid.NewString()
		provider := new(mockProvider)
		provider.On("CreateCheckoutSession", mock.Anything, pkgbilling.CheckoutSessionRequest{
			UserID:     userID,
			Email:      "user@example.com",
			SuccessURL: "https://app.test/settings?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:  "https://app.test/settings",
		}).Return(&pkgbilling.CheckoutSession{ID: "cs_123", URL: "https://checkout.test/cs_123"}, nil)

		svc := billing.NewService(provider, new(mockProfileStore), nil)

		sess, err := svc.CreateCheckoutSession(context.Background(), userID, "user@example.com", "https://app.test")
		require.NoError(t, err)
		assert.Equal(t, "cs_123", sess.ID)
		assert.Equal(t, "https://checkout.test/cs_123", sess.URL)
		provider.AssertExpectations(t)
	})
}

func TestService_CreatePortalSession(t *testing.T) {
	t.Parallel()

	t.Run("missing customer id", func(t *testing.T) {
		t.Parallel()

		svc := billing.NewService(new(mockProvider), new(mockProfileStore), nil)
		_, err := svc.CreatePortalSession(context.Background(), "", "https://app.test")
		assert.ErrorIs(t, err, billing.ErrMissingCustomerID)
	})

	t.Run("returns portal url", func(t *testing.T) {
		t.Parallel()

		provider := new(mockProvider)
		provider.On("CreatePortalSession", mock.Anything, "cus_123", "https://app.test/settings").
			Return(&pkgbilling.PortalSession{URL: "https://portal.test/sess"}, nil)

		svc := billing.NewService(provider, new(mockProfileStore), nil)
		sess, err := svc.CreatePortalSession(context.Background(), "cus_123", "https://app.test")
		require.NoError(t, err)
		assert.Equal(t, "https://portal.test/sess", sess.URL)
		provider.AssertExpectations(t)
	})
}

func TestService_HandleWebhook_CheckoutCompleted(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	event := &pkgbilling.WebhookEvent{
		Kind:           pkgbilling.EventCheckoutCompleted,
		Type:           "checkout.session.completed",
		UserID:         userID.String(),
		CustomerID:     "cus_123",
		SubscriptionID: "sub_123",
	}

	t.Run("writes refetched subscription state", func(t *testing.T) {
		t.Parallel()

		provider := new(mockProvider)
		provider.On("ParseWebhook", mock.Anything, "sig").Return(event, nil)
		provider.On("GetSubscription", mock.Anything, "sub_123").Return(&pkgbilling.Subscription{
			ID:         "sub_123",
			CustomerID: "cus_123",
			Status:     "trialing",
			Items:      []pkgbilling.SubscriptionItem{{PriceID: "price_123"}},
		}, nil)

		store := new(mockProfileStore)
		store.On("UpdateBilling", mock.Anything, userID, profile.BillingUpdate{
			SubscriptionStatus: profile.StatusTrialing,
			StripeCustomerID:   strPtr("cus_123"),
			PriceID:            strPtr("price_123"),
		}).Return(nil)

		svc := billing.NewService(provider, store, nil)
		require.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))
		provider.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("replay converges to the same state", func(t *testing.T) {
		t.Parallel()

		provider := new(mockProvider)
		provider.On("ParseWebhook", mock.Anything, "sig").Return(event, nil)
		provider.On("GetSubscription", mock.Anything, "sub_123").Return(&pkgbilling.Subscription{
			ID:         "sub_123",
			CustomerID: "cus_123",
			Status:     "active",
			Items:      []pkgbilling.SubscriptionItem{{PriceID: "price_123"}},
		}, nil)

		expected := profile.BillingUpdate{
			SubscriptionStatus: profile.StatusActive,
			StripeCustomerID:   strPtr("cus_123"),
			PriceID:            strPtr("price_123"),
		}
		store := new(mockProfileStore)
		store.On("UpdateBilling", mock.Anything, userID, expected).Return(nil).Twice()

		svc := billing.NewService(provider, store, nil)
		require.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))
		require.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))
		store.AssertExpectations(t)
	})

	t.Run("invalid metadata user id fails", func(t *testing.T) {
		t.Parallel()

		bad := *event
		bad.UserID = "not-a-uuid"

		provider := new(mockProvider)
		provider.On("ParseWebhook", mock.Anything, "sig").Return(&bad, nil)

		store := new(mockProfileStore)
		svc := billing.NewService(provider, store, nil)

		err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
		require.Error(t, err)
		store.AssertNotCalled(t, "UpdateBilling", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_HandleWebhook_SubscriptionUpdated(t *testing.T) {
	t.Parallel()

	event := &pkgbilling.WebhookEvent{
		Kind:       pkgbilling.EventSubscriptionUpdated,
		Type:       "customer.subscription.updated",
		CustomerID: "cus_123",
		Status:     "past_due",
		PriceID:    "price_123",
	}

	t.Run("overwrites status from event", func(t *testing.T) {
		t.Parallel()

		profileID := uuid.New()
		provider := new(mockProvider)
		provider.On("ParseWebhook", mock.Anything, "sig").Return(event, nil)

		store := new(mockProfileStore)
		store.On("GetByCustomerID", mock.Anything, "cus_123").Return(&profile.Profile{
			ID:                 profileID,
			SubscriptionStatus: profile.StatusActive,
			StripeCustomerID:   strPtr("cus_123"),
		}, nil)
		store.On("UpdateBilling", mock.Anything, profileID, profile.BillingUpdate{
			SubscriptionStatus: profile.StatusPastDue,
			StripeCustomerID:   strPtr("cus_123"),
			PriceID:            strPtr("price_123"),
		}).Return(nil)

		svc := billing.NewService(provider, store, nil)
		require.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))
		store.AssertExpectations(t)
	})

	t.Run("unknown customer is a no-op", func(t *testing.T) {
		t.Parallel()

		provider := new(mockProvider)
		provider.On("ParseWebhook", mock.Anything, "sig").Return(event, nil)

		store := new(mockProfileStore)
		store.On("GetByCustomerID", mock.Anything, "cus_123").Return(nil, profile.ErrNotFound)

		svc := billing.NewService(provider, store, nil)
		require.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))
		store.AssertNotCalled(t, "UpdateBilling", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		t.Parallel()

		provider := new(mockProvider)
		provider.On("ParseWebhook", mock.Anything, "sig").Return(event, nil)

		store := new(mockProfileStore)
		store.On("GetByCustomerID", mock.Anything, "cus_123").Return(nil, profile.ErrStoreFailure)

		svc := billing.NewService(provider, store, nil)
		err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
		assert.ErrorIs(t, err, profile.ErrStoreFailure)
	})
}

func TestService_HandleWebhook_SubscriptionDeleted(t *testing.T) {
	t.Parallel()

	profileID := uuid.New()
	event := &pkgbilling.WebhookEvent{
		Kind:       pkgbilling.EventSubscriptionDeleted,
		Type:       "customer.subscription.deleted",
		CustomerID: "cus_123",
		Status:     "active",
	}

	provider := new(mockProvider)
	provider.On("ParseWebhook", mock.Anything, "sig").Return(event, nil)

	// Deletion forces canceled regardless of the status the event carries.
	store := new(mockProfileStore)
	store.On("GetByCustomerID", mock.Anything, "cus_123").Return(&profile.Profile{
		ID:                 profileID,
		SubscriptionStatus: profile.StatusActive,
		StripeCustomerID:   strPtr("cus_123"),
		PriceID:            strPtr("price_123"),
	}, nil)
	store.On("UpdateBilling", mock.Anything, profileID, profile.BillingUpdate{
		SubscriptionStatus: profile.StatusCanceled,
		StripeCustomerID:   strPtr("cus_123"),
		PriceID:            strPtr("price_123"),
	}).Return(nil)

	svc := billing.NewService(provider, store, nil)
	require.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))
	store.AssertExpectations(t)
}

func TestService_HandleWebhook_IgnoredAndInvalid(t *testing.T) {
	t.Parallel()

	t.Run("unknown event type is acknowledged", func(t *testing.T) {
		t.Parallel()

		provider := new(mockProvider)
		provider.On("ParseWebhook", mock.Anything, "sig").Return(&pkgbilling.WebhookEvent{
			Kind: pkgbilling.EventIgnored,
			Type: "invoice.paid",
		}, nil)

		svc := billing.NewService(provider, new(mockProfileStore), nil)
		assert.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))
	})

	t.Run("signature failure propagates with no state change", func(t *testing.T) {
		t.Parallel()

		provider := new(mockProvider)
		provider.On("ParseWebhook", mock.Anything, "bad").Return(nil, pkgbilling.ErrInvalidSignature)

		store := new(mockProfileStore)
		svc := billing.NewService(provider, store, nil)

		err := svc.HandleWebhook(context.Background(), []byte(`{}`), "bad")
		assert.ErrorIs(t, err, pkgbilling.ErrInvalidSignature)
		store.AssertNotCalled(t, "UpdateBilling", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Sync(t *testing.T) {
	t.Parallel()

	profileID := uuid.New()
	baseProfile := func() *profile.Profile {
		return &profile.Profile{
			ID:                 profileID,
			Email:              "user@example.com",
			SubscriptionStatus: profile.StatusActive,
			StripeCustomerID:   strPtr("cus_old"),
			PriceID:            strPtr("price_old"),
		}
	}

	t.Run("requires user id or email", func(t *testing.T) {
		t.Parallel()

		svc := billing.NewService(new(mockProvider), new(mockProfileStore), nil)
		_, err := svc.Sync(context.Background(), "", "")
		assert.ErrorIs(t, err, billing.ErrMissingUserOrEmail)
	})

	t.Run("malformed user id maps to not found", func(t *testing.T) {
		t.Parallel()

		svc := billing.NewService(new(mockProvider), new(mockProfileStore), nil)
		_, err := svc.Sync(context.Background(), "not-a-uuid", "")
		assert.ErrorIs(t, err, profile.ErrNotFound)
	})

	t.Run("no billing customer demotes to free keeping known identity", func(t *testing.T) {
		t.Parallel()

		provider := new(mockProvider)
		provider.On("FindCustomerID", mock.Anything, "user@example.com").Return("", nil)

		store := new(mockProfileStore)
		store.On("GetByID", mock.Anything, profileID).Return(baseProfile(), nil)
		store.On("UpdateBilling", mock.Anything, profileID, profile.BillingUpdate{
			SubscriptionStatus: profile.StatusFree,
			StripeCustomerID:   strPtr("cus_old"),
			PriceID:            nil,
		}).Return(nil)

		svc := billing.NewService(provider, store, nil)
		upd, err := svc.Sync(context.Background(), profileID.String(), "")
		require.NoError(t, err)
		assert.Equal(t, profile.StatusFree, upd.SubscriptionStatus)
		assert.Nil(t, upd.PriceID)
		store.AssertExpectations(t)
	})

	t.Run("customer without active subscription stays free", func(t *testing.T) {
		t.Parallel()

		provider := new(mockProvider)
		provider.On("FindCustomerID", mock.Anything, "user@example.com").Return("cus_123", nil)
		provider.On("FindActiveSubscription", mock.Anything, "cus_123").Return(nil, nil)

		store := new(mockProfileStore)
		store.On("GetByEmail", mock.Anything, "user@example.com").Return(baseProfile(), nil)
		store.On("UpdateBilling", mock.Anything, profileID, profile.BillingUpdate{
			SubscriptionStatus: profile.StatusFree,
			StripeCustomerID:   strPtr("cus_123"),
			PriceID:            nil,
		}).Return(nil)

		svc := billing.NewService(provider, store, nil)
		upd, err := svc.Sync(context.Background(), "", "user@example.com")
		require.NoError(t, err)
		assert.Equal(t, profile.StatusFree, upd.SubscriptionStatus)
		require.NotNil(t, upd.StripeCustomerID)
		assert.Equal(t, "cus_123", *upd.StripeCustomerID)
		store.AssertExpectations(t)
	})

	t.Run("active subscription promotes the profile", func(t *testing.T) {
		t.Parallel()

		provider := new(mockProvider)
		provider.On("FindCustomerID", mock.Anything, "user@example.com").Return("cus_123", nil)
		provider.On("FindActiveSubscription", mock.Anything, "cus_123").Return(&pkgbilling.Subscription{
			ID:         "sub_123",
			CustomerID: "cus_123",
			Status:     "active",
			Created:    time.Now(),
			Items:      []pkgbilling.SubscriptionItem{{PriceID: "price_123"}},
		}, nil)

		store := new(mockProfileStore)
		store.On("GetByID", mock.Anything, profileID).Return(baseProfile(), nil)
		store.On("UpdateBilling", mock.Anything, profileID, profile.BillingUpdate{
			SubscriptionStatus: profile.StatusActive,
			StripeCustomerID:   strPtr("cus_123"),
			PriceID:            strPtr("price_123"),
		}).Return(nil)

		svc := billing.NewService(provider, store, nil)
		upd, err := svc.Sync(context.Background(), profileID.String(), "")
		require.NoError(t, err)
		assert.Equal(t, profile.StatusActive, upd.SubscriptionStatus)
		store.AssertExpectations(t)
	})

	t.Run("unknown profile propagates not found", func(t *testing.T) {
		t.Parallel()

		store := new(mockProfileStore)
		store.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, profile.ErrNotFound)

		svc := billing.NewService(new(mockProvider), store, nil)
		_, err := svc.Sync(context.Background(), "", "ghost@example.com")
		assert.ErrorIs(t, err, profile.ErrNotFound)
	})
}
