package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/daniyal-sudo/heraklean-backend/internal/config"
	"github.com/daniyal-sudo/heraklean-backend/internal/domain"
	"github.com/daniyal-sudo/heraklean-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testWebhookSecret = "whsec_unit_test"

type fakeSubscriptionRepo struct {
	subs map[primitive.ObjectID]*domain.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[primitive.ObjectID]*domain.Subscription)}
}

func (r *fakeSubscriptionRepo) Upsert(_ context.Context, sub *domain.Subscription) error {
	cp := *sub
	if existing, ok := r.subs[sub.ClientID]; ok {
		cp.CreatedAt = existing.CreatedAt
	} else {
		cp.CreatedAt = time.Now().UTC()
	}
	cp.UpdatedAt = time.Now().UTC()
	r.subs[sub.ClientID] = &cp
	return nil
}

func (r *fakeSubscriptionRepo) GetByClientID(_ context.Context, clientID primitive.ObjectID) (*domain.Subscription, error) {
	sub, ok := r.subs[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return sub, nil
}

type webhookFixture struct {
	svc      SubscriptionService
	subRepo  *fakeSubscriptionRepo
	userRepo *fakeUserRepo
	client   *domain.User
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()

	client := &domain.User{
		ID:    primitive.NewObjectID(),
		Name:  "Cleo Client",
		Email: "cleo@example.com",
		Role:  domain.RoleClient,
	}
	subRepo := newFakeSubscriptionRepo()
	userRepo := newFakeUserRepo(client)

	svc := NewSubscriptionService(subRepo, userRepo, config.StripeConfig{
		WebhookSecret: testWebhookSecret,
	}, nil)

	return &webhookFixture{svc: svc, subRepo: subRepo, userRepo: userRepo, client: client}
}

// signPayload produces a Stripe-Signature header value that verifies against
// the given secret.
func signPayload(payload []byte, secret string) string {
	ts := time.Now()
	sig := webhook.ComputeSignature(ts, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(sig))
}

func checkoutCompletedPayload(clientID primitive.ObjectID, tier string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_checkout_1",
		"api_version": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_1",
				"client_reference_id": %q,
				"customer": "cus_123",
				"metadata": {"clientId": %q, "tier": %q}
			}
		}
	}`, stripe.APIVersion, clientID.Hex(), clientID.Hex(), tier))
}

func subscriptionDeletedPayload(clientID primitive.ObjectID) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_cancel_1",
		"api_version": %q,
		"type": "customer.subscription.deleted",
		"data": {
			"object": {
				"id": "sub_123",
				"customer": "cus_123",
				"metadata": {"clientId": %q}
			}
		}
	}`, stripe.APIVersion, clientID.Hex()))
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	f := newWebhookFixture(t)
	payload := checkoutCompletedPayload(f.client.ID, "premium")

	err := f.svc.HandleWebhook(context.Background(), payload, "t=0,v1=deadbeef")
	assert.ErrorIs(t, err, ErrInvalidWebhook)

	// A valid signature over different bytes must not verify either.
	header := signPayload([]byte(`{"type":"other"}`), testWebhookSecret)
	err = f.svc.HandleWebhook(context.Background(), payload, header)
	assert.ErrorIs(t, err, ErrInvalidWebhook)

	assert.Empty(t, f.subRepo.subs, "unverified events must not touch the store")
}

func TestHandleWebhookRejectsWrongSecret(t *testing.T) {
	f := newWebhookFixture(t)
	payload := checkoutCompletedPayload(f.client.ID, "premium")

	header := signPayload(payload, "whsec_other")
	err := f.svc.HandleWebhook(context.Background(), payload, header)
	assert.ErrorIs(t, err, ErrInvalidWebhook)
}

func TestHandleWebhookCheckoutCompleted(t *testing.T) {
	f := newWebhookFixture(t)
	payload := checkoutCompletedPayload(f.client.ID, "premium")

	err := f.svc.HandleWebhook(context.Background(), payload, signPayload(payload, testWebhookSecret))
	require.NoError(t, err)

	sub, err := f.subRepo.GetByClientID(context.Background(), f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, sub.Status)
	assert.Equal(t, "premium", sub.Tier)
	assert.Equal(t, "cus_123", sub.StripeCustomerID)

	// Billing state is mirrored onto the user record.
	assert.Equal(t, "premium", f.client.SubscriptionTier)
	assert.Equal(t, string(domain.SubscriptionActive), f.client.SubscriptionStatus)
}

func TestHandleWebhookReplayIsIdempotent(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()
	payload := checkoutCompletedPayload(f.client.ID, "premium")

	require.NoError(t, f.svc.HandleWebhook(ctx, payload, signPayload(payload, testWebhookSecret)))
	require.NoError(t, f.svc.HandleWebhook(ctx, payload, signPayload(payload, testWebhookSecret)))

	// A redelivered event lands on the same record, not a second one.
	assert.Len(t, f.subRepo.subs, 1)
	sub, err := f.subRepo.GetByClientID(ctx, f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, sub.Status)
	assert.Equal(t, "premium", sub.Tier)
}

func TestHandleWebhookSubscriptionDeleted(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()

	activate := checkoutCompletedPayload(f.client.ID, "premium")
	require.NoError(t, f.svc.HandleWebhook(ctx, activate, signPayload(activate, testWebhookSecret)))

	cancel := subscriptionDeletedPayload(f.client.ID)
	require.NoError(t, f.svc.HandleWebhook(ctx, cancel, signPayload(cancel, testWebhookSecret)))

	require.Len(t, f.subRepo.subs, 1)
	sub, err := f.subRepo.GetByClientID(ctx, f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionCanceled, sub.Status)
	assert.Equal(t, "free", sub.Tier)
	assert.Equal(t, string(domain.SubscriptionCanceled), f.client.SubscriptionStatus)
}

func TestHandleWebhookIgnoresUnhandledEvents(t *testing.T) {
	f := newWebhookFixture(t)
	payload := []byte(fmt.Sprintf(`{
		"id": "evt_other_1",
		"api_version": %q,
		"type": "invoice.paid",
		"data": {"object": {"id": "in_123"}}
	}`, stripe.APIVersion))

	err := f.svc.HandleWebhook(context.Background(), payload, signPayload(payload, testWebhookSecret))
	assert.NoError(t, err)
	assert.Empty(t, f.subRepo.subs)
}

func TestHandleWebhookWithoutSecretConfigured(t *testing.T) {
	svc := NewSubscriptionService(newFakeSubscriptionRepo(), newFakeUserRepo(), config.StripeConfig{}, nil)

	err := svc.HandleWebhook(context.Background(), []byte(`{}`), "t=0,v1=00")
	assert.ErrorIs(t, err, ErrBillingNotConfigured)
}

func TestCreateCheckoutSessionNotConfigured(t *testing.T) {
	f := newWebhookFixture(t)

	_, err := f.svc.CreateCheckoutSession(context.Background(), f.client.ID, "price_123", "premium")
	assert.ErrorIs(t, err, ErrBillingNotConfigured)
}
