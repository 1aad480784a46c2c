package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/daniyal-sudo/heraklean-backend/internal/config"
	"github.com/daniyal-sudo/heraklean-backend/internal/domain"
	"github.com/daniyal-sudo/heraklean-backend/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v79"
	stripeclient "github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrBillingNotConfigured = errors.New("billing is not configured")
	ErrInvalidWebhook       = errors.New("invalid webhook payload or signature")
)

// SubscriptionService drives a client's subscription through Stripe:
// checkout session creation plus webhook ingestion that keeps the local
// Subscription record and the user's mirror fields in sync.
type SubscriptionService interface {
	CreateCheckoutSession(ctx context.Context, clientID primitive.ObjectID, priceID, tier string) (checkoutURL string, err error)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
	GetSubscription(ctx context.Context, clientID primitive.ObjectID) (*domain.Subscription, error)
}

type subscriptionService struct {
	subRepo  repository.SubscriptionRepository
	userRepo repository.UserRepository
	stripe   *stripeclient.API
	cfg      config.StripeConfig
	log      *logrus.Logger
}

// NewSubscriptionService creates a new instance of subscriptionService.
// Returns a service that rejects all calls when no Stripe key is configured.
func NewSubscriptionService(
	subRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	cfg config.StripeConfig,
	log *logrus.Logger,
) SubscriptionService {
	if log == nil {
		log = logrus.New()
	}
	var api *stripeclient.API
	if cfg.SecretKey != "" {
		api = &stripeclient.API{}
		api.Init(cfg.SecretKey, nil)
	}
	return &subscriptionService{
		subRepo:  subRepo,
		userRepo: userRepo,
		stripe:   api,
		cfg:      cfg,
		log:      log,
	}
}

// CreateCheckoutSession opens a Stripe subscription checkout for the client.
// The client and tier ride along as metadata so webhook events can be
// attributed without extra lookups.
func (s *subscriptionService) CreateCheckoutSession(ctx context.Context, clientID primitive.ObjectID, priceID, tier string) (string, error) {
	if s.stripe == nil {
		return "", ErrBillingNotConfigured
	}
	if priceID == "" || tier == "" {
		return "", errors.New("price ID and tier are required")
	}

	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrClientNotFound
		}
		return "", err
	}
	if !client.IsClient() {
		return "", ErrClientNotRole
	}

	meta := map[string]string{
		"clientId": clientID.Hex(),
		"tier":     tier,
	}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		CustomerEmail:     stripe.String(client.Email),
		ClientReferenceID: stripe.String(clientID.Hex()),
		Metadata:          meta,
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: meta,
		},
	}
	params.Context = ctx

	sess, err := s.stripe.CheckoutSessions.New(params)
	if err != nil {
		s.log.WithError(err).WithField("clientId", clientID.Hex()).Error("stripe checkout session failed")
		return "", err
	}
	return sess.URL, nil
}

// HandleWebhook verifies the Stripe signature and applies the event. The
// signature check is the authentication for this endpoint. Replayed events
// land on the same subscription document, so handling is idempotent.
func (s *subscriptionService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	if s.cfg.WebhookSecret == "" {
		return ErrBillingNotConfigured
	}

	event, err := webhook.ConstructEvent(payload, sigHeader, s.cfg.WebhookSecret)
	if err != nil {
		return ErrInvalidWebhook
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return ErrInvalidWebhook
		}
		return s.applyActivated(ctx, &sess)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return ErrInvalidWebhook
		}
		return s.applyCanceled(ctx, &sub)

	default:
		// Unhandled event types are acknowledged, not errors.
		s.log.WithField("eventType", event.Type).Debug("ignoring stripe event")
		return nil
	}
}

// GetSubscription returns the client's current subscription record.
func (s *subscriptionService) GetSubscription(ctx context.Context, clientID primitive.ObjectID) (*domain.Subscription, error) {
	sub, err := s.subRepo.GetByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) applyActivated(ctx context.Context, sess *stripe.CheckoutSession) error {
	clientID, err := primitive.ObjectIDFromHex(sess.ClientReferenceID)
	if err != nil {
		return ErrInvalidWebhook
	}
	tier := sess.Metadata["tier"]
	if tier == "" {
		tier = "standard"
	}

	sub := &domain.Subscription{
		ClientID: clientID,
		Tier:     tier,
		Status:   domain.SubscriptionActive,
	}
	if sess.Customer != nil {
		sub.StripeCustomerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		sub.StripeSubscriptionID = sess.Subscription.ID
		// The session event carries only the subscription id; fetch the full
		// object for the billing period bounds.
		if s.stripe != nil {
			if full, err := s.stripe.Subscriptions.Get(sess.Subscription.ID, nil); err == nil {
				start := time.Unix(full.CurrentPeriodStart, 0).UTC()
				end := time.Unix(full.CurrentPeriodEnd, 0).UTC()
				sub.CurrentPeriodStart = &start
				sub.CurrentPeriodEnd = &end
			}
		}
	}

	if err := s.subRepo.Upsert(ctx, sub); err != nil {
		return err
	}
	if err := s.userRepo.SetSubscriptionState(ctx, clientID, tier, string(domain.SubscriptionActive)); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"clientId": clientID.Hex(), "tier": tier}).Info("subscription activated")
	return nil
}

func (s *subscriptionService) applyCanceled(ctx context.Context, stripeSub *stripe.Subscription) error {
	clientID, err := primitive.ObjectIDFromHex(stripeSub.Metadata["clientId"])
	if err != nil {
		return ErrInvalidWebhook
	}

	sub := &domain.Subscription{
		ClientID:             clientID,
		Tier:                 "free",
		Status:               domain.SubscriptionCanceled,
		StripeSubscriptionID: stripeSub.ID,
	}
	if stripeSub.Customer != nil {
		sub.StripeCustomerID = stripeSub.Customer.ID
	}

	if err := s.subRepo.Upsert(ctx, sub); err != nil {
		return err
	}
	if err := s.userRepo.SetSubscriptionState(ctx, clientID, "free", string(domain.SubscriptionCanceled)); err != nil {
		return err
	}
	s.log.WithField("clientId", clientID.Hex()).Info("subscription canceled")
	return nil
}
