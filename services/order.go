package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"food-ordering-api/dedup"
	"food-ordering-api/events"
	"food-ordering-api/models"
	"food-ordering-api/payment"
	"food-ordering-api/statemachine"
	"food-ordering-api/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// WebhookChangedBy is recorded in status history for provider-driven transitions.
const WebhookChangedBy = "stripe"

// Webhook outcomes. Only OutcomeConfirmed changes state.
const (
	OutcomeConfirmed        = "confirmed"
	OutcomeIgnored          = "ignored"
	OutcomeDuplicate        = "duplicate"
	OutcomeAlreadyProcessed = "already_processed"
	OutcomeMissingOrderRef  = "missing_order_reference"
	OutcomeOrderNotFound    = "order_not_found"
)

type CheckoutRequest struct {
	CartItems       []models.CartItem
	DeliveryDetails models.DeliveryDetails
	RestaurantID    string
}

type CheckoutConfig struct {
	Currency   string
	SuccessURL string
	CancelURL  string
	Producer   string
}

type orderStore interface {
	store.Restaurants
	store.Orders
}

type OrderService struct {
	store     orderStore
	gateway   payment.Gateway
	dedup     dedup.Deduper
	publisher events.Publisher
	cfg       CheckoutConfig
	log       logrus.FieldLogger
}

func NewOrderService(s orderStore, gateway payment.Gateway, d dedup.Deduper, publisher events.Publisher, cfg CheckoutConfig, log logrus.FieldLogger) *OrderService {
	return &OrderService{store: s, gateway: gateway, dedup: d, publisher: publisher, cfg: cfg, log: log}
}

// BuildLineItems prices each cart item from the restaurant's menu.
// Client supplied prices are never trusted.
func BuildLineItems(items []models.CartItem, menus []models.Menu) ([]payment.LineItem, error) {
	byID := make(map[string]models.Menu, len(menus))
	for _, m := range menus {
		byID[m.ID] = m
	}
	hundred := decimal.NewFromInt(100)

	lineItems := make([]payment.LineItem, 0, len(items))
	for _, item := range items {
		menu, ok := byID[item.MenuID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrLineItemNotFound, item.MenuID)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity for %s must be at least 1", ErrInvalidInput, item.MenuID)
		}
		var images []string
		if menu.Image != "" {
			images = []string{menu.Image}
		}
		lineItems = append(lineItems, payment.LineItem{
			Name:       menu.Name,
			Images:     images,
			UnitAmount: decimal.NewFromFloat(menu.Price).Mul(hundred).Round(0).IntPart(),
			Quantity:   int64(item.Quantity),
		})
	}
	return lineItems, nil
}

// CreateCheckoutSession opens a hosted payment session for the cart and records a pending order.
// The order is only persisted once the provider returned a session URL.
func (s *OrderService) CreateCheckoutSession(ctx context.Context, userID string, req CheckoutRequest) (*payment.Session, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if len(req.CartItems) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrInvalidInput)
	}
	if err := validateID(req.RestaurantID, "restaurant"); err != nil {
		return nil, err
	}
	restaurant, err := s.store.RestaurantByID(ctx, req.RestaurantID, true)
	if err != nil {
		return nil, lookupErr(err, "restaurant")
	}

	lineItems, err := BuildLineItems(req.CartItems, restaurant.Menus)
	if err != nil {
		return nil, err
	}
	var images []string
	for _, li := range lineItems {
		images = append(images, li.Images...)
	}
	rawImages, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}

	order := &models.Order{
		ID:              uuid.NewString(),
		RestaurantID:    restaurant.ID,
		UserID:          userID,
		DeliveryDetails: req.DeliveryDetails,
		CartItems:       req.CartItems,
		Status:          models.StatusPending,
	}
	sess, err := s.gateway.CreateCheckoutSession(ctx, payment.SessionRequest{
		Currency:   s.cfg.Currency,
		LineItems:  lineItems,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
		Metadata: map[string]string{
			payment.MetadataOrderID: order.ID,
			"images":                string(rawImages),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	if sess == nil || sess.URL == "" {
		return nil, ErrSessionCreationFailed
	}

	order.SessionID = sess.ID
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if err := s.store.AddStatusHistory(ctx, &models.OrderStatusHistory{
		OrderID:   order.ID,
		ToStatus:  models.StatusPending,
		ChangedBy: userID,
		Note:      "checkout session created",
	}); err != nil {
		// The order and its payment session exist; a lost audit row must not hide them.
		s.log.WithError(err).WithField("order_id", order.ID).Warn("failed to record checkout status history")
	}

	publish(ctx, s.publisher, s.log, s.cfg.Producer, events.OrderCreated, order.ID, events.OrderCreatedPayload{
		OrderID:      order.ID,
		RestaurantID: order.RestaurantID,
		UserID:       userID,
		SessionID:    sess.ID,
		Items:        len(order.CartItems),
	})
	s.log.WithFields(logrus.Fields{"order_id": order.ID, "session_id": sess.ID}).Info("checkout session created")
	return sess, nil
}

// GetOrders lists the caller's orders, newest first.
func (s *OrderService) GetOrders(ctx context.Context, userID string) ([]models.Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	orders, err := s.store.OrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// HandleWebhook verifies a provider notification and confirms the referenced order.
// Signature failures and storage errors are returned; every other outcome is
// acknowledged so the provider stops retrying.
func (s *OrderService) HandleWebhook(ctx context.Context, payload []byte, signature string) (string, error) {
	ev, err := s.gateway.VerifyEvent(payload, signature)
	if err != nil {
		return "", err
	}
	log := s.log.WithFields(logrus.Fields{"event_id": ev.ID, "event_type": ev.Type})
	if ev.Type != payment.EventCheckoutCompleted {
		log.Debug("ignoring webhook event")
		return OutcomeIgnored, nil
	}

	claimed, err := s.dedup.Claim(ctx, ev.ID)
	if err != nil {
		log.WithError(err).Warn("dedup unavailable, relying on order state")
		claimed = true
	}
	if !claimed {
		log.Info("duplicate webhook delivery")
		return OutcomeDuplicate, nil
	}

	outcome, err := s.confirmOrder(ctx, ev)
	if err != nil {
		if rerr := s.dedup.Release(ctx, ev.ID); rerr != nil {
			log.WithError(rerr).Warn("release dedup claim failed")
		}
		return "", err
	}
	log.WithFields(logrus.Fields{"order_id": ev.OrderID, "outcome": outcome}).Info("webhook handled")
	return outcome, nil
}

func (s *OrderService) confirmOrder(ctx context.Context, ev *payment.Event) (string, error) {
	if ev.OrderID == "" {
		s.log.WithField("event_id", ev.ID).WithError(ErrMissingOrderReference).Warn("webhook without order reference")
		return OutcomeMissingOrderRef, nil
	}
	order, err := s.store.OrderByID(ctx, ev.OrderID)
	if errors.Is(err, store.ErrNotFound) {
		s.log.WithField("order_id", ev.OrderID).Warn("webhook for unknown order")
		return OutcomeOrderNotFound, nil
	}
	if err != nil {
		return "", fmt.Errorf("load order: %w", err)
	}
	if statemachine.CanTransition(order.Status, models.StatusConfirmed, statemachine.ActorPayment) != nil {
		return OutcomeAlreadyProcessed, nil
	}

	prev := order.Status
	order.Status = models.StatusConfirmed
	order.TotalAmount = ev.AmountTotal
	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return "", fmt.Errorf("confirm order: %w", err)
	}
	if err := s.store.AddStatusHistory(ctx, &models.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: prev,
		ToStatus:   models.StatusConfirmed,
		ChangedBy:  WebhookChangedBy,
		Note:       "payment completed",
	}); err != nil {
		return "", fmt.Errorf("record status history: %w", err)
	}

	publish(ctx, s.publisher, s.log, s.cfg.Producer, events.OrderConfirmed, order.ID, events.OrderConfirmedPayload{
		OrderID:     order.ID,
		AmountTotal: ev.AmountTotal,
		PaymentRef:  ev.ID,
	})
	return OutcomeConfirmed, nil
}
