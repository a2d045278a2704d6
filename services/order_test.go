package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"food-ordering-api/events"
	"food-ordering-api/models"
	"food-ordering-api/payment"
	"food-ordering-api/services"
	"food-ordering-api/store/gormstore"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	svc      *services.OrderService
	store    *gormstore.Store
	gateway  *fakeGateway
	dedup    *memDeduper
	pub      *recordingPublisher
	customer *models.User
	rest     *models.Restaurant
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	s := newStore(t)
	log, _ := newLogger()
	f := &orderFixture{
		store:   s,
		gateway: &fakeGateway{session: &payment.Session{ID: "cs_1", URL: "https://pay.test/cs_1"}},
		dedup:   newMemDeduper(),
		pub:     &recordingPublisher{},
	}
	f.svc = services.NewOrderService(s, f.gateway, f.dedup, f.pub, services.CheckoutConfig{
		Currency:   "inr",
		SuccessURL: "http://front.test/order/status",
		CancelURL:  "http://front.test/cart",
		Producer:   "test",
	}, log)
	owner := seedUser(t, s, "owner@example.com")
	f.customer = seedUser(t, s, "customer@example.com")
	f.rest = seedRestaurant(t, s, owner.ID,
		models.Menu{Name: "Dal", Price: 120.5, Image: "http://img/dal.jpg"},
		models.Menu{Name: "Naan", Price: 30, Image: "http://img/naan.jpg"},
	)
	return f
}

func (f *orderFixture) request() services.CheckoutRequest {
	return services.CheckoutRequest{
		RestaurantID:    f.rest.ID,
		DeliveryDetails: models.DeliveryDetails{Name: "Ann", Email: "ann@example.com", Address: "1 Main", City: "Pune"},
		CartItems: []models.CartItem{
			{MenuID: f.rest.Menus[0].ID, Name: "Dal", Price: 120.5, Quantity: 2},
			{MenuID: f.rest.Menus[1].ID, Name: "Naan", Price: 30, Quantity: 1},
		},
	}
}

func TestBuildLineItems(t *testing.T) {
	menus := []models.Menu{{ID: "a", Name: "Dal", Price: 19.99, Image: "http://img/dal.jpg"}, {ID: "b", Name: "Tea", Price: 0.1}}

	items, err := services.BuildLineItems([]models.CartItem{{MenuID: "a", Price: 1, Quantity: 3}, {MenuID: "b", Quantity: 1}}, menus)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, payment.LineItem{Name: "Dal", Images: []string{"http://img/dal.jpg"}, UnitAmount: 1999, Quantity: 3}, items[0])
	assert.EqualValues(t, 10, items[1].UnitAmount)
	assert.Empty(t, items[1].Images)

	_, err = services.BuildLineItems([]models.CartItem{{MenuID: "zzz", Quantity: 1}}, menus)
	assert.ErrorIs(t, err, services.ErrLineItemNotFound)
}

func TestOrder_CreateCheckoutSession(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	sess, err := f.svc.CreateCheckoutSession(ctx, f.customer.ID, f.request())
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/cs_1", sess.URL)

	req := f.gateway.lastReq
	assert.Equal(t, "inr", req.Currency)
	require.Len(t, req.LineItems, 2)
	assert.EqualValues(t, 12050, req.LineItems[0].UnitAmount)
	assert.EqualValues(t, 2, req.LineItems[0].Quantity)
	var images []string
	require.NoError(t, json.Unmarshal([]byte(req.Metadata["images"]), &images))
	assert.Equal(t, []string{"http://img/dal.jpg", "http://img/naan.jpg"}, images)

	orders, err := f.store.OrdersByUser(ctx, f.customer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	order := orders[0]
	assert.Equal(t, order.ID, req.Metadata[payment.MetadataOrderID])
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, "cs_1", order.SessionID)
	assert.Equal(t, f.request().CartItems, order.CartItems)
	assert.Equal(t, []string{events.OrderCreated}, f.pub.types())
}

func TestOrder_CreateCheckoutSessionFailuresPersistNothing(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown menu item", func(t *testing.T) {
		f := newOrderFixture(t)
		req := f.request()
		req.CartItems[1].MenuID = "7b0e4c1c-3f4f-4a55-9a55-000000000000"
		_, err := f.svc.CreateCheckoutSession(ctx, f.customer.ID, req)
		assert.ErrorIs(t, err, services.ErrLineItemNotFound)
		assert.Zero(t, f.gateway.lastReq, "no session is opened for an unpriceable cart")
		assertNoOrders(t, f)
	})

	t.Run("session without url", func(t *testing.T) {
		f := newOrderFixture(t)
		f.gateway.session = &payment.Session{ID: "cs_1"}
		_, err := f.svc.CreateCheckoutSession(ctx, f.customer.ID, f.request())
		assert.ErrorIs(t, err, services.ErrSessionCreationFailed)
		assertNoOrders(t, f)
	})

	t.Run("provider error", func(t *testing.T) {
		f := newOrderFixture(t)
		f.gateway.session, f.gateway.err = nil, errBoom
		_, err := f.svc.CreateCheckoutSession(ctx, f.customer.ID, f.request())
		assert.ErrorIs(t, err, errBoom)
		assertNoOrders(t, f)
	})

	t.Run("unknown restaurant", func(t *testing.T) {
		f := newOrderFixture(t)
		req := f.request()
		req.RestaurantID = "7b0e4c1c-3f4f-4a55-9a55-000000000000"
		_, err := f.svc.CreateCheckoutSession(ctx, f.customer.ID, req)
		assert.ErrorIs(t, err, services.ErrNotFound)
		assert.Zero(t, f.gateway.lastReq)
	})

	t.Run("anonymous", func(t *testing.T) {
		f := newOrderFixture(t)
		_, err := f.svc.CreateCheckoutSession(ctx, "", f.request())
		assert.ErrorIs(t, err, services.ErrUnauthenticated)
	})
}

type historyFailingStore struct {
	*gormstore.Store
}

func (historyFailingStore) AddStatusHistory(context.Context, *models.OrderStatusHistory) error {
	return errBoom
}

func TestOrder_CreateCheckoutSessionSurvivesHistoryFailure(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	log, hook := newLogger()
	svc := services.NewOrderService(historyFailingStore{f.store}, f.gateway, f.dedup, f.pub, services.CheckoutConfig{
		Currency: "inr", Producer: "test",
	}, log)

	sess, err := svc.CreateCheckoutSession(ctx, f.customer.ID, f.request())
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/cs_1", sess.URL)

	orders, err := f.store.OrdersByUser(ctx, f.customer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "cs_1", orders[0].SessionID)
	assert.Equal(t, []string{events.OrderCreated}, f.pub.types())

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data[logrus.ErrorKey] == errBoom {
			warned = true
		}
	}
	assert.True(t, warned, "history failure is logged")
}

func assertNoOrders(t *testing.T, f *orderFixture) {
	t.Helper()
	orders, err := f.store.OrdersByUser(context.Background(), f.customer.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, f.pub.types())
}

func TestOrder_HandleWebhookConfirmsOnce(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateCheckoutSession(ctx, f.customer.ID, f.request())
	require.NoError(t, err)
	orderID := f.gateway.lastReq.Metadata[payment.MetadataOrderID]

	f.gateway.event = &payment.Event{ID: "evt_1", Type: payment.EventCheckoutCompleted, OrderID: orderID, AmountTotal: 27100}
	outcome, err := f.svc.HandleWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeConfirmed, outcome)

	order, err := f.store.OrderByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, order.Status)
	assert.EqualValues(t, 27100, order.TotalAmount)

	// Same event redelivered.
	outcome, err = f.svc.HandleWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeDuplicate, outcome)

	// A different event for an already confirmed order.
	f.gateway.event = &payment.Event{ID: "evt_2", Type: payment.EventCheckoutCompleted, OrderID: orderID, AmountTotal: 1}
	outcome, err = f.svc.HandleWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeAlreadyProcessed, outcome)

	order, err = f.store.OrderByID(ctx, orderID)
	require.NoError(t, err)
	assert.EqualValues(t, 27100, order.TotalAmount)
	assert.Equal(t, []string{events.OrderCreated, events.OrderConfirmed}, f.pub.types())
}

func TestOrder_HandleWebhookOutcomes(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		event *payment.Event
		want  string
	}{
		{"other event type", &payment.Event{ID: "evt_a", Type: "payment_intent.created"}, services.OutcomeIgnored},
		{"missing order reference", &payment.Event{ID: "evt_b", Type: payment.EventCheckoutCompleted}, services.OutcomeMissingOrderRef},
		{"unknown order", &payment.Event{ID: "evt_c", Type: payment.EventCheckoutCompleted, OrderID: "7b0e4c1c-3f4f-4a55-9a55-000000000000"}, services.OutcomeOrderNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t)
			f.gateway.event = tt.event
			outcome, err := f.svc.HandleWebhook(ctx, []byte("{}"), "sig")
			require.NoError(t, err)
			assert.Equal(t, tt.want, outcome)
			assert.Empty(t, f.pub.types())
		})
	}
}

func TestOrder_HandleWebhookSignatureErrors(t *testing.T) {
	f := newOrderFixture(t)
	f.gateway.evErr = payment.ErrInvalidSignature
	_, err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "bad")
	assert.ErrorIs(t, err, services.ErrInvalidSignature)
}

func TestOrder_HandleWebhookWithoutDedupFallsBackToOrderState(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateCheckoutSession(ctx, f.customer.ID, f.request())
	require.NoError(t, err)
	orderID := f.gateway.lastReq.Metadata[payment.MetadataOrderID]
	f.dedup.err = errBoom

	f.gateway.event = &payment.Event{ID: "evt_1", Type: payment.EventCheckoutCompleted, OrderID: orderID, AmountTotal: 100}
	outcome, err := f.svc.HandleWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeConfirmed, outcome)

	outcome, err = f.svc.HandleWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeAlreadyProcessed, outcome)
}

func TestOrder_GetOrders(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateCheckoutSession(ctx, f.customer.ID, f.request())
	require.NoError(t, err)

	orders, err := f.svc.GetOrders(ctx, f.customer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].Restaurant)
	assert.Equal(t, f.rest.RestaurantName, orders[0].Restaurant.RestaurantName)

	_, err = f.svc.GetOrders(ctx, "")
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}
