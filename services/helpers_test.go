package services_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"food-ordering-api/config"
	"food-ordering-api/events"
	"food-ordering-api/media"
	"food-ordering-api/models"
	"food-ordering-api/payment"
	"food-ordering-api/store/gormstore"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *gormstore.Store {
	t.Helper()
	db, err := config.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	s := gormstore.New(db)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func newLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

func seedUser(t *testing.T, s *gormstore.Store, email string) *models.User {
	t.Helper()
	u := &models.User{Fullname: "User " + email, Email: email, PasswordHash: "x"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func seedRestaurant(t *testing.T, s *gormstore.Store, ownerID string, menus ...models.Menu) *models.Restaurant {
	t.Helper()
	ctx := context.Background()
	r := &models.Restaurant{
		UserID:         ownerID,
		RestaurantName: "Spice Route",
		City:           "Pune",
		Country:        "India",
		DeliveryTime:   30,
		Cuisines:       []string{"Indian"},
		ImageURL:       "http://img/r.jpg",
	}
	require.NoError(t, s.CreateRestaurant(ctx, r))
	for i := range menus {
		menus[i].RestaurantID = r.ID
		require.NoError(t, s.CreateMenu(ctx, &menus[i]))
		require.NoError(t, s.AppendMenu(ctx, r.ID, menus[i].ID))
	}
	r.Menus = menus
	return r
}

func image() *media.File {
	return &media.File{Name: "dish.png", Content: bytes.NewReader([]byte("png"))}
}

type fakeUploader struct {
	err   error
	calls int
}

func (u *fakeUploader) Upload(_ context.Context, f *media.File) (string, error) {
	u.calls++
	if u.err != nil {
		return "", u.err
	}
	return "http://img/" + f.Name, nil
}

type fakeGateway struct {
	session *payment.Session
	err     error
	event   *payment.Event
	evErr   error
	lastReq payment.SessionRequest
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	g.lastReq = req
	return g.session, g.err
}

func (g *fakeGateway) VerifyEvent([]byte, string) (*payment.Event, error) {
	return g.event, g.evErr
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Envelope
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType
	}
	return out
}

type memDeduper struct {
	mu      sync.Mutex
	claimed map[string]bool
	err     error
}

func newMemDeduper() *memDeduper { return &memDeduper{claimed: map[string]bool{}} }

func (d *memDeduper) Claim(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	if d.claimed[id] {
		return false, nil
	}
	d.claimed[id] = true
	return true, nil
}

func (d *memDeduper) Release(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.claimed, id)
	return nil
}

var errBoom = errors.New("boom")
