package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"food-ordering-api/events"
	"food-ordering-api/media"
	"food-ordering-api/models"
	"food-ordering-api/statemachine"
	"food-ordering-api/store"

	"github.com/sirupsen/logrus"
)

type RestaurantInput struct {
	RestaurantName string
	City           string
	Country        string
	DeliveryTime   int
	// Cuisines is a JSON encoded list of strings, as sent by multipart clients.
	Cuisines string
}

// RestaurantUpdate leaves nil fields unchanged.
type RestaurantUpdate struct {
	RestaurantName *string
	City           *string
	Country        *string
	DeliveryTime   *int
	Cuisines       *string
}

type restaurantStore interface {
	store.Restaurants
	store.Orders
}

type RestaurantService struct {
	store     restaurantStore
	uploader  media.Uploader
	publisher events.Publisher
	producer  string
	log       logrus.FieldLogger
}

func NewRestaurantService(s restaurantStore, uploader media.Uploader, publisher events.Publisher, producer string, log logrus.FieldLogger) *RestaurantService {
	return &RestaurantService{store: s, uploader: uploader, publisher: publisher, producer: producer, log: log}
}

func (s *RestaurantService) CreateRestaurant(ctx context.Context, userID string, in RestaurantInput, image *media.File) (*models.Restaurant, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := s.store.RestaurantByOwner(ctx, userID, false); err == nil {
		return nil, fmt.Errorf("restaurant for user %s: %w", userID, ErrAlreadyExists)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check restaurant: %w", err)
	}
	if image == nil {
		return nil, ErrMissingImage
	}
	cuisines, err := ParseCuisines(in.Cuisines)
	if err != nil {
		return nil, err
	}
	if in.DeliveryTime < 0 {
		return nil, fmt.Errorf("%w: delivery time must not be negative", ErrInvalidInput)
	}

	url, err := s.uploader.Upload(ctx, image)
	if err != nil {
		return nil, uploadErr(err)
	}
	restaurant := &models.Restaurant{
		UserID:         userID,
		RestaurantName: in.RestaurantName,
		City:           in.City,
		Country:        in.Country,
		DeliveryTime:   in.DeliveryTime,
		Cuisines:       cuisines,
		ImageURL:       url,
	}
	if err := s.store.CreateRestaurant(ctx, restaurant); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("restaurant for user %s: %w", userID, ErrAlreadyExists)
		}
		return nil, fmt.Errorf("create restaurant: %w", err)
	}

	s.log.WithFields(logrus.Fields{"restaurant_id": restaurant.ID, "user_id": userID}).Info("restaurant created")
	return restaurant, nil
}

// GetRestaurant returns the caller's restaurant with its menus.
func (s *RestaurantService) GetRestaurant(ctx context.Context, userID string) (*models.Restaurant, error) {
	restaurant, err := s.store.RestaurantByOwner(ctx, userID, true)
	if err != nil {
		return nil, lookupErr(err, "restaurant")
	}
	return restaurant, nil
}

func (s *RestaurantService) UpdateRestaurant(ctx context.Context, userID string, in RestaurantUpdate, image *media.File) (*models.Restaurant, error) {
	restaurant, err := s.store.RestaurantByOwner(ctx, userID, false)
	if err != nil {
		return nil, lookupErr(err, "restaurant")
	}

	if in.RestaurantName != nil {
		restaurant.RestaurantName = *in.RestaurantName
	}
	if in.City != nil {
		restaurant.City = *in.City
	}
	if in.Country != nil {
		restaurant.Country = *in.Country
	}
	if in.DeliveryTime != nil {
		if *in.DeliveryTime < 0 {
			return nil, fmt.Errorf("%w: delivery time must not be negative", ErrInvalidInput)
		}
		restaurant.DeliveryTime = *in.DeliveryTime
	}
	if in.Cuisines != nil {
		cuisines, err := ParseCuisines(*in.Cuisines)
		if err != nil {
			return nil, err
		}
		restaurant.Cuisines = cuisines
	}
	if image != nil {
		url, err := s.uploader.Upload(ctx, image)
		if err != nil {
			return nil, uploadErr(err)
		}
		restaurant.ImageURL = url
	}
	if err := s.store.UpdateRestaurant(ctx, restaurant); err != nil {
		return nil, fmt.Errorf("update restaurant: %w", err)
	}
	return restaurant, nil
}

// GetRestaurantOrders lists orders placed against the caller's restaurant.
func (s *RestaurantService) GetRestaurantOrders(ctx context.Context, userID string) ([]models.Order, error) {
	restaurant, err := s.store.RestaurantByOwner(ctx, userID, false)
	if err != nil {
		return nil, lookupErr(err, "restaurant")
	}
	orders, err := s.store.OrdersByRestaurant(ctx, restaurant.ID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus moves an order of the caller's restaurant along the status workflow.
func (s *RestaurantService) UpdateOrderStatus(ctx context.Context, userID, orderID, status string) (*models.Order, error) {
	if status == "" {
		return nil, fmt.Errorf("status: %w", ErrMissingField)
	}
	next := models.OrderStatus(strings.ToLower(status))
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if err := validateID(orderID, "order"); err != nil {
		return nil, err
	}
	order, err := s.store.OrderByID(ctx, orderID)
	if err != nil {
		return nil, lookupErr(err, "order")
	}
	restaurant, err := s.store.RestaurantByOwner(ctx, userID, false)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrForbidden)
	}
	if err != nil {
		return nil, fmt.Errorf("load restaurant: %w", err)
	}
	if order.RestaurantID != restaurant.ID {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrForbidden)
	}

	prev := order.Status
	if err := statemachine.CanTransition(prev, next, statemachine.ActorRestaurant); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	order.Status = next
	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	if err := s.store.AddStatusHistory(ctx, &models.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: prev,
		ToStatus:   next,
		ChangedBy:  userID,
	}); err != nil {
		return nil, fmt.Errorf("record status history: %w", err)
	}

	publish(ctx, s.publisher, s.log, s.producer, events.OrderStatusChanged, order.ID, events.OrderStatusChangedPayload{
		OrderID:   order.ID,
		From:      string(prev),
		To:        string(next),
		ChangedBy: userID,
	})
	s.log.WithFields(logrus.Fields{"order_id": order.ID, "from": prev, "to": next}).Info("order status updated")
	return order, nil
}

// SearchRestaurants returns restaurants matching every supplied filter.
func (s *RestaurantService) SearchRestaurants(ctx context.Context, text, query string, cuisines []string) ([]models.Restaurant, error) {
	restaurants, err := s.store.SearchRestaurants(ctx, store.NewSearchFilter(text, query, cuisines))
	if err != nil {
		return nil, fmt.Errorf("search restaurants: %w", err)
	}
	return restaurants, nil
}

// GetSingleRestaurant returns a public restaurant view with menus newest first.
func (s *RestaurantService) GetSingleRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	if err := validateID(id, "restaurant"); err != nil {
		return nil, err
	}
	restaurant, err := s.store.RestaurantByID(ctx, id, true)
	if err != nil {
		return nil, lookupErr(err, "restaurant")
	}
	sort.SliceStable(restaurant.Menus, func(i, j int) bool {
		return restaurant.Menus[i].CreatedAt.After(restaurant.Menus[j].CreatedAt)
	})
	return restaurant, nil
}

// ParseCuisines decodes a JSON list of cuisine names, trimming blanks.
func ParseCuisines(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("cuisines: %w", ErrMissingField)
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("%w: cuisines must be a JSON list of strings", ErrInvalidInput)
	}
	cuisines := make([]string, 0, len(list))
	for _, c := range list {
		if c = strings.TrimSpace(c); c != "" {
			cuisines = append(cuisines, c)
		}
	}
	return cuisines, nil
}

// publish emits an event without failing the caller; the database is the source of truth.
func publish(ctx context.Context, p events.Publisher, log logrus.FieldLogger, producer, eventType, orderID string, payload any) {
	env, err := events.NewEnvelope(producer, eventType, orderID, payload)
	if err == nil {
		err = p.Publish(ctx, env)
	}
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{"event_type": eventType, "order_id": orderID}).Warn("publish event failed")
	}
}
