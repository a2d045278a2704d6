// Package store defines the persistence contracts used by the services.
// gormstore and mongostore provide the relational and document backends.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"food-ordering-api/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByResetToken only matches tokens that expire after now.
	UserByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
}

type Restaurants interface {
	CreateRestaurant(ctx context.Context, r *models.Restaurant) error
	// RestaurantByID and RestaurantByOwner populate Menus, oldest first, when withMenus is set.
	RestaurantByID(ctx context.Context, id string, withMenus bool) (*models.Restaurant, error)
	RestaurantByOwner(ctx context.Context, userID string, withMenus bool) (*models.Restaurant, error)
	UpdateRestaurant(ctx context.Context, r *models.Restaurant) error
	AppendMenu(ctx context.Context, restaurantID, menuID string) error
	SearchRestaurants(ctx context.Context, f SearchFilter) ([]models.Restaurant, error)
}

type Menus interface {
	CreateMenu(ctx context.Context, m *models.Menu) error
	MenuByID(ctx context.Context, id string) (*models.Menu, error)
	UpdateMenu(ctx context.Context, m *models.Menu) error
}

type Orders interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	OrderByID(ctx context.Context, id string) (*models.Order, error)
	// OrdersByUser and OrdersByRestaurant join Restaurant and User, newest first.
	OrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	OrdersByRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error)
	UpdateOrder(ctx context.Context, o *models.Order) error
	AddStatusHistory(ctx context.Context, h *models.OrderStatusHistory) error
}

// Store groups every repository a backend must provide.
type Store interface {
	Users
	Restaurants
	Menus
	Orders
	Close(ctx context.Context) error
}

// SearchFilter is a conjunction: every non-empty part must match.
type SearchFilter struct {
	// Text matches name, city or country, case-insensitively.
	Text string
	// Query matches name or any cuisine, case-insensitively.
	Query string
	// Cuisines requires at least one exact cuisine match.
	Cuisines []string
}

// NewSearchFilter trims the inputs and drops empty cuisine entries.
func NewSearchFilter(text, query string, cuisines []string) SearchFilter {
	f := SearchFilter{Text: strings.TrimSpace(text), Query: strings.TrimSpace(query)}
	for _, c := range cuisines {
		if c = strings.TrimSpace(c); c != "" {
			f.Cuisines = append(f.Cuisines, c)
		}
	}
	return f
}

// Matches reports whether r satisfies every non-empty part of the filter.
// Case folding is Unicode aware, unlike SQLite's LOWER.
func (f SearchFilter) Matches(r *models.Restaurant) bool {
	if f.Text != "" && !containsFold(f.Text, r.RestaurantName, r.City, r.Country) {
		return false
	}
	if f.Query != "" && !containsFold(f.Query, append([]string{r.RestaurantName}, r.Cuisines...)...) {
		return false
	}
	if len(f.Cuisines) == 0 {
		return true
	}
	for _, want := range f.Cuisines {
		for _, c := range r.Cuisines {
			if c == want {
				return true
			}
		}
	}
	return false
}

func containsFold(needle string, fields ...string) bool {
	needle = strings.ToLower(needle)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// ParseCuisineList splits a comma separated query value.
func ParseCuisineList(raw string) []string {
	if raw == "" {
		return nil
	}
	return NewSearchFilter("", "", strings.Split(raw, ",")).Cuisines
}
