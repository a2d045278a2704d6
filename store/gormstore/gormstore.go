package gormstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"food-ordering-api/models"
	"food-ordering-api/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return store.ErrDuplicate
	default:
		return err
	}
}

func menusOldestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at asc")
}

// ── Users ───────────────────────────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) UserByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("reset_password_token = ? AND reset_password_token_expires > ?", token, now).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Save(u).Error)
}

// ── Restaurants ─────────────────────────────────────────────────────────────

func (s *Store) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(r).Error)
}

func (s *Store) RestaurantByID(ctx context.Context, id string, withMenus bool) (*models.Restaurant, error) {
	return s.findRestaurant(ctx, withMenus, "id = ?", id)
}

func (s *Store) RestaurantByOwner(ctx context.Context, userID string, withMenus bool) (*models.Restaurant, error) {
	return s.findRestaurant(ctx, withMenus, "user_id = ?", userID)
}

func (s *Store) findRestaurant(ctx context.Context, withMenus bool, query string, arg string) (*models.Restaurant, error) {
	q := s.db.WithContext(ctx)
	if withMenus {
		q = q.Preload("Menus", menusOldestFirst)
	}
	var r models.Restaurant
	if err := q.Where(query, arg).First(&r).Error; err != nil {
		return nil, translate(err)
	}
	r.MenuIDs = make([]string, len(r.Menus))
	for i, m := range r.Menus {
		r.MenuIDs[i] = m.ID
	}
	return &r, nil
}

func (s *Store) UpdateRestaurant(ctx context.Context, r *models.Restaurant) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Save(r).Error)
}

// AppendMenu sets the menu row's restaurant_id; list order follows creation time.
// A menu created with RestaurantID already carries the link, so the call then
// only confirms the row exists.
func (s *Store) AppendMenu(ctx context.Context, restaurantID, menuID string) error {
	res := s.db.WithContext(ctx).Model(&models.Menu{}).
		Where("id = ?", menuID).
		Update("restaurant_id", restaurantID)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SearchRestaurants narrows by cuisine membership in SQL and applies the
// text filters in Go, since SQLite's LOWER only folds ASCII.
func (s *Store) SearchRestaurants(ctx context.Context, f store.SearchFilter) ([]models.Restaurant, error) {
	q := s.db.WithContext(ctx).Model(&models.Restaurant{})
	if len(f.Cuisines) > 0 {
		q = q.Where("EXISTS (SELECT 1 FROM json_each(restaurants.cuisines) WHERE json_each.value IN ?)", f.Cuisines)
	}

	var candidates []models.Restaurant
	if err := q.Order("created_at desc").Find(&candidates).Error; err != nil {
		return nil, err
	}
	restaurants := candidates[:0]
	for i := range candidates {
		if f.Matches(&candidates[i]) {
			restaurants = append(restaurants, candidates[i])
		}
	}
	return restaurants, nil
}

// ── Menus ───────────────────────────────────────────────────────────────────

func (s *Store) CreateMenu(ctx context.Context, m *models.Menu) error {
	return translate(s.db.WithContext(ctx).Create(m).Error)
}

func (s *Store) MenuByID(ctx context.Context, id string) (*models.Menu, error) {
	var m models.Menu
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *Store) UpdateMenu(ctx context.Context, m *models.Menu) error {
	return translate(s.db.WithContext(ctx).Save(m).Error)
}

// ── Orders ──────────────────────────────────────────────────────────────────

func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error)
}

func (s *Store) OrderByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := s.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (s *Store) OrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.findOrders(ctx, "user_id = ?", userID)
}

func (s *Store) OrdersByRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error) {
	return s.findOrders(ctx, "restaurant_id = ?", restaurantID)
}

func (s *Store) findOrders(ctx context.Context, query, arg string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Restaurant").
		Preload("User").
		Where(query, arg).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) UpdateOrder(ctx context.Context, o *models.Order) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Save(o).Error)
}

func (s *Store) AddStatusHistory(ctx context.Context, h *models.OrderStatusHistory) error {
	return translate(s.db.WithContext(ctx).Create(h).Error)
}
