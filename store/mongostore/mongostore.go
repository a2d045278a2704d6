package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"food-ordering-api/models"
	"food-ordering-api/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ store.Store = (*Store)(nil)

// Store keeps restaurants with an ordered array of menu ids, the way the
// document model was originally laid out.
type Store struct {
	client      *mongo.Client
	users       *mongo.Collection
	restaurants *mongo.Collection
	menus       *mongo.Collection
	orders      *mongo.Collection
	history     *mongo.Collection
}

// Connect dials MongoDB, pings it and ensures the unique indexes exist.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := newStore(client, client.Database(database))
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func newStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client:      client,
		users:       db.Collection("users"),
		restaurants: db.Collection("restaurants"),
		menus:       db.Collection("menus"),
		orders:      db.Collection("orders"),
		history:     db.Collection("order_status_history"),
	}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_" + field),
		}
	}
	if _, err := s.users.Indexes().CreateOne(ctx, unique("email")); err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	if _, err := s.restaurants.Indexes().CreateOne(ctx, unique("user")); err != nil {
		return fmt.Errorf("create restaurants index: %w", err)
	}
	if _, err := s.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "restaurant", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("create orders index: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	default:
		return err
	}
}

func stamp(id *string, created, updated *time.Time) {
	now := time.Now().UTC()
	if *id == "" {
		*id = uuid.NewString()
	}
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func findOne[T any](ctx context.Context, c *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	if err := c.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, c *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cur, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func replaceByID(ctx context.Context, c *mongo.Collection, id string, doc interface{}) error {
	res, err := c.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ── Users ───────────────────────────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	stamp(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	_, err := s.users.InsertOne(ctx, u)
	return translate(err)
}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, s.users, bson.M{"_id": id})
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.users, bson.M{"email": email})
}

func (s *Store) UserByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	return findOne[models.User](ctx, s.users, bson.M{
		"resetPasswordToken":          token,
		"resetPasswordTokenExpiresAt": bson.M{"$gt": now},
	})
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, s.users, u.ID, u)
}

// ── Restaurants ─────────────────────────────────────────────────────────────

func (s *Store) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	stamp(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if r.MenuIDs == nil {
		r.MenuIDs = []string{}
	}
	_, err := s.restaurants.InsertOne(ctx, r)
	return translate(err)
}

func (s *Store) RestaurantByID(ctx context.Context, id string, withMenus bool) (*models.Restaurant, error) {
	return s.findRestaurant(ctx, bson.M{"_id": id}, withMenus)
}

func (s *Store) RestaurantByOwner(ctx context.Context, userID string, withMenus bool) (*models.Restaurant, error) {
	return s.findRestaurant(ctx, bson.M{"user": userID}, withMenus)
}

func (s *Store) findRestaurant(ctx context.Context, filter bson.M, withMenus bool) (*models.Restaurant, error) {
	r, err := findOne[models.Restaurant](ctx, s.restaurants, filter)
	if err != nil {
		return nil, err
	}
	if withMenus {
		if err := s.populateMenus(ctx, r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// populateMenus resolves MenuIDs keeping the array order.
func (s *Store) populateMenus(ctx context.Context, r *models.Restaurant) error {
	r.Menus = []models.Menu{}
	if len(r.MenuIDs) == 0 {
		return nil
	}
	menus, err := findAll[models.Menu](ctx, s.menus, bson.M{"_id": bson.M{"$in": r.MenuIDs}})
	if err != nil {
		return err
	}
	byID := make(map[string]models.Menu, len(menus))
	for _, m := range menus {
		byID[m.ID] = m
	}
	for _, id := range r.MenuIDs {
		if m, ok := byID[id]; ok {
			r.Menus = append(r.Menus, m)
		}
	}
	return nil
}

// UpdateRestaurant leaves the menus array alone so it never races AppendMenu.
func (s *Store) UpdateRestaurant(ctx context.Context, r *models.Restaurant) error {
	r.UpdatedAt = time.Now().UTC()
	res, err := s.restaurants.UpdateOne(ctx, bson.M{"_id": r.ID}, bson.M{"$set": bson.M{
		"restaurantName": r.RestaurantName,
		"city":           r.City,
		"country":        r.Country,
		"deliveryTime":   r.DeliveryTime,
		"cuisines":       r.Cuisines,
		"imageUrl":       r.ImageURL,
		"updatedAt":      r.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AppendMenu(ctx context.Context, restaurantID, menuID string) error {
	res, err := s.restaurants.UpdateOne(ctx,
		bson.M{"_id": restaurantID},
		bson.M{
			"$push": bson.M{"menus": menuID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SearchRestaurants(ctx context.Context, f store.SearchFilter) ([]models.Restaurant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findAll[models.Restaurant](ctx, s.restaurants, SearchQuery(f), opts)
}

// SearchQuery builds the conjunctive filter document for f.
func SearchQuery(f store.SearchFilter) bson.M {
	var and bson.A
	if f.Text != "" {
		re := containsIgnoreCase(f.Text)
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"restaurantName": re},
			bson.M{"city": re},
			bson.M{"country": re},
		}})
	}
	if f.Query != "" {
		re := containsIgnoreCase(f.Query)
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"restaurantName": re},
			bson.M{"cuisines": re},
		}})
	}
	if len(f.Cuisines) > 0 {
		and = append(and, bson.M{"cuisines": bson.M{"$in": f.Cuisines}})
	}
	if len(and) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": and}
}

func containsIgnoreCase(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// ── Menus ───────────────────────────────────────────────────────────────────

func (s *Store) CreateMenu(ctx context.Context, m *models.Menu) error {
	stamp(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	_, err := s.menus.InsertOne(ctx, m)
	return translate(err)
}

func (s *Store) MenuByID(ctx context.Context, id string) (*models.Menu, error) {
	return findOne[models.Menu](ctx, s.menus, bson.M{"_id": id})
}

func (s *Store) UpdateMenu(ctx context.Context, m *models.Menu) error {
	m.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, s.menus, m.ID, m)
}

// ── Orders ──────────────────────────────────────────────────────────────────

func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	stamp(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	_, err := s.orders.InsertOne(ctx, o)
	return translate(err)
}

func (s *Store) OrderByID(ctx context.Context, id string) (*models.Order, error) {
	return findOne[models.Order](ctx, s.orders, bson.M{"_id": id})
}

func (s *Store) OrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.findOrders(ctx, bson.M{"user": userID})
}

func (s *Store) OrdersByRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error) {
	return s.findOrders(ctx, bson.M{"restaurant": restaurantID})
}

func (s *Store) findOrders(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	orders, err := findAll[models.Order](ctx, s.orders, filter, opts)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	var restaurantIDs, userIDs []string
	for _, o := range orders {
		restaurantIDs = append(restaurantIDs, o.RestaurantID)
		userIDs = append(userIDs, o.UserID)
	}
	restaurants, err := findAll[models.Restaurant](ctx, s.restaurants, bson.M{"_id": bson.M{"$in": restaurantIDs}})
	if err != nil {
		return nil, err
	}
	users, err := findAll[models.User](ctx, s.users, bson.M{"_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, err
	}
	rByID := make(map[string]*models.Restaurant, len(restaurants))
	for i := range restaurants {
		rByID[restaurants[i].ID] = &restaurants[i]
	}
	uByID := make(map[string]*models.User, len(users))
	for i := range users {
		uByID[users[i].ID] = &users[i]
	}
	for i := range orders {
		orders[i].Restaurant = rByID[orders[i].RestaurantID]
		orders[i].User = uByID[orders[i].UserID]
	}
	return orders, nil
}

func (s *Store) UpdateOrder(ctx context.Context, o *models.Order) error {
	o.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, s.orders, o.ID, o)
}

func (s *Store) AddStatusHistory(ctx context.Context, h *models.OrderStatusHistory) error {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	_, err := s.history.InsertOne(ctx, h)
	return translate(err)
}
