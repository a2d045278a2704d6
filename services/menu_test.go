package services_test

import (
	"context"
	"fmt"
	"testing"

	"food-ordering-api/media"
	"food-ordering-api/models"
	"food-ordering-api/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenu_AddMenu(t *testing.T) {
	s := newStore(t)
	log, _ := newLogger()
	up := &fakeUploader{}
	svc := services.NewMenuService(s, up, log)
	ctx := context.Background()
	owner := seedUser(t, s, "owner@example.com")
	r := seedRestaurant(t, s, owner.ID)

	menu, err := svc.AddMenu(ctx, owner.ID, services.MenuInput{Name: "Dal", Description: "Lentils", Price: 120}, image())
	require.NoError(t, err)
	assert.Equal(t, r.ID, menu.RestaurantID)
	assert.Equal(t, "http://img/dish.png", menu.Image)

	got, err := s.RestaurantByID(ctx, r.ID, true)
	require.NoError(t, err)
	require.Len(t, got.Menus, 1)
	assert.Equal(t, menu.ID, got.Menus[0].ID)
}

func TestMenu_AddMenuRejections(t *testing.T) {
	s := newStore(t)
	log, _ := newLogger()
	up := &fakeUploader{}
	svc := services.NewMenuService(s, up, log)
	ctx := context.Background()
	owner := seedUser(t, s, "owner@example.com")
	stranger := seedUser(t, s, "stranger@example.com")
	seedRestaurant(t, s, owner.ID)

	_, err := svc.AddMenu(ctx, owner.ID, services.MenuInput{Name: "Dal", Price: 120}, nil)
	assert.ErrorIs(t, err, services.ErrMissingImage)

	_, err = svc.AddMenu(ctx, owner.ID, services.MenuInput{Name: "Dal", Price: 0}, image())
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = svc.AddMenu(ctx, stranger.ID, services.MenuInput{Name: "Dal", Price: 10}, image())
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Zero(t, up.calls)

	up.err = fmt.Errorf("decode: %w", media.ErrUnsupportedImage)
	_, err = svc.AddMenu(ctx, owner.ID, services.MenuInput{Name: "Dal", Price: 10}, image())
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestMenu_EditMenu(t *testing.T) {
	s := newStore(t)
	log, _ := newLogger()
	svc := services.NewMenuService(s, &fakeUploader{}, log)
	ctx := context.Background()
	owner := seedUser(t, s, "owner@example.com")
	r := seedRestaurant(t, s, owner.ID, models.Menu{Name: "Dal", Description: "Lentils", Price: 120, Image: "http://img/old.jpg"})
	menuID := r.Menus[0].ID

	price := 150.5
	menu, err := svc.EditMenu(ctx, owner.ID, menuID, services.MenuUpdate{Price: &price}, nil)
	require.NoError(t, err)
	assert.Equal(t, 150.5, menu.Price)
	assert.Equal(t, "Dal", menu.Name)
	assert.Equal(t, "http://img/old.jpg", menu.Image)

	stored, err := s.MenuByID(ctx, menuID)
	require.NoError(t, err)
	assert.Equal(t, 150.5, stored.Price)
	assert.Equal(t, "Lentils", stored.Description)
}

func TestMenu_EditMenuRejections(t *testing.T) {
	s := newStore(t)
	log, _ := newLogger()
	svc := services.NewMenuService(s, &fakeUploader{}, log)
	ctx := context.Background()
	owner := seedUser(t, s, "owner@example.com")
	other := seedUser(t, s, "other@example.com")
	r := seedRestaurant(t, s, owner.ID, models.Menu{Name: "Dal", Price: 120})
	seedRestaurant(t, s, other.ID)
	name := "Stolen"

	_, err := svc.EditMenu(ctx, owner.ID, "not-a-uuid", services.MenuUpdate{Name: &name}, nil)
	assert.ErrorIs(t, err, services.ErrInvalidID)

	_, err = svc.EditMenu(ctx, owner.ID, "7b0e4c1c-3f4f-4a55-9a55-000000000000", services.MenuUpdate{Name: &name}, nil)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = svc.EditMenu(ctx, other.ID, r.Menus[0].ID, services.MenuUpdate{Name: &name}, nil)
	assert.ErrorIs(t, err, services.ErrForbidden)

	stored, err := s.MenuByID(ctx, r.Menus[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Dal", stored.Name)
}
