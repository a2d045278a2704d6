package services

import (
	"context"
	"errors"
	"fmt"

	"food-ordering-api/media"
	"food-ordering-api/models"
	"food-ordering-api/store"

	"github.com/sirupsen/logrus"
)

type MenuInput struct {
	Name        string
	Description string
	Price       float64
}

// MenuUpdate leaves nil fields unchanged.
type MenuUpdate struct {
	Name        *string
	Description *string
	Price       *float64
}

type menuStore interface {
	store.Restaurants
	store.Menus
}

type MenuService struct {
	store    menuStore
	uploader media.Uploader
	log      logrus.FieldLogger
}

func NewMenuService(s menuStore, uploader media.Uploader, log logrus.FieldLogger) *MenuService {
	return &MenuService{store: s, uploader: uploader, log: log}
}

// AddMenu creates a menu item under the caller's restaurant.
func (s *MenuService) AddMenu(ctx context.Context, userID string, in MenuInput, image *media.File) (*models.Menu, error) {
	if image == nil {
		return nil, ErrMissingImage
	}
	if in.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	restaurant, err := s.store.RestaurantByOwner(ctx, userID, false)
	if err != nil {
		return nil, lookupErr(err, "restaurant")
	}

	url, err := s.uploader.Upload(ctx, image)
	if err != nil {
		return nil, uploadErr(err)
	}
	menu := &models.Menu{
		RestaurantID: restaurant.ID,
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		Image:        url,
	}
	if err := s.store.CreateMenu(ctx, menu); err != nil {
		return nil, fmt.Errorf("create menu: %w", err)
	}
	if err := s.store.AppendMenu(ctx, restaurant.ID, menu.ID); err != nil {
		return nil, fmt.Errorf("attach menu: %w", err)
	}

	s.log.WithFields(logrus.Fields{"menu_id": menu.ID, "restaurant_id": restaurant.ID}).Info("menu added")
	return menu, nil
}

// EditMenu applies a partial update to a menu owned by the caller's restaurant.
func (s *MenuService) EditMenu(ctx context.Context, userID, menuID string, in MenuUpdate, image *media.File) (*models.Menu, error) {
	if err := validateID(menuID, "menu"); err != nil {
		return nil, err
	}
	menu, err := s.store.MenuByID(ctx, menuID)
	if err != nil {
		return nil, lookupErr(err, "menu")
	}
	restaurant, err := s.store.RestaurantByOwner(ctx, userID, true)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("menu %s: %w", menuID, ErrForbidden)
	}
	if err != nil {
		return nil, fmt.Errorf("load restaurant: %w", err)
	}
	if !restaurant.HasMenu(menu.ID) {
		return nil, fmt.Errorf("menu %s: %w", menuID, ErrForbidden)
	}

	if in.Name != nil {
		menu.Name = *in.Name
	}
	if in.Description != nil {
		menu.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
		}
		menu.Price = *in.Price
	}
	if image != nil {
		url, err := s.uploader.Upload(ctx, image)
		if err != nil {
			return nil, uploadErr(err)
		}
		menu.Image = url
	}
	if err := s.store.UpdateMenu(ctx, menu); err != nil {
		return nil, fmt.Errorf("update menu: %w", err)
	}
	return menu, nil
}
