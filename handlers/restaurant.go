package handlers

import (
	"net/http"

	"food-ordering-api/middleware"
	"food-ordering-api/services"
	"food-ordering-api/store"

	"github.com/gin-gonic/gin"
)

type CreateRestaurantRequest struct {
	RestaurantName string `form:"restaurantName" binding:"required"`
	City           string `form:"city" binding:"required"`
	Country        string `form:"country" binding:"required"`
	DeliveryTime   int    `form:"deliveryTime" binding:"required,min=1"`
	Cuisines       string `form:"cuisines" binding:"required"`
}

// CreateRestaurant registers the caller's restaurant
func (h *Handler) CreateRestaurant(c *gin.Context) {
	var req CreateRestaurantRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	image, done, err := formImage(c, "imageFile")
	if err != nil {
		badRequest(c, err)
		return
	}
	defer done()

	restaurant, err := h.Restaurants.CreateRestaurant(c.Request.Context(), middleware.GetUserID(c), services.RestaurantInput{
		RestaurantName: req.RestaurantName,
		City:           req.City,
		Country:        req.Country,
		DeliveryTime:   req.DeliveryTime,
		Cuisines:       req.Cuisines,
	}, image)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Restaurant Added", "restaurant": restaurant})
}

// GetRestaurant returns the caller's restaurant with menus
func (h *Handler) GetRestaurant(c *gin.Context) {
	restaurant, err := h.Restaurants.GetRestaurant(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "restaurant": restaurant})
}

// UpdateRestaurant applies the supplied multipart fields to the caller's restaurant
func (h *Handler) UpdateRestaurant(c *gin.Context) {
	deliveryTime, err := optionalInt(c, "deliveryTime")
	if err != nil {
		badRequest(c, err)
		return
	}
	image, done, err := formImage(c, "imageFile")
	if err != nil {
		badRequest(c, err)
		return
	}
	defer done()

	restaurant, err := h.Restaurants.UpdateRestaurant(c.Request.Context(), middleware.GetUserID(c), services.RestaurantUpdate{
		RestaurantName: optionalString(c, "restaurantName"),
		City:           optionalString(c, "city"),
		Country:        optionalString(c, "country"),
		DeliveryTime:   deliveryTime,
		Cuisines:       optionalString(c, "cuisines"),
	}, image)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Restaurant updated", "restaurant": restaurant})
}

// SearchRestaurant filters restaurants by free text, query and cuisines (public)
func (h *Handler) SearchRestaurant(c *gin.Context) {
	restaurants, err := h.Restaurants.SearchRestaurants(c.Request.Context(),
		c.Param("searchText"),
		c.Query("searchQuery"),
		store.ParseCuisineList(c.Query("selectedCuisines")),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(restaurants), "data": restaurants})
}

// GetSingleRestaurant returns a restaurant with its menus, newest first (public)
func (h *Handler) GetSingleRestaurant(c *gin.Context) {
	restaurant, err := h.Restaurants.GetSingleRestaurant(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "restaurant": restaurant})
}
