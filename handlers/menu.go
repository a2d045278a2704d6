package handlers

import (
	"net/http"

	"food-ordering-api/middleware"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
)

type AddMenuRequest struct {
	Name        string  `form:"name" binding:"required"`
	Description string  `form:"description" binding:"required"`
	Price       float64 `form:"price" binding:"required,gt=0"`
}

// AddMenu adds a dish to the caller's restaurant
func (h *Handler) AddMenu(c *gin.Context) {
	var req AddMenuRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	image, done, err := formImage(c, "image")
	if err != nil {
		badRequest(c, err)
		return
	}
	defer done()

	menu, err := h.Menus.AddMenu(c.Request.Context(), middleware.GetUserID(c), services.MenuInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}, image)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Menu added successfully", "menu": menu})
}

// EditMenu updates the supplied fields of a menu
func (h *Handler) EditMenu(c *gin.Context) {
	price, err := optionalFloat(c, "price")
	if err != nil {
		badRequest(c, err)
		return
	}
	image, done, err := formImage(c, "image")
	if err != nil {
		badRequest(c, err)
		return
	}
	defer done()

	menu, err := h.Menus.EditMenu(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), services.MenuUpdate{
		Name:        optionalString(c, "name"),
		Description: optionalString(c, "description"),
		Price:       price,
	}, image)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Menu updated", "menu": menu})
}
