package handlers

import (
	"net/http"

	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
)

// SignatureHeader carries the payment provider's webhook signature.
const SignatureHeader = "Stripe-Signature"

type CheckoutSessionRequest struct {
	CartItems       []models.CartItem      `json:"cartItems" binding:"required,min=1,dive"`
	DeliveryDetails models.DeliveryDetails `json:"deliveryDetails" binding:"required"`
	RestaurantID    string                 `json:"restaurantId" binding:"required"`
}

// CreateCheckoutSession starts a hosted payment for the caller's cart
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var req CheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session, err := h.Orders.CreateCheckoutSession(c.Request.Context(), middleware.GetUserID(c), services.CheckoutRequest{
		CartItems:       req.CartItems,
		DeliveryDetails: req.DeliveryDetails,
		RestaurantID:    req.RestaurantID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": session})
}

// GetOrders returns the caller's orders, newest first
func (h *Handler) GetOrders(c *gin.Context) {
	orders, err := h.Orders.GetOrders(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(orders), "orders": orders})
}

// StripeWebhook verifies the raw request body and applies payment events.
func (h *Handler) StripeWebhook(c *gin.Context) {
	signature := c.GetHeader(SignatureHeader)
	if signature == "" {
		h.respondError(c, services.ErrMissingSignature)
		return
	}
	payload, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}

	outcome, err := h.Orders.HandleWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "outcome": outcome})
}
