package handlers

import (
	"net/http"

	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
)

type SignupRequest struct {
	Fullname string `json:"fullname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Contact  string `json:"contact" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// Signup creates a new user account and starts a session
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.Auth.Signup(c.Request.Context(), services.SignupInput{
		Fullname: req.Fullname,
		Email:    req.Email,
		Password: req.Password,
		Contact:  req.Contact,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.startSession(c, user) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Account created successfully",
		"user":    user,
	})
}

// Login authenticates a user and sets the session cookie
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.startSession(c, user) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Welcome back " + user.Fullname,
		"user":    user,
	})
}

func (h *Handler) startSession(c *gin.Context, user *models.User) bool {
	token, err := middleware.GenerateToken(user.ID, h.Secret, h.TokenTTL)
	if err != nil {
		h.respondError(c, err)
		return false
	}
	middleware.SetSessionCookie(c, token, h.TokenTTL, h.SecureCookies)
	return true
}

func (h *Handler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c, h.SecureCookies)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully."})
}

// CheckAuth returns the caller's profile
func (h *Handler) CheckAuth(c *gin.Context) {
	user, err := h.Auth.CurrentUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// UpdateProfile applies the supplied multipart fields to the caller's profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	picture, done, err := formImage(c, "profilePicture")
	if err != nil {
		badRequest(c, err)
		return
	}
	defer done()

	user, err := h.Auth.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), services.ProfileUpdate{
		Fullname: optionalString(c, "fullname"),
		Address:  optionalString(c, "address"),
		City:     optionalString(c, "city"),
		Country:  optionalString(c, "country"),
	}, picture)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated successfully", "user": user})
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset link sent to your email"})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Auth.ResetPassword(c.Request.Context(), c.Param("token"), req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successfully."})
}
