// Package handlers adapts HTTP requests to the services layer.
package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"food-ordering-api/media"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	Auth        *services.AuthService
	Menus       *services.MenuService
	Restaurants *services.RestaurantService
	Orders      *services.OrderService

	Secret        []byte
	TokenTTL      time.Duration
	SecureCookies bool
	Log           logrus.FieldLogger
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidID),
		errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrMissingImage),
		errors.Is(err, services.ErrMissingField),
		errors.Is(err, services.ErrAlreadyExists),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrLineItemNotFound),
		errors.Is(err, services.ErrMissingSignature),
		errors.Is(err, services.ErrInvalidSignature),
		errors.Is(err, media.ErrUnsupportedImage),
		// Session tokens are rejected by middleware; here it is always a reset token.
		errors.Is(err, services.ErrInvalidToken):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrSessionCreationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("request failed")
		_ = c.Error(err)
		c.JSON(status, gin.H{"success": false, "message": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"success": false, "message": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
}

// formImage returns the uploaded file under field, or nil when none was sent.
func formImage(c *gin.Context, field string) (*media.File, func(), error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &media.File{Name: fh.Filename, Content: f}, func() { closeFile(f) }, nil
}

func closeFile(f multipart.File) { _ = f.Close() }

// optionalString returns nil when the form field is absent or blank.
func optionalString(c *gin.Context, field string) *string {
	v, ok := c.GetPostForm(field)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func optionalFloat(c *gin.Context, field string) (*float64, error) {
	v := optionalString(c, field)
	if v == nil {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*v), 64)
	if err != nil {
		return nil, errors.New(field + " must be a number")
	}
	return &f, nil
}

func optionalInt(c *gin.Context, field string) (*int, error) {
	v := optionalString(c, field)
	if v == nil {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*v))
	if err != nil {
		return nil, errors.New(field + " must be a whole number")
	}
	return &n, nil
}
