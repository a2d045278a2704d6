package services

import (
	"errors"

	"food-ordering-api/payment"
)

var (
	ErrUnauthenticated       = errors.New("user not authenticated")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrServerMisconfigured   = errors.New("server misconfigured")
	ErrInvalidID             = errors.New("invalid id")
	ErrInvalidInput          = errors.New("invalid input")
	ErrMissingImage          = errors.New("image is required")
	ErrMissingField          = errors.New("missing required field")
	ErrNotFound              = errors.New("not found")
	ErrAlreadyExists         = errors.New("already exists")
	ErrForbidden             = errors.New("forbidden")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrInvalidCredentials    = errors.New("incorrect email or password")
	ErrLineItemNotFound      = errors.New("menu item id not found")
	ErrSessionCreationFailed = errors.New("error while creating session")
	ErrMissingOrderReference = errors.New("order id is missing from session metadata")

	ErrMissingSignature = payment.ErrMissingSignature
	ErrInvalidSignature = payment.ErrInvalidSignature
)
