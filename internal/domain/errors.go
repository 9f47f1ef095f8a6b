package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation wraps malformed input.
	ErrValidation = errors.New("validation failed")

	ErrCouponInvalid   = errors.New("coupon invalid")
	ErrCouponExhausted = errors.New("coupon expired")

	ErrDuplicateEmail     = errors.New("email already registered")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLoginRequired      = errors.New("login required")
	ErrForbidden          = errors.New("forbidden")

	ErrEmptyCart          = errors.New("cart is empty")
	ErrSenderRequired     = errors.New("sender payment number required")
	ErrOutOfStock         = errors.New("product out of stock")
	ErrCheckoutInProgress = errors.New("checkout already in progress")

	// ErrInvalidTransition is returned when an order status change is not allowed.
	ErrInvalidTransition = errors.New("invalid order status transition")
)
