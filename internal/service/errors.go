package service

import "errors"

var (
	ErrIDRequired         = errors.New("id is required")
	ErrSKUNotFound        = errors.New("sku not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrSKUInUse           = errors.New("sku is referenced by existing orders")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("session is missing or expired")
)
