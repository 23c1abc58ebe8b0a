package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest marks missing or out-of-range input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound marks a goal that does not exist or belongs to someone else.
	ErrNotFound = errors.New("not found")
	// ErrConcurrentUpdate is returned when an account row kept changing
	// underneath every retry of a transaction.
	ErrConcurrentUpdate = errors.New("account modified concurrently")
)

var (
	// ErrUsernameTaken is an ErrInvalidRequest for a duplicate username.
	ErrUsernameTaken = fmt.Errorf("%w: a user with that username already exists", ErrInvalidRequest)
	// ErrUnauthorized covers bad credentials and unusable refresh tokens.
	ErrUnauthorized = errors.New("unauthorized")
)
