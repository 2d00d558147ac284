package cart

import "errors"

var (
	// ErrInvalidQuantity is returned for quantities below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrCartNotFound is returned when the user has no cart yet.
	ErrCartNotFound = errors.New("cart not found")
	// ErrLineNotFound is returned when the line does not exist in the caller's cart.
	ErrLineNotFound = errors.New("cart item not found")
	// ErrProductUnavailable is returned when the product is missing or inactive.
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrInsufficientStock is returned when the requested quantity exceeds available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrConcurrentUpdate is returned when the cart changed underneath a recompute twice in a row.
	ErrConcurrentUpdate = errors.New("cart was modified concurrently")
)
