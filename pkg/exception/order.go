package exception

import "errors"

var (
	ErrOrderUnknown     = errors.New("order: not found")
	ErrOrderDuplicate   = errors.New("order: already registered")
	ErrOrderRateLimited = errors.New("order: rate limited")
	ErrOrderNotOpen     = errors.New("order: not cancellable")
	ErrOrderInvalidSpec = errors.New("order: invalid specification")
)
