package exception

import "errors"

var (
	ErrNoSubscription      = errors.New("market data: no subscription for key")
	ErrUnknownSubscription = errors.New("market data: unknown subscription id")
)
