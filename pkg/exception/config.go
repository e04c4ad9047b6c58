package exception

import "errors"

// Configuration-time failures are fatal: the engine refuses to start
// without a resolvable account/agent/route for every instrument.
var (
	ErrConfigMissingAccount   = errors.New("config: no account mapped for market")
	ErrConfigMissingAgent     = errors.New("config: no negotiation agent mapped for market")
	ErrConfigMissingRoute     = errors.New("config: no routing key mapped for market")
	ErrConfigUnknownSymbol    = errors.New("config: unknown instrument symbol")
	ErrConfigEmptyInstruments = errors.New("config: no instruments configured")
)
