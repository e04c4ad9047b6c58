package ops

import (
	"encoding/json"
	"os"

	"github.com/yanun0323/errors"

	"main/internal/journal"
	"main/internal/schema"
	"main/pkg/exception"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Transport         TransportConfig    `json:"transport"`
	Execution         ExecutionConfig    `json:"execution"`
	Accounts          map[string]string  `json:"accounts"`
	NegotiationAgents map[string]string  `json:"negotiationAgents"`
	RoutingKeys       map[string]string  `json:"routingKeys"`
	Instruments       []InstrumentConfig `json:"instruments"`
	Journal           journal.Config     `json:"journal"`
	Profiling         ProfilingConfig    `json:"profiling"`
}

// TransportConfig locates the venue bridge.
type TransportConfig struct {
	URL string `json:"url"`
}

// ExecutionConfig identifies this engine instance on the wire and
// bounds its outbound order rate.
type ExecutionConfig struct {
	ExecutionID        string  `json:"executionId"`
	DeliveryRoutingKey string  `json:"deliveryRoutingKey"`
	OrderRateBurst     int     `json:"orderRateBurst"`
	OrderRatePerSecond float64 `json:"orderRatePerSecond"`
}

// InstrumentConfig describes one tradable instrument. Account, routing
// key and negotiation agent resolve through its market.
type InstrumentConfig struct {
	Symbol         string `json:"symbol"`
	Market         string `json:"market"`
	Currency       string `json:"currency"`
	SecurityType   string `json:"securityType"`
	Settlement     string `json:"settlement"`
	SettlementDate string `json:"settlementDate"`
}

// ProfilingConfig captures optional continuous profiling settings.
type ProfilingConfig struct {
	Enabled         bool   `json:"enabled"`
	ServerAddress   string `json:"serverAddress"`
	ApplicationName string `json:"applicationName"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Transport   TransportConfig
	Execution   ExecutionConfig
	Instruments *schema.InstrumentTable
	Journal     journal.Config
	Profiling   ProfilingConfig
}

// Load reads a JSON config file and resolves every instrument against
// its market mappings. A symbol whose market has no account, routing
// key or negotiation agent fails the whole load.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config file")
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, errors.Wrap(err, "unmarshal config file")
	}

	instruments, err := buildInstruments(cfg)
	if err != nil {
		return Loaded{}, err
	}

	return Loaded{
		Transport:   cfg.Transport,
		Execution:   cfg.Execution,
		Instruments: instruments,
		Journal:     cfg.Journal,
		Profiling:   cfg.Profiling,
	}, nil
}

func buildInstruments(cfg FileConfig) (*schema.InstrumentTable, error) {
	if len(cfg.Instruments) == 0 {
		return nil, exception.ErrConfigEmptyInstruments
	}

	table := schema.NewInstrumentTable()
	for _, inst := range cfg.Instruments {
		account, ok := cfg.Accounts[inst.Market]
		if !ok || account == "" {
			return nil, errors.Wrapf(exception.ErrConfigMissingAccount, "symbol: %s, market: %s", inst.Symbol, inst.Market)
		}
		routingKey, ok := cfg.RoutingKeys[inst.Market]
		if !ok || routingKey == "" {
			return nil, errors.Wrapf(exception.ErrConfigMissingRoute, "symbol: %s, market: %s", inst.Symbol, inst.Market)
		}
		agent, ok := cfg.NegotiationAgents[inst.Market]
		if !ok || agent == "" {
			return nil, errors.Wrapf(exception.ErrConfigMissingAgent, "symbol: %s, market: %s", inst.Symbol, inst.Market)
		}

		if err := table.Add(schema.Instrument{
			Symbol:             inst.Symbol,
			Market:             inst.Market,
			Currency:           inst.Currency,
			SecurityType:       inst.SecurityType,
			Settlement:         inst.Settlement,
			SettlementDate:     inst.SettlementDate,
			Account:            account,
			RoutingKey:         routingKey,
			NegotiationAgentID: agent,
		}); err != nil {
			return nil, errors.Wrap(err, "add instrument")
		}
	}
	return table, nil
}
