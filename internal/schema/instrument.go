package schema

import "fmt"

// Instrument is the resolved trading metadata for one symbol: the
// account it trades under, the transport routing key of its market and
// the settlement fields stamped on every outbound command.
type Instrument struct {
	Symbol             string
	Market             string
	Currency           string
	SecurityType       string
	Settlement         string
	SettlementDate     string
	Account            string
	RoutingKey         string
	NegotiationAgentID string
}

// InstrumentTable stores instruments keyed by symbol.
type InstrumentTable struct {
	bySymbol map[string]*Instrument
	symbols  []string
}

// NewInstrumentTable creates an empty table.
func NewInstrumentTable() *InstrumentTable {
	return &InstrumentTable{bySymbol: make(map[string]*Instrument)}
}

// Add registers a new instrument.
func (t *InstrumentTable) Add(inst Instrument) error {
	if inst.Symbol == "" {
		return fmt.Errorf("instrument symbol is empty")
	}
	if _, ok := t.bySymbol[inst.Symbol]; ok {
		return fmt.Errorf("instrument already exists: %s", inst.Symbol)
	}
	copied := inst
	t.bySymbol[inst.Symbol] = &copied
	t.symbols = append(t.symbols, inst.Symbol)
	return nil
}

// Lookup returns the instrument for a symbol.
func (t *InstrumentTable) Lookup(symbol string) (*Instrument, bool) {
	inst, ok := t.bySymbol[symbol]
	return inst, ok
}

// Len returns the number of registered instruments.
func (t *InstrumentTable) Len() int {
	return len(t.bySymbol)
}

// Symbols returns symbols in registration order.
func (t *InstrumentTable) Symbols() []string {
	out := make([]string, len(t.symbols))
	copy(out, t.symbols)
	return out
}
