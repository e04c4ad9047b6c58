package schema

// Side is the FIX-style order side code.
type Side string

const (
	SideBuy  Side = "1"
	SideSell Side = "2"
)

// Sign returns +1 for buys and -1 for sells.
func (s Side) Sign() float64 {
	if s == SideSell {
		return -1
	}
	return 1
}

// ExecType is the FIX-style execution report type code.
type ExecType string

const (
	ExecTypeNew         ExecType = "0"
	ExecTypeCanceled    ExecType = "4"
	ExecTypeReplaced    ExecType = "5"
	ExecTypeRejected    ExecType = "8"
	ExecTypeTrade       ExecType = "F"
	ExecTypeOrderStatus ExecType = "I"
)

// OrderStatusCode is the FIX-style order status code carried on the wire.
type OrderStatusCode string

const (
	OrderStatusNew             OrderStatusCode = "0"
	OrderStatusPartiallyFilled OrderStatusCode = "1"
	OrderStatusFilled          OrderStatusCode = "2"
	OrderStatusCanceled        OrderStatusCode = "4"
	OrderStatusReplaced        OrderStatusCode = "5"
	OrderStatusPendingCancel   OrderStatusCode = "6"
	OrderStatusRejected        OrderStatusCode = "8"
	OrderStatusPendingNew      OrderStatusCode = "A"
	OrderStatusExpired         OrderStatusCode = "C"
)

// MDEntryType tags a single market data snapshot entry.
type MDEntryType string

const (
	MDEntryBid         MDEntryType = "0"
	MDEntryOffer       MDEntryType = "1"
	MDEntryTrade       MDEntryType = "2"
	MDEntryClose       MDEntryType = "e"
	MDEntryTradeVolume MDEntryType = "B"
)

// SubscriptionType selects the depth model of a market data subscription.
type SubscriptionType string

const (
	SubscriptionAggregated    SubscriptionType = "aggregated"
	SubscriptionDisaggregated SubscriptionType = "disaggregated"
	SubscriptionTop           SubscriptionType = "top"
)

// Depth returns the number of book slots the subscription type exposes.
func (t SubscriptionType) Depth() int {
	if t == SubscriptionTop {
		return 1
	}
	return MaxDepth
}

// MaxDepth is the deepest price level tracked per book side. Entries
// reporting a deeper slot are ignored.
const MaxDepth = 5
