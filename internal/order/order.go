package order

import (
	"main/internal/schema"
)

// Status tracks the lifecycle of an order.
type Status uint16

const (
	StatusUnknown Status = iota
	StatusPendingNew
	StatusNew
	StatusPartiallyFilled
	StatusFilled
	StatusCanceled
	StatusReplaced
	StatusRejected
	StatusExpired
)

var statusNames = map[Status]string{
	StatusUnknown:         "unknown",
	StatusPendingNew:      "pending_new",
	StatusNew:             "new",
	StatusPartiallyFilled: "partially_filled",
	StatusFilled:          "filled",
	StatusCanceled:        "canceled",
	StatusReplaced:        "replaced",
	StatusRejected:        "rejected",
	StatusExpired:         "expired",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further reports can move the order.
func (s Status) Terminal() bool {
	switch s {
	case StatusFilled, StatusCanceled, StatusReplaced, StatusRejected, StatusExpired:
		return true
	default:
		return false
	}
}

// Open reports whether the order is still working at the venue.
func (s Status) Open() bool {
	switch s {
	case StatusPendingNew, StatusNew, StatusPartiallyFilled:
		return true
	default:
		return false
	}
}

// Code maps the status to its wire code.
func (s Status) Code() schema.OrderStatusCode {
	switch s {
	case StatusPendingNew:
		return schema.OrderStatusPendingNew
	case StatusNew:
		return schema.OrderStatusNew
	case StatusPartiallyFilled:
		return schema.OrderStatusPartiallyFilled
	case StatusFilled:
		return schema.OrderStatusFilled
	case StatusCanceled:
		return schema.OrderStatusCanceled
	case StatusReplaced:
		return schema.OrderStatusReplaced
	case StatusRejected:
		return schema.OrderStatusRejected
	case StatusExpired:
		return schema.OrderStatusExpired
	default:
		return ""
	}
}

// StatusFromCode maps a wire code to the internal status.
func StatusFromCode(code schema.OrderStatusCode) Status {
	switch code {
	case schema.OrderStatusPendingNew:
		return StatusPendingNew
	case schema.OrderStatusNew:
		return StatusNew
	case schema.OrderStatusPartiallyFilled:
		return StatusPartiallyFilled
	case schema.OrderStatusFilled:
		return StatusFilled
	case schema.OrderStatusCanceled:
		return StatusCanceled
	case schema.OrderStatusReplaced:
		return StatusReplaced
	case schema.OrderStatusRejected:
		return StatusRejected
	case schema.OrderStatusExpired:
		return StatusExpired
	default:
		return StatusUnknown
	}
}

// Order is the engine's view of one order. The struct carries no lock;
// every mutation and status read of a registered order runs under the
// registry's coarse state lock.
type Order struct {
	ClientOrderID string
	OrderID       string
	Symbol        string
	Side          schema.Side
	Price         float64
	Quantity      float64
	Account       string
	RoutingKey    string
	TimeInForce   string
	OrderType     string
	OCAGroup      string

	// Replace chain: the order this one replaces, and the order that
	// replaced this one.
	OriginalClientOrderID string
	ReplacedBy            string

	Status     Status
	CumQty     float64
	LeavesQty  float64
	AvgPx      float64
	Commission float64
	LastExecID string
	Text       string
}

// Accept moves the order to New, stamping the venue order id. Returns
// false when the order was already accepted or has moved further.
func (o *Order) Accept(orderID string) bool {
	if o.Status != StatusPendingNew && o.Status != StatusUnknown {
		return false
	}
	if orderID != "" {
		o.OrderID = orderID
	}
	o.Status = StatusNew
	if o.LeavesQty == 0 {
		o.LeavesQty = o.Quantity - o.CumQty
	}
	return true
}

// Cancel moves the order to Canceled.
func (o *Order) Cancel() bool {
	if o.Status.Terminal() {
		return false
	}
	o.Status = StatusCanceled
	o.LeavesQty = 0
	return true
}

// Reject moves the order to Rejected, keeping the venue's reason.
func (o *Order) Reject(text string) bool {
	if o.Status.Terminal() {
		return false
	}
	o.Status = StatusRejected
	o.LeavesQty = 0
	if text != "" {
		o.Text = text
	}
	return true
}

// RecordFill applies one trade report. A repeated execID is suppressed.
// The venue's cumulative quantities win over locally derived ones, and
// the reported status decides completion: a Filled report completes the
// order even when its cumulative quantity never reaches the original
// size, as after a quantity-reducing replace.
func (o *Order) RecordFill(execID string, status schema.OrderStatusCode, lastQty, cumQty, leavesQty, commission float64) bool {
	if execID != "" && execID == o.LastExecID {
		return false
	}
	if o.Status.Terminal() {
		return false
	}
	o.LastExecID = execID

	if cumQty > 0 {
		o.CumQty = cumQty
	} else {
		o.CumQty += lastQty
	}
	if leavesQty > 0 {
		o.LeavesQty = leavesQty
	} else {
		o.LeavesQty = o.Quantity - o.CumQty
		if o.LeavesQty < 0 {
			o.LeavesQty = 0
		}
	}
	o.Commission += commission

	switch {
	case status == schema.OrderStatusFilled:
		o.LeavesQty = 0
		o.Status = StatusFilled
	case status == schema.OrderStatusPartiallyFilled:
		o.Status = StatusPartiallyFilled
	case o.LeavesQty <= 0:
		o.Status = StatusFilled
	default:
		o.Status = StatusPartiallyFilled
	}
	return true
}

// SetStatusCode applies a status-only report. Returns false when the
// status did not change.
func (o *Order) SetStatusCode(code schema.OrderStatusCode) bool {
	next := StatusFromCode(code)
	if next == StatusUnknown || next == o.Status {
		return false
	}
	o.Status = next
	if next.Terminal() {
		o.LeavesQty = 0
	}
	return true
}
