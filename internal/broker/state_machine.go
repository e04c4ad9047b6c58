package broker

import (
	"errors"

	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/obs"
	"main/internal/order"
	"main/internal/position"
	"main/internal/schema"
	"main/pkg/exception"
)

// defaultNotifyCap bounds the strategy notification queue.
const defaultNotifyCap = 1024

// StateMachine consumes execution reports and reconciles the order
// registry and position ledger against them. Apply runs under the
// registry's coarse order-state lock, the same lock the command side
// holds for its order mutations.
type StateMachine struct {
	registry *order.Registry
	ledger   *position.Ledger
	metrics  *obs.Metrics

	notifs       *bus.Queue
	publishTrade func(schema.TradeExecutedEvent)
}

// NewStateMachine wires the reconciler to its registry and ledger.
// publishTrade receives one event per applied fill and may be nil.
func NewStateMachine(
	registry *order.Registry,
	ledger *position.Ledger,
	metrics *obs.Metrics,
	publishTrade func(schema.TradeExecutedEvent),
) *StateMachine {
	return &StateMachine{
		registry:     registry,
		ledger:       ledger,
		metrics:      metrics,
		notifs:       bus.NewQueue(defaultNotifyCap),
		publishTrade: publishTrade,
	}
}

// Notifications exposes the order update queue for a strategy drain.
func (m *StateMachine) Notifications() *bus.Queue {
	return m.notifs
}

// HandleEvent adapts the state machine to a dispatcher callback.
func (m *StateMachine) HandleEvent(evt schema.Event) {
	er, ok := evt.(*schema.ExecutionReportEvent)
	if !ok {
		return
	}
	m.Apply(er)
}

// Apply reconciles one execution report. The execution type decides
// the transition; the carried order status only refines it.
func (m *StateMachine) Apply(er *schema.ExecutionReportEvent) {
	m.registry.LockOrders()
	defer m.registry.UnlockOrders()

	switch er.ExecType {
	case schema.ExecTypeNew:
		m.applyNew(er)
	case schema.ExecTypeCanceled:
		m.applyCanceled(er)
	case schema.ExecTypeReplaced:
		m.applyReplaced(er)
	case schema.ExecTypeRejected:
		m.applyRejected(er)
	case schema.ExecTypeTrade:
		m.applyTrade(er)
	case schema.ExecTypeOrderStatus:
		m.applyStatus(er)
	default:
		logs.Warnf("unhandled exec type: %s, client order id: %s", er.ExecType, er.ClientOrderID)
	}
}

// applyNew accepts the order once. A duplicate accept is suppressed
// and produces no second notification.
func (m *StateMachine) applyNew(er *schema.ExecutionReportEvent) {
	o, ok := m.lookup(er.ClientOrderID)
	if !ok {
		return
	}
	if o.Accept(er.OrderID) {
		m.registry.BindOrderID(o)
		m.notify(o, er)
	} else {
		m.metrics.IncDuplicateSuppressed()
	}
}

// applyCanceled cancels the order named by the original client id; an
// unsolicited cancel names only the client id.
func (m *StateMachine) applyCanceled(er *schema.ExecutionReportEvent) {
	id := er.OriginalClientOrderID
	if id == "" {
		id = er.ClientOrderID
	}
	o, ok := m.lookup(id)
	if !ok {
		return
	}
	if o.Cancel() {
		m.notify(o, er)
	} else {
		m.metrics.IncDuplicateSuppressed()
	}
}

// applyReplaced cancels the original order, then accepts the
// replacement when the venue reports it as working. The original's
// cancel notification goes out before the replacement's.
func (m *StateMachine) applyReplaced(er *schema.ExecutionReportEvent) {
	original, ok := m.lookup(er.OriginalClientOrderID)
	if ok {
		if original.Cancel() {
			m.notify(original, er)
		}
	}

	if er.OrderStatus != schema.OrderStatusNew && er.OrderStatus != schema.OrderStatusPartiallyFilled {
		return
	}
	replacement, ok := m.lookup(er.ClientOrderID)
	if !ok {
		return
	}
	if replacement.Accept(er.OrderID) {
		m.registry.BindOrderID(replacement)
		m.notify(replacement, er)
	}
}

func (m *StateMachine) applyRejected(er *schema.ExecutionReportEvent) {
	o, ok := m.registry.Get(er.ClientOrderID)
	if !ok {
		m.metrics.IncUnknownOrder()
		logs.Warnf("cancel reject for unknown order, client order id: %s", er.ClientOrderID)
		return
	}
	if o.Reject(er.Text) {
		m.notify(o, er)
	}
}

// applyTrade books the fill into the order and the position ledger.
// A repeated execID is dropped before any accounting runs.
func (m *StateMachine) applyTrade(er *schema.ExecutionReportEvent) {
	o, ok := m.lookup(er.ClientOrderID)
	if !ok {
		return
	}
	if er.OrderID != "" {
		o.OrderID = er.OrderID
		m.registry.BindOrderID(o)
	}

	commission := m.fillCommission(er)
	if !o.RecordFill(er.ExecID, er.OrderStatus, er.LastQty, er.CumQty, er.LeavesQty, commission) {
		m.metrics.IncDuplicateSuppressed()
		logs.Warnf("duplicate trade suppressed, client order id: %s, exec id: %s", er.ClientOrderID, er.ExecID)
		return
	}

	size := er.LastQty * er.Side.Sign()
	_, _, opened, closed := m.ledger.Update(o.Symbol, size, er.LastPrice)
	openedComm, closedComm := splitCommission(commission, opened, closed)

	m.notify(o, er)
	if m.publishTrade != nil {
		m.publishTrade(schema.TradeExecutedEvent{
			Topic:            schema.TopicTradeExecuted,
			Ts:               er.TransactTime,
			Symbol:           o.Symbol,
			Side:             er.Side,
			Size:             er.LastQty,
			Price:            er.LastPrice,
			Account:          er.Account,
			OrderID:          o.OrderID,
			TradeID:          er.ExecID,
			Opened:           opened,
			Closed:           closed,
			OpenedCommission: openedComm,
			ClosedCommission: closedComm,
		})
	}
}

// applyStatus applies a status-only replay. A reported Replaced status
// cancels the order, since the replacement carries the live quantity;
// everything else is a plain transition.
func (m *StateMachine) applyStatus(er *schema.ExecutionReportEvent) {
	o, ok := m.lookup(er.ClientOrderID)
	if !ok {
		return
	}
	if er.OrderID != "" {
		o.OrderID = er.OrderID
		m.registry.BindOrderID(o)
	}

	changed := false
	if er.OrderStatus == schema.OrderStatusReplaced {
		changed = o.Cancel()
	} else {
		changed = o.SetStatusCode(er.OrderStatus)
	}
	if changed {
		m.notify(o, er)
	}
}

// fillCommission splits the report's commission pro rata onto this
// fill. The venue reports it cumulatively over the order.
func (m *StateMachine) fillCommission(er *schema.ExecutionReportEvent) float64 {
	if er.Commission == 0 || er.CumQty == 0 {
		return er.Commission
	}
	return er.Commission * er.LastQty / er.CumQty
}

// splitCommission attributes the fill's commission to the opened and
// closed portions of the trade in proportion to their sizes. A trade
// touching no existing position charges everything to the opened side.
func splitCommission(commission, opened, closed float64) (openedComm, closedComm float64) {
	total := abs(opened) + abs(closed)
	if total == 0 {
		return commission, 0
	}
	closedComm = commission * abs(closed) / total
	return commission - closedComm, closedComm
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func (m *StateMachine) lookup(clientOrderID string) (*order.Order, bool) {
	o, ok := m.registry.Get(clientOrderID)
	if !ok {
		m.metrics.IncUnknownOrder()
		logs.Warnf("execution report for unknown order, client order id: %s", clientOrderID)
	}
	return o, ok
}

// notify enqueues an order update without blocking; a saturated queue
// drops the update and counts it.
func (m *StateMachine) notify(o *order.Order, er *schema.ExecutionReportEvent) {
	evt := &schema.OrderUpdatedEvent{
		Topic:         schema.TopicOrderUpdated,
		Account:       o.Account,
		Symbol:        o.Symbol,
		Side:          o.Side,
		OrderStatus:   o.Status.Code(),
		Price:         o.Price,
		OrderQty:      o.Quantity,
		CumQty:        o.CumQty,
		LeavesQty:     o.LeavesQty,
		OrderID:       o.OrderID,
		ClientOrderID: o.ClientOrderID,
		ExecID:        er.ExecID,
		TransactTime:  er.TransactTime,
		Text:          o.Text,
	}
	if err := m.notifs.TryPublish(evt); err != nil {
		if errors.Is(err, exception.ErrQueueClosed) {
			m.metrics.IncQueueClosed()
		} else {
			m.metrics.IncNotifyDrop()
		}
		logs.Errorf("drop order notification, client order id: %s, err: %+v", o.ClientOrderID, err)
	}
}
