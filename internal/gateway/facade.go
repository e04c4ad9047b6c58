package gateway

import (
	"strings"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/order"
	"main/internal/schema"
	"main/pkg/exception"
)

// Transport delivers outbound events to the venue by routing key.
type Transport interface {
	Send(routingKey string, evt schema.Event) error
}

// OrderSpec is one order request from the strategy side.
type OrderSpec struct {
	Symbol      string
	Side        schema.Side
	Quantity    float64
	Price       float64
	OrderType   string
	TimeInForce string
	MinQty      float64

	// OCA names the client order id of an already submitted order
	// whose cancel group this order joins.
	OCA string
}

// Facade turns strategy intents into venue commands. Orders register
// as PendingNew before the wire send so an early report always finds
// its order.
type Facade struct {
	transport   Transport
	registry    *order.Registry
	instruments *schema.InstrumentTable
	limiter     *RateLimiter

	executionID string
	deliveryKey string
}

// NewFacade wires the command side of the engine.
func NewFacade(
	transport Transport,
	registry *order.Registry,
	instruments *schema.InstrumentTable,
	limiter *RateLimiter,
	executionID, deliveryKey string,
) *Facade {
	return &Facade{
		transport:   transport,
		registry:    registry,
		instruments: instruments,
		limiter:     limiter,
		executionID: executionID,
		deliveryKey: deliveryKey,
	}
}

// Buy submits a buy order.
func (f *Facade) Buy(spec OrderSpec) (*order.Order, error) {
	spec.Side = schema.SideBuy
	return f.Submit(spec)
}

// Sell submits a sell order.
func (f *Facade) Sell(spec OrderSpec) (*order.Order, error) {
	spec.Side = schema.SideSell
	return f.Submit(spec)
}

// Submit validates, registers and sends one new order.
func (f *Facade) Submit(spec OrderSpec) (*order.Order, error) {
	o, evt, err := f.prepare(spec)
	if err != nil {
		return nil, err
	}
	if !f.limiter.TryAcquire() {
		return nil, errors.Wrapf(exception.ErrOrderRateLimited, "client order id: %s", o.ClientOrderID)
	}
	if err := f.registry.Register(o); err != nil {
		return nil, err
	}
	if err := f.transport.Send(o.RoutingKey, evt); err != nil {
		f.registry.LockOrders()
		o.Reject("send failed")
		f.registry.UnlockOrders()
		return nil, errors.Wrapf(err, "send new order, client order id: %s", o.ClientOrderID)
	}
	return o, nil
}

// SubmitBulk registers every order, then ships them in one message.
// All orders share the first instrument's routing key.
func (f *Facade) SubmitBulk(specs []OrderSpec) ([]*order.Order, error) {
	if len(specs) == 0 {
		return nil, exception.ErrOrderInvalidSpec
	}

	orders := make([]*order.Order, 0, len(specs))
	events := make([]*schema.NewOrderEvent, 0, len(specs))
	for _, spec := range specs {
		o, evt, err := f.prepare(spec)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		events = append(events, evt)
	}
	if !f.limiter.TryAcquire() {
		return nil, exception.ErrOrderRateLimited
	}
	for _, o := range orders {
		if err := f.registry.Register(o); err != nil {
			return nil, err
		}
	}

	bulk := &schema.BulkNewOrderEvent{Topic: schema.TopicBulkNewOrder, Orders: events}
	if err := f.transport.Send(orders[0].RoutingKey, bulk); err != nil {
		f.registry.LockOrders()
		for _, o := range orders {
			o.Reject("send failed")
		}
		f.registry.UnlockOrders()
		return nil, errors.Wrap(err, "send bulk new orders")
	}
	return orders, nil
}

// Replace submits a cancel/replace against a working order. The
// replacement registers under a fresh client order id and inherits the
// original's cancel group.
func (f *Facade) Replace(clientOrderID string, quantity, price float64) (*order.Order, error) {
	original, ok := f.registry.Get(clientOrderID)
	if !ok {
		return nil, errors.Wrapf(exception.ErrOrderUnknown, "client order id: %s", clientOrderID)
	}
	f.registry.LockOrders()
	open := original.Status.Open()
	f.registry.UnlockOrders()
	if !open {
		return nil, errors.Wrapf(exception.ErrOrderNotOpen, "client order id: %s", clientOrderID)
	}
	inst, ok := f.instruments.Lookup(original.Symbol)
	if !ok {
		return nil, errors.Wrapf(exception.ErrConfigUnknownSymbol, "symbol: %s", original.Symbol)
	}
	if !f.limiter.TryAcquire() {
		return nil, errors.Wrapf(exception.ErrOrderRateLimited, "client order id: %s", clientOrderID)
	}

	replacement := &order.Order{
		ClientOrderID:         f.generateID(),
		Symbol:                original.Symbol,
		Side:                  original.Side,
		Price:                 price,
		Quantity:              quantity,
		Account:               inst.Account,
		RoutingKey:            inst.RoutingKey,
		TimeInForce:           original.TimeInForce,
		OrderType:             original.OrderType,
		OCAGroup:              original.OCAGroup,
		OriginalClientOrderID: original.ClientOrderID,
		Status:                order.StatusPendingNew,
		LeavesQty:             quantity,
	}
	if err := f.registry.Register(replacement); err != nil {
		return nil, err
	}
	f.registry.LockOrders()
	original.ReplacedBy = replacement.ClientOrderID
	evt := &schema.OrderCancelReplaceEvent{
		Topic:              schema.TopicOrderCancelReplace,
		Account:            inst.Account,
		ClOrdID:            replacement.ClientOrderID,
		OrderQty:           quantity,
		OrderType:          replacement.OrderType,
		OrigClOrdID:        original.ClientOrderID,
		OrigOrderID:        original.OrderID,
		Price:              price,
		Side:               replacement.Side,
		Symbol:             replacement.Symbol,
		TimeInForce:        replacement.TimeInForce,
		RoutingKey:         inst.RoutingKey,
		ExecutionID:        f.executionID,
		NegotiationAgentID: inst.NegotiationAgentID,
	}
	f.registry.UnlockOrders()

	if err := f.transport.Send(inst.RoutingKey, evt); err != nil {
		f.registry.LockOrders()
		replacement.Reject("send failed")
		f.registry.UnlockOrders()
		return nil, errors.Wrapf(err, "send cancel replace, client order id: %s", replacement.ClientOrderID)
	}
	return replacement, nil
}

// Cancel requests a cancel for a working order.
func (f *Facade) Cancel(clientOrderID string) error {
	o, ok := f.registry.Get(clientOrderID)
	if !ok {
		return errors.Wrapf(exception.ErrOrderUnknown, "client order id: %s", clientOrderID)
	}
	return f.cancelOrder(o)
}

// ManualCancel cancels an order named by either id space. An unknown
// id is a logged no-op.
func (f *Facade) ManualCancel(id string) {
	o, ok := f.registry.Get(id)
	if !ok {
		o, ok = f.registry.GetByOrderID(id)
	}
	if !ok {
		logs.Debugf("manual cancel for unknown order, id: %s", id)
		return
	}
	if err := f.cancelOrder(o); err != nil {
		logs.Errorf("manual cancel, id: %s, err: %+v", id, err)
	}
}

// CancelAll requests a cancel for every working order.
func (f *Facade) CancelAll() {
	for _, o := range f.registry.OpenOrders() {
		f.registry.LockOrders()
		pending := o.Status == order.StatusPendingNew
		f.registry.UnlockOrders()
		if pending {
			continue
		}
		if err := f.cancelOrder(o); err != nil {
			logs.Errorf("cancel all, client order id: %s, err: %+v", o.ClientOrderID, err)
		}
	}
}

// MassCancel asks the venue to cancel everything for an account or
// segment in one command.
func (f *Facade) MassCancel(routingKey, account, segment string) error {
	evt := &schema.OrderMassCancelEvent{
		Topic:         schema.TopicOrderMassCancel,
		Account:       account,
		Segment:       segment,
		ClientOrderID: f.generateID(),
	}
	if err := f.transport.Send(routingKey, evt); err != nil {
		return errors.Wrap(err, "send mass cancel")
	}
	return nil
}

// RequestMarketData opens a venue snapshot stream for the symbols
// under one request id.
func (f *Facade) RequestMarketData(mdReqID string, mdType schema.SubscriptionType, symbols ...string) error {
	if len(symbols) == 0 {
		return exception.ErrNoSubscription
	}
	inst, ok := f.instruments.Lookup(symbols[0])
	if !ok {
		return errors.Wrapf(exception.ErrConfigUnknownSymbol, "symbol: %s", symbols[0])
	}

	evt := &schema.MarketDataRequestEvent{
		Topic:              schema.TopicMarketDataRequest,
		Symbols:            symbols,
		MDReqID:            mdReqID,
		MDType:             mdType,
		Market:             inst.Market,
		RoutingKey:         inst.RoutingKey,
		Currency:           inst.Currency,
		Settlement:         inst.Settlement,
		SettlementDate:     inst.SettlementDate,
		SecurityType:       inst.SecurityType,
		NegotiationAgentID: inst.NegotiationAgentID,
	}
	if err := f.transport.Send(inst.RoutingKey, evt); err != nil {
		return errors.Wrapf(err, "send market data request, md req id: %s", mdReqID)
	}
	return nil
}

// RequestOrderStatus asks the venue to replay an order's status.
func (f *Facade) RequestOrderStatus(clientOrderID string) error {
	o, ok := f.registry.Get(clientOrderID)
	if !ok {
		return errors.Wrapf(exception.ErrOrderUnknown, "client order id: %s", clientOrderID)
	}
	evt := &schema.OrderStatusRequestEvent{
		Topic:         schema.TopicOrderStatusRequest,
		ClientOrderID: o.ClientOrderID,
		Side:          o.Side,
	}
	if err := f.transport.Send(o.RoutingKey, evt); err != nil {
		return errors.Wrapf(err, "send order status request, client order id: %s", clientOrderID)
	}
	return nil
}

// PublishTrade ships a settled trade on the delivery routing key.
func (f *Facade) PublishTrade(evt schema.TradeExecutedEvent) {
	if f.deliveryKey == "" {
		return
	}
	if err := f.transport.Send(f.deliveryKey, &evt); err != nil {
		logs.Errorf("publish trade, trade id: %s, err: %+v", evt.TradeID, err)
	}
}

// prepare validates a spec and builds the order with its wire command.
func (f *Facade) prepare(spec OrderSpec) (*order.Order, *schema.NewOrderEvent, error) {
	if spec.Quantity <= 0 {
		return nil, nil, errors.Wrapf(exception.ErrOrderInvalidSpec, "quantity: %v", spec.Quantity)
	}
	if spec.Side != schema.SideBuy && spec.Side != schema.SideSell {
		return nil, nil, errors.Wrapf(exception.ErrOrderInvalidSpec, "side: %s", spec.Side)
	}
	inst, ok := f.instruments.Lookup(spec.Symbol)
	if !ok {
		return nil, nil, errors.Wrapf(exception.ErrConfigUnknownSymbol, "symbol: %s", spec.Symbol)
	}
	if spec.OrderType == "" {
		spec.OrderType = "2"
	}
	if spec.TimeInForce == "" {
		spec.TimeInForce = "1"
	}

	o := &order.Order{
		ClientOrderID: f.generateID(),
		Symbol:        spec.Symbol,
		Side:          spec.Side,
		Price:         spec.Price,
		Quantity:      spec.Quantity,
		Account:       inst.Account,
		RoutingKey:    inst.RoutingKey,
		TimeInForce:   spec.TimeInForce,
		OrderType:     spec.OrderType,
		OCAGroup:      f.ocaGroup(spec.OCA),
		Status:        order.StatusPendingNew,
		LeavesQty:     spec.Quantity,
	}

	evt := &schema.NewOrderEvent{
		Topic:              schema.TopicNewOrder,
		Account:            inst.Account,
		ClOrdID:            o.ClientOrderID,
		OrderQty:           o.Quantity,
		OrderType:          o.OrderType,
		Price:              o.Price,
		Side:               o.Side,
		Symbol:             o.Symbol,
		TimeInForce:        o.TimeInForce,
		Currency:           inst.Currency,
		RoutingKey:         inst.RoutingKey,
		SecurityType:       inst.SecurityType,
		SettlementType:     inst.Settlement,
		SettlementDate:     inst.SettlementDate,
		ExecutionID:        f.executionID,
		NegotiationAgentID: inst.NegotiationAgentID,
		MinQty:             spec.MinQty,
	}
	return o, evt, nil
}

// cancelOrder gathers the cancel command under the state lock and
// sends it outside of it.
func (f *Facade) cancelOrder(o *order.Order) error {
	f.registry.LockOrders()
	if !o.Status.Open() {
		status := o.Status
		f.registry.UnlockOrders()
		return errors.Wrapf(exception.ErrOrderNotOpen, "client order id: %s, status: %s", o.ClientOrderID, status)
	}
	evt := &schema.OrderCancelEvent{
		Topic:       schema.TopicOrderCancel,
		Account:     o.Account,
		ClOrdID:     f.generateID(),
		OrderID:     o.OrderID,
		OrigClOrdID: o.ClientOrderID,
		Side:        o.Side,
		Symbol:      o.Symbol,
		RoutingKey:  o.RoutingKey,
		ExecutionID: f.executionID,
	}
	f.registry.UnlockOrders()

	if !f.limiter.TryAcquire() {
		return errors.Wrapf(exception.ErrOrderRateLimited, "client order id: %s", o.ClientOrderID)
	}
	if err := f.transport.Send(o.RoutingKey, evt); err != nil {
		return errors.Wrapf(err, "send cancel, client order id: %s", o.ClientOrderID)
	}
	return nil
}

// ocaGroup inherits the sibling's cancel group or mints a new one.
func (f *Facade) ocaGroup(oca string) string {
	if oca != "" {
		if sibling, ok := f.registry.Get(oca); ok && sibling.OCAGroup != "" {
			return sibling.OCAGroup
		}
	}
	return uuid.NewString()
}

// generateID mints a short unique client order id.
func (f *Facade) generateID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:15]
}
