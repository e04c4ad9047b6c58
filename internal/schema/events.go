package schema

// Event is a decoded, typed message identified by its topic.
type Event interface {
	EventTopic() Topic
}

// Envelope carries the dispatch key of any inbound message.
type Envelope struct {
	Topic Topic `json:"topic"`
}

// MDEntry is one typed entry of a market data snapshot.
// Position is a 1-based depth slot; zero means "top of book".
type MDEntry struct {
	Type         MDEntryType `json:"entry_type"`
	Px           float64     `json:"entry_px"`
	Size         float64     `json:"entry_size"`
	TrdType      *int        `json:"trd_type,omitempty"`
	Position     int         `json:"position,omitempty"`
	UpdateAction string      `json:"mdUpdateAction,omitempty"`
}

// Slot resolves the 1-based depth slot of the entry.
func (e MDEntry) Slot() int {
	if e.Position <= 0 {
		return 1
	}
	return e.Position
}

// MarketDataSnapshotEvent is a full book refresh for one instrument.
type MarketDataSnapshotEvent struct {
	Topic     Topic            `json:"topic"`
	MDReqID   string           `json:"mdReqId,omitempty"`
	Symbol    string           `json:"symbol"`
	MDType    SubscriptionType `json:"md_type"`
	Entries   []MDEntry        `json:"entries"`
	Timestamp int64            `json:"timestamp,omitempty"`
	Currency  string           `json:"currency,omitempty"`
}

func (e *MarketDataSnapshotEvent) EventTopic() Topic { return TopicMarketDataSnapshot }

// MarketDataRequestEvent asks the venue to open a snapshot stream.
type MarketDataRequestEvent struct {
	Topic              Topic            `json:"topic"`
	Symbols            []string         `json:"symbols"`
	MDReqID            string           `json:"md_req_id"`
	MDType             SubscriptionType `json:"md_type"`
	Market             string           `json:"market,omitempty"`
	RoutingKey         string           `json:"routing_key,omitempty"`
	Currency           string           `json:"currency,omitempty"`
	Settlement         string           `json:"settlement,omitempty"`
	SettlementDate     string           `json:"settlement_date,omitempty"`
	SecurityType       string           `json:"security_type,omitempty"`
	NegotiationAgentID string           `json:"negotiation_agent_id,omitempty"`
}

func (e *MarketDataRequestEvent) EventTopic() Topic { return TopicMarketDataRequest }

// ExecutionReportEvent is a venue-originated order lifecycle report.
// It is consumed once and never persisted.
type ExecutionReportEvent struct {
	Topic                 Topic           `json:"topic"`
	ExecType              ExecType        `json:"execType"`
	OrderStatus           OrderStatusCode `json:"orderStatus"`
	ClientOrderID         string          `json:"clientOrderID"`
	OriginalClientOrderID string          `json:"originalClientOrderId,omitempty"`
	OrderID               string          `json:"orderID,omitempty"`
	ExecID                string          `json:"execID,omitempty"`
	Symbol                string          `json:"symbol,omitempty"`
	Side                  Side            `json:"side,omitempty"`
	LastQty               float64         `json:"lastQty,omitempty"`
	LastPrice             float64         `json:"lastPrice,omitempty"`
	CumQty                float64         `json:"cumQty,omitempty"`
	LeavesQty             float64         `json:"leavesQty,omitempty"`
	OrderQty              float64         `json:"orderQty,omitempty"`
	Price                 float64         `json:"price,omitempty"`
	AvgPx                 float64         `json:"avgPx,omitempty"`
	Commission            float64         `json:"commission,omitempty"`
	Account               string          `json:"account,omitempty"`
	SecurityExchange      string          `json:"securityExchange,omitempty"`
	TimeInForce           string          `json:"timeInForce,omitempty"`
	TransactTime          string          `json:"transactTime,omitempty"`
	Text                  string          `json:"text,omitempty"`
}

func (e *ExecutionReportEvent) EventTopic() Topic { return TopicExecutionReport }

// NewOrderEvent is the outbound single-order command.
type NewOrderEvent struct {
	Topic              Topic   `json:"topic"`
	Account            string  `json:"account"`
	ClOrdID            string  `json:"cl_ord_id"`
	OrderQty           float64 `json:"order_qty"`
	OrderType          string  `json:"order_type"`
	Price              float64 `json:"price,omitempty"`
	Side               Side    `json:"side"`
	Symbol             string  `json:"symbol"`
	TimeInForce        string  `json:"time_in_force"`
	Currency           string  `json:"currency,omitempty"`
	RoutingKey         string  `json:"routing_key"`
	SecurityType       string  `json:"security_type,omitempty"`
	SettlementType     string  `json:"settlement_type,omitempty"`
	SettlementDate     string  `json:"settlement_date,omitempty"`
	ExecutionID        string  `json:"execution_id,omitempty"`
	NegotiationAgentID string  `json:"negotiation_agent_id,omitempty"`
	MinQty             float64 `json:"min_qty,omitempty"`
}

func (e *NewOrderEvent) EventTopic() Topic { return TopicNewOrder }

// BulkNewOrderEvent batches several new-order commands in one message.
type BulkNewOrderEvent struct {
	Topic  Topic            `json:"topic"`
	Orders []*NewOrderEvent `json:"orders"`
}

func (e *BulkNewOrderEvent) EventTopic() Topic { return TopicBulkNewOrder }

// OrderCancelEvent is the outbound cancel command.
type OrderCancelEvent struct {
	Topic              Topic  `json:"topic"`
	Account            string `json:"account"`
	ClOrdID            string `json:"cl_ord_id"`
	OrderID            string `json:"order_id,omitempty"`
	OrigClOrdID        string `json:"orig_cl_ord_id"`
	Side               Side   `json:"side"`
	Symbol             string `json:"symbol"`
	RoutingKey         string `json:"routing_key"`
	ExecutionID        string `json:"execution_id,omitempty"`
	NegotiationAgentID string `json:"negotiation_agent_id,omitempty"`
}

func (e *OrderCancelEvent) EventTopic() Topic { return TopicOrderCancel }

// OrderCancelReplaceEvent is the outbound cancel/replace command.
type OrderCancelReplaceEvent struct {
	Topic              Topic   `json:"topic"`
	Account            string  `json:"account"`
	ClOrdID            string  `json:"cl_ord_id"`
	OrderQty           float64 `json:"order_qty"`
	OrderType          string  `json:"order_type"`
	OrigClOrdID        string  `json:"orig_client_ord_id"`
	OrigOrderID        string  `json:"orig_order_id,omitempty"`
	Price              float64 `json:"price,omitempty"`
	Side               Side    `json:"side"`
	Symbol             string  `json:"symbol"`
	TimeInForce        string  `json:"time_in_force"`
	RoutingKey         string  `json:"routing_key"`
	ExecutionID        string  `json:"execution_id,omitempty"`
	NegotiationAgentID string  `json:"negotiation_agent_id,omitempty"`
}

func (e *OrderCancelReplaceEvent) EventTopic() Topic { return TopicOrderCancelReplace }

// OrderMassCancelEvent cancels every working order of an account/segment.
type OrderMassCancelEvent struct {
	Topic         Topic  `json:"topic"`
	Account       string `json:"account,omitempty"`
	Segment       string `json:"segment,omitempty"`
	ClientOrderID string `json:"clientOrderId"`
}

func (e *OrderMassCancelEvent) EventTopic() Topic { return TopicOrderMassCancel }

// OrderUpdatedEvent is the strategy-facing order state notification.
type OrderUpdatedEvent struct {
	Topic         Topic           `json:"topic"`
	Account       string          `json:"account,omitempty"`
	Symbol        string          `json:"symbol"`
	Side          Side            `json:"side"`
	OrderStatus   OrderStatusCode `json:"orderStatus"`
	Price         float64         `json:"price,omitempty"`
	OrderQty      float64         `json:"orderQty"`
	CumQty        float64         `json:"cumQty"`
	LeavesQty     float64         `json:"leavesQty,omitempty"`
	OrderID       string          `json:"orderID,omitempty"`
	ClientOrderID string          `json:"clientOrderID"`
	ExecID        string          `json:"execID,omitempty"`
	TransactTime  string          `json:"transactTime,omitempty"`
	Text          string          `json:"text,omitempty"`
}

func (e *OrderUpdatedEvent) EventTopic() Topic { return TopicOrderUpdated }

// TradeExecutedEvent is derived from a Trade execution report after the
// position accounting has been applied. Opened and Closed are the
// signed portions of the trade that grew and shrank the position, with
// the commission attributed pro rata between them.
type TradeExecutedEvent struct {
	Topic            Topic   `json:"topic"`
	Ts               string  `json:"ts,omitempty"`
	Symbol           string  `json:"symbol"`
	Side             Side    `json:"side"`
	Size             float64 `json:"size"`
	Price            float64 `json:"price"`
	Account          string  `json:"account,omitempty"`
	OrderID          string  `json:"orderid,omitempty"`
	TradeID          string  `json:"tradeid,omitempty"`
	Opened           float64 `json:"opened,omitempty"`
	Closed           float64 `json:"closed,omitempty"`
	OpenedCommission float64 `json:"opened_commission,omitempty"`
	ClosedCommission float64 `json:"closed_commission,omitempty"`
}

func (e *TradeExecutedEvent) EventTopic() Topic { return TopicTradeExecuted }

// PositionUpdatedEvent publishes a settled position state.
type PositionUpdatedEvent struct {
	Topic       Topic   `json:"topic"`
	Symbol      string  `json:"symbol"`
	Account     string  `json:"account,omitempty"`
	Size        float64 `json:"size"`
	Price       float64 `json:"price"`
	OpenResult  float64 `json:"open_result"`
	CloseResult float64 `json:"close_result"`
}

func (e *PositionUpdatedEvent) EventTopic() Topic { return TopicPositionUpdated }

// ParameterChangeEvent carries live strategy parameter updates.
type ParameterChangeEvent struct {
	Topic      Topic          `json:"topic"`
	Parameters map[string]any `json:"parameters"`
	FromAPI    bool           `json:"from_api,omitempty"`
}

func (e *ParameterChangeEvent) EventTopic() Topic { return TopicParameterChange }

// ManualOrderCancelEvent requests a cancel for a single order by id.
type ManualOrderCancelEvent struct {
	Topic   Topic  `json:"topic"`
	OrderID string `json:"order_id"`
}

func (e *ManualOrderCancelEvent) EventTopic() Topic { return TopicManualOrderCancel }

// StrategyStatusChangeEvent either notifies or commands a strategy
// state transition, depending on the sender.
type StrategyStatusChangeEvent struct {
	Topic   Topic  `json:"topic"`
	Status  string `json:"status"`
	FromAPI bool   `json:"from_api,omitempty"`
}

func (e *StrategyStatusChangeEvent) EventTopic() Topic { return TopicStrategyStatus }

// OrderStatusRequestEvent asks the venue to replay an order's status.
type OrderStatusRequestEvent struct {
	Topic         Topic  `json:"topic"`
	ClientOrderID string `json:"client_order_id"`
	Side          Side   `json:"side,omitempty"`
}

func (e *OrderStatusRequestEvent) EventTopic() Topic { return TopicOrderStatusRequest }
