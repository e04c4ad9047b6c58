package schema

// Topic is the dispatch key of an event envelope.
type Topic string

const (
	TopicMarketDataRequest  Topic = "market_data_request_event"
	TopicMarketDataSnapshot Topic = "market_data_snapshot_full_refresh_event"
	TopicExecutionReport    Topic = "execution_report_event"
	TopicNewOrder           Topic = "new_order_event"
	TopicOrderCancel        Topic = "order_cancel_request_event"
	TopicOrderMassCancel    Topic = "order_mass_cancel_request_event"
	TopicOrderCancelReplace Topic = "order_cancel_replace_request_event"
	TopicBulkNewOrder       Topic = "bulk_new_order_event"
	TopicOrderUpdated       Topic = "live_trading_order_updated_event"
	TopicTradeExecuted      Topic = "trade_executed_event"
	TopicPositionUpdated    Topic = "position_updated_event"
	TopicParameterChange    Topic = "parameter_change_event"
	TopicManualOrderCancel  Topic = "manual_order_cancel_request_event"
	TopicStrategyStatus     Topic = "strategy_status_change"
	TopicOrderStatusRequest Topic = "order_status_request_event"
)
