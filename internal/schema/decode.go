package schema

import (
	"encoding/json"

	"github.com/yanun0323/errors"

	"main/pkg/exception"
)

// Payload is any carrier that can unmarshal itself into a typed event.
// Both raw JSON bytes and websocket messages satisfy it.
type Payload interface {
	Unmarshal(v any) error
}

// RawPayload adapts plain JSON bytes to the Payload interface.
type RawPayload []byte

func (r RawPayload) Unmarshal(v any) error { return json.Unmarshal(r, v) }

// Raw exposes the original bytes for forensic logging.
func (r RawPayload) Raw() []byte { return r }

// constructors maps every recognized topic to its concrete event type.
// Unknown topics fail at decode time instead of producing loose maps.
var constructors = map[Topic]func() Event{
	TopicMarketDataRequest:  func() Event { return &MarketDataRequestEvent{} },
	TopicMarketDataSnapshot: func() Event { return &MarketDataSnapshotEvent{} },
	TopicExecutionReport:    func() Event { return &ExecutionReportEvent{} },
	TopicNewOrder:           func() Event { return &NewOrderEvent{} },
	TopicOrderCancel:        func() Event { return &OrderCancelEvent{} },
	TopicOrderMassCancel:    func() Event { return &OrderMassCancelEvent{} },
	TopicOrderCancelReplace: func() Event { return &OrderCancelReplaceEvent{} },
	TopicBulkNewOrder:       func() Event { return &BulkNewOrderEvent{} },
	TopicOrderUpdated:       func() Event { return &OrderUpdatedEvent{} },
	TopicTradeExecuted:      func() Event { return &TradeExecutedEvent{} },
	TopicPositionUpdated:    func() Event { return &PositionUpdatedEvent{} },
	TopicParameterChange:    func() Event { return &ParameterChangeEvent{} },
	TopicManualOrderCancel:  func() Event { return &ManualOrderCancelEvent{} },
	TopicStrategyStatus:     func() Event { return &StrategyStatusChangeEvent{} },
	TopicOrderStatusRequest: func() Event { return &OrderStatusRequestEvent{} },
}

// Decode reads the envelope topic and builds the typed event for it.
func Decode(p Payload) (Event, error) {
	var env Envelope
	if err := p.Unmarshal(&env); err != nil {
		return nil, errors.Wrap(exception.ErrEventMalformed, err.Error())
	}
	if env.Topic == "" {
		return nil, exception.ErrEventMissingTopic
	}

	ctor, ok := constructors[env.Topic]
	if !ok {
		return nil, errors.Wrapf(exception.ErrEventUnknownTopic, "topic: %s", env.Topic)
	}

	evt := ctor()
	if err := p.Unmarshal(evt); err != nil {
		return nil, errors.Wrapf(exception.ErrEventMalformed, "topic: %s, err: %+v", env.Topic, err)
	}

	return evt, nil
}
