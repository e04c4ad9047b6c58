package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/schema"
	"main/pkg/exception"
)

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPendingNew.Terminal())
	assert.False(t, StatusNew.Terminal())
	assert.False(t, StatusPartiallyFilled.Terminal())
	assert.True(t, StatusFilled.Terminal())
	assert.True(t, StatusCanceled.Terminal())
	assert.True(t, StatusReplaced.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusExpired.Terminal())
}

func TestStatusCodeRoundTrip(t *testing.T) {
	for _, status := range []Status{
		StatusPendingNew, StatusNew, StatusPartiallyFilled, StatusFilled,
		StatusCanceled, StatusReplaced, StatusRejected, StatusExpired,
	} {
		assert.Equal(t, status, StatusFromCode(status.Code()))
	}
}

func TestOrderAcceptIdempotent(t *testing.T) {
	o := &Order{ClientOrderID: "cl-1", Quantity: 10, Status: StatusPendingNew}

	assert.True(t, o.Accept("srv-1"))
	assert.Equal(t, StatusNew, o.Status)
	assert.Equal(t, 10.0, o.LeavesQty)

	assert.False(t, o.Accept("srv-2"))
	assert.Equal(t, "srv-1", o.OrderID)
}

func TestOrderCancelTerminalIsNoop(t *testing.T) {
	o := &Order{ClientOrderID: "cl-1", Quantity: 10, Status: StatusFilled}
	assert.False(t, o.Cancel())

	o.Status = StatusNew
	assert.True(t, o.Cancel())
	assert.Equal(t, StatusCanceled, o.Status)
	assert.Zero(t, o.LeavesQty)
}

func TestOrderRecordFill(t *testing.T) {
	o := &Order{ClientOrderID: "cl-1", Quantity: 10, Status: StatusNew, LeavesQty: 10}

	assert.True(t, o.RecordFill("ex-1", schema.OrderStatusPartiallyFilled, 4, 4, 6, 1))
	assert.Equal(t, StatusPartiallyFilled, o.Status)
	assert.Equal(t, 4.0, o.CumQty)
	assert.Equal(t, 6.0, o.LeavesQty)
	assert.Equal(t, 1.0, o.Commission)

	// repeated exec id is suppressed
	assert.False(t, o.RecordFill("ex-1", schema.OrderStatusPartiallyFilled, 4, 4, 6, 1))
	assert.Equal(t, 4.0, o.CumQty)

	assert.True(t, o.RecordFill("ex-2", schema.OrderStatusFilled, 6, 10, 0, 2))
	assert.Equal(t, StatusFilled, o.Status)
	assert.Equal(t, 10.0, o.CumQty)
	assert.Zero(t, o.LeavesQty)
	assert.Equal(t, 3.0, o.Commission)
}

func TestOrderRecordFillDerivesQuantities(t *testing.T) {
	o := &Order{ClientOrderID: "cl-1", Quantity: 10, Status: StatusNew, LeavesQty: 10}

	assert.True(t, o.RecordFill("ex-1", "", 4, 0, 0, 0))
	assert.Equal(t, 4.0, o.CumQty)
	assert.Equal(t, 6.0, o.LeavesQty)
	assert.Equal(t, StatusPartiallyFilled, o.Status)
}

func TestOrderRecordFillReportedFilledWins(t *testing.T) {
	// after a quantity-reducing replace the cumulative quantity never
	// reaches the original size, yet the venue reports Filled
	o := &Order{ClientOrderID: "cl-1", Quantity: 10, Status: StatusPartiallyFilled, CumQty: 2, LeavesQty: 8}

	assert.True(t, o.RecordFill("ex-2", schema.OrderStatusFilled, 4, 6, 0, 1))
	assert.Equal(t, StatusFilled, o.Status)
	assert.Equal(t, 6.0, o.CumQty)
	assert.Zero(t, o.LeavesQty)
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	registry := NewRegistry()
	o := &Order{ClientOrderID: "cl-1", Quantity: 10, Status: StatusPendingNew}

	require.NoError(t, registry.Register(o))
	assert.ErrorIs(t, registry.Register(o), exception.ErrOrderDuplicate)

	got, ok := registry.Get("cl-1")
	require.True(t, ok)
	assert.Same(t, o, got)

	_, ok = registry.Get("missing")
	assert.False(t, ok)
}

func TestRegistryRejectsEmptyClientID(t *testing.T) {
	registry := NewRegistry()
	assert.ErrorIs(t, registry.Register(&Order{}), exception.ErrOrderInvalidSpec)
	assert.ErrorIs(t, registry.Register(nil), exception.ErrOrderInvalidSpec)
}

func TestRegistryBindOrderID(t *testing.T) {
	registry := NewRegistry()
	o := &Order{ClientOrderID: "cl-1", Status: StatusPendingNew}
	require.NoError(t, registry.Register(o))

	_, ok := registry.GetByOrderID("srv-1")
	assert.False(t, ok)

	o.OrderID = "srv-1"
	registry.BindOrderID(o)

	got, ok := registry.GetByOrderID("srv-1")
	require.True(t, ok)
	assert.Same(t, o, got)
}

func TestRegistryOpenOrders(t *testing.T) {
	registry := NewRegistry()
	working := &Order{ClientOrderID: "cl-1", Status: StatusNew}
	done := &Order{ClientOrderID: "cl-2", Status: StatusFilled}
	require.NoError(t, registry.Register(working))
	require.NoError(t, registry.Register(done))

	open := registry.OpenOrders()
	require.Len(t, open, 1)
	assert.Same(t, working, open[0])
	assert.Equal(t, 2, registry.Len())
}
