package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusByIndex(t *testing.T) {
	status, err := StatusByIndex(1)
	require.NoError(t, err)
	require.Equal(t, StatusPendingPayment, status)

	status, err = StatusByIndex(7)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, status)

	_, err = StatusByIndex(0)
	require.Error(t, err)
	_, err = StatusByIndex(8)
	require.Error(t, err)
}

func TestIsSalesTarget(t *testing.T) {
	require.False(t, StatusPendingPayment.IsSalesTarget())
	require.False(t, StatusCancelled.IsSalesTarget())

	for _, s := range []OrderStatus{StatusPaid, StatusProcured, StatusShipped, StatusTrackingSent, StatusArrived} {
		require.True(t, s.IsSalesTarget(), "%s should count toward revenue", s)
	}
}

func TestIsTerminal(t *testing.T) {
	require.True(t, StatusCancelled.IsTerminal())
	for _, s := range []OrderStatus{StatusPendingPayment, StatusPaid, StatusProcured, StatusShipped, StatusTrackingSent, StatusArrived} {
		require.False(t, s.IsTerminal())
	}
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("支払い完了")
	require.NoError(t, err)
	require.Equal(t, StatusPaid, status)

	_, err = ParseStatus("配達中")
	require.Error(t, err)
	_, err = ParseStatus("")
	require.Error(t, err)
}

func TestSKUAvailable(t *testing.T) {
	sku := SKU{QuantityOnHand: 5, QuantityReserved: 2}
	require.Equal(t, float64(3), sku.Available())
}
