// internal/domain/order/status_test.go
package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusPaid},
		{StatusConfirmed, StatusProcessing},
		{StatusPaid, StatusProcessing},
		{StatusProcessing, StatusShipped},
		{StatusProcessing, StatusRefunded},
		{StatusShipped, StatusCompleted},
		{StatusShipped, StatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to string }{
		{StatusPending, StatusShipped},
		{StatusPending, StatusCompleted},
		{StatusPaid, StatusConfirmed},
		{StatusShipped, StatusPending},
		{StatusCompleted, StatusCancelled},
		{StatusCancelled, StatusPending},
		{StatusRefunded, StatusProcessing},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, status := range []string{StatusCompleted, StatusCancelled, StatusRefunded} {
		assert.True(t, IsTerminalStatus(status), status)
	}
	for _, status := range []string{StatusPending, StatusConfirmed, StatusPaid, StatusProcessing, StatusShipped} {
		assert.False(t, IsTerminalStatus(status), status)
	}
}

func TestActiveStatusesHoldStock(t *testing.T) {
	for _, status := range []string{StatusPending, StatusConfirmed, StatusPaid, StatusProcessing, StatusShipped} {
		assert.True(t, IsActiveStatus(status), status)
	}
	for _, status := range []string{StatusCompleted, StatusCancelled, StatusRefunded} {
		assert.False(t, IsActiveStatus(status), status)
	}
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusPending))
	assert.False(t, ValidStatus("unknown"))
	assert.False(t, ValidStatus(""))
}

func TestGenerateOrderCodeFormat(t *testing.T) {
	code := generateOrderCode(42, time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, "ORD2026082800042", code)
}
