package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusActive, OrderStatusCompleted, true},
		{OrderStatusActive, OrderStatusCancelled, true},
		{OrderStatusActive, OrderStatusActive, false},
		{OrderStatusCompleted, OrderStatusActive, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusActive, false},
		{OrderStatusCancelled, OrderStatusCompleted, false},
		{OrderStatusPending, OrderStatusCompleted, false},
		{OrderStatusPending, OrderStatusCancelled, false},
		{OrderStatus("BOGUS"), OrderStatusCompleted, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, OrderStatusActive.IsTerminal())
	assert.True(t, OrderStatusCompleted.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
}
