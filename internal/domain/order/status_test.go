package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPlaced, StatusProcessing, true},
		{StatusPlaced, StatusCancelled, true},
		{StatusPlaced, StatusShipped, false},
		{StatusPlaced, StatusDelivered, false},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusProcessing, StatusPlaced, false},
		{StatusProcessing, StatusDelivered, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusShipped, StatusPlaced, false},
		{StatusDelivered, StatusPlaced, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPlaced, false},
		{StatusCancelled, StatusProcessing, false},
		{StatusPlaced, StatusPlaced, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPlaced, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("UNKNOWN").Valid())
	assert.False(t, Status("").Valid())
	assert.False(t, Status("placed").Valid())
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPlaced.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.False(t, StatusShipped.Terminal())
}
