package enrollment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcarver/ledgerlink/internal/enrollment"
)

func TestStatus_CanTransition(t *testing.T) {
	type testCase struct {
		name string
		from enrollment.Status
		to   enrollment.Status
		want bool
	}

	tests := []testCase{
		{name: "ActiveToDegraded", from: enrollment.StatusActive, to: enrollment.StatusDegraded, want: true},
		{name: "ActiveToDisconnected", from: enrollment.StatusActive, to: enrollment.StatusDisconnected, want: true},
		{name: "DegradedToDisconnected", from: enrollment.StatusDegraded, to: enrollment.StatusDisconnected, want: true},
		{name: "DegradedToActive", from: enrollment.StatusDegraded, to: enrollment.StatusActive, want: false},
		{name: "DisconnectedToActive", from: enrollment.StatusDisconnected, to: enrollment.StatusActive, want: false},
		{name: "DisconnectedToDegraded", from: enrollment.StatusDisconnected, to: enrollment.StatusDegraded, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}
