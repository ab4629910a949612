package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionStatus(t *testing.T) {
	now := time.Now()
	future := now.Add(10 * 24 * time.Hour)
	past := now.Add(-1 * time.Hour)

	tests := []struct {
		name     string
		payments []Payment
		want     string
	}{
		{
			name:     "no payments",
			payments: nil,
			want:     SubscriptionInactive,
		},
		{
			name: "latest completed and unexpired",
			payments: []Payment{
				{Status: PaymentCompleted, ExpiresAt: &future},
			},
			want: SubscriptionActive,
		},
		{
			name: "latest completed but expired",
			payments: []Payment{
				{Status: PaymentCompleted, ExpiresAt: &past},
			},
			want: SubscriptionExpired,
		},
		{
			name: "latest pending",
			payments: []Payment{
				{Status: PaymentPending, ExpiresAt: &future},
			},
			want: SubscriptionPending,
		},
		{
			name: "latest failed",
			payments: []Payment{
				{Status: PaymentFailed},
			},
			want: SubscriptionPending,
		},
		{
			name: "latest pending shadows an older active payment",
			payments: []Payment{
				{Status: PaymentPending},
				{Status: PaymentCompleted, ExpiresAt: &future},
			},
			want: SubscriptionPending,
		},
		{
			name: "completed without expiry reads as expired",
			payments: []Payment{
				{Status: PaymentCompleted},
			},
			want: SubscriptionExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SubscriptionStatus(tt.payments, now))
		})
	}
}
