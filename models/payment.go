package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment statuses
const (
	PaymentPending   = "Pending"
	PaymentCompleted = "Completed"
	PaymentFailed    = "Failed"
)

// Subscription statuses derived from a team's payment history
const (
	SubscriptionInactive = "Inactive"
	SubscriptionPending  = "Pending"
	SubscriptionActive   = "Active"
	SubscriptionExpired  = "Expired"
)

// SubscriptionPeriod is how long a completed payment keeps a subscription
// active.
const SubscriptionPeriod = 30 * 24 * time.Hour

// Payment records one subscription charge attempt for a team. Rows are
// created Pending at checkout initiation and settled later, either by the
// gateway verification callback, the reconcile worker, or an admin.
type Payment struct {
	gorm.Model
	TeamID uint `gorm:"not null;index" json:"team_id"`

	Amount        int    `gorm:"not null" json:"amount"`
	Currency      string `gorm:"default:'XAF'" json:"currency"`
	PaymentMethod string `json:"payment_method,omitempty"`

	TransactionID string `gorm:"uniqueIndex;not null" json:"transaction_id"`
	Status        string `gorm:"default:'Pending';index" json:"status"` // Pending, Completed, Failed

	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// Relations
	Team Team `json:"-"`
}

// SubscriptionStatus derives a display-only status from a team's payments,
// ordered most recent first. It never touches the store.
func SubscriptionStatus(payments []Payment, now time.Time) string {
	if len(payments) == 0 {
		return SubscriptionInactive
	}
	latest := payments[0]
	if latest.Status != PaymentCompleted {
		return SubscriptionPending
	}
	if latest.ExpiresAt != nil && latest.ExpiresAt.After(now) {
		return SubscriptionActive
	}
	return SubscriptionExpired
}
