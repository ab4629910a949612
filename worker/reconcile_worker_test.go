package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"teamhub/config"
	"teamhub/models"
	"teamhub/utils"
)

type stubGateway struct {
	statuses map[string]string
	err      error
	calls    []string
}

func (s *stubGateway) VerifyTransaction(_ context.Context, transactionID string) (string, error) {
	s.calls = append(s.calls, transactionID)
	if s.err != nil {
		return "", s.err
	}
	return s.statuses[transactionID], nil
}

func newWorkerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.MigrateDB(db))
	return db
}

func createPayment(t *testing.T, db *gorm.DB, txID string, age time.Duration) models.Payment {
	t.Helper()

	payment := models.Payment{
		TeamID:        1,
		Amount:        5000,
		Currency:      "XAF",
		TransactionID: txID,
		Status:        models.PaymentPending,
	}
	require.NoError(t, db.Create(&payment).Error)
	require.NoError(t, db.Model(&payment).Update("created_at", time.Now().Add(-age)).Error)
	return payment
}

func TestSettlePendingPayments(t *testing.T) {
	db := newWorkerDB(t)
	gateway := &stubGateway{statuses: map[string]string{
		"TEAM-1-100": utils.TransactionSuccessful,
		"TEAM-1-200": "CANCELLED",
	}}
	rw := NewReconcileWorker(db, gateway)

	paid := createPayment(t, db, "TEAM-1-100", 5*time.Minute)
	abandoned := createPayment(t, db, "TEAM-1-200", 5*time.Minute)
	fresh := createPayment(t, db, "TEAM-1-300", 10*time.Second)

	rw.settlePendingPayments(context.Background())

	reload := func(id uint) string {
		var p models.Payment
		require.NoError(t, db.First(&p, id).Error)
		return p.Status
	}

	assert.Equal(t, models.PaymentCompleted, reload(paid.ID))
	assert.Equal(t, models.PaymentFailed, reload(abandoned.ID))

	// Fresh payments stay untouched; the user may still be mid-checkout
	assert.Equal(t, models.PaymentPending, reload(fresh.ID))
	assert.NotContains(t, gateway.calls, "TEAM-1-300")
}

func TestSettlePendingPaymentsGatewayDown(t *testing.T) {
	db := newWorkerDB(t)
	gateway := &stubGateway{err: errors.New("gateway unreachable")}
	rw := NewReconcileWorker(db, gateway)

	payment := createPayment(t, db, "TEAM-1-400", 5*time.Minute)

	rw.settlePendingPayments(context.Background())

	// Still Pending, so the next sweep picks it up again
	var reloaded models.Payment
	require.NoError(t, db.First(&reloaded, payment.ID).Error)
	assert.Equal(t, models.PaymentPending, reloaded.Status)
	assert.Equal(t, []string{"TEAM-1-400"}, gateway.calls)
}
