package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"teamhub/models"
	"teamhub/utils"
)

// paymentGateway is the slice of the gateway client this worker needs.
type paymentGateway interface {
	VerifyTransaction(ctx context.Context, transactionID string) (string, error)
}

// ReconcileWorker sweeps Pending payments and settles them against the
// gateway's status endpoint. Covers users who paid but never came back
// through the success redirect.
type ReconcileWorker struct {
	DB      *gorm.DB
	Gateway paymentGateway
	Logger  *logrus.Entry
}

func NewReconcileWorker(db *gorm.DB, gateway paymentGateway) *ReconcileWorker {
	return &ReconcileWorker{
		DB:      db,
		Gateway: gateway,
		Logger:  logrus.WithField("component", "reconcile_worker"),
	}
}

func (rw *ReconcileWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	rw.Logger.Info("Payment reconcile worker started")

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rw.Logger.Info("Payment reconcile worker shutting down...")
			return
		case <-ticker.C:
			rw.settlePendingPayments(ctx)
		}
	}
}

// settlePendingPayments verifies every stale Pending payment. A payment is
// stale once it is old enough that the user has had time to finish checkout.
func (rw *ReconcileWorker) settlePendingPayments(ctx context.Context) {
	cutoff := time.Now().Add(-2 * time.Minute)

	var pending []models.Payment
	if err := rw.DB.Where("status = ? AND created_at < ?", models.PaymentPending, cutoff).
		Limit(50).
		Find(&pending).Error; err != nil {
		rw.Logger.WithError(err).Error("Failed to fetch pending payments")
		return
	}

	for _, payment := range pending {
		if err := rw.settlePayment(ctx, payment); err != nil {
			rw.Logger.WithError(err).WithField("transaction_id", payment.TransactionID).
				Warn("Failed to settle payment")
		}
	}
}

func (rw *ReconcileWorker) settlePayment(ctx context.Context, payment models.Payment) error {
	status, err := rw.Gateway.VerifyTransaction(ctx, payment.TransactionID)
	if err != nil {
		// Leave the row Pending; the next sweep retries
		return err
	}

	newStatus := models.PaymentFailed
	if status == utils.TransactionSuccessful {
		newStatus = models.PaymentCompleted
	}

	if err := rw.DB.Model(&payment).Update("status", newStatus).Error; err != nil {
		return err
	}

	rw.Logger.WithFields(logrus.Fields{
		"transaction_id": payment.TransactionID,
		"team_id":        payment.TeamID,
		"status":         newStatus,
	}).Info("Payment settled")

	return nil
}
