package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"teamhub/config"
	"teamhub/models"
	"teamhub/utils"
)

// SubscriptionAmount is the flat monthly charge in the smallest currency
// unit.
const SubscriptionAmount = 5000

// PaymentGateway is the outbound surface the payment flow needs. Satisfied
// by utils.PayUnitClient.
type PaymentGateway interface {
	InitiateTransaction(ctx context.Context, req utils.InitiateRequest) (string, error)
	VerifyTransaction(ctx context.Context, transactionID string) (string, error)
}

var gateway PaymentGateway

func InitPayUnit() {
	gateway = utils.NewPayUnitClient(config.AppConfig.PayUnit)
}

type UpdatePaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Completed Failed"`
}

// callerTeamID resolves the caller's team membership.
func callerTeamID(userID uint) (uint, error) {
	var member models.TeamMember
	err := config.DB.Where("user_id = ?", userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, utils.ErrNotTeamMember
	}
	if err != nil {
		return 0, err
	}
	return member.TeamID, nil
}

// InitiatePayment handles POST /payments/initiate. The Pending row is
// persisted before the gateway is called and is kept even when the call
// fails, so every checkout attempt leaves a trace.
func InitiatePayment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	teamID, err := callerTeamID(userID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	now := time.Now()
	expiresAt := now.Add(models.SubscriptionPeriod)
	payment := models.Payment{
		TeamID:        teamID,
		Amount:        SubscriptionAmount,
		Currency:      "XAF",
		TransactionID: fmt.Sprintf("TEAM-%d-%d", teamID, now.Unix()),
		Status:        models.PaymentPending,
		ExpiresAt:     &expiresAt,
	}

	if err := config.DB.Create(&payment).Error; err != nil {
		return utils.HandleError(c, err)
	}

	redirectURL, err := gateway.InitiateTransaction(c.Context(), utils.InitiateRequest{
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		TransactionID: payment.TransactionID,
		SuccessURL:    config.AppConfig.PayUnit.SuccessURL,
		CancelURL:     config.AppConfig.PayUnit.CancelURL,
		Description:   fmt.Sprintf("TeamHub subscription for team %d", teamID),
	})
	if err != nil {
		sentry.CaptureException(err)
		return utils.HandleError(c, utils.ErrGatewayFailed.Wrap(err))
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"transaction_id": payment.TransactionID,
		"redirect_url":   redirectURL,
	})
}

// VerifyPayment handles GET /payments/verify/:transactionId. Called from
// the success redirect; also usable to poll a Pending payment.
func VerifyPayment(c *fiber.Ctx) error {
	transactionID := c.Params("transactionId")

	var payment models.Payment
	if err := config.DB.Where("transaction_id = ?", transactionID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.HandleError(c, utils.ErrPaymentNotFound)
		}
		return utils.HandleError(c, err)
	}

	status, err := gateway.VerifyTransaction(c.Context(), transactionID)
	if err != nil {
		sentry.CaptureException(err)
		return utils.HandleError(c, utils.ErrGatewayVerify.Wrap(err))
	}

	if payment.Status == models.PaymentPending {
		newStatus := models.PaymentFailed
		if status == utils.TransactionSuccessful {
			newStatus = models.PaymentCompleted
		}
		if err := config.DB.Model(&payment).Update("status", newStatus).Error; err != nil {
			return utils.HandleError(c, err)
		}
		payment.Status = newStatus
	}

	return c.JSON(utils.SuccessResponse(payment))
}

// GetTeamPayments handles GET /payments, most recent first.
func GetTeamPayments(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	teamID, err := callerTeamID(userID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	var payments []models.Payment
	if err := config.DB.Where("team_id = ?", teamID).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(utils.SuccessResponse(payments))
}

// GetSubscriptionStatus handles GET /payments/subscription.
func GetSubscriptionStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	teamID, err := callerTeamID(userID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	var payments []models.Payment
	if err := config.DB.Where("team_id = ?", teamID).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  models.SubscriptionStatus(payments, time.Now()),
	})
}

// UpdatePaymentStatus handles PUT /admin/payments/:id/status. Manual settle
// path; does not touch the team's active flag.
func UpdatePaymentStatus(c *fiber.Ctx) error {
	paymentID := utils.ParseUint(c.Params("id"))

	var req UpdatePaymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var payment models.Payment
	if err := config.DB.First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.HandleError(c, utils.ErrPaymentNotFound)
		}
		return utils.HandleError(c, err)
	}

	if err := config.DB.Model(&payment).Update("status", req.Status).Error; err != nil {
		return utils.HandleError(c, err)
	}
	payment.Status = req.Status

	return c.JSON(utils.SuccessResponse(payment))
}
