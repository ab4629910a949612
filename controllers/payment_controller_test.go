package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"teamhub/config"
	"teamhub/models"
	"teamhub/utils"
)

// fakeGateway stands in for PayUnit so the handlers can run offline.
type fakeGateway struct {
	initiateErr  error
	verifyStatus string
	verifyErr    error
	initiated    []utils.InitiateRequest
}

func (f *fakeGateway) InitiateTransaction(_ context.Context, req utils.InitiateRequest) (string, error) {
	f.initiated = append(f.initiated, req)
	if f.initiateErr != nil {
		return "", f.initiateErr
	}
	return "https://checkout.example.com/" + req.TransactionID, nil
}

func (f *fakeGateway) VerifyTransaction(_ context.Context, _ string) (string, error) {
	if f.verifyErr != nil {
		return "", f.verifyErr
	}
	return f.verifyStatus, nil
}

// newPaymentApp wires the payment handlers behind a stub auth middleware
// that injects the given user.
func newPaymentApp(t *testing.T, userID uint, fake *fakeGateway) *fiber.App {
	t.Helper()

	config.DB = newTestDB(t)
	gateway = fake

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	app.Post("/payments/initiate", InitiatePayment)
	app.Get("/payments/verify/:transactionId", VerifyPayment)
	app.Get("/payments", GetTeamPayments)
	app.Get("/payments/subscription", GetSubscriptionStatus)
	app.Put("/admin/payments/:id/status", UpdatePaymentStatus)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func TestInitiatePayment(t *testing.T) {
	fake := &fakeGateway{}
	app := newPaymentApp(t, 1, fake)

	leader := createTestUser(t, config.DB, "leader@example.com")
	require.Equal(t, uint(1), leader.ID)
	team := createTestTeam(t, config.DB, leader, "PAYING")

	resp, body := doJSON(t, app, "POST", "/payments/initiate", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	txID, _ := body["transaction_id"].(string)
	assert.True(t, strings.HasPrefix(txID, "TEAM-"), "transaction id %q", txID)
	redirect, _ := body["redirect_url"].(string)
	assert.Contains(t, redirect, txID)

	// Exactly one Pending row, written before the gateway was called
	var payments []models.Payment
	require.NoError(t, config.DB.Where("team_id = ?", team.ID).Find(&payments).Error)
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentPending, payments[0].Status)
	assert.EqualValues(t, SubscriptionAmount, payments[0].Amount)
	assert.Equal(t, "XAF", payments[0].Currency)
	require.NotNil(t, payments[0].ExpiresAt)

	require.Len(t, fake.initiated, 1)
	assert.Equal(t, txID, fake.initiated[0].TransactionID)
}

func TestInitiatePaymentGatewayFailure(t *testing.T) {
	fake := &fakeGateway{initiateErr: errors.New("upstream timeout")}
	app := newPaymentApp(t, 1, fake)

	leader := createTestUser(t, config.DB, "leader@example.com")
	team := createTestTeam(t, config.DB, leader, "PAYERR")

	resp, _ := doJSON(t, app, "POST", "/payments/initiate", "")
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	// The Pending row survives the failed gateway call
	var payments []models.Payment
	require.NoError(t, config.DB.Where("team_id = ?", team.ID).Find(&payments).Error)
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentPending, payments[0].Status)
}

func TestInitiatePaymentWithoutTeam(t *testing.T) {
	fake := &fakeGateway{}
	app := newPaymentApp(t, 1, fake)

	createTestUser(t, config.DB, "loner@example.com")

	resp, _ := doJSON(t, app, "POST", "/payments/initiate", "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Empty(t, fake.initiated)
}

func TestVerifyPayment(t *testing.T) {
	settle := func(t *testing.T, gatewayStatus, wantStatus string) {
		fake := &fakeGateway{verifyStatus: gatewayStatus}
		app := newPaymentApp(t, 1, fake)

		leader := createTestUser(t, config.DB, "leader@example.com")
		team := createTestTeam(t, config.DB, leader, "VERIFY")

		payment := models.Payment{
			TeamID:        team.ID,
			Amount:        SubscriptionAmount,
			Currency:      "XAF",
			TransactionID: "TEAM-1-1700000000",
			Status:        models.PaymentPending,
		}
		require.NoError(t, config.DB.Create(&payment).Error)

		resp, _ := doJSON(t, app, "GET", "/payments/verify/TEAM-1-1700000000", "")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var reloaded models.Payment
		require.NoError(t, config.DB.First(&reloaded, payment.ID).Error)
		assert.Equal(t, wantStatus, reloaded.Status)
	}

	t.Run("successful transaction settles as completed", func(t *testing.T) {
		settle(t, utils.TransactionSuccessful, models.PaymentCompleted)
	})

	t.Run("anything else settles as failed", func(t *testing.T) {
		settle(t, "CANCELLED", models.PaymentFailed)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		app := newPaymentApp(t, 1, &fakeGateway{verifyStatus: utils.TransactionSuccessful})
		resp, _ := doJSON(t, app, "GET", "/payments/verify/TEAM-9-0", "")
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("gateway error leaves the payment pending", func(t *testing.T) {
		fake := &fakeGateway{verifyErr: errors.New("upstream down")}
		app := newPaymentApp(t, 1, fake)

		leader := createTestUser(t, config.DB, "leader@example.com")
		team := createTestTeam(t, config.DB, leader, "VERERR")

		payment := models.Payment{
			TeamID:        team.ID,
			Amount:        SubscriptionAmount,
			Currency:      "XAF",
			TransactionID: "TEAM-1-1700000001",
			Status:        models.PaymentPending,
		}
		require.NoError(t, config.DB.Create(&payment).Error)

		resp, _ := doJSON(t, app, "GET", "/payments/verify/TEAM-1-1700000001", "")
		assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

		var reloaded models.Payment
		require.NoError(t, config.DB.First(&reloaded, payment.ID).Error)
		assert.Equal(t, models.PaymentPending, reloaded.Status)
	})
}

func TestGetSubscriptionStatus(t *testing.T) {
	app := newPaymentApp(t, 1, &fakeGateway{})

	leader := createTestUser(t, config.DB, "leader@example.com")
	team := createTestTeam(t, config.DB, leader, "SUBSCR")

	resp, body := doJSON(t, app, "GET", "/payments/subscription", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, models.SubscriptionInactive, body["status"])

	future := time.Now().Add(10 * 24 * time.Hour)
	require.NoError(t, config.DB.Create(&models.Payment{
		TeamID:        team.ID,
		Amount:        SubscriptionAmount,
		Currency:      "XAF",
		TransactionID: "TEAM-1-1700000002",
		Status:        models.PaymentCompleted,
		ExpiresAt:     &future,
	}).Error)

	_, body = doJSON(t, app, "GET", "/payments/subscription", "")
	assert.Equal(t, models.SubscriptionActive, body["status"])
}

func TestUpdatePaymentStatus(t *testing.T) {
	app := newPaymentApp(t, 1, &fakeGateway{})

	leader := createTestUser(t, config.DB, "leader@example.com")
	team := createTestTeam(t, config.DB, leader, "ADMSET")

	payment := models.Payment{
		TeamID:        team.ID,
		Amount:        SubscriptionAmount,
		Currency:      "XAF",
		TransactionID: "TEAM-1-1700000003",
		Status:        models.PaymentPending,
	}
	require.NoError(t, config.DB.Create(&payment).Error)

	t.Run("manual settle", func(t *testing.T) {
		resp, _ := doJSON(t, app, "PUT", "/admin/payments/1/status", `{"status":"Completed"}`)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var reloaded models.Payment
		require.NoError(t, config.DB.First(&reloaded, payment.ID).Error)
		assert.Equal(t, models.PaymentCompleted, reloaded.Status)
	})

	t.Run("status outside the allowed set", func(t *testing.T) {
		resp, _ := doJSON(t, app, "PUT", "/admin/payments/1/status", `{"status":"Refunded"}`)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown payment", func(t *testing.T) {
		resp, _ := doJSON(t, app, "PUT", "/admin/payments/999/status", `{"status":"Failed"}`)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}
