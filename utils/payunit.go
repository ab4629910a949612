package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"teamhub/config"
)

var ErrPayUnitAPI = errors.New("payunit api")

// TransactionSuccessful is the sentinel the gateway reports for a settled
// transaction.
const TransactionSuccessful = "SUCCESS"

// InitiateRequest is the payload for a checkout initiation call.
type InitiateRequest struct {
	Amount        int    `json:"total_amount"`
	Currency      string `json:"currency"`
	TransactionID string `json:"transaction_id"`
	SuccessURL    string `json:"return_url"`
	CancelURL     string `json:"cancel_url"`
	Description   string `json:"description"`
}

type initiateResponse struct {
	Status string `json:"status"`
	Data   struct {
		TransactionURL string `json:"transaction_url"`
	} `json:"data"`
}

type statusResponse struct {
	Status string `json:"status"`
	Data   struct {
		TransactionStatus string `json:"transaction_status"`
		TransactionAmount int    `json:"transaction_amount"`
	} `json:"data"`
}

// apiErrorResponse describes the JSON the gateway responds with on failure
type apiErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func toErrorFromResponse(resp *resty.Response) error {
	var errResp apiErrorResponse
	if err := json.Unmarshal(resp.Body(), &errResp); err != nil {
		return errors.Join(ErrPayUnitAPI, fmt.Errorf("(HTTP Status: %d) unable to parse error response: %s", resp.StatusCode(), err))
	}
	return errors.Join(ErrPayUnitAPI, fmt.Errorf("(HTTP Status: %d) %s: %s", resp.StatusCode(), errResp.Status, errResp.Message))
}

// PayUnitClient talks to the hosted payment gateway. All calls carry the
// api key and basic credentials from config and retry transient failures
// with a short backoff.
type PayUnitClient struct {
	client *resty.Client
	log    *logrus.Entry
}

func NewPayUnitClient(cfg config.PayUnitConfig) *PayUnitClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("x-api-key", cfg.APIKey).
		SetHeader("mode", cfg.Mode).
		SetBasicAuth(cfg.APIUser, cfg.APIPassword).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second)

	return &PayUnitClient{
		client: client,
		log:    logrus.WithField("component", "payunit"),
	}
}

// InitiateTransaction starts a checkout and returns the URL the browser
// should be redirected to.
func (p *PayUnitClient) InitiateTransaction(ctx context.Context, req InitiateRequest) (string, error) {
	var result initiateResponse

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/gateway/initialize")
	if err != nil {
		p.log.WithError(err).WithField("transaction_id", req.TransactionID).Error("initiate call failed")
		return "", errors.Join(ErrPayUnitAPI, err)
	}
	if resp.IsError() {
		return "", toErrorFromResponse(resp)
	}
	if result.Data.TransactionURL == "" {
		p.log.WithField("transaction_id", req.TransactionID).Error("initiate response missing redirect url")
		return "", errors.Join(ErrPayUnitAPI, errors.New("no transaction url in response"))
	}

	p.log.WithFields(logrus.Fields{
		"transaction_id": req.TransactionID,
		"amount":         req.Amount,
	}).Info("transaction initiated")

	return result.Data.TransactionURL, nil
}

// VerifyTransaction fetches the gateway-side status for a transaction id.
// Compare the result against TransactionSuccessful.
func (p *PayUnitClient) VerifyTransaction(ctx context.Context, transactionID string) (string, error) {
	var result statusResponse

	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/gateway/paymentstatus/" + transactionID)
	if err != nil {
		p.log.WithError(err).WithField("transaction_id", transactionID).Error("status call failed")
		return "", errors.Join(ErrPayUnitAPI, err)
	}
	if resp.IsError() {
		return "", toErrorFromResponse(resp)
	}

	return result.Data.TransactionStatus, nil
}
