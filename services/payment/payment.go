// Package payment talks to the Instamojo gateway. Verification fails
// closed: anything short of an explicit settled status is "not settled".
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"maitree/apperr"

	"github.com/go-resty/resty/v2"
)

// Verifier confirms that a claimed payment actually settled
type Verifier interface {
	Verify(ctx context.Context, paymentID string) (bool, error)
}

// AmountVerifier also requires the settled amount to cover a price given
// in whole currency units
type AmountVerifier interface {
	VerifyAmount(ctx context.Context, paymentID string, amount int64) (bool, error)
}

// Options configures the gateway client
type Options struct {
	BaseURL       string
	ApiKey        string
	AuthToken     string
	SettledStatus string
	RedirectURL   string
	Timeout       time.Duration
}

// Client is the Instamojo REST client
type Client struct {
	http          *resty.Client
	apiKey        string
	authToken     string
	settledStatus string
	redirectURL   string
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.SettledStatus == "" {
		opts.SettledStatus = "credited"
	}
	base := strings.TrimRight(opts.BaseURL, "/") + "/"

	return &Client{
		http: resty.New().
			SetBaseURL(base).
			SetTimeout(opts.Timeout).
			SetHeader("Accept", "application/json"),
		apiKey:        opts.ApiKey,
		authToken:     opts.AuthToken,
		settledStatus: opts.SettledStatus,
		redirectURL:   opts.RedirectURL,
	}
}

type paymentDetails struct {
	Status  string `json:"status"`
	Payment struct {
		PaymentID string      `json:"payment_id"`
		Status    string      `json:"status"`
		Amount    json.Number `json:"amount"`
	} `json:"payment"`
}

// paidMinor converts the gateway's decimal amount ("199.00") to minor units
func paidMinor(n json.Number) (int64, bool) {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return int64(math.Round(f * 100)), true
}

// Verify returns true only when the gateway reports the settled status for
// paymentID. Transport errors, timeouts and non-2xx replies yield false.
func (c *Client) Verify(ctx context.Context, paymentID string) (bool, error) {
	return c.VerifyAmount(ctx, paymentID, 0)
}

// VerifyAmount is Verify plus a check that at least amount was paid.
// An amount of 0 skips the check.
func (c *Client) VerifyAmount(ctx context.Context, paymentID string, amount int64) (bool, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return false, apperr.Validation("Payment ID is required")
	}
	if c.apiKey == "" || c.authToken == "" {
		return false, apperr.VerificationFailed("Payment gateway is not configured", nil)
	}

	var details paymentDetails
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Api-Key", c.apiKey).
		SetHeader("X-Auth-Token", c.authToken).
		SetPathParam("paymentId", paymentID).
		SetResult(&details).
		Get("payments/{paymentId}/")
	if err != nil {
		log.Printf("[PAYMENT] Verification request for %s failed: %v", paymentID, err)
		return false, apperr.VerificationFailed("Payment gateway unreachable", err)
	}
	if resp.IsError() {
		log.Printf("[PAYMENT] Gateway answered %d for payment %s", resp.StatusCode(), paymentID)
		return false, apperr.VerificationFailed("Payment could not be verified", nil)
	}

	status := details.Payment.Status
	if status == "" {
		status = details.Status
	}
	if status != c.settledStatus {
		log.Printf("[PAYMENT] Payment %s has status %q", paymentID, status)
		return false, nil
	}
	if amount > 0 {
		paid, ok := paidMinor(details.Payment.Amount)
		if !ok || paid < amount*100 {
			log.Printf("[PAYMENT] Payment %s paid %q, expected %d", paymentID, details.Payment.Amount, amount)
			return false, nil
		}
	}
	return true, nil
}

// PaymentRequest is what the buyer is asked to pay for
type PaymentRequest struct {
	Amount    int64
	Purpose   string
	BuyerName string
	Email     string
	Phone     string
}

// PaymentRequestResult identifies the hosted checkout created by the gateway
type PaymentRequestResult struct {
	ID         string `json:"id"`
	LongURL    string `json:"longurl"`
	Status     string `json:"status"`
	Amount     string `json:"amount"`
	Purpose    string `json:"purpose"`
	RedirectTo string `json:"redirect_url"`
}

type paymentRequestResponse struct {
	Success        bool                 `json:"success"`
	PaymentRequest PaymentRequestResult `json:"payment_request"`
	Message        interface{}          `json:"message"`
}

// CreatePaymentRequest opens a hosted checkout for req
func (c *Client) CreatePaymentRequest(ctx context.Context, req PaymentRequest) (*PaymentRequestResult, error) {
	if c.apiKey == "" || c.authToken == "" {
		return nil, apperr.VerificationFailed("Payment gateway is not configured", nil)
	}

	form := map[string]string{
		"amount":                  fmt.Sprintf("%d", req.Amount),
		"purpose":                 req.Purpose,
		"buyer_name":              req.BuyerName,
		"redirect_url":            c.redirectURL,
		"send_email":              "false",
		"allow_repeated_payments": "false",
	}
	if req.Email != "" {
		form["email"] = req.Email
	}
	if req.Phone != "" {
		form["phone"] = req.Phone
	}

	var out paymentRequestResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Api-Key", c.apiKey).
		SetHeader("X-Auth-Token", c.authToken).
		SetFormData(form).
		SetResult(&out).
		Post("payment-requests/")
	if err != nil {
		log.Printf("[PAYMENT] Payment request failed: %v", err)
		return nil, apperr.VerificationFailed("Payment gateway unreachable", err)
	}
	if resp.IsError() || !out.Success {
		log.Printf("[PAYMENT] Gateway rejected payment request (%d): %s", resp.StatusCode(), resp.String())
		return nil, apperr.VerificationFailed("Payment request was rejected by the gateway", nil)
	}

	out.PaymentRequest.RedirectTo = c.redirectURL
	return &out.PaymentRequest, nil
}
