package models

import (
	"time"

	"github.com/cardflow/paygate/internal/currency"
)

type PaymentStatus string

const (
	// PaymentStatusRejected means validation failed and the bank was never called.
	PaymentStatusRejected   PaymentStatus = "Rejected"
	PaymentStatusAuthorized PaymentStatus = "Authorized"
	PaymentStatusDeclined   PaymentStatus = "Declined"
)

// CreatePayment is the raw submission as posted by the merchant.
type CreatePayment struct {
	CardNumber  string `json:"cardNumber"`
	ExpiryMonth int    `json:"expiryMonth"`
	ExpiryYear  int    `json:"expiryYear"`
	Currency    string `json:"currency"`
	Amount      int64  `json:"amount"`
	CVV         string `json:"cvv"`
}

// PaymentRequest is a submission that passed validation. Only the validator
// constructs it.
type PaymentRequest struct {
	CardNumber  string
	ExpiryMonth int
	ExpiryYear  int
	Currency    currency.Code
	Amount      int64
	CVV         string
}

// Payment is the stored record. It never holds the full PAN or the CVV.
type Payment struct {
	ID                 string
	Status             PaymentStatus
	CardNumberLastFour string
	ExpiryMonth        int
	ExpiryYear         int
	Currency           string
	Amount             int64
	AuthorizationCode  string
	CreatedAt          time.Time
}

// Violation describes one failed validation rule.
type Violation struct {
	Fields  []string `json:"fields"`
	Message string   `json:"message"`
}

// PaymentResponse is the body returned for submissions and lookups.
type PaymentResponse struct {
	ID                 string        `json:"id"`
	Status             PaymentStatus `json:"status"`
	CardNumberLastFour string        `json:"cardNumberLastFour"`
	ExpiryMonth        int           `json:"expiryMonth"`
	ExpiryYear         int           `json:"expiryYear"`
	Currency           string        `json:"currency"`
	Amount             int64         `json:"amount"`
	Violations         []Violation   `json:"violations,omitempty"`
}

// NewPaymentResponse builds the caller-facing view of a payment.
func NewPaymentResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		ID:                 p.ID,
		Status:             p.Status,
		CardNumberLastFour: p.CardNumberLastFour,
		ExpiryMonth:        p.ExpiryMonth,
		ExpiryYear:         p.ExpiryYear,
		Currency:           p.Currency,
		Amount:             p.Amount,
	}
}

// ErrorResponse is the body returned for 4xx/5xx conditions without a payment.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
