package gateway

import (
	"time"

	"github.com/cardflow/paygate/gateway/models"
	"github.com/cardflow/paygate/internal/currency"
	"github.com/cardflow/paygate/internal/expiry"
	"github.com/cardflow/paygate/internal/pan"
)

const (
	fieldCardNumber  = "cardNumber"
	fieldExpiryMonth = "expiryMonth"
	fieldExpiryYear  = "expiryYear"
	fieldCurrency    = "currency"
	fieldAmount      = "amount"
	fieldCVV         = "cvv"
)

// Validator checks raw submissions. Expiry is judged against the current month
// in loc.
type Validator struct {
	loc *time.Location
}

func NewValidator(loc *time.Location) *Validator {
	if loc == nil {
		loc = time.UTC
	}
	return &Validator{loc: loc}
}

// Validate runs every rule and returns all violations in rule order. The
// request is only meaningful when the returned slice is empty.
func (v *Validator) Validate(raw models.CreatePayment, now time.Time) (models.PaymentRequest, []models.Violation) {
	var violations []models.Violation
	add := func(msg string, fields ...string) {
		violations = append(violations, models.Violation{Fields: fields, Message: msg})
	}

	if !pan.IsDigits(raw.CardNumber) {
		add("Card number must be numeric.", fieldCardNumber)
	}
	if !pan.ValidLength(raw.CardNumber) {
		add("Card number must be between 14-19 digits.", fieldCardNumber)
	}
	if !expiry.ValidMonth(raw.ExpiryMonth) {
		add("Expiry month must be between 1 and 12.", fieldExpiryMonth)
	}
	if raw.Amount <= 0 {
		add("Amount must be a positive integer.", fieldAmount)
	}
	if !pan.IsDigits(raw.CVV) {
		add("CVV must be numeric.", fieldCVV)
	}
	if l := len(raw.CVV); l < 3 || l > 4 {
		add("CVV must be 3-4 digits.", fieldCVV)
	}
	if expiry.Expired(raw.ExpiryMonth, raw.ExpiryYear, now, v.loc) {
		add("Expiry date must be in the future.", fieldExpiryMonth, fieldExpiryYear)
	}
	code, err := currency.Resolve(raw.Currency)
	if err != nil {
		add("Currency code not supported.", fieldCurrency)
	}

	if len(violations) > 0 {
		return models.PaymentRequest{}, violations
	}

	return models.PaymentRequest{
		CardNumber:  raw.CardNumber,
		ExpiryMonth: raw.ExpiryMonth,
		ExpiryYear:  raw.ExpiryYear,
		Currency:    code,
		Amount:      raw.Amount,
		CVV:         raw.CVV,
	}, nil
}
