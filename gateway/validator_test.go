package gateway_test

import (
	"testing"
	"time"

	"github.com/cardflow/paygate/gateway"
	"github.com/cardflow/paygate/gateway/models"
	"github.com/cardflow/paygate/internal/currency"
	"github.com/stretchr/testify/require"
)

var validationTime = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func validSubmission() models.CreatePayment {
	return models.CreatePayment{
		CardNumber:  "2222405343248877",
		ExpiryMonth: 4,
		ExpiryYear:  2030,
		Currency:    "GBP",
		Amount:      100,
		CVV:         "123",
	}
}

func messages(violations []models.Violation) []string {
	var out []string
	for _, v := range violations {
		out = append(out, v.Message)
	}
	return out
}

func TestValidator_Valid(t *testing.T) {
	v := gateway.NewValidator(nil)

	raw := validSubmission()
	raw.Currency = "  gbp "

	req, violations := v.Validate(raw, validationTime)
	require.Empty(t, violations)
	require.Equal(t, currency.GBP, req.Currency)
	require.Equal(t, raw.CardNumber, req.CardNumber)
	require.Equal(t, int64(100), req.Amount)
	require.Equal(t, "123", req.CVV)
}

func TestValidator_Rules(t *testing.T) {
	v := gateway.NewValidator(time.UTC)

	tests := []struct {
		name   string
		modify func(*models.CreatePayment)
		want   []string
		fields []string
	}{
		{
			name:   "short card number",
			modify: func(p *models.CreatePayment) { p.CardNumber = "1234567898765" },
			want:   []string{"Card number must be between 14-19 digits."},
			fields: []string{"cardNumber"},
		},
		{
			name:   "long card number",
			modify: func(p *models.CreatePayment) { p.CardNumber = "12345678987654321234" },
			want:   []string{"Card number must be between 14-19 digits."},
			fields: []string{"cardNumber"},
		},
		{
			name:   "non numeric card number",
			modify: func(p *models.CreatePayment) { p.CardNumber = "2222 4053" },
			want:   []string{"Card number must be numeric.", "Card number must be between 14-19 digits."},
		},
		{
			name:   "empty card number",
			modify: func(p *models.CreatePayment) { p.CardNumber = "" },
			want:   []string{"Card number must be numeric.", "Card number must be between 14-19 digits."},
		},
		{
			name:   "month zero",
			modify: func(p *models.CreatePayment) { p.ExpiryMonth = 0 },
			want:   []string{"Expiry month must be between 1 and 12."},
			fields: []string{"expiryMonth"},
		},
		{
			name:   "month thirteen",
			modify: func(p *models.CreatePayment) { p.ExpiryMonth = 13 },
			want:   []string{"Expiry month must be between 1 and 12."},
		},
		{
			name:   "zero amount",
			modify: func(p *models.CreatePayment) { p.Amount = 0 },
			want:   []string{"Amount must be a positive integer."},
			fields: []string{"amount"},
		},
		{
			name:   "negative amount",
			modify: func(p *models.CreatePayment) { p.Amount = -5 },
			want:   []string{"Amount must be a positive integer."},
		},
		{
			name:   "short cvv",
			modify: func(p *models.CreatePayment) { p.CVV = "12" },
			want:   []string{"CVV must be 3-4 digits."},
			fields: []string{"cvv"},
		},
		{
			name:   "long cvv",
			modify: func(p *models.CreatePayment) { p.CVV = "12345" },
			want:   []string{"CVV must be 3-4 digits."},
		},
		{
			name:   "non numeric cvv",
			modify: func(p *models.CreatePayment) { p.CVV = "12a" },
			want:   []string{"CVV must be numeric."},
		},
		{
			name:   "last month",
			modify: func(p *models.CreatePayment) { p.ExpiryMonth, p.ExpiryYear = 5, 2025 },
			want:   []string{"Expiry date must be in the future."},
			fields: []string{"expiryMonth", "expiryYear"},
		},
		{
			name:   "last year",
			modify: func(p *models.CreatePayment) { p.ExpiryMonth, p.ExpiryYear = 12, 2024 },
			want:   []string{"Expiry date must be in the future."},
		},
		{
			name:   "unsupported currency",
			modify: func(p *models.CreatePayment) { p.Currency = "JPY" },
			want:   []string{"Currency code not supported."},
			fields: []string{"currency"},
		},
		{
			name:   "empty currency",
			modify: func(p *models.CreatePayment) { p.Currency = "" },
			want:   []string{"Currency code not supported."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validSubmission()
			tt.modify(&raw)

			req, violations := v.Validate(raw, validationTime)
			require.Equal(t, tt.want, messages(violations))
			require.Equal(t, models.PaymentRequest{}, req)
			if tt.fields != nil {
				require.Equal(t, tt.fields, violations[0].Fields)
			}
		})
	}
}

func TestValidator_CurrentMonthIsAccepted(t *testing.T) {
	v := gateway.NewValidator(time.UTC)

	raw := validSubmission()
	raw.ExpiryMonth, raw.ExpiryYear = 6, 2025

	_, violations := v.Validate(raw, validationTime)
	require.Empty(t, violations)
}

func TestValidator_CollectsAllViolations(t *testing.T) {
	v := gateway.NewValidator(time.UTC)

	raw := models.CreatePayment{
		CardNumber:  "abc",
		ExpiryMonth: 2,
		ExpiryYear:  2020,
		Currency:    "XYZ",
		Amount:      0,
		CVV:         "1",
	}

	_, violations := v.Validate(raw, validationTime)
	require.Equal(t, []string{
		"Card number must be numeric.",
		"Card number must be between 14-19 digits.",
		"Amount must be a positive integer.",
		"CVV must be 3-4 digits.",
		"Expiry date must be in the future.",
		"Currency code not supported.",
	}, messages(violations))
}

func TestValidator_Location(t *testing.T) {
	sydney, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	// 2025-05-31 20:00 UTC is already June in Sydney.
	now := time.Date(2025, time.May, 31, 20, 0, 0, 0, time.UTC)
	raw := validSubmission()
	raw.ExpiryMonth, raw.ExpiryYear = 5, 2025

	_, violations := gateway.NewValidator(time.UTC).Validate(raw, now)
	require.Empty(t, violations)

	_, violations = gateway.NewValidator(sydney).Validate(raw, now)
	require.Equal(t, []string{"Expiry date must be in the future."}, messages(violations))
}
