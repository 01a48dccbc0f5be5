package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/cardflow/paygate/gateway/mocks"
	"github.com/cardflow/paygate/gateway/models"
	"github.com/cardflow/paygate/internal/currency"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/exp/slog"
)

var serviceNow = time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *mocks.MockAuthorizer, *mocks.MockPaymentStore, *Metrics) {
	t.Helper()

	ctrl := gomock.NewController(t)
	authorizer := mocks.NewMockAuthorizer(ctrl)
	store := mocks.NewMockPaymentStore(ctrl)
	metrics := NewMetrics(prometheus.NewRegistry())

	logger := slog.New(slog.NewTextHandler(io.Discard))
	svc := NewService(logger, store, authorizer, NewValidator(time.UTC), metrics)
	svc.now = func() time.Time { return serviceNow }

	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("payment-%d", n)
	}

	return svc, authorizer, store, metrics
}

func submission() models.CreatePayment {
	return models.CreatePayment{
		CardNumber:  "2222405343248877",
		ExpiryMonth: 4,
		ExpiryYear:  2030,
		Currency:    "gbp",
		Amount:      10000,
		CVV:         "123",
	}
}

func storeEcho(_ context.Context, p models.Payment) (models.Payment, error) {
	return p, nil
}

func TestService_ProcessPayment_Authorized(t *testing.T) {
	svc, authorizer, store, metrics := newTestService(t)

	authorizer.EXPECT().
		Authorize(gomock.Any(), models.PaymentRequest{
			CardNumber:  "2222405343248877",
			ExpiryMonth: 4,
			ExpiryYear:  2030,
			Currency:    currency.GBP,
			Amount:      10000,
			CVV:         "123",
		}).
		Return(models.AuthorizationOutcome{Authorized: true, AuthorizationCode: "auth-123"}, nil)

	var stored models.Payment
	store.EXPECT().Add(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, p models.Payment) (models.Payment, error) {
			stored = p
			return p, nil
		})

	res, err := svc.ProcessPayment(context.Background(), submission())
	require.NoError(t, err)
	require.Empty(t, res.Violations)

	require.Equal(t, models.Payment{
		ID:                 "payment-1",
		Status:             models.PaymentStatusAuthorized,
		CardNumberLastFour: "8877",
		ExpiryMonth:        4,
		ExpiryYear:         2030,
		Currency:           "GBP",
		Amount:             10000,
		AuthorizationCode:  "auth-123",
		CreatedAt:          serviceNow,
	}, res.Payment)
	require.Equal(t, res.Payment, stored)

	require.Equal(t, float64(1), testutil.ToFloat64(metrics.Payments.WithLabelValues("Authorized")))
}

func TestService_ProcessPayment_Declined(t *testing.T) {
	svc, authorizer, store, metrics := newTestService(t)

	authorizer.EXPECT().Authorize(gomock.Any(), gomock.Any()).
		Return(models.AuthorizationOutcome{Authorized: false}, nil)
	store.EXPECT().Add(gomock.Any(), gomock.Any()).DoAndReturn(storeEcho)

	res, err := svc.ProcessPayment(context.Background(), submission())
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusDeclined, res.Payment.Status)
	require.Empty(t, res.Payment.AuthorizationCode)
	require.Equal(t, "8877", res.Payment.CardNumberLastFour)

	require.Equal(t, float64(1), testutil.ToFloat64(metrics.Payments.WithLabelValues("Declined")))
}

func TestService_ProcessPayment_Rejected(t *testing.T) {
	svc, _, _, metrics := newTestService(t)

	// no Authorize or Add expectations: the mocks fail the test if called
	raw := submission()
	raw.CardNumber = "1234567898765"
	raw.Currency = "jpy"

	res, err := svc.ProcessPayment(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, res.Violations, 2)

	require.Equal(t, models.Payment{
		ID:                 "payment-1",
		Status:             models.PaymentStatusRejected,
		CardNumberLastFour: "8765",
		ExpiryMonth:        4,
		ExpiryYear:         2030,
		Currency:           "jpy",
		Amount:             10000,
		CreatedAt:          serviceNow,
	}, res.Payment)

	require.Equal(t, float64(1), testutil.ToFloat64(metrics.Payments.WithLabelValues("Rejected")))
}

func TestService_ProcessPayment_RejectedExpiry(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	raw := submission()
	raw.ExpiryMonth, raw.ExpiryYear = 5, 2025

	res, err := svc.ProcessPayment(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusRejected, res.Payment.Status)
	require.Equal(t, "Expiry date must be in the future.", res.Violations[0].Message)
}

func TestService_ProcessPayment_CurrentMonthIsAuthorized(t *testing.T) {
	svc, authorizer, store, _ := newTestService(t)

	authorizer.EXPECT().Authorize(gomock.Any(), gomock.Any()).
		Return(models.AuthorizationOutcome{Authorized: true, AuthorizationCode: "a"}, nil)
	store.EXPECT().Add(gomock.Any(), gomock.Any()).DoAndReturn(storeEcho)

	raw := submission()
	raw.ExpiryMonth, raw.ExpiryYear = 6, 2025

	res, err := svc.ProcessPayment(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusAuthorized, res.Payment.Status)
}

func TestService_ProcessPayment_Unavailable(t *testing.T) {
	svc, authorizer, _, metrics := newTestService(t)

	authorizer.EXPECT().Authorize(gomock.Any(), gomock.Any()).
		Return(models.AuthorizationOutcome{}, fmt.Errorf("%w: status=503", ErrAuthorizationUnavailable))

	res, err := svc.ProcessPayment(context.Background(), submission())
	require.Nil(t, res)
	require.ErrorIs(t, err, ErrAuthorizationUnavailable)

	require.Equal(t, float64(1), testutil.ToFloat64(metrics.Payments.WithLabelValues("Unavailable")))
	require.True(t, metrics.BankLatency.DeleteLabelValues("unknown", "unavailable"))
	require.False(t, metrics.BankLatency.DeleteLabelValues("unknown", "error"))
}

func TestService_ProcessPayment_UnexpectedAuthorizerError(t *testing.T) {
	svc, authorizer, _, metrics := newTestService(t)

	boom := errors.New("boom")
	authorizer.EXPECT().Authorize(gomock.Any(), gomock.Any()).
		Return(models.AuthorizationOutcome{}, boom)

	_, err := svc.ProcessPayment(context.Background(), submission())
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrAuthorizationUnavailable)

	require.True(t, metrics.BankLatency.DeleteLabelValues("unknown", "error"))
	require.False(t, metrics.BankLatency.DeleteLabelValues("unknown", "unavailable"))
	require.Equal(t, float64(0), testutil.ToFloat64(metrics.Payments.WithLabelValues("Unavailable")))
}

func TestService_ProcessPayment_StoreFailure(t *testing.T) {
	svc, authorizer, store, _ := newTestService(t)

	authorizer.EXPECT().Authorize(gomock.Any(), gomock.Any()).
		Return(models.AuthorizationOutcome{Authorized: true}, nil)
	store.EXPECT().Add(gomock.Any(), gomock.Any()).
		Return(models.Payment{}, fmt.Errorf("payment payment-1: %w", ErrDuplicateID))

	res, err := svc.ProcessPayment(context.Background(), submission())
	require.Nil(t, res)
	require.ErrorIs(t, err, ErrDuplicateID)
	require.NotErrorIs(t, err, ErrAuthorizationUnavailable)
}

func TestService_ProcessPayment_UniqueIDs(t *testing.T) {
	ctrl := gomock.NewController(t)
	authorizer := mocks.NewMockAuthorizer(ctrl)
	authorizer.EXPECT().Authorize(gomock.Any(), gomock.Any()).
		Return(models.AuthorizationOutcome{Authorized: true}, nil).Times(3)

	logger := slog.New(slog.NewTextHandler(io.Discard))
	svc := NewService(logger, NewRepository(), authorizer, nil, nil)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		res, err := svc.ProcessPayment(context.Background(), submission())
		require.NoError(t, err)
		require.NotEmpty(t, res.Payment.ID)
		require.False(t, seen[res.Payment.ID])
		seen[res.Payment.ID] = true

		got, err := svc.GetPayment(context.Background(), res.Payment.ID)
		require.NoError(t, err)
		require.Equal(t, res.Payment, *got)
	}
}

func TestService_GetPayment(t *testing.T) {
	svc, _, store, metrics := newTestService(t)

	payment := models.Payment{ID: "payment-9", Status: models.PaymentStatusDeclined}
	store.EXPECT().Get(gomock.Any(), "payment-9").Return(payment, nil)
	store.EXPECT().Get(gomock.Any(), "missing").Return(models.Payment{}, ErrNotFound)

	got, err := svc.GetPayment(context.Background(), "payment-9")
	require.NoError(t, err)
	require.Equal(t, payment, *got)

	_, err = svc.GetPayment(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.Equal(t, float64(1), testutil.ToFloat64(metrics.Lookups.WithLabelValues("found")))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.Lookups.WithLabelValues("not_found")))
}
