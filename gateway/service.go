package gateway

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Authorizer,PaymentStore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cardflow/paygate/gateway/models"
	"github.com/cardflow/paygate/internal/pan"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Authorizer obtains a decision from the bank. Failures to get one wrap
// ErrAuthorizationUnavailable.
type Authorizer interface {
	Authorize(ctx context.Context, req models.PaymentRequest) (models.AuthorizationOutcome, error)
}

// PaymentStore persists finalized payments.
type PaymentStore interface {
	Add(ctx context.Context, payment models.Payment) (models.Payment, error)
	Get(ctx context.Context, id string) (models.Payment, error)
}

// Result of a submission. Violations is non-empty exactly when the payment
// was rejected; a rejected payment is never stored.
type Result struct {
	Payment    models.Payment
	Violations []models.Violation
}

type Service struct {
	validator  *Validator
	authorizer Authorizer
	repo       PaymentStore
	metrics    *Metrics
	logger     *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewService(logger *slog.Logger, repo PaymentStore, authorizer Authorizer, validator *Validator, metrics *Metrics) *Service {
	if validator == nil {
		validator = NewValidator(time.UTC)
	}
	return &Service{
		validator:  validator,
		authorizer: authorizer,
		repo:       repo,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "payments")),
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
}

// ProcessPayment validates the submission, asks the bank, and stores the
// outcome. When the bank is unavailable nothing is stored and the returned
// error wraps ErrAuthorizationUnavailable.
func (s *Service) ProcessPayment(ctx context.Context, raw models.CreatePayment) (*Result, error) {
	req, violations := s.validator.Validate(raw, s.now())
	if len(violations) > 0 {
		payment := models.Payment{
			ID:                 s.newID(),
			Status:             models.PaymentStatusRejected,
			CardNumberLastFour: pan.LastFour(raw.CardNumber),
			ExpiryMonth:        raw.ExpiryMonth,
			ExpiryYear:         raw.ExpiryYear,
			Currency:           raw.Currency,
			Amount:             raw.Amount,
			CreatedAt:          s.now().UTC(),
		}
		s.logger.Info("payment rejected",
			slog.String("payment_id", payment.ID),
			slog.String("card", pan.Mask(raw.CardNumber)),
			slog.Int("violations", len(violations)),
		)
		s.metrics.IncrementPayment(string(models.PaymentStatusRejected))
		return &Result{Payment: payment, Violations: violations}, nil
	}

	start := time.Now()
	outcome, err := s.authorizer.Authorize(ctx, req)
	if err != nil {
		if errors.Is(err, ErrAuthorizationUnavailable) {
			s.metrics.ObserveBankLatency(s.protocol(), "unavailable", time.Since(start))
			s.logger.Error("bank authorization unavailable",
				"card", pan.Mask(req.CardNumber),
				"err", err,
			)
			s.metrics.IncrementPayment("Unavailable")
		} else {
			s.metrics.ObserveBankLatency(s.protocol(), "error", time.Since(start))
		}
		return nil, fmt.Errorf("authorizing payment: %w", err)
	}
	s.metrics.ObserveBankLatency(s.protocol(), "ok", time.Since(start))

	status := models.PaymentStatusDeclined
	if outcome.Authorized {
		status = models.PaymentStatusAuthorized
	}

	payment, err := s.repo.Add(ctx, models.Payment{
		ID:                 s.newID(),
		Status:             status,
		CardNumberLastFour: pan.LastFour(req.CardNumber),
		ExpiryMonth:        req.ExpiryMonth,
		ExpiryYear:         req.ExpiryYear,
		Currency:           req.Currency.String(),
		Amount:             req.Amount,
		AuthorizationCode:  outcome.AuthorizationCode,
		CreatedAt:          s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("storing payment: %w", err)
	}

	s.logger.Info("payment processed",
		slog.String("payment_id", payment.ID),
		slog.String("status", string(payment.Status)),
		slog.String("card", pan.Mask(req.CardNumber)),
	)
	s.metrics.IncrementPayment(string(payment.Status))

	return &Result{Payment: payment}, nil
}

// GetPayment returns a stored payment or an error wrapping ErrNotFound.
func (s *Service) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.IncrementLookup("not_found")
		}
		return nil, fmt.Errorf("finding payment: %w", err)
	}
	s.metrics.IncrementLookup("found")

	return &payment, nil
}

func (s *Service) protocol() string {
	if p, ok := s.authorizer.(interface{ Protocol() string }); ok {
		return p.Protocol()
	}
	return "unknown"
}
