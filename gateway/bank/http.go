package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cardflow/paygate/gateway/models"
	"github.com/cardflow/paygate/internal/expiry"
)

// HTTPClient authorizes payments against a JSON-over-HTTP bank simulator.
type HTTPClient struct {
	Base    string
	Path    string
	Timeout time.Duration
	HTTP    *http.Client
}

func NewHTTPClient(base, path string, timeout time.Duration, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{}
	}
	return &HTTPClient{
		Base:    strings.TrimRight(base, "/"),
		Path:    strings.TrimLeft(path, "/"),
		Timeout: timeout,
		HTTP:    hc,
	}
}

type authorizationRequest struct {
	CardNumber string `json:"card_number"`
	ExpiryDate string `json:"expiry_date"`
	Currency   string `json:"currency"`
	Amount     int64  `json:"amount"`
	CVV        string `json:"cvv"`
}

type authorizationResponse struct {
	Authorized        *bool  `json:"authorized"`
	AuthorizationCode string `json:"authorization_code"`
}

// Authorize sends the payment to the bank. Transport errors, non-2xx statuses,
// undecodable bodies and deadline expiry all wrap ErrUnavailable.
func (c *HTTPClient) Authorize(ctx context.Context, req models.PaymentRequest) (models.AuthorizationOutcome, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(authorizationRequest{
		CardNumber: req.CardNumber,
		ExpiryDate: expiry.MMYYYY(req.ExpiryMonth, req.ExpiryYear),
		Currency:   req.Currency.String(),
		Amount:     req.Amount,
		CVV:        req.CVV,
	})
	if err != nil {
		return models.AuthorizationOutcome{}, fmt.Errorf("encoding authorization request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+"/"+c.Path, bytes.NewReader(body))
	if err != nil {
		return models.AuthorizationOutcome{}, fmt.Errorf("building authorization request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return models.AuthorizationOutcome{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.AuthorizationOutcome{}, fmt.Errorf("%w: status=%d body=%s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var payload authorizationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.AuthorizationOutcome{}, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	if payload.Authorized == nil {
		return models.AuthorizationOutcome{}, fmt.Errorf("%w: response has no authorized field", ErrUnavailable)
	}

	outcome := models.AuthorizationOutcome{Authorized: *payload.Authorized}
	if outcome.Authorized {
		outcome.AuthorizationCode = payload.AuthorizationCode
	}
	return outcome, nil
}

func (c *HTTPClient) Protocol() string { return ProtocolHTTP }
