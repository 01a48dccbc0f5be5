package bank

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cardflow/paygate/gateway/models"
	"github.com/cardflow/paygate/internal/expiry"
	"github.com/moov-io/iso8583"
	connection "github.com/moov-io/iso8583-connection"
	"github.com/moov-io/iso8583/field"
	"golang.org/x/exp/slog"
)

type sendFunc func(*iso8583.Message) (*iso8583.Message, error)

// ISO8583Client authorizes payments over a persistent ISO 8583 TCP connection.
type ISO8583Client struct {
	addr    string
	timeout time.Duration
	logger  *slog.Logger

	conn *connection.Connection
	send sendFunc
	stan atomic.Uint32
	now  func() time.Time
}

func NewISO8583Client(logger *slog.Logger, addr string, timeout time.Duration) *ISO8583Client {
	return &ISO8583Client{
		addr:    addr,
		timeout: timeout,
		logger:  logger.With(slog.String("bank", ProtocolISO8583)),
		now:     time.Now,
	}
}

// Connect dials the bank. It must be called before Authorize.
func (c *ISO8583Client) Connect() error {
	conn, err := connection.New(c.addr, spec, readMessageLength, writeMessageLength,
		connection.SendTimeout(c.timeout),
		connection.ErrorHandler(func(err error) {
			c.logger.Error("iso8583 connection error", "err", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("creating iso8583 connection: %w", err)
	}

	if err := conn.Connect(); err != nil {
		return fmt.Errorf("connecting to iso8583 server %s: %w", c.addr, err)
	}

	c.conn = conn
	c.send = func(m *iso8583.Message) (*iso8583.Message, error) {
		return conn.Send(m)
	}
	c.logger.Info("connected to iso8583 server", slog.String("addr", c.addr))
	return nil
}

// Ready reports whether the connection is established and not yet closed.
func (c *ISO8583Client) Ready() bool {
	if c.conn == nil {
		return false
	}
	select {
	case <-c.conn.Done():
		return false
	default:
		return true
	}
}

func (c *ISO8583Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

type sendResult struct {
	msg *iso8583.Message
	err error
}

// Authorize sends a 0100 and maps the 0110 response code. Only DE39 "00" is an
// approval; failures to get a response wrap ErrUnavailable.
func (c *ISO8583Client) Authorize(ctx context.Context, req models.PaymentRequest) (models.AuthorizationOutcome, error) {
	if c.send == nil {
		return models.AuthorizationOutcome{}, fmt.Errorf("%w: iso8583 connection not established", ErrUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return models.AuthorizationOutcome{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	requestMessage := iso8583.NewMessage(spec)
	err := requestMessage.Marshal(&authorizationRequestMessage{
		MTI:                  field.NewStringValue(mtiAuthorizationRequest),
		PrimaryAccountNumber: field.NewStringValue(req.CardNumber),
		ProcessingCode:       field.NewStringValue(processingCodePurchase),
		Amount:               field.NewNumericValue(req.Amount),
		TransmissionDateTime: field.NewStringValue(c.now().UTC().Format("0102150405")),
		STAN:                 field.NewStringValue(c.nextSTAN()),
		ExpirationDate:       field.NewStringValue(expiry.YYMM(req.ExpiryMonth, req.ExpiryYear)),
		CVV:                  field.NewStringValue(req.CVV),
		Currency:             field.NewStringValue(req.Currency.Numeric()),
	})
	if err != nil {
		return models.AuthorizationOutcome{}, fmt.Errorf("marshaling authorization request: %w", err)
	}

	done := make(chan sendResult, 1)
	go func() {
		msg, err := c.send(requestMessage)
		done <- sendResult{msg: msg, err: err}
	}()

	var res sendResult
	select {
	case <-ctx.Done():
		return models.AuthorizationOutcome{}, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return models.AuthorizationOutcome{}, fmt.Errorf("%w: sending authorization request: %v", ErrUnavailable, res.err)
	}

	response := &authorizationResponseMessage{}
	if err := res.msg.Unmarshal(response); err != nil {
		return models.AuthorizationOutcome{}, fmt.Errorf("%w: unmarshaling authorization response: %v", ErrUnavailable, err)
	}
	if response.ResponseCode == nil {
		return models.AuthorizationOutcome{}, fmt.Errorf("%w: response has no response code", ErrUnavailable)
	}

	if response.ResponseCode.Value() != responseCodeApproved {
		c.logger.Info("authorization declined", slog.String("response_code", response.ResponseCode.Value()))
		return models.AuthorizationOutcome{Authorized: false}, nil
	}

	outcome := models.AuthorizationOutcome{Authorized: true}
	if response.AuthorizationCode != nil {
		outcome.AuthorizationCode = response.AuthorizationCode.Value()
	}
	return outcome, nil
}

func (c *ISO8583Client) nextSTAN() string {
	return fmt.Sprintf("%06d", c.stan.Add(1)%1000000)
}

func (c *ISO8583Client) Protocol() string { return ProtocolISO8583 }
