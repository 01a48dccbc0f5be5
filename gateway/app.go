package gateway

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/cardflow/paygate/gateway/bank"
	"github.com/cardflow/paygate/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/exp/slog"
)

// App is the main application, it contains all the components of the gateway
// and is responsible for starting and stopping them.
type App struct {
	srv    *http.Server
	wg     *sync.WaitGroup
	Addr   string
	logger *slog.Logger
	config *Config

	bankConn io.Closer
	ready    atomic.Bool
}

func NewApp(logger *slog.Logger, config *Config) *App {
	logger = logger.With(slog.String("app", "paygate"))

	if config == nil {
		config = DefaultConfig()
	}

	return &App{
		wg:     &sync.WaitGroup{},
		logger: logger,
		config: config,
	}
}

func (a *App) Start() error {
	a.logger.Info("starting app...")

	if err := a.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	loc, err := a.config.Location()
	if err != nil {
		return err
	}

	authorizer, err := a.newAuthorizer()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := NewMetrics(registry)

	svc := NewService(a.logger, NewRepository(), authorizer, NewValidator(loc), metrics)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.NewStructuredLogger(a.logger))
	router.Use(middleware.NewRecoverer(a.logger))

	limit := middleware.NewRateLimit(a.config.RateLimit.RPS, a.config.RateLimit.Burst)
	api := NewAPI(svc, a.logger, limit)
	api.AppendRoutes(router)

	router.Get("/-/live", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	router.Get("/-/ready", func(w http.ResponseWriter, r *http.Request) {
		if !a.isReady(authorizer) {
			http.Error(w, "authorizer not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	l, err := net.Listen("tcp", a.config.HTTPAddr)
	if err != nil {
		a.closeBank()
		return fmt.Errorf("listening tcp port: %w", err)
	}

	a.Addr = l.Addr().String()

	a.srv = &http.Server{
		Handler: router,
	}

	a.wg.Add(1)
	go func() {
		a.logger.Info("http server started", slog.String("addr", a.Addr))

		if err := a.srv.Serve(l); err != nil {
			if err != http.ErrServerClosed {
				a.logger.Error("starting http server", "err", err)
			}

			a.logger.Info("http server stopped")
		}

		a.wg.Done()
	}()

	a.ready.Store(true)

	return nil
}

func (a *App) newAuthorizer() (Authorizer, error) {
	switch a.config.Bank.Protocol {
	case bank.ProtocolISO8583:
		client := bank.NewISO8583Client(a.logger, a.config.Bank.ISO8583Addr, a.config.BankTimeout())
		if err := client.Connect(); err != nil {
			return nil, fmt.Errorf("connecting to bank: %w", err)
		}
		a.bankConn = client
		return client, nil
	default:
		a.logger.Info("using http bank authorizer",
			slog.String("base_url", a.config.Bank.BaseURL),
			slog.String("path", a.config.Bank.PaymentsPath),
		)
		return bank.NewHTTPClient(a.config.Bank.BaseURL, a.config.Bank.PaymentsPath, a.config.BankTimeout(), nil), nil
	}
}

func (a *App) isReady(authorizer Authorizer) bool {
	if !a.ready.Load() {
		return false
	}
	if r, ok := authorizer.(interface{ Ready() bool }); ok {
		return r.Ready()
	}
	return true
}

func (a *App) closeBank() {
	if a.bankConn == nil {
		return
	}
	if err := a.bankConn.Close(); err != nil {
		a.logger.Error("closing bank connection", "err", err)
	}
}

func (a *App) Shutdown() {
	a.logger.Info("shutting down app...")

	a.ready.Store(false)

	if a.srv != nil {
		a.srv.Shutdown(context.Background())
	}

	a.closeBank()

	a.wg.Wait()

	a.logger.Info("app stopped")
}
