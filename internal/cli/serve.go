package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/cardflow/paygate/gateway"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the payment gateway HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := gateway.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.HandlerOptions{Level: cfg.Level()}.NewJSONHandler(os.Stdout))

	app := gateway.NewApp(logger, cfg)
	if err := app.Start(); err != nil {
		logger.Error("starting app", "err", err)
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	app.Shutdown()
	return nil
}
