package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mystore/product-catalog/internal/core/events"
	"github.com/mystore/product-catalog/internal/mailer"
	"github.com/mystore/product-catalog/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
}

var mailWorkerCmd = &cobra.Command{
	Use:   "mailer",
	Short: "Start the mail worker",
	Long: `Run the event bus with the mail subscriber attached, without the HTTP server.

The bus is in-process: this worker only observes events published inside its
own process, so it is a development harness for the mail pipeline rather than
a consumer of the server's events. Pointing it at an external broker would
need a queue-backed bus implementation.`,
	Run: func(cmd *cobra.Command, args []string) {
		startMailWorker()
	},
}

func init() {
	workerCmd.AddCommand(mailWorkerCmd)
}

func startMailWorker() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Format)
	log := logger.L()

	var sender mailer.Sender
	if cfg.Mail.APIURL != "" {
		sender = mailer.NewAPIClient(mailer.APIClientConfig{
			APIURL:    cfg.Mail.APIURL,
			APIKey:    cfg.Mail.APIKey,
			FromEmail: cfg.Mail.FromEmail,
			FromName:  cfg.Mail.FromName,
			Timeout:   cfg.Mail.Timeout,
		}, log)
	} else {
		sender = mailer.NewLogSender(log)
	}

	bus := events.NewEventBus(log)
	mailer.NewSubscriber(sender, log).RegisterHandlers(bus)

	log.Info("mail worker running, waiting for events")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info("received signal, shutting down mail worker", "signal", sig.String())
}
