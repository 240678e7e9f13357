package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kos-manager/internal/database"
	"kos-manager/internal/notify"
	"kos-manager/internal/router"
	"kos-manager/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer e.close()
			return serve(cmd.Context(), e)
		},
	}
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// newNotifier picks the AMQP publisher when a broker URL is configured and
// falls back to logging reminders otherwise.
func newNotifier(e *env) (service.Notifier, func(), error) {
	rc := e.cfg.Reminder
	if rc.AMQPURL == "" {
		return notify.NewLogNotifier(e.log), func() {}, nil
	}
	n, err := notify.NewAMQPNotifier(rc.AMQPURL, rc.AMQPExchange, rc.AMQPQueue, e.log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect reminder broker: %w", err)
	}
	return n, func() { _ = n.Close() }, nil
}

func serve(ctx context.Context, e *env) error {
	if err := ensureDir(e.cfg.Backup.Dir); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	if err := database.AutoMigrate(e.db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	notifier, closeNotifier, err := newNotifier(e)
	if err != nil {
		return err
	}
	defer closeNotifier()

	r := router.SetupRouter(e.cfg, e.db, e.log, router.Options{Notifier: notifier})

	addr := fmt.Sprintf("%s:%d", e.cfg.Server.Address, e.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		e.log.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("run server: %w", err)
	case <-ctx.Done():
	}

	e.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
