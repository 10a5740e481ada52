package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uferekalu/finacle-banking/internal/auth"
	"github.com/uferekalu/finacle-banking/internal/gateway"
	"github.com/uferekalu/finacle-banking/internal/handlers"
	"github.com/uferekalu/finacle-banking/internal/routes"
	"github.com/uferekalu/finacle-banking/internal/seed"
)

func newServeCmd(a *app) *cobra.Command {
	var withSeed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.serve(cmd.Context(), withSeed)
		},
	}
	cmd.Flags().BoolVar(&withSeed, "seed", false, "create demo users and accounts before serving")
	return cmd
}

func (a *app) gateway() *gateway.Sandbox {
	return gateway.NewSandbox(a.cfg.Gateway.Latency, a.log.Named("gateway"))
}

func (a *app) serve(ctx context.Context, withSeed bool) error {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			a.log.Error("store close failed", zap.Error(err))
			return
		}
		a.log.Info("store closed")
	}()

	engine := a.engine(s)
	if withSeed {
		if err := seed.Run(ctx, s, engine, a.log); err != nil {
			return err
		}
	}

	issuer, err := auth.NewIssuer(a.cfg.JWT.Secret, a.cfg.JWT.TTL)
	if err != nil {
		return err
	}

	router := routes.NewRoutes(routes.Deps{
		Handler:     handlers.New(engine, s, issuer, a.log.Named("http")),
		Tokens:      issuer,
		Idempotency: s,
		Log:         a.log.Named("idempotency"),
	})

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	select {
	case err := <-errCh:
		return err
	case <-stop.Done():
	}
	a.log.Info("shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	a.log.Info("server stopped")
	return nil
}
