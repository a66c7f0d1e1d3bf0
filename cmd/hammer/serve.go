// File: cmd/hammer/serve.go
package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iyunix/hammer/internal/handlers"
	"github.com/iyunix/hammer/internal/repository"
	"github.com/iyunix/hammer/internal/services/sms"
	"github.com/iyunix/hammer/internal/services/user_services"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrates the database and serves the HTTP API",
		RunE:  serveFunc,
	}
}

func serveFunc(c *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := repository.Migrate(a.db); err != nil {
		return err
	}

	provider, release, err := newProvider(a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer release()

	dispatcher := sms.NewDispatcher(provider, sms.DispatcherConfig{
		Workers:   a.cfg.DispatchWorkers,
		QueueSize: a.cfg.DispatchQueueSize,
	}, a.logger, a.metrics)

	issuer := user_services.NewCodeIssuer(a.codes, dispatcher, a.logger, a.metrics)
	verifier := user_services.NewCodeVerifier(a.codes, a.logger, a.metrics)
	verification := user_services.NewVerificationService(issuer, verifier, a.directory, a.auth, a.logger)

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth: handlers.NewAuthHandler(verification, a.logger, handlers.AuthHandlerOptions{
			ExposeVerificationCode: a.cfg.ExposeVerificationCode,
			CookieSecure:           a.cfg.CookieSecure,
			TokenTTL:               a.cfg.TokenTTL,
		}),
		Profile:        handlers.NewProfileHandler(a.referrals, a.logger),
		Admin:          handlers.NewAdminHandler(a.admin, a.logger),
		Sessions:       a.auth,
		Logger:         a.logger,
		Gatherer:       a.registry,
		AllowedOrigins: a.cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx := c.Context()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server starting", "addr", srv.Addr, "sms_provider", provider.Name(), "env", a.cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("shutting down server gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		srvErr := srv.Shutdown(shutdownCtx)
		dispatchErr := dispatcher.Close(shutdownCtx)
		return errors.Join(srvErr, dispatchErr)
	})

	if err := g.Wait(); err != nil {
		a.logger.Error("server stopped with error", "error", err)
		return err
	}
	a.logger.Info("server stopped")
	return nil
}
