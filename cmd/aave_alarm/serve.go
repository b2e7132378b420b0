package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aave_alarm/internal/infrastructure/restapi"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	accounts, err := a.newAccountStore(ctx)
	if err != nil {
		logger.Error("Failed to open account store", zap.Error(err))
		return err
	}

	a.resolver.Start(ctx)
	a.session.Start(ctx)

	if a.cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	positionHandler := restapi.NewPositionHandler(a.positions, accounts, a.registry, a.session, logger)
	accountHandler := restapi.NewAccountHandler(accounts, a.session, logger)
	router := restapi.SetupRouter(positionHandler, accountHandler, restapi.RouterOptions{
		AllowOrigins: a.cfg.Server.AllowOrigins,
		Gatherer:     a.promReg,
		EnablePprof:  a.cfg.Server.EnablePprof,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:         a.cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(a.cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}
	logger.Info("Server exiting")
	return nil
}
