package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/bnema/skiff/internal/common"
	"github.com/bnema/skiff/internal/httpserve"
	"github.com/bnema/skiff/internal/server"
	"github.com/bnema/skiff/pkg/logger"
)

// NewServeCommand starts the HTTP server.
func NewServeCommand(buildInfo *common.BuildConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the skiff server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := server.NewServerApp(buildInfo)
			if err != nil {
				return err
			}

			if _, err := server.InitializeDB(a); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}

			// Setup a channel to capture termination signals
			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				sig := <-sigs
				logger.Info("Received signal", "signal", sig)
				if err := a.Shutdown(); err != nil {
					logger.Error("Shutdown failed", "error", err)
					os.Exit(1)
				}
				os.Exit(0)
			}()

			e := echo.New()
			e.HideBanner = true
			e.HidePort = true
			e = httpserve.RegisterRoutes(e, a)

			logger.Info("Starting server", "port", a.Config.Http.Port, "base_url", a.BaseURL())
			if err := e.Start(fmt.Sprintf(":%s", a.Config.Http.Port)); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
}
