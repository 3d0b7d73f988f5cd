package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/leaderboard/internal/handlers"
	"github.com/alimgiray/leaderboard/internal/services"
	"github.com/alimgiray/leaderboard/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored artifacts and metrics over HTTP, regenerating on a schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}
			gin.SetMode(a.cfg.Server.Mode)

			var scheduler *services.SchedulerService
			if a.cfg.Scheduler.Enabled {
				scheduler, err = a.schedulerService()
				if err != nil {
					return err
				}
				scheduler.StartScheduler(ctx)
			}

			router := handlers.SetupRouter(ctx, handlers.RouterConfig{
				Store:      a.store,
				Stats:      a.stats,
				Scheduler:  scheduler,
				AdminToken: a.cfg.Server.AdminToken,
			})

			server := &http.Server{
				Addr:         ":" + a.cfg.Server.Port,
				Handler:      router,
				ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
				WriteTimeout: time.Duration(a.cfg.Server.WriteTimeout) * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Infof("Server starting on :%s", a.cfg.Server.Port)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return err
			}
			logger.Info("Server stopped")
			return nil
		},
	}
}
