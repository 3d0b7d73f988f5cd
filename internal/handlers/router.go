package handlers

import (
	"context"

	"github.com/alimgiray/leaderboard/internal/metrics"
	"github.com/alimgiray/leaderboard/internal/middleware"
	"github.com/alimgiray/leaderboard/internal/services"
	"github.com/alimgiray/leaderboard/pkg/store"
	"github.com/gin-gonic/gin"
)

// RouterConfig holds what the read-only API serves
type RouterConfig struct {
	Store      *store.Store
	Stats      *services.StatsService
	Scheduler  *services.SchedulerService
	AdminToken string
}

// SetupRouter registers every route. The run trigger is only exposed when an
// admin token is configured.
func SetupRouter(ctx context.Context, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	healthHandler := NewHealthHandler()
	leaderboardHandler := NewLeaderboardHandler(cfg.Store, cfg.Stats)
	notFoundHandler := NewNotFoundHandler()

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/leaderboard/:period", leaderboardHandler.GetLeaderboard)
		api.GET("/contributors/:username", leaderboardHandler.GetContributor)
		api.GET("/activity/buckets", leaderboardHandler.GetActivityOverview)
		api.GET("/releases", leaderboardHandler.GetReleases)

		if cfg.Scheduler != nil {
			runHandler := NewRunHandler(ctx, cfg.Scheduler)
			api.GET("/runs", runHandler.ListRuns)
			if cfg.AdminToken != "" {
				api.POST("/runs", middleware.TokenRequired(cfg.AdminToken), runHandler.TriggerRun)
			}
		}
	}

	r.NoRoute(notFoundHandler.NotFound)

	return r
}
