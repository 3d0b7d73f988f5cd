package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/alimgiray/leaderboard/internal/services"
	"github.com/alimgiray/leaderboard/pkg/logger"
	"github.com/alimgiray/leaderboard/pkg/store"
	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	store        *store.Store
	statsService *services.StatsService
	now          func() time.Time
}

func NewLeaderboardHandler(artifacts *store.Store, statsService *services.StatsService) *LeaderboardHandler {
	return &LeaderboardHandler{
		store:        artifacts,
		statsService: statsService,
		now:          time.Now,
	}
}

// GetLeaderboard serves the artifact of a period. A missing or unreadable
// artifact is served as an empty leaderboard.
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	period := models.Period(c.Param("period"))
	if !period.Valid() {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Unknown period: " + string(period),
		})
		return
	}

	c.JSON(http.StatusOK, h.store.LeaderboardOrEmpty(period, h.now()))
}

// GetContributor serves the profile of a contributor from the year leaderboard
func (h *LeaderboardHandler) GetContributor(c *gin.Context) {
	username := c.Param("username")
	board := h.store.LeaderboardOrEmpty(models.PeriodYear, h.now())

	profile, err := h.statsService.Profile(board, username)
	if errors.Is(err, services.ErrContributorNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Contributor not found",
		})
		return
	}
	if err != nil {
		logger.WithError(err).WithField("username", username).Error("Failed to build profile")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to build profile",
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetActivityOverview serves the weekly buckets of the last month and the
// activity count of the month before
func (h *LeaderboardHandler) GetActivityOverview(c *gin.Context) {
	now := h.now()
	month := h.store.LeaderboardOrEmpty(models.PeriodMonth, now)
	year := h.store.LeaderboardOrEmpty(models.PeriodYear, now)

	c.JSON(http.StatusOK, h.statsService.Overview(month, year))
}

// GetReleases serves the release feed, empty when none was generated
func (h *LeaderboardHandler) GetReleases(c *gin.Context) {
	releases, err := h.store.ReadReleases()
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.WithError(err).Warn("Failed to read releases")
		}
		releases = make([]models.Release, 0)
	}
	c.JSON(http.StatusOK, releases)
}
