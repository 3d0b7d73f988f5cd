// Package commands implements the leaderboard CLI commands.
package commands

import (
	"fmt"
	"os"

	"github.com/alimgiray/leaderboard/internal/githubapi"
	"github.com/alimgiray/leaderboard/internal/scoring"
	"github.com/alimgiray/leaderboard/internal/services"
	"github.com/alimgiray/leaderboard/internal/workers"
	"github.com/alimgiray/leaderboard/pkg/config"
	"github.com/alimgiray/leaderboard/pkg/logger"
	"github.com/alimgiray/leaderboard/pkg/store"
)

// ConfigPath is the value of the persistent --config flag
var ConfigPath string

// app wires the services shared by the commands
type app struct {
	cfg    *config.Config
	store  *store.Store
	stats  *services.StatsService
	client *githubapi.Client
}

func newApp() (*app, error) {
	if err := config.Load(ConfigPath); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := config.AppConfig
	logger.Configure(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	client, err := githubapi.NewClient(cfg.GitHub.Token, cfg.GitHub.APIURL)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		store:  store.New(cfg.Leaderboard.OutputDir),
		stats:  services.NewStatsService(),
		client: client,
	}, nil
}

func (a *app) leaderboardService() (*services.LeaderboardService, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	if a.cfg.GitHub.Token == "" {
		logger.Warn("GITHUB_TOKEN is not set, requests are unauthenticated and heavily rate limited")
	}

	team, err := config.LoadTeam(a.cfg.Leaderboard.TeamFile)
	if err != nil {
		return nil, err
	}

	opts := services.LeaderboardOptions{
		Org:              a.cfg.GitHub.Org,
		Repos:            a.cfg.GitHub.Repos,
		IncludeArchived:  a.cfg.GitHub.IncludeArchived,
		SearchWindowDays: a.cfg.GitHub.SearchWindowDays,
		Workers:          a.cfg.GitHub.Workers,
		TopN:             a.cfg.Leaderboard.TopN,
		HiddenRoles:      a.cfg.Leaderboard.HiddenRoles,
		FoldUsernameCase: a.cfg.Leaderboard.FoldUsernameCase,
		SkipFailedRepos:  a.cfg.Leaderboard.SkipFailedRepos,
		EnrichNames:      a.cfg.Leaderboard.EnrichNames,
	}
	newRepoSource := func() workers.RepoSource {
		return a.client.Clone()
	}

	return services.NewLeaderboardService(a.client, newRepoSource, a.store, a.stats, scoring.NewRoleClassifier(team), opts), nil
}

func (a *app) schedulerService() (*services.SchedulerService, error) {
	leaderboardService, err := a.leaderboardService()
	if err != nil {
		return nil, err
	}
	return services.NewSchedulerService(leaderboardService, a.cfg.GitHub.Org, a.cfg.Scheduler.Interval), nil
}
