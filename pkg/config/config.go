package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig
	GitHub      GitHubConfig
	Leaderboard LeaderboardConfig
	Releases    ReleasesConfig
	Scheduler   SchedulerConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
	AdminToken   string
}

type GitHubConfig struct {
	Token            string
	APIURL           string
	Org              string
	Repos            []string
	IncludeArchived  bool
	SearchWindowDays int
	Workers          int
}

type LeaderboardConfig struct {
	OutputDir        string
	TeamFile         string
	HiddenRoles      []string
	TopN             int
	FoldUsernameCase bool
	SkipFailedRepos  bool
	EnrichNames      bool
}

type ReleasesConfig struct {
	Repos []models.TrackedRepository
}

type SchedulerConfig struct {
	Enabled  bool
	Interval time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// ErrMissingOrg is returned by Validate when no organization is configured
var ErrMissingOrg = errors.New("github organization is required (GITHUB_ORG)")

var AppConfig *Config

type setting struct {
	key          string
	env          string
	defaultValue interface{}
}

var settings = []setting{
	{"server.port", "PORT", "8080"},
	{"server.mode", "GIN_MODE", "release"},
	{"server.read_timeout", "READ_TIMEOUT", 15},
	{"server.write_timeout", "WRITE_TIMEOUT", 15},
	{"server.admin_token", "SERVER_ADMIN_TOKEN", ""},
	{"github.token", "GITHUB_TOKEN", ""},
	{"github.api_url", "GITHUB_API_URL", "https://api.github.com"},
	{"github.org", "GITHUB_ORG", ""},
	{"github.repos", "GITHUB_REPOS", []string{}},
	{"github.include_archived", "GITHUB_INCLUDE_ARCHIVED", false},
	{"github.search_window_days", "GITHUB_SEARCH_WINDOW_DAYS", 30},
	{"github.workers", "GITHUB_WORKERS", 1},
	{"leaderboard.output_dir", "LEADERBOARD_OUTPUT_DIR", "./public"},
	{"leaderboard.team_file", "LEADERBOARD_TEAM_FILE", "./team.yaml"},
	{"leaderboard.hidden_roles", "LEADERBOARD_HIDDEN_ROLES", []string{string(models.RoleMaintainer)}},
	{"leaderboard.top_n", "LEADERBOARD_TOP_N", 3},
	{"leaderboard.fold_username_case", "LEADERBOARD_FOLD_USERNAME_CASE", false},
	{"leaderboard.skip_failed_repos", "LEADERBOARD_SKIP_FAILED_REPOS", true},
	{"leaderboard.enrich_names", "LEADERBOARD_ENRICH_NAMES", false},
	{"scheduler.enabled", "SCHEDULER_ENABLED", true},
	{"scheduler.interval", "SCHEDULER_INTERVAL", "6h"},
	{"log.level", "LOG_LEVEL", "info"},
	{"log.format", "LOG_FORMAT", "json"},
}

// Load loads configuration from .env file, an optional YAML config file and environment variables.
// An empty configPath means no config file; a missing .env file is not an error.
func Load(configPath string) error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	v := viper.New()
	for _, s := range settings {
		v.SetDefault(s.key, s.defaultValue)
		if err := v.BindEnv(s.key, s.env); err != nil {
			return fmt.Errorf("bind env %s: %w", s.env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	var releaseRepos []models.TrackedRepository
	if err := v.UnmarshalKey("releases.repos", &releaseRepos); err != nil {
		return fmt.Errorf("parse releases.repos: %w", err)
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         v.GetString("server.port"),
			Mode:         v.GetString("server.mode"),
			ReadTimeout:  v.GetInt("server.read_timeout"),
			WriteTimeout: v.GetInt("server.write_timeout"),
			AdminToken:   v.GetString("server.admin_token"),
		},
		GitHub: GitHubConfig{
			Token:            v.GetString("github.token"),
			APIURL:           strings.TrimRight(v.GetString("github.api_url"), "/"),
			Org:              v.GetString("github.org"),
			Repos:            splitList(v.GetStringSlice("github.repos")),
			IncludeArchived:  v.GetBool("github.include_archived"),
			SearchWindowDays: v.GetInt("github.search_window_days"),
			Workers:          v.GetInt("github.workers"),
		},
		Leaderboard: LeaderboardConfig{
			OutputDir:        v.GetString("leaderboard.output_dir"),
			TeamFile:         v.GetString("leaderboard.team_file"),
			HiddenRoles:      splitList(v.GetStringSlice("leaderboard.hidden_roles")),
			TopN:             v.GetInt("leaderboard.top_n"),
			FoldUsernameCase: v.GetBool("leaderboard.fold_username_case"),
			SkipFailedRepos:  v.GetBool("leaderboard.skip_failed_repos"),
			EnrichNames:      v.GetBool("leaderboard.enrich_names"),
		},
		Releases: ReleasesConfig{
			Repos: releaseRepos,
		},
		Scheduler: SchedulerConfig{
			Enabled:  v.GetBool("scheduler.enabled"),
			Interval: v.GetDuration("scheduler.interval"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if AppConfig.GitHub.Workers < 1 {
		AppConfig.GitHub.Workers = 1
	}
	if AppConfig.GitHub.SearchWindowDays < 1 {
		AppConfig.GitHub.SearchWindowDays = 30
	}

	return nil
}

// Validate checks the settings a leaderboard run cannot do without
func (c *Config) Validate() error {
	if c.GitHub.Org == "" {
		return ErrMissingOrg
	}
	if c.Leaderboard.OutputDir == "" {
		return errors.New("leaderboard output directory is required")
	}
	return nil
}

// LoadTeam reads the maintainer and alumni lists from a YAML file.
// A missing file yields an empty team.
func LoadTeam(path string) (models.Team, error) {
	var team models.Team
	if path == "" {
		return team, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return team, nil
	}
	if err != nil {
		return team, fmt.Errorf("read team file: %w", err)
	}

	if err := yaml.Unmarshal(data, &team); err != nil {
		return team, fmt.Errorf("parse team file: %w", err)
	}
	return team, nil
}

// splitList accepts both YAML lists and comma separated environment values
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
