package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/alimgiray/leaderboard/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when an artifact has not been generated yet
var ErrNotFound = errors.New("artifact not found")

const (
	leaderboardDir = "leaderboard"
	releasesDir    = "releases"
	releasesFile   = "releases.json"
)

// Store reads and writes the JSON artifacts under a root directory.
// Every write goes to a temporary file first and is renamed into place,
// so readers never see a half-written artifact.
type Store struct {
	root string
}

// New creates a store rooted at dir
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the store's root directory
func (s *Store) Root() string {
	return s.root
}

// LeaderboardPath returns the artifact path of a period
func (s *Store) LeaderboardPath(period models.Period) string {
	return filepath.Join(s.root, leaderboardDir, string(period)+".json")
}

// ReleasesPath returns the releases artifact path
func (s *Store) ReleasesPath() string {
	return filepath.Join(s.root, releasesDir, releasesFile)
}

// WriteLeaderboards writes every leaderboard artifact as one set.
// All files are staged to temporary files before any of them replaces an existing
// artifact; when staging or replacing fails, the previous artifacts are kept.
func (s *Store) WriteLeaderboards(files []*models.LeaderboardFile) error {
	for _, file := range files {
		if file == nil {
			return errors.New("refusing to write an incomplete leaderboard set")
		}
	}

	staged := make([]stagedFile, 0, len(files))
	defer func() {
		for _, sf := range staged {
			os.Remove(sf.tmp)
		}
	}()

	for _, file := range files {
		file.Normalize()
		path := s.LeaderboardPath(file.Period)
		tmp, err := stageJSON(path, file)
		if err != nil {
			return fmt.Errorf("write %s leaderboard: %w", file.Period, err)
		}
		staged = append(staged, stagedFile{path: path, tmp: tmp})
	}

	if err := commit(staged); err != nil {
		return err
	}

	for _, file := range files {
		logger.WithFields(logrus.Fields{
			"period":  file.Period,
			"entries": len(file.Entries),
			"path":    s.LeaderboardPath(file.Period),
		}).Info("Leaderboard artifact written")
	}
	return nil
}

// ReadLeaderboard loads the artifact of a period
func (s *Store) ReadLeaderboard(period models.Period) (*models.LeaderboardFile, error) {
	var file models.LeaderboardFile
	if err := readJSON(s.LeaderboardPath(period), &file); err != nil {
		return nil, err
	}
	file.Normalize()
	return &file, nil
}

// LeaderboardOrEmpty loads the artifact of a period and falls back to the empty
// shape when it is missing or cannot be parsed.
func (s *Store) LeaderboardOrEmpty(period models.Period, now time.Time) *models.LeaderboardFile {
	file, err := s.ReadLeaderboard(period)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.WithError(err).WithField("period", period).Warn("Leaderboard artifact unreadable, serving empty board")
		}
		return models.NewEmptyLeaderboard(period, now)
	}
	if file.Period != period {
		logger.WithFields(logrus.Fields{"period": period, "found": file.Period}).Warn("Leaderboard artifact has unexpected period")
		return models.NewEmptyLeaderboard(period, now)
	}
	return file
}

// WriteReleases writes the releases artifact
func (s *Store) WriteReleases(releases []models.Release) error {
	if releases == nil {
		releases = make([]models.Release, 0)
	}
	return writeJSON(s.ReleasesPath(), releases)
}

// ReadReleases loads the releases artifact
func (s *Store) ReadReleases() ([]models.Release, error) {
	releases := make([]models.Release, 0)
	if err := readJSON(s.ReleasesPath(), &releases); err != nil {
		return nil, err
	}
	return releases, nil
}

func writeJSON(path string, v interface{}) error {
	tmp, err := stageJSON(path, v)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)
	return commit([]stagedFile{{path: path, tmp: tmp}})
}

// stagedFile is a synced temporary file waiting to replace path
type stagedFile struct {
	path   string
	tmp    string
	backup string
}

// stageJSON encodes v into a synced temporary file next to path
func stageJSON(path string, v interface{}) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if info, err := os.Lstat(path); err == nil && !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s exists and is not a regular file", path)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	return tmpName, nil
}

// commit renames every staged file into place. Existing artifacts are moved aside
// first and restored when a later rename fails.
func commit(staged []stagedFile) error {
	done := 0
	var err error
	for i := range staged {
		sf := &staged[i]
		if _, statErr := os.Lstat(sf.path); statErr == nil {
			sf.backup = sf.tmp + ".prev"
			if err = os.Rename(sf.path, sf.backup); err != nil {
				sf.backup = ""
				break
			}
		}
		if err = os.Rename(sf.tmp, sf.path); err != nil {
			break
		}
		done++
	}

	if err == nil {
		for _, sf := range staged {
			if sf.backup != "" {
				os.Remove(sf.backup)
			}
		}
		return nil
	}

	// restore in reverse, including the entry whose rename failed
	for i := done; i >= 0; i-- {
		sf := staged[i]
		if i < done {
			os.Remove(sf.path)
		}
		if sf.backup != "" {
			if restoreErr := os.Rename(sf.backup, sf.path); restoreErr != nil {
				logger.WithError(restoreErr).WithField("path", sf.path).Error("Failed to restore previous artifact")
			}
		}
	}
	return fmt.Errorf("replace %s: %w", filepath.Base(staged[done].path), err)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
