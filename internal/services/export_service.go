package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/alimgiray/leaderboard/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// ExportService writes leaderboards as a spreadsheet, one sheet per period
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// ExportHeader returns the column titles of every exported sheet
func ExportHeader() []interface{} {
	header := []interface{}{"Rank", "Username", "Name", "Role", "Points", "Current Streak", "Longest Streak"}
	for _, activityType := range models.ActivityTypes() {
		header = append(header, string(activityType))
	}
	return header
}

// Export writes boards to path in the order given
func (s *ExportService) Export(boards []*models.LeaderboardFile, path string) error {
	if len(boards) == 0 {
		return fmt.Errorf("nothing to export")
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close workbook")
		}
	}()

	for i, board := range boards {
		sheet := string(board.Period)
		index, err := f.NewSheet(sheet)
		if err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		if i == 0 {
			f.SetActiveSheet(index)
		}
		if err := writeBoard(f, sheet, board); err != nil {
			return err
		}
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		return fmt.Errorf("remove default sheet: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}

	logger.WithField("path", path).Info("Leaderboard exported")
	return nil
}

func writeBoard(f *excelize.File, sheet string, board *models.LeaderboardFile) error {
	header := ExportHeader()
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header of %s: %w", sheet, err)
	}

	for i, c := range board.Entries {
		row := []interface{}{
			i + 1,
			c.Username,
			c.DisplayName(),
			string(c.Role),
			c.TotalPoints,
			c.CurrentStreak,
			c.LongestStreak,
		}
		for _, activityType := range models.ActivityTypes() {
			count := 0
			if stat, ok := c.ActivityBreakdown[activityType]; ok {
				count = stat.Count
			}
			row = append(row, count)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i+2, sheet, err)
		}
	}

	return f.SetColWidth(sheet, "B", "C", 24)
}
