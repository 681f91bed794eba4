package leaderboardservice

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	leaderboarddomain "github.com/snapclash/arena/app/modules/leaderboard/domain"
)

// ExportStandingsXLSX renders a snapshot as an xlsx workbook with one row
// per ranked entry.
func ExportStandingsXLSX(snapshot *leaderboarddomain.Snapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Standings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	header := []any{"Rank", "Participant", "Display Name", "Score", "Last Activity"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, entry := range snapshot.Entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		row := []any{
			entry.Rank,
			string(entry.ParticipantID),
			entry.DisplayName,
			int(entry.Score),
			entry.LastActivity.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
