package leaderboardservice

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	leaderboarddomain "github.com/snapclash/arena/app/modules/leaderboard/domain"
)

func testSnapshot() *leaderboarddomain.Snapshot {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &leaderboarddomain.Snapshot{
		Scope:   leaderboarddomain.GlobalScope(),
		Version: 3,
		Entries: []leaderboarddomain.LeaderboardEntry{
			{ParticipantID: "alice", DisplayName: "Alice", Score: 95, Rank: 1, LastActivity: base},
			{ParticipantID: "bob", DisplayName: "Bob", Score: 80, Rank: 2, LastActivity: base.Add(time.Minute)},
		},
		ComputedAt: base.Add(time.Hour),
	}
}

func TestExportStandingsXLSX(t *testing.T) {
	data, err := ExportStandingsXLSX(testSnapshot())
	if err != nil {
		t.Fatalf("ExportStandingsXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported workbook does not open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Standings")
	if err != nil {
		t.Fatalf("failed to read Standings sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2 entries", len(rows))
	}
	if rows[0][0] != "Rank" {
		t.Errorf("header cell = %q, want Rank", rows[0][0])
	}
	if rows[1][1] != "alice" || rows[1][3] != "95" {
		t.Errorf("first entry row = %v, want alice with score 95", rows[1])
	}
}

func TestGenerateStandingsChart(t *testing.T) {
	data, err := GenerateStandingsChart(testSnapshot())
	if err != nil {
		t.Fatalf("GenerateStandingsChart() error = %v", err)
	}

	pngMagic := []byte{0x89, 'P', 'N', 'G'}
	if len(data) < len(pngMagic) || !bytes.Equal(data[:len(pngMagic)], pngMagic) {
		t.Error("chart output is not a PNG")
	}
}
