package leaderboardservice

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	leaderboarddomain "github.com/snapclash/arena/app/modules/leaderboard/domain"
)

const chartMaxBars = 10

// GenerateStandingsChart produces a PNG bar chart of the top entries in a
// snapshot, highest score first.
func GenerateStandingsChart(snapshot *leaderboarddomain.Snapshot) ([]byte, error) {
	if len(snapshot.Entries) == 0 {
		return renderNoDataPlaceholder()
	}

	top := snapshot.Entries
	if len(top) > chartMaxBars {
		top = top[:chartMaxBars]
	}

	bars := make([]chart.Value, 0, len(top))
	for _, entry := range top {
		label := entry.DisplayName
		if label == "" {
			label = string(entry.ParticipantID)
		}
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("#%d %s", entry.Rank, label),
			Value: float64(entry.Score),
		})
	}

	graph := chart.BarChart{
		Title:    "Standings",
		Width:    800,
		Height:   400,
		BarWidth: 48,
		Bars:     bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render standings chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder() ([]byte, error) {
	const msg = "No scored submissions yet"

	graph := chart.Chart{
		Width:  400,
		Height: 200,
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
