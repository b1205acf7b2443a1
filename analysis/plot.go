package analysis

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/zeu5/ladders-rl/board"
	"github.com/zeu5/ladders-rl/core"
)

var ErrEmptyHistory = errors.New("history has no episodes")

func episodeAxis(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}

func lineChart(title, series string, xs []string, values []float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
	)
	items := make([]opts.LineData, 0, len(values))
	for _, v := range values {
		items = append(items, opts.LineData{Value: v})
	}
	line.SetXAxis(xs).AddSeries(series, items)
	return line
}

// HistoryCharts plots reward, steps and epsilon against the episode index.
func HistoryCharts(history *core.TrainingHistory) []*charts.Line {
	xs := episodeAxis(history.Len())
	return []*charts.Line{
		lineChart("Reward per episode", "reward", xs, history.Rewards()),
		lineChart("Steps per episode", "steps", xs, history.Steps()),
		lineChart("Epsilon per episode", "epsilon", xs, history.Epsilons()),
	}
}

// ValueHeatMap draws values in board geometry with row 1 at the bottom.
func ValueHeatMap(b *board.Board, values map[core.Cell]float64) *charts.HeatMap {
	grid := ValueGrid(b, values)
	lo, hi := GridRange(grid)
	if lo == hi {
		hi = lo + 1
	}

	xs := make([]string, b.Columns())
	for i := range xs {
		xs[i] = strconv.Itoa(i + 1)
	}
	ys := make([]string, b.Rows())
	for i := range ys {
		ys[i] = strconv.Itoa(i + 1)
	}

	data := make([]opts.HeatMapData, 0, int(b.MaxCell()))
	for c := core.Cell(1); c <= b.MaxCell(); c++ {
		col, row := b.Position(c)
		data = append(data, opts.HeatMapData{
			Name:  c.Hash(),
			Value: [3]interface{}{col - 1, row - 1, grid.At(b.Rows()-row, col-1)},
		})
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Max Q per cell"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: xs}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: ys}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Min: float32(lo),
			Max: float32(hi),
			InRange: &opts.VisualMapInRange{
				Color: []string{"#d73027", "#ffffbf", "#1a9850"},
			},
		}),
	)
	hm.SetXAxis(xs).AddSeries("value", data)
	return hm
}

// RenderCharts writes one HTML page with the history line charts and, when
// values are given, the value heat map.
func RenderCharts(w io.Writer, history *core.TrainingHistory, b *board.Board, values map[core.Cell]float64) error {
	if history == nil || history.Len() == 0 {
		return ErrEmptyHistory
	}
	page := components.NewPage()
	for _, line := range HistoryCharts(history) {
		page.AddCharts(line)
	}
	if b != nil && len(values) > 0 {
		page.AddCharts(ValueHeatMap(b, values))
	}
	return page.Render(w)
}

// SaveCharts renders to <dir>/<name>.html.
func SaveCharts(dir, name string, history *core.TrainingHistory, b *board.Board, values map[core.Cell]float64) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	p := filepath.Join(dir, fmt.Sprintf("%s.html", name))
	f, err := os.Create(p)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := RenderCharts(f, history, b, values); err != nil {
		return "", err
	}
	return p, nil
}
