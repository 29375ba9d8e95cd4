package charts

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/kartoza/lottery-analyst/internal/lottery"
	"github.com/kartoza/lottery-analyst/internal/stats"
)

// Kind selects which statistics table a chart shows.
type Kind string

const (
	KindPrimary   Kind = "primary"
	KindSecondary Kind = "secondary"
	KindPairs     Kind = "pairs"
)

var (
	// ErrUnknownKind is returned for an unsupported chart name.
	ErrUnknownKind = errors.New("unknown chart")
	// ErrNoSecondary is returned when a secondary chart is requested for a
	// game without a secondary pool.
	ErrNoSecondary = errors.New("game has no secondary pool")
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Width  string
	Height string
	Theme  string
	Colors []string
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:  "900px",
		Height: "500px",
		Theme:  "light",
		Colors: []string{"#EE6666", "#5470C6", "#FAC858"},
	}
}

// DataPoint represents a single bar.
type DataPoint struct {
	Label string
	Value int
}

// ParseKind validates a chart name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindPrimary, KindSecondary, KindPairs:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Render writes an interactive HTML bar chart of one statistics table.
// Frequency bars are laid out in pool order so cold numbers stay visible.
func Render(w io.Writer, kind Kind, game lottery.Game, st stats.Statistics, config ChartConfig) error {
	var (
		title  string
		series string
		data   []DataPoint
		color  string
	)

	switch kind {
	case KindPrimary:
		title = fmt.Sprintf("%s primary frequency", game.Name)
		series = "Occurrences"
		data = poolPoints(game.Primary, st.PrimaryFrequency)
		color = pick(config.Colors, 0)
	case KindSecondary:
		if !game.HasSecondary() {
			return ErrNoSecondary
		}
		title = fmt.Sprintf("%s secondary frequency", game.Name)
		series = "Occurrences"
		data = poolPoints(*game.Secondary, st.SecondaryFrequency)
		color = pick(config.Colors, 1)
	case KindPairs:
		title = fmt.Sprintf("%s top primary pairs", game.Name)
		series = "Co-occurrences"
		data = pairPoints(st.TopPrimaryPairs)
		color = pick(config.Colors, 2)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     config.Width,
			Height:    config.Height,
			Theme:     config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d primary numbers counted", st.TotalPrimary()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithColorsOpts(opts.Colors{color}),
	)

	xLabels := make([]string, len(data))
	yData := make([]opts.BarData, len(data))
	for i, point := range data {
		xLabels[i] = point.Label
		yData[i] = opts.BarData{Value: point.Value}
	}

	bar.SetXAxis(xLabels).
		AddSeries(series, yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(kind == KindPairs),
			}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// poolPoints lists every number of the pool, filling in zero counts, then
// appends any counted number that falls outside the pool.
func poolPoints(pool lottery.Pool, counts []stats.NumberCount) []DataPoint {
	byNumber := make(map[int]int, len(counts))
	for _, c := range counts {
		byNumber[c.Number] = c.Count
	}

	points := make([]DataPoint, 0, pool.Max-pool.Min+1)
	for n := pool.Min; n <= pool.Max; n++ {
		points = append(points, DataPoint{Label: strconv.Itoa(n), Value: byNumber[n]})
		delete(byNumber, n)
	}
	for _, c := range counts {
		if _, ok := byNumber[c.Number]; ok {
			points = append(points, DataPoint{Label: strconv.Itoa(c.Number), Value: c.Count})
		}
	}
	return points
}

func pairPoints(pairs []stats.PairCount) []DataPoint {
	points := make([]DataPoint, len(pairs))
	for i, p := range pairs {
		points[i] = DataPoint{Label: fmt.Sprintf("%d-%d", p.A, p.B), Value: p.Count}
	}
	return points
}

func pick(colors []string, i int) string {
	if len(colors) == 0 {
		return "#5470C6"
	}
	return colors[i%len(colors)]
}
