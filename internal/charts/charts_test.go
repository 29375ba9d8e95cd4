package charts

import (
	"bytes"
	"testing"

	"github.com/kartoza/lottery-analyst/internal/lottery"
	"github.com/kartoza/lottery-analyst/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStats() stats.Statistics {
	return stats.ComputeStatistics([]lottery.DrawRecord{
		{PrimaryNumbers: []int{1, 2, 3, 4, 5, 6}, SecondaryNumbers: []int{7}},
		{PrimaryNumbers: []int{2, 3, 4, 5, 6, 40}, SecondaryNumbers: []int{7}},
	})
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"primary", "secondary", "pairs"} {
		k, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, Kind(name), k)
	}
	_, err := ParseKind("heatmap")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestRenderKinds(t *testing.T) {
	game, _ := lottery.Lookup(lottery.GameSSQ)

	for _, kind := range []Kind{KindPrimary, KindSecondary, KindPairs} {
		t.Run(string(kind), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, kind, game, sampleStats(), DefaultChartConfig()))
			out := buf.String()
			assert.Contains(t, out, "<html")
			assert.Contains(t, out, "echarts")
		})
	}
}

func TestRenderSecondaryWithoutPool(t *testing.T) {
	game, _ := lottery.Lookup(lottery.GameHappy8)

	var buf bytes.Buffer
	err := Render(&buf, KindSecondary, game, sampleStats(), DefaultChartConfig())
	assert.ErrorIs(t, err, ErrNoSecondary)
	assert.Zero(t, buf.Len())
}

func TestPoolPointsFillsGapsAndKeepsOutliers(t *testing.T) {
	pool := lottery.Pool{Count: 1, Min: 1, Max: 4}
	points := poolPoints(pool, []stats.NumberCount{{Number: 3, Count: 5}, {Number: 99, Count: 1}})

	assert.Equal(t, []DataPoint{
		{Label: "1", Value: 0},
		{Label: "2", Value: 0},
		{Label: "3", Value: 5},
		{Label: "4", Value: 0},
		{Label: "99", Value: 1},
	}, points)
}

func TestPairPoints(t *testing.T) {
	points := pairPoints([]stats.PairCount{{A: 2, B: 9, Count: 3}})
	assert.Equal(t, []DataPoint{{Label: "2-9", Value: 3}}, points)
}
