package stats

import (
	"testing"

	"github.com/kartoza/lottery-analyst/internal/lottery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draw(primary []int, secondary ...int) lottery.DrawRecord {
	r := lottery.DrawRecord{PrimaryNumbers: primary}
	if len(secondary) > 0 {
		r.SecondaryNumbers = secondary
	}
	return r
}

func TestComputeStatisticsEmpty(t *testing.T) {
	for _, in := range [][]lottery.DrawRecord{nil, {}} {
		s := ComputeStatistics(in)
		require.NotNil(t, s.PrimaryFrequency)
		require.NotNil(t, s.SecondaryFrequency)
		require.NotNil(t, s.TopPrimaryPairs)
		assert.Empty(t, s.PrimaryFrequency)
		assert.Empty(t, s.SecondaryFrequency)
		assert.Empty(t, s.TopPrimaryPairs)
	}
}

func TestComputeStatisticsScenario(t *testing.T) {
	s := ComputeStatistics([]lottery.DrawRecord{
		draw([]int{1, 2, 3}),
		draw([]int{2, 3, 4}),
	})

	assert.Equal(t, []NumberCount{
		{Number: 2, Count: 2},
		{Number: 3, Count: 2},
		{Number: 1, Count: 1},
		{Number: 4, Count: 1},
	}, s.PrimaryFrequency)

	assert.Equal(t, []PairCount{
		{A: 2, B: 3, Count: 2},
		{A: 1, B: 2, Count: 1},
		{A: 1, B: 3, Count: 1},
		{A: 2, B: 4, Count: 1},
		{A: 3, B: 4, Count: 1},
	}, s.TopPrimaryPairs)
	assert.Empty(t, s.SecondaryFrequency)
}

func TestComputeStatisticsSecondaryOptional(t *testing.T) {
	s := ComputeStatistics([]lottery.DrawRecord{
		draw([]int{1, 2}, 7),
		draw([]int{3, 4}),
	})
	assert.Equal(t, []NumberCount{{Number: 7, Count: 1}}, s.SecondaryFrequency)
}

func TestComputeStatisticsPrimaryTotal(t *testing.T) {
	records := []lottery.DrawRecord{
		draw([]int{5, 10, 15, 20, 25}, 1, 2),
		draw([]int{5, 11, 16}, 3),
		draw([]int{}),
		draw([]int{9}),
		draw([]int{33, 32, 31, 30, 29, 28}),
	}
	s := ComputeStatistics(records)

	want := 0
	seen := map[int]bool{}
	for _, r := range records {
		want += len(r.PrimaryNumbers)
		for _, n := range r.PrimaryNumbers {
			seen[n] = true
		}
	}
	assert.Equal(t, want, s.TotalPrimary())

	got := map[int]int{}
	for _, nc := range s.PrimaryFrequency {
		got[nc.Number]++
		assert.Positive(t, nc.Count)
	}
	assert.Len(t, got, len(seen))
	for n := range seen {
		assert.Equal(t, 1, got[n], "number %d should appear exactly once", n)
	}
}

func TestComputeStatisticsPairOrderIndependent(t *testing.T) {
	a := ComputeStatistics([]lottery.DrawRecord{
		draw([]int{1, 9, 4, 22}),
		draw([]int{4, 22, 30}),
	})
	b := ComputeStatistics([]lottery.DrawRecord{
		draw([]int{22, 4, 1, 9}),
		draw([]int{30, 22, 4}),
	})
	assert.Equal(t, a.TopPrimaryPairs, b.TopPrimaryPairs)
	assert.Equal(t, a.PrimaryFrequency, b.PrimaryFrequency)
	for _, p := range a.TopPrimaryPairs {
		assert.Less(t, p.A, p.B)
	}
}

func TestComputeStatisticsPairsTruncated(t *testing.T) {
	// 6 numbers give 15 distinct pairs
	s := ComputeStatistics([]lottery.DrawRecord{draw([]int{1, 2, 3, 4, 5, 6})})
	assert.Len(t, s.TopPrimaryPairs, TopPairs)
	assert.Len(t, s.PrimaryFrequency, 6)

	// 4 numbers give 6 distinct pairs
	s = ComputeStatistics([]lottery.DrawRecord{draw([]int{1, 2, 3, 4})})
	assert.Len(t, s.TopPrimaryPairs, 6)
}

func TestComputeStatisticsSingleNumberNoPairs(t *testing.T) {
	s := ComputeStatistics([]lottery.DrawRecord{draw([]int{8}), draw(nil)})
	assert.Empty(t, s.TopPrimaryPairs)
	assert.Equal(t, []NumberCount{{Number: 8, Count: 1}}, s.PrimaryFrequency)
}

func TestComputeStatisticsDuplicatesCountedAsGiven(t *testing.T) {
	s := ComputeStatistics([]lottery.DrawRecord{draw([]int{3, 3, 99})})
	assert.Equal(t, []NumberCount{{Number: 3, Count: 2}, {Number: 99, Count: 1}}, s.PrimaryFrequency)
	assert.Equal(t, []PairCount{{A: 3, B: 99, Count: 1}}, s.TopPrimaryPairs)
}

func TestComputeStatisticsPairCountsRecords(t *testing.T) {
	s := ComputeStatistics([]lottery.DrawRecord{
		draw([]int{5, 1, 5, 1}),
		draw([]int{1, 5, 7}),
	})
	assert.Equal(t, PairCount{A: 1, B: 5, Count: 2}, s.TopPrimaryPairs[0])
	for _, p := range s.TopPrimaryPairs {
		assert.LessOrEqual(t, p.Count, 2)
	}
}

func TestComputeStatisticsDoesNotMutateInput(t *testing.T) {
	records := []lottery.DrawRecord{draw([]int{9, 1, 5})}
	ComputeStatistics(records)
	assert.Equal(t, []int{9, 1, 5}, records[0].PrimaryNumbers)
}

func TestComputeStatisticsIdempotent(t *testing.T) {
	records := []lottery.DrawRecord{
		draw([]int{1, 2, 3, 4, 5}, 1, 2),
		draw([]int{2, 3, 4, 5, 6}, 2, 3),
		draw([]int{7, 8, 9, 10, 11}, 1, 12),
	}
	assert.Equal(t, ComputeStatistics(records), ComputeStatistics(records))
}

func TestTopHelpers(t *testing.T) {
	s := ComputeStatistics([]lottery.DrawRecord{
		draw([]int{1, 2, 3}, 5),
		draw([]int{1, 2}, 6),
	})
	assert.Equal(t, []NumberCount{{1, 2}, {2, 2}}, s.TopPrimary(2))
	assert.Len(t, s.TopPrimary(0), 3)
	assert.Len(t, s.TopPrimary(50), 3)
	assert.Len(t, s.TopSecondary(1), 1)

	top := s.TopPrimary(1)
	top[0].Count = 100
	assert.Equal(t, 2, s.PrimaryFrequency[0].Count)
}
