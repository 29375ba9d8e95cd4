// Package stats computes historical frequency statistics over lottery draws.
package stats

import (
	"slices"
	"sort"

	"github.com/kartoza/lottery-analyst/internal/lottery"
)

// TopPairs is the number of co-occurrence pairs kept in Statistics
const TopPairs = 12

// NumberCount is how many records contained a number
type NumberCount struct {
	Number int `json:"number"`
	Count  int `json:"count"`
}

// PairCount is how many records contained both A and B, with A < B
type PairCount struct {
	A     int `json:"a"`
	B     int `json:"b"`
	Count int `json:"count"`
}

// Statistics is the result of ComputeStatistics.
//
// Frequencies are sorted by count descending, then number ascending.
// Pairs are sorted by count descending, then A ascending, then B ascending.
// Frequencies count every occurrence, while a pair is counted at most once
// per record even when the record repeats a number.
type Statistics struct {
	PrimaryFrequency   []NumberCount `json:"primaryFrequency"`
	SecondaryFrequency []NumberCount `json:"secondaryFrequency"`
	TopPrimaryPairs    []PairCount   `json:"topPrimaryPairs"`
}

type pairKey struct{ a, b int }

// ComputeStatistics counts primary and secondary numbers across records and
// the most frequent primary pairs. It never fails and never mutates records.
func ComputeStatistics(records []lottery.DrawRecord) Statistics {
	primary := make(map[int]int)
	secondary := make(map[int]int)
	pairs := make(map[pairKey]int)

	sorted := make([]int, 0, 20)
	for _, rec := range records {
		for _, n := range rec.PrimaryNumbers {
			primary[n]++
		}
		for _, n := range rec.SecondaryNumbers {
			secondary[n]++
		}

		// a pair counts once per record, so repeats are dropped first
		sorted = append(sorted[:0], rec.PrimaryNumbers...)
		sort.Ints(sorted)
		sorted = slices.Compact(sorted)
		for i := 0; i < len(sorted); i++ {
			for j := i + 1; j < len(sorted); j++ {
				pairs[pairKey{sorted[i], sorted[j]}]++
			}
		}
	}

	pairList := make([]PairCount, 0, len(pairs))
	for k, c := range pairs {
		pairList = append(pairList, PairCount{A: k.a, B: k.b, Count: c})
	}
	sort.Slice(pairList, func(i, j int) bool {
		x, y := pairList[i], pairList[j]
		if x.Count != y.Count {
			return x.Count > y.Count
		}
		if x.A != y.A {
			return x.A < y.A
		}
		return x.B < y.B
	})
	if len(pairList) > TopPairs {
		pairList = pairList[:TopPairs]
	}

	return Statistics{
		PrimaryFrequency:   sortedCounts(primary),
		SecondaryFrequency: sortedCounts(secondary),
		TopPrimaryPairs:    pairList,
	}
}

func sortedCounts(m map[int]int) []NumberCount {
	out := make([]NumberCount, 0, len(m))
	for n, c := range m {
		out = append(out, NumberCount{Number: n, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Number < out[j].Number
	})
	return out
}

// TopPrimary returns at most n primary entries. n <= 0 returns all of them.
func (s Statistics) TopPrimary(n int) []NumberCount {
	return head(s.PrimaryFrequency, n)
}

// TopSecondary returns at most n secondary entries. n <= 0 returns all of them.
func (s Statistics) TopSecondary(n int) []NumberCount {
	return head(s.SecondaryFrequency, n)
}

func head(in []NumberCount, n int) []NumberCount {
	if n <= 0 || n > len(in) {
		n = len(in)
	}
	out := make([]NumberCount, n)
	copy(out, in[:n])
	return out
}

// TotalPrimary is the sum of all primary counts
func (s Statistics) TotalPrimary() int {
	total := 0
	for _, nc := range s.PrimaryFrequency {
		total += nc.Count
	}
	return total
}
