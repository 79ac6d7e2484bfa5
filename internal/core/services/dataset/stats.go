package dataset

import (
	"math"
	"sort"
	"strings"
)

// DescribeWords computes count, mean, sample std, min, quartiles and max of the word counts of
// texts. Quartiles interpolate linearly between closest ranks. Std is 0 for fewer than two texts.
func DescribeWords(texts []string) WordStats {
	n := len(texts)
	if n == 0 {
		return WordStats{}
	}

	counts := make([]float64, n)
	sum := 0.0
	for i, t := range texts {
		counts[i] = float64(len(strings.Fields(t)))
		sum += counts[i]
	}
	sort.Float64s(counts)

	mean := sum / float64(n)
	std := 0.0
	if n > 1 {
		ss := 0.0
		for _, c := range counts {
			ss += (c - mean) * (c - mean)
		}
		std = math.Sqrt(ss / float64(n-1))
	}

	return WordStats{
		Count: n,
		Mean:  mean,
		Std:   std,
		Min:   counts[0],
		P25:   quantile(counts, 0.25),
		P50:   quantile(counts, 0.50),
		P75:   quantile(counts, 0.75),
		Max:   counts[n-1],
	}
}

// quantile expects sorted, non-empty values
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
