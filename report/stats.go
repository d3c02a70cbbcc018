package report

import (
	"math"
	"sort"
)

// KeyFunc extracts the grouping key of a row; rows with ok=false are left out.
type KeyFunc func(r Row) (key string, ok bool)

var (
	BySourceYear KeyFunc = func(r Row) (string, bool) { return r.SourceYear, r.SourceYear != "" }

	ByNeighborhood KeyFunc = func(r Row) (string, bool) { return r.Neighborhood.String, r.Neighborhood.Valid }

	ByPropertyType KeyFunc = func(r Row) (string, bool) { return r.PropertyType.String, r.PropertyType.Valid }
)

// Stats summarizes the assessed values of one group.
type Stats struct {
	Key    string  `json:"key"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	// StdDev is the sample standard deviation, zero for groups of one.
	StdDev           float64 `json:"std_dev"`
	MeanValuePerArea float64 `json:"mean_value_per_area"`
	MeanBuiltArea    float64 `json:"mean_built_area"`
	// FinancedShare is the fraction of transactions with SFH financing.
	FinancedShare float64 `json:"financed_share"`
}

// GroupStats computes Stats per key, ordered by key.
func GroupStats(rows []Row, key KeyFunc) []Stats {
	groups := make(map[string][]Row)
	for _, r := range rows {
		k, ok := key(r)
		if !ok {
			continue
		}
		groups[k] = append(groups[k], r)
	}

	out := make([]Stats, 0, len(groups))
	for k, g := range groups {
		out = append(out, summarize(k, g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func summarize(key string, rows []Row) Stats {
	s := Stats{Key: key, Count: len(rows)}
	values := make([]float64, 0, len(rows))
	var perArea, area []float64
	financed := 0
	for _, r := range rows {
		values = append(values, r.Value)
		if r.ValuePerArea.Valid {
			perArea = append(perArea, r.ValuePerArea.Float64)
		}
		if r.BuiltArea.Valid {
			area = append(area, r.BuiltArea.Float64)
		}
		if r.Financed.Valid && r.Financed.Bool {
			financed++
		}
	}

	s.Mean = mean(values)
	s.Median = median(values)
	s.StdDev = sampleStdDev(values)
	s.MeanValuePerArea = mean(perArea)
	s.MeanBuiltArea = mean(area)
	if s.Count > 0 {
		s.FinancedShare = float64(financed) / float64(s.Count)
	}
	return s
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func median(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sorted := append([]float64(nil), v...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func sampleStdDev(v []float64) float64 {
	if len(v) < 2 {
		return 0
	}
	m := mean(v)
	ss := 0.0
	for _, x := range v {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(v)-1))
}

// Ranking selects the TopN ordering.
type Ranking int

const (
	RankByCount Ranking = iota
	RankByMeanValue
)

// TopN returns the first n groups by the ranking, descending. Ties keep key order.
func TopN(stats []Stats, n int, by Ranking) []Stats {
	ranked := append([]Stats(nil), stats...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if by == RankByMeanValue {
			return ranked[i].Mean > ranked[j].Mean
		}
		return ranked[i].Count > ranked[j].Count
	})
	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// YoYChange is the percent change from prev to curr. It is undefined when prev is zero.
func YoYChange(prev, curr float64) (float64, bool) {
	if prev == 0 {
		return 0, false
	}
	return (curr - prev) / prev * 100, true
}
