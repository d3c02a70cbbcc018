package report

import (
	"sort"
)

// Growth is the year-over-year change ending at Year.
type Growth struct {
	Year    string  `json:"year"`
	Percent float64 `json:"percent"`
}

type TemporalInsights struct {
	FirstYear         string   `json:"first_year"`
	LastYear          string   `json:"last_year"`
	TotalTransactions int      `json:"total_transactions"`
	MeanValue         float64  `json:"mean_value"`
	Years             []Stats  `json:"years"`
	MostActiveYear    string   `json:"most_active_year"`
	HighestValueYear  string   `json:"highest_value_year"`
	ValueGrowth       []Growth `json:"value_growth"`
	VolumeGrowth      []Growth `json:"volume_growth"`
	// Seasonality is the mean number of transactions per calendar month across years.
	Seasonality map[int]float64 `json:"seasonality"`
}

type GeographicInsights struct {
	Neighborhoods      int     `json:"neighborhoods"`
	MostActive         Stats   `json:"most_active"`
	MostValued         Stats   `json:"most_valued"`
	ConcentrationTop5  float64 `json:"concentration_top5"`
	ConcentrationTop10 float64 `json:"concentration_top10"`
	Top                []Stats `json:"top"`
}

type SegmentInsights struct {
	PropertyTypes []Stats `json:"property_types"`
}

type Insights struct {
	Temporal   TemporalInsights   `json:"temporal"`
	Geographic GeographicInsights `json:"geographic"`
	Segments   SegmentInsights    `json:"segments"`
}

// ComputeInsights derives the insights from transformed rows; topN bounds the neighborhood ranking.
func ComputeInsights(rows []Row, topN int) Insights {
	return Insights{
		Temporal:   temporal(rows),
		Geographic: geographic(rows, topN),
		Segments:   SegmentInsights{PropertyTypes: TopN(GroupStats(rows, ByPropertyType), -1, RankByCount)},
	}
}

func temporal(rows []Row) TemporalInsights {
	years := GroupStats(rows, BySourceYear)
	ins := TemporalInsights{Years: years, TotalTransactions: len(rows), Seasonality: seasonality(rows)}
	if len(years) == 0 {
		return ins
	}

	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		values = append(values, r.Value)
	}
	ins.MeanValue = mean(values)
	ins.FirstYear = years[0].Key
	ins.LastYear = years[len(years)-1].Key
	ins.MostActiveYear = TopN(years, 1, RankByCount)[0].Key
	ins.HighestValueYear = TopN(years, 1, RankByMeanValue)[0].Key

	for i := 1; i < len(years); i++ {
		prev, curr := years[i-1], years[i]
		if pct, ok := YoYChange(prev.Mean, curr.Mean); ok {
			ins.ValueGrowth = append(ins.ValueGrowth, Growth{Year: curr.Key, Percent: pct})
		}
		if pct, ok := YoYChange(float64(prev.Count), float64(curr.Count)); ok {
			ins.VolumeGrowth = append(ins.VolumeGrowth, Growth{Year: curr.Key, Percent: pct})
		}
	}
	return ins
}

func seasonality(rows []Row) map[int]float64 {
	type yearMonth struct {
		year  string
		month int
	}
	counts := make(map[yearMonth]int)
	for _, r := range rows {
		if !r.Month.Valid {
			continue
		}
		counts[yearMonth{r.SourceYear, int(r.Month.Int64)}]++
	}

	perMonth := make(map[int][]float64)
	for k, n := range counts {
		perMonth[k.month] = append(perMonth[k.month], float64(n))
	}
	out := make(map[int]float64, len(perMonth))
	for m, v := range perMonth {
		out[m] = mean(v)
	}
	return out
}

func geographic(rows []Row, topN int) GeographicInsights {
	stats := GroupStats(rows, ByNeighborhood)
	ins := GeographicInsights{Neighborhoods: len(stats)}
	if len(stats) == 0 {
		return ins
	}

	byCount := TopN(stats, -1, RankByCount)
	ins.MostActive = byCount[0]
	ins.MostValued = TopN(stats, 1, RankByMeanValue)[0]
	ins.Top = TopN(byCount, topN, RankByCount)

	total := 0
	for _, s := range stats {
		total += s.Count
	}
	ins.ConcentrationTop5 = share(byCount, 5, total)
	ins.ConcentrationTop10 = share(byCount, 10, total)
	return ins
}

func share(ranked []Stats, n, total int) float64 {
	if total == 0 {
		return 0
	}
	sum := 0
	for i := 0; i < n && i < len(ranked); i++ {
		sum += ranked[i].Count
	}
	return float64(sum) / float64(total) * 100
}

// Months returns the seasonality months in calendar order.
func (t TemporalInsights) Months() []int {
	months := make([]int, 0, len(t.Seasonality))
	for m := range t.Seasonality {
		months = append(months, m)
	}
	sort.Ints(months)
	return months
}
