package s4_visualize

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/nifty50/internal/contracts"
)

// MaxHeatmapSymbols bounds the correlation heatmap
const MaxHeatmapSymbols = 30

// Correlation is a labelled square matrix
type Correlation struct {
	Symbols []string
	Matrix  [][]float64
}

// CorrelationMatrix correlates daily % change in close across symbols.
// Closes are pivoted by date and forward-filled per symbol; dates where
// no symbol has a change are dropped; each pair uses the dates where both
// are defined (NaN below two such dates).
func CorrelationMatrix(records []contracts.ReturnRecord) Correlation {
	symbols, groups := GroupBySymbol(records)

	dateSet := make(map[time.Time]struct{})
	for _, r := range records {
		dateSet[r.Date] = struct{}{}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	row := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		row[d] = i
	}

	// changes[s][t], NaN where undefined
	changes := make([][]float64, len(symbols))
	for k, s := range symbols {
		closes := make([]float64, len(dates))
		for i := range closes {
			closes[i] = math.NaN()
		}
		for _, r := range groups[s] {
			closes[row[r.Date]] = r.Close
		}
		// forward fill
		for i := 1; i < len(closes); i++ {
			if math.IsNaN(closes[i]) {
				closes[i] = closes[i-1]
			}
		}
		pct := make([]float64, len(dates))
		pct[0] = math.NaN()
		for i := 1; i < len(closes); i++ {
			pct[i] = closes[i]/closes[i-1] - 1
			if math.IsInf(pct[i], 0) {
				pct[i] = math.NaN()
			}
		}
		changes[k] = pct
	}

	keep := make([]int, 0, len(dates))
	for i := range dates {
		for k := range symbols {
			if !math.IsNaN(changes[k][i]) {
				keep = append(keep, i)
				break
			}
		}
	}

	n := len(symbols)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c := pairwise(changes[i], changes[j], keep)
			matrix[i][j] = c
			matrix[j][i] = c
		}
	}
	return Correlation{Symbols: symbols, Matrix: matrix}
}

// pairwise is the Pearson correlation over rows where both are defined
func pairwise(a, b []float64, rows []int) float64 {
	xs := make([]float64, 0, len(rows))
	ys := make([]float64, 0, len(rows))
	for _, i := range rows {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// Restrict keeps the limit symbols with the highest summed |correlation|
// (NaN ignored), in descending order; ties keep symbol order.
func (c Correlation) Restrict(limit int) Correlation {
	if len(c.Symbols) <= limit {
		return c
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(c.Symbols))
	for i, row := range c.Matrix {
		sum := 0.0
		for _, v := range row {
			if !math.IsNaN(v) {
				sum += math.Abs(v)
			}
		}
		scores[i] = scored{idx: i, score: sum}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})
	scores = scores[:limit]

	out := Correlation{
		Symbols: make([]string, limit),
		Matrix:  make([][]float64, limit),
	}
	for i, si := range scores {
		out.Symbols[i] = c.Symbols[si.idx]
		out.Matrix[i] = make([]float64, limit)
		for j, sj := range scores {
			out.Matrix[i][j] = c.Matrix[si.idx][sj.idx]
		}
	}
	return out
}
