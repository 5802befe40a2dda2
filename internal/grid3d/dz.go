package grid3d

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Dz returns the thickness of every cell in CellIndex order: the mean of
// the base-minus-top depth over the cell's four pillar corners.
func (g *Grid) Dz() []float64 {
	d := g.Dims
	dz := make([]float64, d.NCells())
	for i := 0; i < d.NCol; i++ {
		for j := 0; j < d.NRow; j++ {
			nodes := cellNodes(i, j)
			for k := 0; k < d.NLay; k++ {
				var sum float64
				for _, n := range nodes {
					sum += g.ZCorn[d.ZCornIndex(n.pi, n.pj, k+1, n.corner)] -
						g.ZCorn[d.ZCornIndex(n.pi, n.pj, k, n.corner)]
				}
				dz[d.CellIndex(i, j, k)] = sum / NumCorners
			}
		}
	}
	return dz
}

// InactivateByDz marks active cells thinner than threshold as inactive and
// returns how many cells changed.
func (g *Grid) InactivateByDz(threshold float64) (int, error) {
	if !(threshold > 0) {
		return 0, fmt.Errorf("dz threshold %g must be positive: %w", threshold, ErrInvalidArgument)
	}
	changed := 0
	for idx, v := range g.Dz() {
		if g.ActNum[idx] && v < threshold {
			g.ActNum[idx] = false
			changed++
		}
	}
	return changed, nil
}

// DzSummary describes the thickness distribution of a set of cells.
type DzSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// SummarizeDz reduces per-cell thicknesses to summary statistics. When
// actnum is non-nil only active cells are included. An empty selection
// returns the zero summary.
func SummarizeDz(dz []float64, actnum []bool) DzSummary {
	vals := dz
	if actnum != nil {
		vals = make([]float64, 0, len(dz))
		for i, v := range dz {
			if i < len(actnum) && actnum[i] {
				vals = append(vals, v)
			}
		}
	}
	if len(vals) == 0 {
		return DzSummary{}
	}

	s := DzSummary{
		Count: len(vals),
		Min:   floats.Min(vals),
		Max:   floats.Max(vals),
	}
	if len(vals) == 1 {
		s.Mean = vals[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(vals, nil)
	return s
}
