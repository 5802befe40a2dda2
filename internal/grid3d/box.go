package grid3d

import (
	"fmt"
	"math"
)

// CreateBox builds a regular, unrotated box grid with all cells active.
// origin is the top of pillar (0, 0) and increment the cell size along
// x, y and z; all increments must be positive.
func CreateBox(name string, dims Dimensions, origin, increment [3]float64) (*Grid, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	for axis, inc := range increment {
		if !(inc > 0) || math.IsInf(inc, 0) {
			return nil, fmt.Errorf("increment[%d] %g must be positive: %w", axis, inc, ErrInvalidArgument)
		}
	}

	g := &Grid{
		Name:   name,
		Dims:   dims,
		Coord:  make([]float64, dims.CoordLen()),
		ZCorn:  make([]float64, dims.ZCornLen()),
		ActNum: make([]bool, dims.ActNumLen()),
	}

	top := origin[2]
	base := origin[2] + float64(dims.NLay)*increment[2]
	for i := 0; i <= dims.NCol; i++ {
		x := origin[0] + float64(i)*increment[0]
		for j := 0; j <= dims.NRow; j++ {
			y := origin[1] + float64(j)*increment[1]
			p := (i*(dims.NRow+1) + j) * coordsPerPillar
			copy(g.Coord[p:p+coordsPerPillar], []float64{x, y, top, x, y, base})

			for k := 0; k <= dims.NLay; k++ {
				z := top + float64(k)*increment[2]
				for c := Corner(0); c < NumCorners; c++ {
					g.ZCorn[dims.ZCornIndex(i, j, k, c)] = z
				}
			}
		}
	}
	g.ActivateAll()
	return g, nil
}
