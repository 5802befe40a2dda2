package grid3d

import "fmt"

// Grid bundles a corner-point geometry with its dimensions.
// The slices are exported so callers can hand them to other tools; the
// methods below keep their lengths fixed.
type Grid struct {
	Name   string
	Dims   Dimensions
	Coord  []float64 // pillar lines, 6 values per pillar
	ZCorn  []float64 // corner depths, see Dimensions.ZCornIndex
	ActNum []bool    // active flags, see Dimensions.CellIndex
}

// NewGrid wraps existing buffers after checking their lengths.
func NewGrid(name string, dims Dimensions, coord, zcorn []float64, actnum []bool) (*Grid, error) {
	g := &Grid{Name: name, Dims: dims, Coord: coord, ZCorn: zcorn, ActNum: actnum}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks the dimensions and buffer lengths. It does not check
// z-consistency; use CheckZConsistent for that.
func (g *Grid) Validate() error {
	if err := validateBuffers(g.Dims, g.ZCorn, g.ActNum); err != nil {
		return err
	}
	if len(g.Coord) != g.Dims.CoordLen() {
		return fmt.Errorf("coord length %d, want %d for %s grid: %w",
			len(g.Coord), g.Dims.CoordLen(), g.Dims, ErrInvalidDimensions)
	}
	return nil
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	return &Grid{
		Name:   g.Name,
		Dims:   g.Dims,
		Coord:  append([]float64(nil), g.Coord...),
		ZCorn:  append([]float64(nil), g.ZCorn...),
		ActNum: append([]bool(nil), g.ActNum...),
	}
}

// MakeZConsistent repairs the grid in place. See MakeZConsistent.
func (g *Grid) MakeZConsistent(zsep float64, opts *Options) (RepairStats, error) {
	return MakeZConsistent(g.Dims, g.ZCorn, g.ActNum, zsep, opts)
}

// AdjustZLocal shifts pillar depths in place. See AdjustZLocal.
func (g *Grid) AdjustZLocal(req AdjustRequest, zsep float64, opts *Options) error {
	return AdjustZLocal(g.Dims, g.ZCorn, g.ActNum, req, zsep, opts)
}

// ZDepth returns the depth of corner c at boundary k on pillar (i, j).
func (g *Grid) ZDepth(i, j, k int, c Corner) float64 {
	return g.ZCorn[g.Dims.ZCornIndex(i, j, k, c)]
}

// PillarDepth returns the mean depth of the four corner slots at boundary
// k on pillar (i, j).
func (g *Grid) PillarDepth(i, j, k int) float64 {
	base := g.Dims.ZCornIndex(i, j, k, 0)
	var sum float64
	for c := 0; c < NumCorners; c++ {
		sum += g.ZCorn[base+c]
	}
	return sum / NumCorners
}

// PillarXY returns the top x and y of pillar (i, j).
func (g *Grid) PillarXY(i, j int) (x, y float64) {
	p := (i*(g.Dims.NRow+1) + j) * coordsPerPillar
	return g.Coord[p], g.Coord[p+1]
}

// IsActive reports whether cell (i, j, k) is active.
func (g *Grid) IsActive(i, j, k int) bool {
	return g.ActNum[g.Dims.CellIndex(i, j, k)]
}

// NActive returns the number of active cells.
func (g *Grid) NActive() int {
	n := 0
	for _, a := range g.ActNum {
		if a {
			n++
		}
	}
	return n
}

// ActivateAll marks every cell active.
func (g *Grid) ActivateAll() {
	for i := range g.ActNum {
		g.ActNum[i] = true
	}
}

// Translate moves the whole grid by (dx, dy, dz).
func (g *Grid) Translate(dx, dy, dz float64) {
	for p := 0; p < len(g.Coord); p += coordsPerPillar {
		g.Coord[p] += dx
		g.Coord[p+1] += dy
		g.Coord[p+2] += dz
		g.Coord[p+3] += dx
		g.Coord[p+4] += dy
		g.Coord[p+5] += dz
	}
	for i := range g.ZCorn {
		g.ZCorn[i] += dz
	}
}
