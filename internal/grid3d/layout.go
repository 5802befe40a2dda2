package grid3d

import (
	"fmt"
	"math"
)

// Corner selects one of the four depth slots stored at a pillar node.
// Each slot holds the depth seen by one of the cells around the pillar.
type Corner int

const (
	CornerSW Corner = iota // cell to the south-west of the pillar
	CornerSE               // cell to the south-east
	CornerNW               // cell to the north-west
	CornerNE               // cell to the north-east
)

// NumCorners is the number of depth slots per pillar node.
const NumCorners = 4

// coordsPerPillar is the number of values describing one pillar line
// (top x, y, z followed by base x, y, z).
const coordsPerPillar = 6

// DefaultZSep is the minimum vertical separation used when none is configured.
const DefaultZSep = 0.001

// Dimensions holds the number of cells along each grid axis.
type Dimensions struct {
	NCol int `json:"ncol"`
	NRow int `json:"nrow"`
	NLay int `json:"nlay"`
}

// Validate checks that all dimensions are positive.
func (d Dimensions) Validate() error {
	if d.NCol <= 0 || d.NRow <= 0 || d.NLay <= 0 {
		return fmt.Errorf("dimensions %dx%dx%d must all be positive: %w",
			d.NCol, d.NRow, d.NLay, ErrInvalidDimensions)
	}
	return nil
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%dx%d", d.NCol, d.NRow, d.NLay)
}

// NPillars returns the number of pillars, (ncol+1)*(nrow+1).
func (d Dimensions) NPillars() int { return (d.NCol + 1) * (d.NRow + 1) }

// NCells returns ncol*nrow*nlay.
func (d Dimensions) NCells() int { return d.NCol * d.NRow * d.NLay }

// CoordLen is the expected length of the pillar geometry buffer.
func (d Dimensions) CoordLen() int { return d.NPillars() * coordsPerPillar }

// ZCornLen is the expected length of the corner-depth buffer.
func (d Dimensions) ZCornLen() int { return d.NPillars() * d.pillarStride() }

// ActNumLen is the expected length of the active-cell buffer.
func (d Dimensions) ActNumLen() int { return d.NCells() }

// pillarStride is the number of depth values stored per pillar.
func (d Dimensions) pillarStride() int { return (d.NLay + 1) * NumCorners }

// pillarOffset returns the start of pillar (i, j) inside the depth buffer.
// Depths are laid out in C order with shape (ncol+1, nrow+1, nlay+1, 4), so
// one pillar occupies a contiguous block.
func (d Dimensions) pillarOffset(i, j int) int {
	return (i*(d.NRow+1) + j) * d.pillarStride()
}

// ZCornIndex returns the position of the depth of corner c at layer
// boundary k on pillar (i, j). It performs no bounds checking.
func (d Dimensions) ZCornIndex(i, j, k int, c Corner) int {
	return d.pillarOffset(i, j) + k*NumCorners + int(c)
}

// CellIndex returns the position of cell (i, j, k) in the active-cell
// buffer, C order with shape (ncol, nrow, nlay).
func (d Dimensions) CellIndex(i, j, k int) int {
	return (i*d.NRow+j)*d.NLay + k
}

// ContainsPillar reports whether (i, j) is a valid pillar position.
func (d Dimensions) ContainsPillar(i, j int) bool {
	return i >= 0 && i <= d.NCol && j >= 0 && j <= d.NRow
}

// cellNode addresses the depth slot a cell uses at one of its four pillars.
type cellNode struct {
	pi, pj int
	corner Corner
}

// cellNodes returns the four pillar slots that hold the depths of cell
// (i, j): the cell sits NE of pillar (i, j), NW of (i+1, j), SE of
// (i, j+1) and SW of (i+1, j+1).
func cellNodes(i, j int) [NumCorners]cellNode {
	return [NumCorners]cellNode{
		{i, j, CornerNE},
		{i + 1, j, CornerNW},
		{i, j + 1, CornerSE},
		{i + 1, j + 1, CornerSW},
	}
}

func validateZSep(zsep float64) error {
	if !(zsep > 0) || math.IsInf(zsep, 0) {
		return fmt.Errorf("zsep %g must be a positive finite value: %w", zsep, ErrInvalidDimensions)
	}
	return nil
}

// validateBuffers checks the dimensions, the lengths of the depth and
// active-cell buffers, and that every depth is finite. A NaN never compares
// below its neighbour, so the sweep could not repair it.
func validateBuffers(d Dimensions, zcorn []float64, actnum []bool) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if len(zcorn) != d.ZCornLen() {
		return fmt.Errorf("zcorn length %d, want %d for %s grid: %w",
			len(zcorn), d.ZCornLen(), d, ErrInvalidDimensions)
	}
	if len(actnum) != d.ActNumLen() {
		return fmt.Errorf("actnum length %d, want %d for %s grid: %w",
			len(actnum), d.ActNumLen(), d, ErrInvalidDimensions)
	}
	for idx, z := range zcorn {
		if math.IsNaN(z) || math.IsInf(z, 0) {
			return fmt.Errorf("zcorn[%d] = %g is not a finite depth: %w", idx, z, ErrInvalidArgument)
		}
	}
	return nil
}

func (c Corner) String() string {
	switch c {
	case CornerSW:
		return "SW"
	case CornerSE:
		return "SE"
	case CornerNW:
		return "NW"
	case CornerNE:
		return "NE"
	}
	return fmt.Sprintf("Corner(%d)", int(c))
}
