package grid3d

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// pillarBatch is how many pillars a sweep processes between context checks.
const pillarBatch = 64

// RepairStats summarises one consistency sweep.
type RepairStats struct {
	Nodes    int     // corner nodes inspected below the top boundary
	Adjusted int     // nodes pushed down to restore the gap
	MaxShift float64 // largest downward move applied
}

func (s *RepairStats) merge(o RepairStats) {
	s.Nodes += o.Nodes
	s.Adjusted += o.Adjusted
	if o.MaxShift > s.MaxShift {
		s.MaxShift = o.MaxShift
	}
}

// MakeZConsistent enforces a minimum vertical gap of zsep between every pair
// of adjacent layer boundaries at every pillar corner, mutating zcorn in
// place.
//
// Each pillar corner is swept once from the top boundary downward: whenever
// z[k+1] < z[k]+zsep, z[k+1] is set to z[k]+zsep. The top boundary is never
// modified and corrections only propagate down. Inactive cells are repaired
// like active ones; actnum is checked for length only.
//
// All arguments are validated before zcorn is touched. With
// opts.Workers > 1 the pillars are split across goroutines; pillars never
// share depth values, so the result matches the serial sweep.
func MakeZConsistent(dims Dimensions, zcorn []float64, actnum []bool, zsep float64, opts *Options) (RepairStats, error) {
	if err := validateBuffers(dims, zcorn, actnum); err != nil {
		return RepairStats{}, err
	}
	if err := validateZSep(zsep); err != nil {
		return RepairStats{}, err
	}
	ctx := opts.context()
	if err := ctx.Err(); err != nil {
		return RepairStats{}, err
	}

	logs := opts.logs()
	stats, err := sweepPillars(ctx, dims, zcorn, zsep, opts.workers(), logs)
	if err != nil {
		logs.Opsf("make_zconsistent %s interrupted after %d adjusted nodes: %v", dims, stats.Adjusted, err)
		return stats, err
	}
	logs.Diagf("make_zconsistent %s zsep=%g adjusted=%d/%d max_shift=%g",
		dims, zsep, stats.Adjusted, stats.Nodes, stats.MaxShift)
	return stats, nil
}

func sweepPillars(ctx context.Context, dims Dimensions, zcorn []float64, zsep float64, workers int, logs *Logs) (RepairStats, error) {
	n := dims.NPillars()
	if workers > n {
		workers = n
	}
	if workers < 2 {
		return sweepRange(ctx, dims, zcorn, zsep, 0, n, logs)
	}

	parts := make([]RepairStats, workers)
	chunk := (n + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, n)
		if lo >= hi {
			break
		}
		g.Go(func() error {
			st, err := sweepRange(gctx, dims, zcorn, zsep, lo, hi, logs)
			parts[w] = st
			return err
		})
	}
	err := g.Wait()

	var total RepairStats
	for _, p := range parts {
		total.merge(p)
	}
	return total, err
}

// sweepRange repairs pillars [lo, hi) in flat pillar order.
func sweepRange(ctx context.Context, dims Dimensions, zcorn []float64, zsep float64, lo, hi int, logs *Logs) (RepairStats, error) {
	var st RepairStats
	stride := dims.pillarStride()
	for p := lo; p < hi; p++ {
		if (p-lo)%pillarBatch == 0 {
			if err := ctx.Err(); err != nil {
				return st, err
			}
		}
		before := st.Adjusted
		repairPillar(zcorn[p*stride:(p+1)*stride], dims.NLay, zsep, &st)
		if logs.tracing() && st.Adjusted > before {
			logs.Tracef("pillar (%d,%d): %d nodes pushed down",
				p/(dims.NRow+1), p%(dims.NRow+1), st.Adjusted-before)
		}
	}
	return st, nil
}

// repairPillar sweeps the four corners of one pillar block top-down.
func repairPillar(block []float64, nlay int, zsep float64, st *RepairStats) {
	for c := 0; c < NumCorners; c++ {
		for k := 0; k < nlay; k++ {
			upper := block[k*NumCorners+c]
			lower := &block[(k+1)*NumCorners+c]
			st.Nodes++
			if floor := upper + zsep; *lower < floor {
				shift := floor - *lower
				*lower = floor
				st.Adjusted++
				if shift > st.MaxShift {
					st.MaxShift = shift
				}
			}
		}
	}
}

// CheckZConsistent reports the first pillar corner whose boundaries are
// closer than zsep (or not ordered at all). It never mutates zcorn.
func CheckZConsistent(dims Dimensions, zcorn []float64, zsep float64) error {
	if err := dims.Validate(); err != nil {
		return err
	}
	if len(zcorn) != dims.ZCornLen() {
		return fmt.Errorf("zcorn length %d, want %d for %s grid: %w",
			len(zcorn), dims.ZCornLen(), dims, ErrInvalidDimensions)
	}
	if err := validateZSep(zsep); err != nil {
		return err
	}
	for i := 0; i <= dims.NCol; i++ {
		for j := 0; j <= dims.NRow; j++ {
			for c := Corner(0); c < NumCorners; c++ {
				for k := 0; k < dims.NLay; k++ {
					upper := zcorn[dims.ZCornIndex(i, j, k, c)]
					lower := zcorn[dims.ZCornIndex(i, j, k+1, c)]
					if !(lower >= upper+zsep) {
						return fmt.Errorf("pillar (%d,%d) corner %s boundary %d: depth %g is less than %g+%g: %w",
							i, j, c, k+1, lower, upper, zsep, ErrZInconsistent)
					}
				}
			}
		}
	}
	return nil
}
