package grid3d

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// AdjustMode selects which layer boundaries an adjustment moves.
type AdjustMode int

const (
	// AllLayers moves every boundary k = 0..nlay of the selected pillars.
	AllLayers AdjustMode = iota
	// SingleLayer moves only the boundary named by AdjustRequest.Layer.
	SingleLayer
)

func (m AdjustMode) String() string {
	switch m {
	case AllLayers:
		return "all"
	case SingleLayer:
		return "single"
	}
	return fmt.Sprintf("AdjustMode(%d)", int(m))
}

// ParseAdjustMode accepts "all" or "single" (case-insensitive).
func ParseAdjustMode(s string) (AdjustMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "all_layers":
		return AllLayers, nil
	case "single", "single_layer":
		return SingleLayer, nil
	}
	return 0, fmt.Errorf("unknown adjust mode %q: %w", s, ErrInvalidArgument)
}

// Pillar identifies a pillar by its lattice position, 0 <= I <= ncol and
// 0 <= J <= nrow.
type Pillar struct {
	I, J int
}

// AdjustRequest describes a local Z shift.
type AdjustRequest struct {
	// Pillar restricts the shift to one pillar. Nil shifts every pillar.
	Pillar *Pillar
	// Layer is the boundary moved in SingleLayer mode, 0 <= Layer <= nlay.
	// It is ignored in AllLayers mode.
	Layer *int
	// Offset is added to the selected depths. Positive moves down.
	Offset float64
	Mode   AdjustMode
}

func (r AdjustRequest) validate(d Dimensions) error {
	if math.IsNaN(r.Offset) || math.IsInf(r.Offset, 0) {
		return fmt.Errorf("offset %g must be finite: %w", r.Offset, ErrInvalidArgument)
	}
	if r.Pillar != nil && !d.ContainsPillar(r.Pillar.I, r.Pillar.J) {
		return fmt.Errorf("pillar (%d,%d) outside [0,%d]x[0,%d]: %w",
			r.Pillar.I, r.Pillar.J, d.NCol, d.NRow, ErrOutOfRange)
	}
	switch r.Mode {
	case AllLayers:
	case SingleLayer:
		if r.Layer == nil {
			return fmt.Errorf("single layer adjustment without a layer: %w", ErrOutOfRange)
		}
		if *r.Layer < 0 || *r.Layer > d.NLay {
			return fmt.Errorf("layer %d outside [0,%d]: %w", *r.Layer, d.NLay, ErrOutOfRange)
		}
	default:
		return fmt.Errorf("adjust mode %d: %w", int(r.Mode), ErrInvalidArgument)
	}
	return nil
}

// layerRange returns the boundaries [from, to] the request touches.
func (r AdjustRequest) layerRange(d Dimensions) (int, int) {
	if r.Mode == SingleLayer {
		return *r.Layer, *r.Layer
	}
	return 0, d.NLay
}

// pillarRange returns the inclusive i and j bounds of the selected pillars.
func (r AdjustRequest) pillarRange(d Dimensions) (i0, i1, j0, j1 int) {
	if r.Pillar != nil {
		return r.Pillar.I, r.Pillar.I, r.Pillar.J, r.Pillar.J
	}
	return 0, d.NCol, 0, d.NRow
}

// AdjustZLocal adds req.Offset to the depths of the selected pillar corners
// and leaves the grid z-consistent.
//
// The grid is repaired before the shift, so the offset does not compound an
// existing inversion, and again afterwards, since raising a boundary can
// cross the one above and lowering it can cross the one below. The repair
// takes precedence: a shift that would break the zsep gap is not applied
// verbatim. Validation happens before any mutation.
//
// opts.Context is checked up to the point the offset is applied. After that
// the corrective repair always runs to completion, so a cancelled call
// leaves the grid either unshifted or shifted and consistent.
func AdjustZLocal(dims Dimensions, zcorn []float64, actnum []bool, req AdjustRequest, zsep float64, opts *Options) error {
	if err := validateBuffers(dims, zcorn, actnum); err != nil {
		return err
	}
	if err := validateZSep(zsep); err != nil {
		return err
	}
	if err := req.validate(dims); err != nil {
		return err
	}

	logs := opts.logs()
	pre, err := MakeZConsistent(dims, zcorn, actnum, zsep, opts)
	if err != nil {
		return fmt.Errorf("pre-adjust repair: %w", err)
	}
	if pre.Adjusted > 0 {
		logs.Opsf("adjust_z_local: grid was inconsistent before adjustment, %d nodes repaired", pre.Adjusted)
	}

	// Cancellation is honoured up to here. Once the offset lands, the
	// post-repair must finish or the grid would be left inconsistent.
	ctx := opts.context()
	if err := ctx.Err(); err != nil {
		logs.Opsf("adjust_z_local: cancelled before applying offset: %v", err)
		return err
	}
	moved := applyOffset(dims, zcorn, req)

	postOpts := &Options{Workers: opts.workers(), Logs: logs, Context: context.WithoutCancel(ctx)}
	post, err := MakeZConsistent(dims, zcorn, actnum, zsep, postOpts)
	if err != nil {
		return fmt.Errorf("post-adjust repair: %w", err)
	}
	logs.Diagf("adjust_z_local mode=%s offset=%g moved=%d corrected=%d", req.Mode, req.Offset, moved, post.Adjusted)
	return nil
}

// applyOffset shifts every corner slot of the selected pillars at the
// selected boundaries and returns the number of values moved.
func applyOffset(dims Dimensions, zcorn []float64, req AdjustRequest) int {
	k0, k1 := req.layerRange(dims)
	i0, i1, j0, j1 := req.pillarRange(dims)
	moved := 0
	for i := i0; i <= i1; i++ {
		for j := j0; j <= j1; j++ {
			for k := k0; k <= k1; k++ {
				for c := Corner(0); c < NumCorners; c++ {
					zcorn[dims.ZCornIndex(i, j, k, c)] += req.Offset
					moved++
				}
			}
		}
	}
	return moved
}
