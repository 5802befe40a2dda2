package grid3d

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/cornerpoint/internal/testutil"
)

func TestMakeZConsistent_WorkedExample(t *testing.T) {
	g := boxGrid(t, Dimensions{NCol: 1, NRow: 1, NLay: 2})
	setPillar(g, 0, 0, 100.0, 100.0, 99.9)

	stats, err := g.MakeZConsistent(0.001, nil)
	require.NoError(t, err)

	for c := Corner(0); c < NumCorners; c++ {
		assert.Equal(t, 100.0, g.ZDepth(0, 0, 0, c), "top must stay fixed")
		assert.InDelta(t, 100.001, g.ZDepth(0, 0, 1, c), 1e-9)
		assert.InDelta(t, 100.002, g.ZDepth(0, 0, 2, c), 1e-9)
	}
	assert.Equal(t, 8, stats.Adjusted)
	assert.Equal(t, g.Dims.NPillars()*NumCorners*g.Dims.NLay, stats.Nodes)
	assert.InDelta(t, 0.102, stats.MaxShift, 1e-9)
}

func TestMakeZConsistent_MonotonicSeparation(t *testing.T) {
	const zsep = 0.01
	for seed := uint64(1); seed <= 5; seed++ {
		g := scrambledGrid(t, Dimensions{NCol: 4, NRow: 3, NLay: 6}, seed)
		require.Error(t, CheckZConsistent(g.Dims, g.ZCorn, zsep), "fixture should start inconsistent")

		_, err := g.MakeZConsistent(zsep, nil)
		require.NoError(t, err)

		for idx := 0; idx < len(g.ZCorn); idx += g.Dims.pillarStride() {
			block := g.ZCorn[idx : idx+g.Dims.pillarStride()]
			for c := 0; c < NumCorners; c++ {
				column := make([]float64, g.Dims.NLay+1)
				for k := range column {
					column[k] = block[k*NumCorners+c]
				}
				testutil.AssertColumnSeparated(t, column, zsep)
			}
		}
		assert.NoError(t, CheckZConsistent(g.Dims, g.ZCorn, zsep))
	}
}

func TestMakeZConsistent_Idempotent(t *testing.T) {
	g := scrambledGrid(t, Dimensions{NCol: 3, NRow: 3, NLay: 5}, 42)

	_, err := g.MakeZConsistent(0.001, nil)
	require.NoError(t, err)
	once := append([]float64(nil), g.ZCorn...)

	stats, err := g.MakeZConsistent(0.001, nil)
	require.NoError(t, err)

	assert.Zero(t, stats.Adjusted)
	if diff := cmp.Diff(once, g.ZCorn); diff != "" {
		t.Errorf("second repair changed depths (-once +twice):\n%s", diff)
	}
}

func TestMakeZConsistent_TopAnchored(t *testing.T) {
	g := scrambledGrid(t, Dimensions{NCol: 2, NRow: 4, NLay: 3}, 7)
	before := g.Clone()

	_, err := g.MakeZConsistent(0.5, nil)
	require.NoError(t, err)

	for i := 0; i <= g.Dims.NCol; i++ {
		for j := 0; j <= g.Dims.NRow; j++ {
			for c := Corner(0); c < NumCorners; c++ {
				assert.Equal(t, before.ZDepth(i, j, 0, c), g.ZDepth(i, j, 0, c),
					"top of pillar (%d,%d) corner %s moved", i, j, c)
			}
		}
	}
}

func TestMakeZConsistent_InactiveCellsRepaired(t *testing.T) {
	g := boxGrid(t, Dimensions{NCol: 1, NRow: 1, NLay: 2})
	for i := range g.ActNum {
		g.ActNum[i] = false
	}
	setPillar(g, 1, 1, 100, 99, 98)

	_, err := g.MakeZConsistent(0.001, nil)
	require.NoError(t, err)
	assert.NoError(t, CheckZConsistent(g.Dims, g.ZCorn, 0.001))
}

func TestMakeZConsistent_WorkersMatchSerial(t *testing.T) {
	dims := Dimensions{NCol: 9, NRow: 7, NLay: 4}
	for _, workers := range []int{2, 3, 8, 1000} {
		serial := scrambledGrid(t, dims, 99)
		parallel := serial.Clone()

		wantStats, err := serial.MakeZConsistent(0.002, nil)
		require.NoError(t, err)
		gotStats, err := parallel.MakeZConsistent(0.002, (&Options{}).WithWorkers(workers))
		require.NoError(t, err)

		assert.Equal(t, wantStats, gotStats, "workers=%d", workers)
		if diff := cmp.Diff(serial.ZCorn, parallel.ZCorn); diff != "" {
			t.Errorf("workers=%d result differs from serial sweep (-serial +parallel):\n%s", workers, diff)
		}
	}
}

func TestMakeZConsistent_InvalidInputLeavesBufferUnchanged(t *testing.T) {
	valid := Dimensions{NCol: 1, NRow: 1, NLay: 2}

	tests := []struct {
		name    string
		dims    Dimensions
		zsep    float64
		actnum  func(g *Grid) []bool
		depths  []float64
		wantErr error
	}{
		{"zero ncol", Dimensions{NCol: 0, NRow: 1, NLay: 2}, 0.001, nil, nil, ErrInvalidDimensions},
		{"negative nlay", Dimensions{NCol: 1, NRow: 1, NLay: -1}, 0.001, nil, nil, ErrInvalidDimensions},
		{"zero zsep", valid, 0, nil, nil, ErrInvalidDimensions},
		{"negative zsep", valid, -0.1, nil, nil, ErrInvalidDimensions},
		{"nan zsep", valid, math.NaN(), nil, nil, ErrInvalidDimensions},
		{"infinite zsep", valid, math.Inf(1), nil, nil, ErrInvalidDimensions},
		{"wrong dims for buffer", Dimensions{NCol: 2, NRow: 1, NLay: 2}, 0.001, nil, nil, ErrInvalidDimensions},
		{"short actnum", valid, 0.001, func(g *Grid) []bool { return g.ActNum[:1] }, nil, ErrInvalidDimensions},
		{"nan depth", valid, 0.001, nil, []float64{100, math.NaN(), 99}, ErrInvalidArgument},
		{"infinite depth", valid, 0.001, nil, []float64{100, 99, math.Inf(1)}, ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := boxGrid(t, valid)
			setPillar(g, 1, 1, 100, 100, 99.9)
			if tt.depths != nil {
				setPillar(g, 0, 0, tt.depths...)
			}
			before := append([]float64(nil), g.ZCorn...)
			actnum := g.ActNum
			if tt.actnum != nil {
				actnum = tt.actnum(g)
			}

			_, err := MakeZConsistent(tt.dims, g.ZCorn, actnum, tt.zsep, nil)

			assert.ErrorIs(t, err, tt.wantErr)
			// NaN != NaN, so NaNs must compare equal here.
			if diff := cmp.Diff(before, g.ZCorn, cmpopts.EquateNaNs()); diff != "" {
				t.Errorf("zcorn changed on rejected input (-before +after):\n%s", diff)
			}
		})
	}
}

func TestMakeZConsistent_CancelledContext(t *testing.T) {
	g := scrambledGrid(t, Dimensions{NCol: 2, NRow: 2, NLay: 2}, 3)
	before := append([]float64(nil), g.ZCorn...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.MakeZConsistent(0.001, (&Options{}).WithContext(ctx).WithWorkers(2))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, g.ZCorn)
}

func TestMakeZConsistent_Logs(t *testing.T) {
	var diag, trace bytes.Buffer
	g := boxGrid(t, Dimensions{NCol: 1, NRow: 1, NLay: 2})
	setPillar(g, 1, 0, 100, 99, 101)

	opts := (&Options{}).WithLogs(NewLogs(nil, &diag, &trace))
	_, err := g.MakeZConsistent(0.001, opts)
	require.NoError(t, err)

	if !strings.Contains(diag.String(), "[grid3d]") || !strings.Contains(diag.String(), "make_zconsistent 1x1x2") {
		t.Errorf("unexpected diag output %q", diag.String())
	}
	if !strings.Contains(trace.String(), "pillar (1,0): 4 nodes pushed down") {
		t.Errorf("unexpected trace output %q", trace.String())
	}
}

func TestCheckZConsistent(t *testing.T) {
	g := boxGrid(t, Dimensions{NCol: 2, NRow: 2, NLay: 2})
	require.NoError(t, CheckZConsistent(g.Dims, g.ZCorn, 0.001))

	g.ZCorn[g.Dims.ZCornIndex(2, 1, 2, CornerSE)] = math.NaN()
	err := CheckZConsistent(g.Dims, g.ZCorn, 0.001)
	require.ErrorIs(t, err, ErrZInconsistent)
	assert.Contains(t, err.Error(), "pillar (2,1) corner SE boundary 2")

	assert.ErrorIs(t, CheckZConsistent(g.Dims, g.ZCorn[:3], 0.001), ErrInvalidDimensions)
	assert.ErrorIs(t, CheckZConsistent(g.Dims, g.ZCorn, 0), ErrInvalidDimensions)
}
