package grid3d

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollapseInactive_SingleColumn(t *testing.T) {
	g := boxGrid(t, Dimensions{NCol: 1, NRow: 1, NLay: 4})
	copy(g.ActNum, []bool{false, true, false, true})

	n, err := g.CollapseInactive(0.001, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	want := []float64{100.999, 101, 102, 102.001, 104}
	for _, nd := range cellNodes(0, 0) {
		for k, z := range want {
			assert.InDelta(t, z, g.ZDepth(nd.pi, nd.pj, k, nd.corner), 1e-9, "pillar (%d,%d) boundary %d", nd.pi, nd.pj, k)
		}
	}

	dz := g.Dz()
	assert.InDelta(t, 0.001, dz[0], 1e-9)
	assert.InDelta(t, 1, dz[1], 1e-9)
	assert.InDelta(t, 0.001, dz[2], 1e-9)
	assert.InDelta(t, 1.999, dz[3], 1e-9)
	assert.NoError(t, CheckZConsistent(g.Dims, g.ZCorn, 0.001))
}

func TestCollapseInactive_SkipsFullyInactiveColumns(t *testing.T) {
	g := boxGrid(t, Dimensions{NCol: 2, NRow: 1, NLay: 2})
	d := g.Dims
	g.ActNum[d.CellIndex(0, 0, 1)] = false
	g.ActNum[d.CellIndex(1, 0, 0)] = false
	g.ActNum[d.CellIndex(1, 0, 1)] = false

	n, err := g.CollapseInactive(0.001, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Column (0,0): the inactive bottom cell shrinks to zsep.
	assert.InDelta(t, 101.001, g.ZDepth(0, 0, 2, CornerNE), 1e-9)
	// Column (1,0) has no active cell, so its slots keep the box depths.
	for _, nd := range cellNodes(1, 0) {
		for k := 0; k <= d.NLay; k++ {
			assert.Equal(t, 100+float64(k), g.ZDepth(nd.pi, nd.pj, k, nd.corner))
		}
	}
}

func TestCollapseInactive_KeepsActiveThicknessAndConsistency(t *testing.T) {
	const zsep = 0.01
	rng := rand.New(rand.NewPCG(7, 11))
	for seed := uint64(1); seed <= 5; seed++ {
		g := scrambledGrid(t, Dimensions{NCol: 3, NRow: 3, NLay: 5}, seed)
		for idx := range g.ActNum {
			g.ActNum[idx] = rng.IntN(3) > 0
		}

		repaired := g.Clone()
		_, err := repaired.MakeZConsistent(zsep, nil)
		require.NoError(t, err)
		before := repaired.Dz()

		_, err = g.CollapseInactive(zsep, nil)
		require.NoError(t, err)
		require.NoError(t, CheckZConsistent(g.Dims, g.ZCorn, zsep))

		after := g.Dz()
		for idx, active := range g.ActNum {
			if active {
				assert.GreaterOrEqual(t, after[idx], before[idx]-1e-9, "seed %d cell %d", seed, idx)
			}
		}
	}
}

func TestCollapseInactive_RejectsInvalidZSep(t *testing.T) {
	g := boxGrid(t, Dimensions{NCol: 1, NRow: 1, NLay: 2})
	g.ActNum[0] = false
	before := append([]float64(nil), g.ZCorn...)

	_, err := g.CollapseInactive(0, nil)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
	assert.Equal(t, before, g.ZCorn)
}

func TestCollapseInactive_Logs(t *testing.T) {
	var diag bytes.Buffer
	g := boxGrid(t, Dimensions{NCol: 1, NRow: 1, NLay: 2})
	g.ActNum[1] = false

	_, err := g.CollapseInactive(0.001, (&Options{}).WithLogs(NewLogs(nil, &diag, nil)))
	require.NoError(t, err)
	assert.Contains(t, diag.String(), "collapse_inactive 1x1x2 collapsed=1")
}
