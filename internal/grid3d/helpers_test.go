package grid3d

import (
	"math/rand/v2"
	"testing"
)

// boxGrid returns a 100 m deep box with 1 m cells.
func boxGrid(t *testing.T, dims Dimensions) *Grid {
	t.Helper()
	g, err := CreateBox("box", dims, [3]float64{0, 0, 100}, [3]float64{50, 50, 1})
	if err != nil {
		t.Fatalf("CreateBox(%s): %v", dims, err)
	}
	return g
}

// scrambledGrid returns a box whose depths have been jittered so that many
// boundaries are tied or inverted.
func scrambledGrid(t *testing.T, dims Dimensions, seed uint64) *Grid {
	t.Helper()
	g := boxGrid(t, dims)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range g.ZCorn {
		switch rng.IntN(4) {
		case 0:
			g.ZCorn[i] -= 1 + rng.Float64()*2
		case 1:
			g.ZCorn[i]-- // ties with the unjittered boundary above
		default:
			g.ZCorn[i] += rng.NormFloat64() * 0.3
		}
	}
	return g
}

func setPillar(g *Grid, i, j int, depths ...float64) {
	for k, z := range depths {
		for c := Corner(0); c < NumCorners; c++ {
			g.ZCorn[g.Dims.ZCornIndex(i, j, k, c)] = z
		}
	}
}

func intPtr(v int) *int { return &v }
