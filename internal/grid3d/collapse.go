package grid3d

// CollapseInactive squeezes the inactive cells of every cell column that
// still holds at least one active cell down to zsep thickness, handing the
// freed depth range to the active cells around them. Inactive cells above
// the first active cell are stacked just above it, so the column's top
// boundary moves down onto the active interval. Columns without active
// cells are left alone.
//
// The grid is made z-consistent first and again afterwards to absorb
// rounding, so the result satisfies the zsep gap everywhere. It returns the
// number of cells collapsed.
func (g *Grid) CollapseInactive(zsep float64, opts *Options) (int, error) {
	if _, err := g.MakeZConsistent(zsep, opts); err != nil {
		return 0, err
	}

	d := g.Dims
	column := make([]float64, d.NLay+1)
	collapsed := 0
	for i := 0; i < d.NCol; i++ {
		for j := 0; j < d.NRow; j++ {
			first := -1
			for k := 0; k < d.NLay; k++ {
				if g.ActNum[d.CellIndex(i, j, k)] {
					first = k
					break
				}
			}
			if first < 0 {
				continue
			}
			for k := 0; k < d.NLay; k++ {
				if !g.ActNum[d.CellIndex(i, j, k)] {
					collapsed++
				}
			}

			for _, n := range cellNodes(i, j) {
				for k := range column {
					column[k] = g.ZCorn[d.ZCornIndex(n.pi, n.pj, k, n.corner)]
				}
				collapseColumn(column, g.ActNum[d.CellIndex(i, j, 0):d.CellIndex(i, j, 0)+d.NLay], first, zsep)
				for k := range column {
					g.ZCorn[d.ZCornIndex(n.pi, n.pj, k, n.corner)] = column[k]
				}
			}
		}
	}

	if _, err := g.MakeZConsistent(zsep, opts); err != nil {
		return collapsed, err
	}
	opts.logs().Diagf("collapse_inactive %s collapsed=%d", d, collapsed)
	return collapsed, nil
}

// collapseColumn rewrites the boundaries of one corner of a cell column.
// active holds the column's cells top to bottom and first is the index of
// the first active one.
func collapseColumn(z []float64, active []bool, first int, zsep float64) {
	for k := first - 1; k >= 0; k-- {
		z[k] = z[k+1] - zsep
	}
	for k := first + 1; k < len(active); k++ {
		if !active[k] {
			z[k+1] = z[k] + zsep
		}
	}
}
