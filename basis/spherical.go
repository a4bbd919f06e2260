package basis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

//Cartesian to spherical-harmonics transformation. The transformation matrix
//for a molecule is block diagonal, one block per shell, with the spherical
//functions ordered as CP2K does: m = -l ... +l, so the p shell comes out as
//(py, pz, px). The d block holds the real solid harmonics expressed over
//normalized Cartesian components.

var sqrt32 = math.Sqrt(3) / 2

//sphericalBlocks[l] is the (2l+1) x ncart(l) block for one shell of
//angular momentum l. Cartesian columns are in shellLabels order.
var sphericalBlocks = [][][]float64{
	{
		{1},
	},
	{
		{0, 1, 0},
		{0, 0, 1},
		{1, 0, 0},
	},
	{
		{0, 1, 0, 0, 0, 0},
		{0, 0, 0, 0, 1, 0},
		{-0.5, 0, 0, -0.5, 0, 1},
		{0, 0, 1, 0, 0, 0},
		{sqrt32, 0, 0, -sqrt32, 0, 0},
	},
}

// TransformationMatrix builds the Cartesian to spherical-harmonics
// transformation for a molecule, given as the ordered list of its element
// symbols. The returned matrix has one row per spherical basis function and
// one column per Cartesian one. An overlap matrix S in the Cartesian basis
// becomes T S Tᵀ in the spherical basis. Shells above d are not supported
// and produce an error.
func TransformationMatrix(symbols []string, s Set) (*mat.Dense, error) {
	rows, cols := 0, 0
	for _, sym := range symbols {
		cgfs, ok := s[sym]
		if !ok {
			return nil, Error{fmt.Sprintf("%s: %s", UnknownElement, sym), "", []string{"TransformationMatrix"}, true}
		}
		ls, err := shells(cgfs)
		if err != nil {
			return nil, errDecorate(err, "TransformationMatrix "+sym)
		}
		for _, l := range ls {
			rows += 2*l + 1
			cols += len(shellLabels[l])
		}
	}
	T := mat.NewDense(rows, cols, nil)
	row, col := 0, 0
	for _, sym := range symbols {
		ls, _ := shells(s[sym]) //already validated
		for _, l := range ls {
			block := sphericalBlocks[l]
			for bi, brow := range block {
				for bj, v := range brow {
					if v != 0 {
						T.Set(row+bi, col+bj, v)
					}
				}
			}
			row += 2*l + 1
			col += len(shellLabels[l])
		}
	}
	return T, nil
}

//shells groups the CGFs of one atom into complete Cartesian shells,
//returning the angular momentum of each shell in order. The CGFs must
//follow the component order of shellLabels, as ReadCP2K produces them.
func shells(cgfs []CGF) ([]int, error) {
	var ls []int
	i := 0
	for i < len(cgfs) {
		l, err := cgfs[i].L()
		if err != nil {
			return nil, errDecorate(err, "shells")
		}
		if l >= len(sphericalBlocks) {
			return nil, Error{fmt.Sprintf("%s: %s", ShellTooHigh, cgfs[i].Label), "", []string{"shells"}, true}
		}
		labels := shellLabels[l]
		if i+len(labels) > len(cgfs) {
			return nil, Error{fmt.Sprintf("%s: %s", BrokenShell, cgfs[i].Label), "", []string{"shells"}, true}
		}
		for k, lab := range labels {
			if cgfs[i+k].Label != lab {
				return nil, Error{fmt.Sprintf("%s: expected %s, got %s", BrokenShell, lab, cgfs[i+k].Label), "", []string{"shells"}, true}
			}
		}
		ls = append(ls, l)
		i += len(labels)
	}
	return ls, nil
}
