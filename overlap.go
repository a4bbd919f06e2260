/*
 * overlap.go, part of gonac.
 *
 *
 * Copyright 2021 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 * gonac is developed at the Universidad de Santiago de Chile
 * (USACH)
 *
 */

package nac

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/rmera/gonac/gauss"
	v3 "github.com/rmera/gonac/v3"
	"gonum.org/v1/gonum/mat"
)

// OverlapOptions modulates how overlap matrices are built. The zero value
// is usable: it means as many workers as logical CPUs, no spherical
// transformation and the Obara-Saika evaluator.
type OverlapOptions struct {
	//Workers is the number of goroutines that build matrix rows
	//concurrently. Values below 1 mean one worker per logical CPU. The
	//result does not depend on the number of workers.
	Workers int
	//Transform, if not nil, takes the matrix from the Cartesian to the
	//spherical-harmonics basis, as T S Tᵀ. Its column count must match
	//the Cartesian dimension of the index.
	Transform *mat.Dense
	//Evaluator computes the primitive integrals. nil means Obara-Saika.
	Evaluator PrimitiveOverlaper
}

// DefaultOverlapOptions returns options with one worker per logical CPU,
// no spherical transformation and the Obara-Saika evaluator.
func DefaultOverlapOptions() *OverlapOptions {
	return &OverlapOptions{Workers: runtime.NumCPU(), Evaluator: gauss.NewOS()}
}

// BuildOverlap computes the overlap matrix between the atomic basis
// functions of a molecule at two geometries: element (i, j) is the overlap
// of basis function i centered on geomA with basis function j centered on
// geomB. Both geometries must be in Bohr and have one row per atom of the
// index. With equal geometries the result is the ordinary (symmetric)
// overlap matrix; with consecutive trajectory frames it is the mixed matrix
// the couplings are built from, which is not symmetric. Rows are computed
// concurrently; each worker writes only its own rows, and the result is
// deterministic.
func BuildOverlap(ix *BasisIndex, geomA, geomB *v3.Matrix, o *OverlapOptions) (*mat.Dense, error) {
	if ix == nil || geomA == nil || geomB == nil {
		return nil, CError{string(ErrNilData), []string{"BuildOverlap"}}
	}
	if o == nil {
		o = DefaultOverlapOptions()
	}
	N := ix.NAtoms()
	if geomA.NVecs() != N || geomB.NVecs() != N {
		return nil, CError{fmt.Sprintf("%s: geometries have %d and %d atoms, the index %d", ErrShape, geomA.NVecs(), geomB.NVecs(), N), []string{"BuildOverlap"}}
	}
	dim := ix.Dim()
	if T := o.Transform; T != nil {
		if _, tc := T.Dims(); tc != dim {
			return nil, CError{fmt.Sprintf("%s: transformation has %d columns for dimension %d", ErrShape, tc, dim), []string{"BuildOverlap"}}
		}
	}
	ev := o.Evaluator
	if ev == nil {
		ev = gauss.NewOS()
	}
	workers := o.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > dim {
		workers = dim
	}
	S := mat.NewDense(dim, dim, nil)
	rows := make(chan int)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for r := range rows {
				if err := overlapRow(S, ix, geomA, geomB, ev, r); err != nil && errs[w] == nil {
					errs[w] = err
				}
			}
		}(w)
	}
	for r := 0; r < dim; r++ {
		rows <- r
	}
	close(rows)
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, errDecorate(err, "BuildOverlap")
		}
	}
	if T := o.Transform; T != nil {
		var TS, St mat.Dense
		TS.Mul(T, S)
		St.Mul(&TS, T.T())
		return &St, nil
	}
	return S, nil
}

//overlapRow fills row r of S with the overlaps between basis function r
//centered on geomA and every basis function centered on geomB. Workers get
//disjoint rows, so the writes never overlap.
func overlapRow(S *mat.Dense, ix *BasisIndex, geomA, geomB *v3.Matrix, ev PrimitiveOverlaper, r int) error {
	atomA, cgfA, err := ix.Lookup(r)
	if err != nil {
		return errDecorate(err, "overlapRow")
	}
	la := ix.ams[r]
	ra := geomA.RawRowView(atomA)
	row := S.RawRowView(r)
	for atomB := 0; atomB < ix.NAtoms(); atomB++ {
		rb := geomB.RawRowView(atomB)
		for c := ix.starts[atomB]; c < ix.starts[atomB+1]; c++ {
			cgfB := ix.cgfs[c]
			lb := ix.ams[c]
			var sum float64
			for _, pa := range cgfA.Prims {
				for _, pb := range cgfB.Prims {
					sum += pa.Coeff * pb.Coeff * ev.Overlap(ra, rb, la, lb, pa.Exp, pb.Exp)
				}
			}
			if math.IsNaN(sum) || math.IsInf(sum, 0) {
				return CError{fmt.Sprintf("%s: element (%d,%d)", ErrNotFinite, r, c), []string{"overlapRow"}}
			}
			row[c] = sum
		}
	}
	return nil
}
