/*
 * index.go, part of gonac.
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
	"sort"

	"github.com/rmera/gonac/basis"
)

// BasisIndex maps the flat row/column indices of an overlap matrix to the
// atoms and contracted Gaussians they belong to. It is built once per
// molecule, from the atom order and the basis set, and is then shared,
// read-only, by all the workers of an overlap calculation.
type BasisIndex struct {
	//starts[i] is the flat index of the first basis function of atom i.
	//The extra final entry holds the total dimension.
	starts []int
	cgfs   []*basis.CGF //one per flat index, pointing into the basis set.
	ams    [][3]int     //the Cartesian angular momentum of each flat index.
}

// NewBasisIndex builds the index for the given molecule and basis set. Every
// atom must have basis functions in the set, with recognizable
// angular-momentum labels; anything else is reported here, at construction,
// rather than in the middle of an overlap calculation.
func NewBasisIndex(mol Atomer, bs basis.Set) (*BasisIndex, error) {
	if mol == nil || bs == nil {
		return nil, CError{string(ErrNilData), []string{"NewBasisIndex"}}
	}
	N := mol.Len()
	ix := &BasisIndex{starts: make([]int, N+1)}
	for i := 0; i < N; i++ {
		sym := mol.Atom(i).Symbol
		cgfs := bs[sym]
		if len(cgfs) == 0 {
			return nil, CError{fmt.Sprintf("%s: %s (atom %d)", ErrMissingSymbol, sym, i), []string{"NewBasisIndex"}}
		}
		for j := range cgfs {
			c := &cgfs[j]
			am, err := c.AngMom()
			if err != nil {
				return nil, errDecorate(err, "NewBasisIndex")
			}
			ix.cgfs = append(ix.cgfs, c)
			ix.ams = append(ix.ams, am)
		}
		ix.starts[i+1] = ix.starts[i] + len(cgfs)
	}
	return ix, nil
}

// Dim returns the total number of Cartesian basis functions, i.e. the
// dimension of the overlap matrices built from this index.
func (ix *BasisIndex) Dim() int {
	return ix.starts[len(ix.starts)-1]
}

// NAtoms returns the number of atoms covered by the index.
func (ix *BasisIndex) NAtoms() int {
	return len(ix.starts) - 1
}

// Lookup returns the atom index and the contracted Gaussian behind the flat
// basis-function index i. The atom is recovered by binary search on the
// per-atom offsets, so atoms with different numbers of basis functions are
// handled uniformly. The returned CGF is shared, not copied, and must not
// be modified.
func (ix *BasisIndex) Lookup(i int) (int, *basis.CGF, error) {
	if i < 0 || i >= ix.Dim() {
		return 0, nil, CError{fmt.Sprintf("%s: %d (dimension %d)", ErrIndexOutOfRange, i, ix.Dim()), []string{"BasisIndex.Lookup"}}
	}
	atom := sort.Search(ix.NAtoms(), func(a int) bool { return ix.starts[a+1] > i })
	return atom, ix.cgfs[i], nil
}

// AtomBlock returns the half-open range [start, end) of flat basis-function
// indices that belong to atom i.
func (ix *BasisIndex) AtomBlock(i int) (int, int, error) {
	if i < 0 || i >= ix.NAtoms() {
		return 0, 0, CError{fmt.Sprintf("%s: atom %d of %d", ErrIndexOutOfRange, i, ix.NAtoms()), []string{"BasisIndex.AtomBlock"}}
	}
	return ix.starts[i], ix.starts[i+1], nil
}
