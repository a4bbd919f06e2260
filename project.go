/*
 * project.go, part of gonac.
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

	"gonum.org/v1/gonum/mat"
)

// Project takes an overlap matrix S between atomic basis functions at two
// geometries into the molecular-orbital basis: C0ᵀ S C1, where the columns
// of C0 and C1 are the orbital coefficients at the first and second
// geometry. The rows of C0 must match the rows of S and the rows of C1 its
// columns; the result has one row per C0 orbital and one column per C1
// orbital. With C0 = C1 = C and S the overlap of a geometry with itself,
// the result is the MO overlap, the identity for orthonormal orbitals.
func Project(S, C0, C1 mat.Matrix) (*mat.Dense, error) {
	if S == nil || C0 == nil || C1 == nil {
		return nil, CError{string(ErrNilData), []string{"Project"}}
	}
	sr, sc := S.Dims()
	r0, _ := C0.Dims()
	r1, _ := C1.Dims()
	if r0 != sr || r1 != sc {
		return nil, CError{fmt.Sprintf("%s: S is %dx%d but C0 has %d rows and C1 %d", ErrShape, sr, sc, r0, r1), []string{"Project"}}
	}
	var SC, P mat.Dense
	SC.Mul(S, C1)
	P.Mul(C0.T(), &SC)
	return &P, nil
}
