/*
 * coupling.go, part of gonac.
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

	v3 "github.com/rmera/gonac/v3"
	"gonum.org/v1/gonum/mat"
)

// CouplingFromProjected builds the nonadiabatic coupling matrix of a
// trajectory point from the four MO-projected overlap matrices around it:
// sjiT0 and sijT0 come from the geometry pair ending at the point, sjiT1
// and sijT1 from the pair starting at it, with the sij matrices projected
// through the transposed atomic overlaps. The finite-difference estimate is
//
//	D = [3 (sjiT1 - sijT1) + (sijT0 - sjiT0)] / (4 dt)
//
// with dt, the time between consecutive geometries, in atomic units. All
// four matrices must have the same shape, and dt must be positive and
// finite. D is antisymmetric up to the numerical noise of the projections.
func CouplingFromProjected(sjiT0, sijT0, sjiT1, sijT1 *mat.Dense, dt float64) (*mat.Dense, error) {
	if sjiT0 == nil || sijT0 == nil || sjiT1 == nil || sijT1 == nil {
		return nil, CError{string(ErrNilData), []string{"CouplingFromProjected"}}
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, CError{fmt.Sprintf("%s: %v", ErrBadDt, dt), []string{"CouplingFromProjected"}}
	}
	r, c := sjiT0.Dims()
	for _, m := range []*mat.Dense{sijT0, sjiT1, sijT1} {
		if mr, mc := m.Dims(); mr != r || mc != c {
			return nil, CError{fmt.Sprintf("%s: projected overlaps of different shapes", ErrShape), []string{"CouplingFromProjected"}}
		}
	}
	var d1, d0 mat.Dense
	d1.Sub(sjiT1, sijT1)
	d1.Scale(3, &d1)
	d0.Sub(sijT0, sjiT0)
	D := mat.NewDense(r, c, nil)
	D.Add(&d1, &d0)
	D.Scale(1/(4*dt), D)
	return D, nil
}

// EstimateCoupling computes the nonadiabatic coupling matrix for the middle
// one of three consecutive geometries. It builds the atomic overlap
// matrices of the two geometry pairs, projects each of them (and its
// transpose) with the MO coefficients of the corresponding frames, and
// applies the 3-point finite-difference formula of CouplingFromProjected.
// Geometries are in Bohr, dt in atomic units of time, and the coefficient
// matrices carry one column per orbital, in the basis ordering of ix (after
// the spherical transformation, if the options carry one).
func EstimateCoupling(ix *BasisIndex, g0, g1, g2 *v3.Matrix, c0, c1, c2 *mat.Dense, dt float64, o *OverlapOptions) (*mat.Dense, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, CError{fmt.Sprintf("%s: %v", ErrBadDt, dt), []string{"EstimateCoupling"}}
	}
	suv0, err := BuildOverlap(ix, g0, g1, o)
	if err != nil {
		return nil, errDecorate(err, "EstimateCoupling")
	}
	suv1, err := BuildOverlap(ix, g1, g2, o)
	if err != nil {
		return nil, errDecorate(err, "EstimateCoupling")
	}
	sjiT0, err := Project(suv0, c0, c1)
	if err != nil {
		return nil, errDecorate(err, "EstimateCoupling")
	}
	sijT0, err := Project(suv0.T(), c1, c0)
	if err != nil {
		return nil, errDecorate(err, "EstimateCoupling")
	}
	sjiT1, err := Project(suv1, c1, c2)
	if err != nil {
		return nil, errDecorate(err, "EstimateCoupling")
	}
	sijT1, err := Project(suv1.T(), c2, c1)
	if err != nil {
		return nil, errDecorate(err, "EstimateCoupling")
	}
	D, err := CouplingFromProjected(sjiT0, sijT0, sjiT1, sijT1, dt)
	if err != nil {
		return nil, errDecorate(err, "EstimateCoupling")
	}
	return D, nil
}
