/*
 * coupling_test.go, part of gonac.
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
	"math"
	"strings"
	"testing"

	"github.com/rmera/gonac/basis"
	v3 "github.com/rmera/gonac/v3"
	"gonum.org/v1/gonum/mat"
)

func TestProject(Te *testing.T) {
	S := mat.NewDense(2, 2, []float64{1, 0.5, 0.5, 1})
	eye := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	P, err := Project(S, eye, eye)
	if err != nil {
		Te.Fatal(err)
	}
	if !mat.Equal(P, S) {
		Te.Errorf("projecting with identity coefficients should return the overlap itself")
	}
	c0 := mat.NewDense(2, 1, []float64{1, 0})
	c1 := mat.NewDense(2, 1, []float64{0, 1})
	P, err = Project(S, c0, c1)
	if err != nil {
		Te.Fatal(err)
	}
	if r, c := P.Dims(); r != 1 || c != 1 {
		Te.Fatalf("projecting single orbitals should give a 1x1 matrix, got %dx%d", r, c)
	}
	if P.At(0, 0) != 0.5 {
		Te.Errorf("got %v for the cross projection, want 0.5", P.At(0, 0))
	}
	bad := mat.NewDense(3, 1, []float64{1, 0, 0})
	if _, err := Project(S, bad, c1); err == nil {
		Te.Errorf("coefficients with the wrong number of rows should not project")
	}
	if _, err := Project(S, c0, bad); err == nil {
		Te.Errorf("coefficients with the wrong number of rows should not project")
	}
}

func TestCouplingFromProjected(Te *testing.T) {
	sjiT0 := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	sijT0 := mat.NewDense(2, 2, []float64{0, 1, 1, 0})
	sjiT1 := mat.NewDense(2, 2, []float64{2, 0, 0, 2})
	sijT1 := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	D, err := CouplingFromProjected(sjiT0, sijT0, sjiT1, sijT1, 1)
	if err != nil {
		Te.Fatal(err)
	}
	want := mat.NewDense(2, 2, []float64{0.5, -1, -1.25, -0.25})
	var diff mat.Dense
	diff.Sub(D, want)
	if d := maxAbs(&diff); d > 1e-15 {
		Te.Errorf("3-point estimate off by %v:\n got %v\nwant %v", d, mat.Formatted(D), mat.Formatted(want))
	}
	//halving dt doubles the coupling, exactly for power-of-two steps.
	half, err := CouplingFromProjected(sjiT0, sijT0, sjiT1, sijT1, 2)
	if err != nil {
		Te.Fatal(err)
	}
	var scaled mat.Dense
	scaled.Scale(2, half)
	if !mat.Equal(D, &scaled) {
		Te.Errorf("the coupling does not scale as 1/dt")
	}
}

func TestCouplingErrors(Te *testing.T) {
	a := mat.NewDense(2, 2, nil)
	b := mat.NewDense(3, 3, nil)
	if _, err := CouplingFromProjected(nil, a, a, a, 1); err == nil {
		Te.Errorf("nil projections should not give a coupling")
	}
	for _, dt := range []float64{0, -1, math.Inf(1), math.NaN()} {
		if _, err := CouplingFromProjected(a, a, a, a, dt); err == nil {
			Te.Errorf("dt %v should not give a coupling", dt)
		}
	}
	if _, err := CouplingFromProjected(a, a, b, a, 1); err == nil {
		Te.Errorf("mismatched projection shapes should not give a coupling")
	}
	_, _, ix := waterSystem(Te)
	g := waterGeom(Te, 0)
	c := mat.NewDense(6, 6, nil)
	if _, err := EstimateCoupling(ix, g, g, g, c, c, c, 0, nil); err == nil {
		Te.Errorf("dt 0 should not estimate a coupling")
	}
}

func TestCouplingAntisymmetry(Te *testing.T) {
	_, _, ix := waterSystem(Te)
	geoms := []*v3.Matrix{waterGeom(Te, 0), waterGeom(Te, 0.02), waterGeom(Te, 0.04)}
	coeffs := make([]*mat.Dense, 3)
	for i, g := range geoms {
		S, err := BuildOverlap(ix, g, g, nil)
		if err != nil {
			Te.Fatal(err)
		}
		coeffs[i] = orthonormalMOs(Te, S)
	}
	D, err := EstimateCoupling(ix, geoms[0], geoms[1], geoms[2], coeffs[0], coeffs[1], coeffs[2], 10, nil)
	if err != nil {
		Te.Fatal(err)
	}
	var sym mat.Dense
	sym.Add(D, D.T())
	if d := maxAbs(&sym); d > 1e-8 {
		Te.Errorf("the coupling matrix is not antisymmetric: D+D^T reaches %v", d)
	}
	n, _ := D.Dims()
	for i := 0; i < n; i++ {
		if math.Abs(D.At(i, i)) > 1e-8 {
			Te.Errorf("diagonal coupling %d is %v, want ~0", i, D.At(i, i))
		}
	}
	//the stretching mode must couple at least one pair of orbitals.
	if maxAbs(D) == 0 {
		Te.Errorf("a stretching water gave exactly zero couplings")
	}
}

func TestCouplingIdenticalFrames(Te *testing.T) {
	_, _, ix := waterSystem(Te)
	g := waterGeom(Te, 0)
	S, err := BuildOverlap(ix, g, g, nil)
	if err != nil {
		Te.Fatal(err)
	}
	C := orthonormalMOs(Te, S)
	D, err := EstimateCoupling(ix, g, g, g, C, C, C, 1, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if d := maxAbs(D); d > 1e-10 {
		Te.Errorf("a frozen geometry should have no couplings, got up to %v", d)
	}
}

//An atom at rest, with a minimal one-primitive basis: no nuclear motion
//means no coupling.
func TestCouplingSingleAtomAtRest(Te *testing.T) {
	bs := basis.Set{"Cd": {{Label: "S", Prims: []basis.Primitive{{Coeff: 1.0, Exp: 0.8}}}}}
	if err := basis.Normalize(bs); err != nil {
		Te.Fatal(err)
	}
	mol, err := NewMolecule([]string{"Cd"}, nil)
	if err != nil {
		Te.Fatal(err)
	}
	ix, err := NewBasisIndex(mol, bs)
	if err != nil {
		Te.Fatal(err)
	}
	g, err := v3.NewMatrix([]float64{0.1, -0.2, 0.3})
	if err != nil {
		Te.Fatal(err)
	}
	C := mat.NewDense(1, 1, []float64{1})
	D, err := EstimateCoupling(ix, g, g, g, C, C, C, 1.0, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if d := maxAbs(D); d > 1e-10 {
		Te.Errorf("an atom at rest got coupling %v, want 0", d)
	}
}

//For small displacements, the off-diagonal coupling of a stretching
//diatomic grows linearly with the inter-frame displacement.
func TestCouplingDisplacementScaling(Te *testing.T) {
	bs, err := basis.ReadCP2K(strings.NewReader(waterBasis), "SZV-MOLOPT-GTH", []string{"H"})
	if err != nil {
		Te.Fatal(err)
	}
	if err := basis.Normalize(bs); err != nil {
		Te.Fatal(err)
	}
	mol, err := NewMolecule([]string{"H", "H"}, nil)
	if err != nil {
		Te.Fatal(err)
	}
	ix, err := NewBasisIndex(mol, bs)
	if err != nil {
		Te.Fatal(err)
	}
	h2 := func(shift float64) *v3.Matrix {
		g, err := v3.NewMatrix([]float64{0, 0, 0, 0, 0, 1.4 + shift})
		if err != nil {
			Te.Fatal(err)
		}
		return g
	}
	S, err := BuildOverlap(ix, h2(0), h2(0), nil)
	if err != nil {
		Te.Fatal(err)
	}
	C := orthonormalMOs(Te, S)
	couple := func(delta float64) float64 {
		D, err := EstimateCoupling(ix, h2(0), h2(delta), h2(2*delta), C, C, C, 0.5, nil)
		if err != nil {
			Te.Fatal(err)
		}
		v := D.At(0, 1)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			Te.Fatalf("non-finite coupling for displacement %v", delta)
		}
		return v
	}
	small, large := couple(0.01), couple(0.02)
	if small == 0 {
		Te.Fatal("a stretching diatomic gave exactly zero coupling")
	}
	if ratio := large / small; math.Abs(ratio-2) > 0.2 {
		Te.Errorf("the coupling does not scale linearly with the displacement: ratio %v, want ~2", ratio)
	}
}

func TestCouplingVsManualProjection(Te *testing.T) {
	_, _, ix := waterSystem(Te)
	g0, g1, g2 := waterGeom(Te, 0), waterGeom(Te, 0.02), waterGeom(Te, 0.04)
	geoms := []*v3.Matrix{g0, g1, g2}
	coeffs := make([]*mat.Dense, 3)
	for i, g := range geoms {
		S, err := BuildOverlap(ix, g, g, nil)
		if err != nil {
			Te.Fatal(err)
		}
		coeffs[i] = orthonormalMOs(Te, S)
	}
	dt := 4.0
	D, err := EstimateCoupling(ix, g0, g1, g2, coeffs[0], coeffs[1], coeffs[2], dt, nil)
	if err != nil {
		Te.Fatal(err)
	}
	suv0, err := BuildOverlap(ix, g0, g1, nil)
	if err != nil {
		Te.Fatal(err)
	}
	suv1, err := BuildOverlap(ix, g1, g2, nil)
	if err != nil {
		Te.Fatal(err)
	}
	sjiT0, err := Project(suv0, coeffs[0], coeffs[1])
	if err != nil {
		Te.Fatal(err)
	}
	sijT0, err := Project(suv0.T(), coeffs[1], coeffs[0])
	if err != nil {
		Te.Fatal(err)
	}
	sjiT1, err := Project(suv1, coeffs[1], coeffs[2])
	if err != nil {
		Te.Fatal(err)
	}
	sijT1, err := Project(suv1.T(), coeffs[2], coeffs[1])
	if err != nil {
		Te.Fatal(err)
	}
	manual, err := CouplingFromProjected(sjiT0, sijT0, sjiT1, sijT1, dt)
	if err != nil {
		Te.Fatal(err)
	}
	if !mat.Equal(D, manual) {
		Te.Errorf("EstimateCoupling and the step-by-step projection disagree")
	}
}
