/*
 * overlap_test.go, part of gonac.
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

//The SZV-MOLOPT-GTH entries for H and O, straight from the CP2K
//BASIS_MOLOPT file. They give water a 6-function Cartesian basis.
const waterBasis = ` H  SZV-MOLOPT-GTH SZV-MOLOPT-GTH-q1
 1
 2 0 0 7 1
     11.478000339908  0.024916243200
      3.700758562763  0.079825490000
      1.446884268432  0.128862675300
      0.716814589696  0.379448894600
      0.247918564176  0.324552432600
      0.066918004004  0.037148121400
      0.021708243634 -0.001125195500
 O  SZV-MOLOPT-GTH SZV-MOLOPT-GTH-q6
 1
 2 0 1 7 1 1
     12.015954705512 -0.060190841200  0.036543638800
      5.108150287385 -0.129597923300  0.120927648700
      2.048398039874  0.118175889400  0.251093670300
      0.832381575582  0.462964485000  0.352639910300
      0.352316246455  0.450353782600  0.294708645200
      0.142977330880  0.092715833600  0.173039869300
      0.046760918300 -0.000255945800  0.009726110600
`

var waterSymbols = []string{"O", "H", "H"}

//waterGeom returns a water geometry in Bohr, with both hydrogens displaced
//by stretch along z.
func waterGeom(Te *testing.T, stretch float64) *v3.Matrix {
	g, err := v3.NewMatrix([]float64{
		0.0, 0.0, 0.2217,
		1.4309, 0.0, -0.8867 - stretch,
		-1.4309, 0.0, -0.8867 - stretch,
	})
	if err != nil {
		Te.Fatal(err)
	}
	return g
}

//waterSystem reads and normalizes the test basis and builds the molecule
//and basis index shared by most tests in the package.
func waterSystem(Te *testing.T) (basis.Set, *Molecule, *BasisIndex) {
	bs, err := basis.ReadCP2K(strings.NewReader(waterBasis), "SZV-MOLOPT-GTH", waterSymbols)
	if err != nil {
		Te.Fatal(err)
	}
	if err := basis.Normalize(bs); err != nil {
		Te.Fatal(err)
	}
	mol, err := NewMolecule(waterSymbols, []*v3.Matrix{waterGeom(Te, 0)})
	if err != nil {
		Te.Fatal(err)
	}
	ix, err := NewBasisIndex(mol, bs)
	if err != nil {
		Te.Fatal(err)
	}
	return bs, mol, ix
}

//orthonormalMOs builds S^(-1/2) from the eigendecomposition of the overlap
//matrix. Its columns are orthonormal under S, so they behave like the MO
//coefficients of a converged calculation. It also fails the test if S is
//not positive definite, which no overlap of a real basis can be.
func orthonormalMOs(Te *testing.T, S *mat.Dense) *mat.Dense {
	n, _ := S.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, S.At(i, j))
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		Te.Fatal("eigendecomposition of the overlap matrix failed")
	}
	vals := eig.Values(nil)
	for i, v := range vals {
		if v <= 0 {
			Te.Fatalf("overlap matrix is not positive definite: eigenvalue %v", v)
		}
		vals[i] = 1 / math.Sqrt(v)
	}
	var vec, tmp mat.Dense
	eig.VectorsTo(&vec)
	tmp.Mul(&vec, mat.NewDiagDense(n, vals))
	C := mat.NewDense(n, n, nil)
	C.Mul(&tmp, vec.T())
	return C
}

//maxAbs returns the largest absolute element of m.
func maxAbs(m mat.Matrix) float64 {
	r, c := m.Dims()
	max := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := math.Abs(m.At(i, j)); v > max {
				max = v
			}
		}
	}
	return max
}

func TestBasisIndex(Te *testing.T) {
	_, _, ix := waterSystem(Te)
	if ix.Dim() != 6 {
		Te.Fatalf("water with SZV has 6 Cartesian functions, the index says %d", ix.Dim())
	}
	if ix.NAtoms() != 3 {
		Te.Errorf("got %d atoms in the index, want 3", ix.NAtoms())
	}
	atom, cgf, err := ix.Lookup(0)
	if err != nil || atom != 0 || cgf.Label != "S" {
		Te.Errorf("function 0 should be the oxygen S: atom %d, label %s, err %v", atom, cgf.Label, err)
	}
	atom, cgf, err = ix.Lookup(3)
	if err != nil || atom != 0 || cgf.Label != "Pz" {
		Te.Errorf("function 3 should be the oxygen Pz: atom %d, label %s, err %v", atom, cgf.Label, err)
	}
	atom, cgf, err = ix.Lookup(5)
	if err != nil || atom != 2 || cgf.Label != "S" {
		Te.Errorf("function 5 should be the second hydrogen S: atom %d, label %s, err %v", atom, cgf.Label, err)
	}
	start, end, err := ix.AtomBlock(0)
	if err != nil || start != 0 || end != 4 {
		Te.Errorf("oxygen block: got [%d,%d), want [0,4)", start, end)
	}
	start, end, err = ix.AtomBlock(2)
	if err != nil || start != 5 || end != 6 {
		Te.Errorf("second hydrogen block: got [%d,%d), want [5,6)", start, end)
	}
	if _, _, err := ix.Lookup(6); err == nil {
		Te.Errorf("function 6 does not exist and should not look up")
	}
	if _, _, err := ix.Lookup(-1); err == nil {
		Te.Errorf("negative functions should not look up")
	}
	if _, _, err := ix.AtomBlock(3); err == nil {
		Te.Errorf("atom 3 does not exist and should have no block")
	}
}

func TestBasisIndexMissingElement(Te *testing.T) {
	bs, err := basis.ReadCP2K(strings.NewReader(waterBasis), "SZV-MOLOPT-GTH", []string{"H"})
	if err != nil {
		Te.Fatal(err)
	}
	mol, err := NewMolecule(waterSymbols, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := NewBasisIndex(mol, bs); err == nil {
		Te.Errorf("an index over a basis with no oxygen entry should not build")
	}
}

func TestOverlapSameGeometry(Te *testing.T) {
	_, _, ix := waterSystem(Te)
	g := waterGeom(Te, 0)
	S, err := BuildOverlap(ix, g, g, nil)
	if err != nil {
		Te.Fatal(err)
	}
	r, c := S.Dims()
	if r != 6 || c != 6 {
		Te.Fatalf("got a %dx%d overlap matrix, want 6x6", r, c)
	}
	for i := 0; i < r; i++ {
		if math.Abs(S.At(i, i)-1) > 1e-10 {
			Te.Errorf("normalized function %d has self overlap %v", i, S.At(i, i))
		}
		for j := 0; j < i; j++ {
			if math.Abs(S.At(i, j)-S.At(j, i)) > 1e-12 {
				Te.Errorf("same-geometry overlap is not symmetric at (%d,%d): %v vs %v", i, j, S.At(i, j), S.At(j, i))
			}
		}
	}
	//both hydrogens are equivalent, so their overlaps with the oxygen s
	//must match.
	if math.Abs(S.At(0, 4)-S.At(0, 5)) > 1e-12 {
		Te.Errorf("equivalent hydrogens have different overlaps: %v vs %v", S.At(0, 4), S.At(0, 5))
	}
	//orthonormalMOs fails on any non-positive eigenvalue.
	orthonormalMOs(Te, S)
}

func TestOverlapOrthonormality(Te *testing.T) {
	_, _, ix := waterSystem(Te)
	g := waterGeom(Te, 0)
	S, err := BuildOverlap(ix, g, g, nil)
	if err != nil {
		Te.Fatal(err)
	}
	C := orthonormalMOs(Te, S)
	P, err := Project(S, C, C)
	if err != nil {
		Te.Fatal(err)
	}
	n, _ := P.Dims()
	eye := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		eye.Set(i, i, 1)
	}
	var diff mat.Dense
	diff.Sub(P, eye)
	if d := maxAbs(&diff); d > 1e-10 {
		Te.Errorf("C^T S C is off the identity by %v", d)
	}
}

func TestOverlapTwoGeometries(Te *testing.T) {
	_, _, ix := waterSystem(Te)
	g0 := waterGeom(Te, 0)
	g1 := waterGeom(Te, 0.05)
	S01, err := BuildOverlap(ix, g0, g1, nil)
	if err != nil {
		Te.Fatal(err)
	}
	S10, err := BuildOverlap(ix, g1, g0, nil)
	if err != nil {
		Te.Fatal(err)
	}
	var diff mat.Dense
	diff.Sub(S01, S10.T())
	if d := maxAbs(&diff); d > 1e-12 {
		Te.Errorf("S(g0,g1) and S(g1,g0)^T differ by %v", d)
	}
	//off-center overlaps must decay when the geometries drift apart.
	far, err := BuildOverlap(ix, g0, waterGeom(Te, 20), nil)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(far.At(4, 4)) >= math.Abs(S01.At(4, 4)) {
		Te.Errorf("the hydrogen self pair did not decay with distance: %v vs %v", far.At(4, 4), S01.At(4, 4))
	}
}

func TestOverlapWorkers(Te *testing.T) {
	_, _, ix := waterSystem(Te)
	g0 := waterGeom(Te, 0)
	g1 := waterGeom(Te, 0.05)
	serial, err := BuildOverlap(ix, g0, g1, &OverlapOptions{Workers: 1})
	if err != nil {
		Te.Fatal(err)
	}
	parallel, err := BuildOverlap(ix, g0, g1, &OverlapOptions{Workers: 4})
	if err != nil {
		Te.Fatal(err)
	}
	if !mat.Equal(serial, parallel) {
		Te.Errorf("the overlap matrix depends on the number of workers")
	}
}

func TestOverlapSpherical(Te *testing.T) {
	bs, _, ix := waterSystem(Te)
	T, err := basis.TransformationMatrix(waterSymbols, bs)
	if err != nil {
		Te.Fatal(err)
	}
	tr, tc := T.Dims()
	if tr != 6 || tc != 6 {
		Te.Fatalf("got a %dx%d spherical transformation for water SZV, want 6x6", tr, tc)
	}
	g := waterGeom(Te, 0)
	cart, err := BuildOverlap(ix, g, g, nil)
	if err != nil {
		Te.Fatal(err)
	}
	o := DefaultOverlapOptions()
	o.Transform = T
	sph, err := BuildOverlap(ix, g, g, o)
	if err != nil {
		Te.Fatal(err)
	}
	r, c := sph.Dims()
	if r != 6 || c != 6 {
		Te.Fatalf("got a %dx%d spherical overlap, want 6x6", r, c)
	}
	//with s and p shells only, the transformation permutes the p block to
	//the CP2K (py, pz, px) order.
	if math.Abs(sph.At(1, 1)-cart.At(2, 2)) > 1e-14 {
		Te.Errorf("spherical (1,1) should be the Cartesian py pair: %v vs %v", sph.At(1, 1), cart.At(2, 2))
	}
	if math.Abs(sph.At(3, 3)-cart.At(1, 1)) > 1e-14 {
		Te.Errorf("spherical (3,3) should be the Cartesian px pair: %v vs %v", sph.At(3, 3), cart.At(1, 1))
	}
	if math.Abs(sph.At(0, 4)-cart.At(0, 4)) > 1e-14 {
		Te.Errorf("s-s overlaps should not change under the transformation")
	}
}

func TestOverlapErrors(Te *testing.T) {
	_, _, ix := waterSystem(Te)
	g := waterGeom(Te, 0)
	if _, err := BuildOverlap(nil, g, g, nil); err == nil {
		Te.Errorf("a nil index should not build an overlap")
	}
	if _, err := BuildOverlap(ix, nil, g, nil); err == nil {
		Te.Errorf("a nil geometry should not build an overlap")
	}
	short := v3.Zeros(2)
	if _, err := BuildOverlap(ix, short, g, nil); err == nil {
		Te.Errorf("a 2-atom geometry should not fit a 3-atom index")
	}
	o := DefaultOverlapOptions()
	o.Transform = mat.NewDense(5, 5, nil)
	if _, err := BuildOverlap(ix, g, g, o); err == nil {
		Te.Errorf("a transformation with the wrong number of columns should not be accepted")
	}
}
