package gauss

import (
	"math"
	"testing"
)

func TestOverlapSS(Te *testing.T) {
	//two s Gaussians have the closed form (pi/g)^(3/2) exp(-u d^2).
	o := NewOS()
	cases := []struct {
		ea, eb, d float64
	}{
		{0.5, 0.5, 0},
		{0.5, 0.5, 1.5},
		{1.3, 0.2, 2.0},
		{4.0, 0.01, 0.3},
	}
	for _, c := range cases {
		ra := []float64{0, 0, 0}
		rb := []float64{0, 0, c.d}
		g := c.ea + c.eb
		u := c.ea * c.eb / g
		want := math.Pow(math.Pi/g, 1.5) * math.Exp(-u*c.d*c.d)
		got := o.Overlap(ra, rb, [3]int{0, 0, 0}, [3]int{0, 0, 0}, c.ea, c.eb)
		if math.Abs(got-want) > 1e-14 {
			Te.Errorf("s-s overlap at d=%v: want %v, got %v", c.d, want, got)
		}
	}
}

func TestOverlapSP(Te *testing.T) {
	//s at the origin against px displaced along x: -ea*d/g times the
	//s-s overlap.
	o := NewOS()
	ea, eb, d := 0.9, 0.4, 1.2
	ra := []float64{0, 0, 0}
	rb := []float64{d, 0, 0}
	g := ea + eb
	u := ea * eb / g
	want := -ea * d / g * math.Pow(math.Pi/g, 1.5) * math.Exp(-u*d*d)
	got := o.Overlap(ra, rb, [3]int{0, 0, 0}, [3]int{1, 0, 0}, ea, eb)
	if math.Abs(got-want) > 1e-14 {
		Te.Errorf("s-px overlap: want %v, got %v", want, got)
	}
	//on a shared center the odd integral vanishes.
	if v := o.Overlap(ra, ra, [3]int{0, 0, 0}, [3]int{1, 0, 0}, ea, eb); v != 0 {
		Te.Errorf("same-center s-px should vanish, got %v", v)
	}
}

func TestOverlapSameCenter(Te *testing.T) {
	//same-center integrals reduce to double-factorial closed forms:
	//(2l-1)!! / (2g)^l times (pi/g)^(3/2) for each matching component.
	o := NewOS()
	ea, eb := 0.7, 1.1
	r := []float64{0.3, -0.2, 5.0}
	g := ea + eb
	base := math.Pow(math.Pi/g, 1.5)
	pp := o.Overlap(r, r, [3]int{0, 1, 0}, [3]int{0, 1, 0}, ea, eb)
	if want := base / (2 * g); math.Abs(pp-want) > 1e-14 {
		Te.Errorf("py-py same center: want %v, got %v", want, pp)
	}
	dd := o.Overlap(r, r, [3]int{2, 0, 0}, [3]int{2, 0, 0}, ea, eb)
	if want := 3 * base / ((2 * g) * (2 * g)); math.Abs(dd-want) > 1e-14 {
		Te.Errorf("dxx-dxx same center: want %v, got %v", want, dd)
	}
	dxy := o.Overlap(r, r, [3]int{1, 1, 0}, [3]int{1, 1, 0}, ea, eb)
	if want := base / ((2 * g) * (2 * g)); math.Abs(dxy-want) > 1e-14 {
		Te.Errorf("dxy-dxy same center: want %v, got %v", want, dxy)
	}
}

func TestOverlapSymmetry(Te *testing.T) {
	o := NewOS()
	ra := []float64{0.1, 0.9, -0.4}
	rb := []float64{-1.2, 0.3, 0.8}
	ls := [][3]int{{0, 0, 0}, {1, 0, 0}, {0, 1, 1}, {2, 0, 0}, {1, 1, 1}}
	for _, la := range ls {
		for _, lb := range ls {
			ab := o.Overlap(ra, rb, la, lb, 0.6, 1.4)
			ba := o.Overlap(rb, ra, lb, la, 1.4, 0.6)
			if math.Abs(ab-ba) > 1e-14 {
				Te.Errorf("overlap not symmetric for %v %v: %v vs %v", la, lb, ab, ba)
			}
		}
	}
}

func TestOverlapTranslation(Te *testing.T) {
	o := NewOS()
	ra := []float64{0.1, 0.9, -0.4}
	rb := []float64{-1.2, 0.3, 0.8}
	shift := []float64{10.0, -3.5, 2.2}
	ra2 := make([]float64, 3)
	rb2 := make([]float64, 3)
	for k := 0; k < 3; k++ {
		ra2[k] = ra[k] + shift[k]
		rb2[k] = rb[k] + shift[k]
	}
	la, lb := [3]int{1, 0, 1}, [3]int{0, 2, 0}
	v1 := o.Overlap(ra, rb, la, lb, 0.8, 0.5)
	v2 := o.Overlap(ra2, rb2, la, lb, 0.8, 0.5)
	if math.Abs(v1-v2) > 1e-12 {
		Te.Errorf("overlap not translation invariant: %v vs %v", v1, v2)
	}
}

func TestAxisRecursion(Te *testing.T) {
	//low orders of the one-dimensional recursion against hand-expanded
	//polynomials in rpa, rpb and p.
	p, s00 := 0.35, 0.9
	rpa, rpb := 0.4, -0.7
	cases := []struct {
		l1, l2 int
		want   float64
	}{
		{0, 0, s00},
		{1, 0, rpa * s00},
		{0, 1, rpb * s00},
		{1, 1, (rpa*rpb + p) * s00},
		{2, 0, (rpa*rpa + p) * s00},
		{2, 1, (rpa*rpa*rpb + p*(2*rpa+rpb)) * s00},
		{2, 2, (rpa*rpa*rpb*rpb + p*(rpa*rpa+4*rpa*rpb+rpb*rpb) + 3*p*p) * s00},
	}
	for _, c := range cases {
		got := axis(p, s00, rpa, rpb, c.l1, c.l2)
		if math.Abs(got-c.want) > 1e-14 {
			Te.Errorf("axis(%d,%d): want %v, got %v", c.l1, c.l2, c.want, got)
		}
	}
}
