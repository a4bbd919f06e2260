//Package gauss evaluates overlap integrals between primitive Cartesian
//Gaussian functions with the Obara-Saika recursion. The integrals
//factorize along the three Cartesian axes, so each 3D overlap is the
//product of three one-dimensional recursions seeded by the Gaussian
//product theorem.
package gauss

import "math"

// OS evaluates primitive overlaps by the Obara-Saika two-center recursion.
// The zero value is ready to use, and a single OS is safe for concurrent
// use, as it keeps no state between evaluations.
type OS struct{}

// NewOS returns an overlap evaluator based on the Obara-Saika recursion.
func NewOS() *OS {
	return &OS{}
}

// Overlap returns the overlap integral between two primitive Cartesian
// Gaussians of unit coefficient: one centered at ra, with the Cartesian
// angular momentum triple la and exponent ea, and one at rb with lb and eb.
// Positions are in Bohr. Contraction coefficients and normalization are the
// caller's business.
func (o *OS) Overlap(ra, rb []float64, la, lb [3]int, ea, eb float64) float64 {
	g := ea + eb
	u := ea * eb / g
	p := 1.0 / (2.0 * g)
	cte := math.Sqrt(math.Pi / g)
	prod := 1.0
	for k := 0; k < 3; k++ {
		rp := (ea*ra[k] + eb*rb[k]) / g
		dr := ra[k] - rb[k]
		s00 := cte * math.Exp(-u*dr*dr)
		prod *= axis(p, s00, rp-ra[k], rp-rb[k], la[k], lb[k])
	}
	return prod
}

//axis returns the one-dimensional overlap between x^l1 and x^l2 Gaussian
//factors, built from the s-type seed s00 by transferring angular momentum
//one unit at a time:
//
//  S(i,j) = rpa S(i-1,j) + p ((i-1) S(i-2,j) + j S(i-1,j-1))
//
//and the equivalent with rpb on the second index. p is 1/(2(ea+eb)) and
//rpa, rpb are the distances from the product center to each original one.
func axis(p, s00, rpa, rpb float64, l1, l2 int) float64 {
	switch {
	case l1 < 0 || l2 < 0:
		return 0
	case l1 == 0 && l2 == 0:
		return s00
	case l1 > 0:
		return rpa*axis(p, s00, rpa, rpb, l1-1, l2) +
			p*(float64(l1-1)*axis(p, s00, rpa, rpb, l1-2, l2)+
				float64(l2)*axis(p, s00, rpa, rpb, l1-1, l2-1))
	default:
		return rpb*axis(p, s00, rpa, rpb, l1, l2-1) +
			p*float64(l2-1)*axis(p, s00, rpa, rpb, l1, l2-2)
	}
}
