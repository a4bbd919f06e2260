//Package basis provides contracted-Gaussian basis set types for gonac, a
//reader for basis files in the CP2K BASIS_MOLOPT format, normalization of
//the contractions and the Cartesian to spherical-harmonics transformation.
package basis

import (
	"fmt"
	"math"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Primitive is one primitive Gaussian in a contraction: a contraction
// coefficient and an exponent. The exponent must be positive.
type Primitive struct {
	Coeff float64
	Exp   float64
}

// CGF is a contracted Gaussian function: an angular-momentum label plus an
// ordered set of primitives sharing one center. A CGF describes a single
// Cartesian component (Dxy is one CGF, the d shell has six of them). CGFs
// belong to exactly one element symbol in a basis set and are not modified
// after the set is normalized.
type CGF struct {
	Label string
	Prims []Primitive
}

//The Cartesian components of each shell, in CP2K order. The order fixes
//the layout of every overlap and coefficient matrix, so it must match the
//program that produced the MO coefficients.
var shellLabels = [][]string{
	{"S"},
	{"Px", "Py", "Pz"},
	{"Dxx", "Dxy", "Dxz", "Dyy", "Dyz", "Dzz"},
	{"Fxxx", "Fxxy", "Fxxz", "Fxyy", "Fxyz", "Fxzz", "Fyyy", "Fyyz", "Fyzz", "Fzzz"},
}

var angularMomenta = map[string][3]int{
	"S":    {0, 0, 0},
	"Px":   {1, 0, 0},
	"Py":   {0, 1, 0},
	"Pz":   {0, 0, 1},
	"Dxx":  {2, 0, 0},
	"Dxy":  {1, 1, 0},
	"Dxz":  {1, 0, 1},
	"Dyy":  {0, 2, 0},
	"Dyz":  {0, 1, 1},
	"Dzz":  {0, 0, 2},
	"Fxxx": {3, 0, 0},
	"Fxxy": {2, 1, 0},
	"Fxxz": {2, 0, 1},
	"Fxyy": {1, 2, 0},
	"Fxyz": {1, 1, 1},
	"Fxzz": {1, 0, 2},
	"Fyyy": {0, 3, 0},
	"Fyyz": {0, 2, 1},
	"Fyzz": {0, 1, 2},
	"Fzzz": {0, 0, 3},
}

// AngMom returns the Cartesian angular momentum (x, y and z powers) for the
// CGF, or an error if its label is not recognized.
func (c *CGF) AngMom() ([3]int, error) {
	am, ok := angularMomenta[c.Label]
	if !ok {
		return am, Error{fmt.Sprintf("%s: %s", UnknownLabel, c.Label), "", []string{"CGF.AngMom"}, true}
	}
	return am, nil
}

// L returns the total angular momentum of the CGF (0 for s, 1 for p...).
func (c *CGF) L() (int, error) {
	am, err := c.AngMom()
	if err != nil {
		return 0, errDecorate(err, "CGF.L")
	}
	return am[0] + am[1] + am[2], nil
}

// Set is a basis set: a map from element symbol to the ordered CGFs for
// that element. The CGF order defines the row/column layout of every
// overlap and coefficient matrix, so it must be identical across all
// geometries of a molecule within one run. A Set is loaded once and shared,
// read-only, across all frames.
type Set map[string][]CGF

// Size returns the number of Cartesian basis functions the set puts on one
// atom of the given element, i.e. len(s[symbol]).
func (s Set) Size(symbol string) int {
	return len(s[symbol])
}

// Elements returns the element symbols covered by the set, sorted.
func (s Set) Elements() []string {
	els := maps.Keys(s)
	slices.Sort(els)
	return els
}

//Normalization.

//dfact returns the double factorial (2l-1)!!, with (-1)!! = 1.
func dfact(l int) float64 {
	r := 1.0
	for k := 2*l - 1; k > 1; k -= 2 {
		r *= float64(k)
	}
	return r
}

//selfOverlap returns the overlap of two primitive Cartesian Gaussians with
//the same center and the same angular momentum triple, without
//normalization constants.
func selfOverlap(am [3]int, ea, eb float64) float64 {
	g := ea + eb
	l := am[0] + am[1] + am[2]
	f := dfact(am[0]) * dfact(am[1]) * dfact(am[2])
	return f / math.Pow(2*g, float64(l)) * math.Pow(math.Pi/g, 1.5)
}

// Normalize rescales, in place, the contraction coefficients of every CGF
// in the set: first each primitive coefficient absorbs the normalization
// constant of its primitive, then the whole contraction is scaled to unit
// self-overlap. After Normalize, the diagonal of an overlap matrix of a
// geometry with itself is 1 within numerical precision.
func Normalize(s Set) error {
	for symbol, cgfs := range s {
		for i := range cgfs {
			c := &cgfs[i]
			am, err := c.AngMom()
			if err != nil {
				return errDecorate(err, "Normalize "+symbol)
			}
			l := am[0] + am[1] + am[2]
			f := dfact(am[0]) * dfact(am[1]) * dfact(am[2])
			for j := range c.Prims {
				p := &c.Prims[j]
				if p.Exp <= 0 {
					return Error{fmt.Sprintf("%s: %s CGF %d", NonPositiveExponent, symbol, i), "", []string{"Normalize"}, true}
				}
				n := math.Pow(2*p.Exp/math.Pi, 0.75) * math.Pow(4*p.Exp, float64(l)/2) / math.Sqrt(f)
				p.Coeff *= n
			}
			var self float64
			for _, pa := range c.Prims {
				for _, pb := range c.Prims {
					self += pa.Coeff * pb.Coeff * selfOverlap(am, pa.Exp, pb.Exp)
				}
			}
			if self <= 0 || math.IsNaN(self) {
				return Error{fmt.Sprintf("%s: %s CGF %d", BadSelfOverlap, symbol, i), "", []string{"Normalize"}, true}
			}
			scale := 1 / math.Sqrt(self)
			for j := range c.Prims {
				c.Prims[j].Coeff *= scale
			}
		}
	}
	return nil
}

//Errors

//the same as nac.Error but avoids a circular import.
type errorInt interface {
	Error() string
	Critical() bool
	Decorate(string) []string
}

//errDecorate is a helper function that asserts that the error implements
//errorInt and decorates it with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(errorInt)
	err2.Decorate(caller)
	return err2
}

//Error is the general structure for basis set errors. It fulfills the
//gonac Error interface.
type Error struct {
	message  string
	filename string //the basis file with problems, or an empty string.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	if err.filename == "" {
		return err.message
	}
	return fmt.Sprintf("basis file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error.
func (E Error) Decorate(deco string) []string {
	//Even though this method does not use a pointer as a receiver, and tries to alter the receiver,
	//it should work, since E.deco is a slice, and hence a pointer itself.
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//FileName returns the file to which the failing basis set was associated.
func (err Error) FileName() string { return err.filename }

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

const (
	UnableToOpen        = "Unable to open file"
	UnknownLabel        = "Unknown angular momentum label"
	UnknownElement      = "Element not found in basis file"
	UnknownBasisName    = "Basis set name not found in basis file"
	WrongFormat         = "Wrong format in basis file"
	UnsupportedShell    = "Shells above F are not supported"
	NonPositiveExponent = "Exponents must be positive"
	BadSelfOverlap      = "Contraction has a non-positive self overlap"
	ShellTooHigh        = "No spherical transformation available for shells above D"
	BrokenShell         = "Incomplete Cartesian shell in basis set"
)
