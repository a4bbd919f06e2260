package basis

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

//Reader for basis set files in the CP2K format (BASIS_MOLOPT and friends).
//Each element entry looks like:
//
//  Cd  DZVP-MOLOPT-SR-GTH DZVP-MOLOPT-SR-GTH-q12
//  1
//  2 0 2 6 2 2 1
//      2.622769224214  ... one column per contracted function
//      ...
//
//i.e. a symbol plus the basis name and its aliases, the number of sets, and,
//per set, a header with the principal quantum number, minimum and maximum
//angular momentum, number of exponents and number of contractions per
//angular momentum, followed by one row per exponent.

// ReadCP2KFile opens path and reads from it the basis set called name for
// the given elements, as ReadCP2K does.
func ReadCP2KFile(path, name string, elements []string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Error{UnableToOpen, path, []string{"ReadCP2KFile"}, true}
	}
	defer f.Close()
	s, rerr := ReadCP2K(f, name, elements)
	if rerr != nil {
		if berr, ok := rerr.(Error); ok {
			berr.filename = path
			return nil, berr
		}
		return nil, rerr
	}
	return s, nil
}

// ReadCP2K reads, from a basis file in CP2K format, the basis set called
// name (matching any of the aliases in the element headers) for the given
// elements. A nil elements slice selects every element present in the file.
// The contractions are returned raw: call Normalize on the returned Set
// before building overlap matrices with it.
func ReadCP2K(r io.Reader, name string, elements []string) (Set, error) {
	sc := bufio.NewScanner(r)
	set := make(Set)
	nameSeen := false
	for {
		line, ok := nextLine(sc)
		if !ok {
			break
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, Error{fmt.Sprintf("%s: element header %q", WrongFormat, line), "", []string{"ReadCP2K"}, true}
		}
		symbol := fields[0]
		aliases := fields[1:]
		line, ok = nextLine(sc)
		if !ok {
			return nil, Error{fmt.Sprintf("%s: truncated entry for %s", WrongFormat, symbol), "", []string{"ReadCP2K"}, true}
		}
		nsets, err := strconv.Atoi(strings.Fields(line)[0])
		if err != nil {
			return nil, Error{fmt.Sprintf("%s: sets count %q for %s", WrongFormat, line, symbol), "", []string{"ReadCP2K"}, true}
		}
		wanted := slices.Contains(aliases, name) && (elements == nil || slices.Contains(elements, symbol))
		var cgfs []CGF
		for i := 0; i < nsets; i++ {
			//sets are parsed even when not wanted, to advance the scanner.
			cs, err := readSet(sc)
			if err != nil {
				return nil, errDecorate(err, "ReadCP2K "+symbol)
			}
			if wanted {
				cgfs = append(cgfs, cs...)
			}
		}
		if slices.Contains(aliases, name) {
			nameSeen = true
		}
		if wanted {
			set[symbol] = cgfs
		}
	}
	if !nameSeen {
		return nil, Error{fmt.Sprintf("%s: %s", UnknownBasisName, name), "", []string{"ReadCP2K"}, true}
	}
	for _, el := range elements {
		if _, ok := set[el]; !ok {
			return nil, Error{fmt.Sprintf("%s: %s", UnknownElement, el), "", []string{"ReadCP2K"}, true}
		}
	}
	return set, nil
}

//nextLine returns the next line that is not blank or a comment.
func nextLine(sc *bufio.Scanner) (string, bool) {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, true
	}
	return "", false
}

//readSet parses one basis set block and expands it into Cartesian CGFs,
//in CP2K order: for each angular momentum, for each contraction, one CGF
//per Cartesian component.
func readSet(sc *bufio.Scanner) ([]CGF, error) {
	line, ok := nextLine(sc)
	if !ok {
		return nil, Error{fmt.Sprintf("%s: truncated set", WrongFormat), "", []string{"readSet"}, true}
	}
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return nil, Error{fmt.Sprintf("%s: set header %q", WrongFormat, line), "", []string{"readSet"}, true}
	}
	ints := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, Error{fmt.Sprintf("%s: set header %q", WrongFormat, line), "", []string{"readSet"}, true}
		}
		ints[i] = n
	}
	lmin, lmax, nexp := ints[1], ints[2], ints[3]
	nshell := ints[4:]
	if lmin < 0 || lmax < lmin || nexp <= 0 || len(nshell) != lmax-lmin+1 {
		return nil, Error{fmt.Sprintf("%s: set header %q", WrongFormat, line), "", []string{"readSet"}, true}
	}
	if lmax >= len(shellLabels) {
		return nil, Error{fmt.Sprintf("%s: l=%d", UnsupportedShell, lmax), "", []string{"readSet"}, true}
	}
	ncol := 0
	for _, n := range nshell {
		ncol += n
	}
	exps := make([]float64, nexp)
	coeffs := make([][]float64, nexp)
	for i := 0; i < nexp; i++ {
		line, ok := nextLine(sc)
		if !ok {
			return nil, Error{fmt.Sprintf("%s: truncated set", WrongFormat), "", []string{"readSet"}, true}
		}
		fs := strings.Fields(line)
		if len(fs) != ncol+1 {
			return nil, Error{fmt.Sprintf("%s: expected %d columns in %q", WrongFormat, ncol+1, line), "", []string{"readSet"}, true}
		}
		row := make([]float64, ncol)
		for j, f := range fs {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, Error{fmt.Sprintf("%s: %q", WrongFormat, line), "", []string{"readSet"}, true}
			}
			if j == 0 {
				exps[i] = v
			} else {
				row[j-1] = v
			}
		}
		coeffs[i] = row
	}
	var cgfs []CGF
	col := 0
	for l := lmin; l <= lmax; l++ {
		for is := 0; is < nshell[l-lmin]; is++ {
			for _, label := range shellLabels[l] {
				prims := make([]Primitive, nexp)
				for i := 0; i < nexp; i++ {
					prims[i] = Primitive{Coeff: coeffs[i][col], Exp: exps[i]}
				}
				cgfs = append(cgfs, CGF{Label: label, Prims: prims})
			}
			col++
		}
	}
	return cgfs, nil
}
