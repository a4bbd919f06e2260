//Package pyxaid writes nonadiabatic couplings and orbital energies in the
//input format of the PYXAID surface-hopping program: for each trajectory
//point, a Ham_i_im file with the coupling matrix and a Ham_i_re file with
//the orbital energies on the diagonal, both in atomic units.
package pyxaid

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// WriteHamiltonians writes one Ham_i_im / Ham_i_re file pair per coupling
// matrix under dir, creating the directory if needed, with i starting at
// from. couplings[k] and energies[k] belong to the same trajectory point:
// the im file holds the coupling matrix with its diagonal forced to zero,
// and the re file a diagonal matrix with the orbital energies. Every
// coupling must be square, with one row per energy.
func WriteHamiltonians(dir string, from int, couplings []*mat.Dense, energies [][]float64) error {
	if len(couplings) != len(energies) {
		return Error{fmt.Sprintf("%s: %d couplings for %d energy sets", MismatchedData, len(couplings), len(energies)), "", []string{"WriteHamiltonians"}, true}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Error{fmt.Sprintf("%s: %v", UnableToCreate, err), dir, []string{"WriteHamiltonians"}, true}
	}
	for k, D := range couplings {
		r, c := D.Dims()
		if r != c || r != len(energies[k]) {
			return Error{fmt.Sprintf("%s: point %d is %dx%d with %d energies", MismatchedData, k, r, c, len(energies[k])), "", []string{"WriteHamiltonians"}, true}
		}
		im := filepath.Join(dir, fmt.Sprintf("Ham_%d_im", from+k))
		if err := writeMatrix(im, D, true); err != nil {
			return errDecorate(err, "WriteHamiltonians")
		}
		re := filepath.Join(dir, fmt.Sprintf("Ham_%d_re", from+k))
		if err := writeMatrix(re, mat.NewDiagDense(len(energies[k]), energies[k]), false); err != nil {
			return errDecorate(err, "WriteHamiltonians")
		}
	}
	return nil
}

//writeMatrix writes m row by row in the whitespace-separated %14.8e format
//PYXAID reads. zeroDiag forces the diagonal to zero, as the imaginary part
//of the vibronic Hamiltonian requires.
func writeMatrix(path string, m mat.Matrix, zeroDiag bool) error {
	f, err := os.Create(path)
	if err != nil {
		return Error{UnableToCreate, path, []string{"writeMatrix"}, true}
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if zeroDiag && i == j {
				v = 0
			}
			if j > 0 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprintf(w, "%14.8e", v)
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return Error{fmt.Sprintf("%s: %v", WriteFailed, err), path, []string{"writeMatrix"}, true}
	}
	return nil
}

// ReadHamiltonian reads back one whitespace-separated matrix file, as
// written by WriteHamiltonians.
func ReadHamiltonian(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Error{UnableToOpen, path, []string{"ReadHamiltonian"}, true}
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1024*1024), 1024*1024) //rows can be long
	var data []float64
	rows, cols := 0, 0
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if cols == 0 {
			cols = len(fields)
		} else if len(fields) != cols {
			return nil, Error{fmt.Sprintf("%s: row %d has %d columns, not %d", WrongFormat, rows, len(fields), cols), path, []string{"ReadHamiltonian"}, true}
		}
		for _, fd := range fields {
			v, err := strconv.ParseFloat(fd, 64)
			if err != nil {
				return nil, Error{fmt.Sprintf("%s: %q", WrongFormat, fd), path, []string{"ReadHamiltonian"}, true}
			}
			data = append(data, v)
		}
		rows++
	}
	if rows == 0 {
		return nil, Error{fmt.Sprintf("%s: empty matrix", WrongFormat), path, []string{"ReadHamiltonian"}, true}
	}
	return mat.NewDense(rows, cols, data), nil
}

// ReadEnergies reads the orbital energies from the diagonal of a Ham_i_re
// file.
func ReadEnergies(path string) ([]float64, error) {
	m, err := ReadHamiltonian(path)
	if err != nil {
		return nil, errDecorate(err, "ReadEnergies")
	}
	r, c := m.Dims()
	if r != c {
		return nil, Error{fmt.Sprintf("%s: %dx%d is not square", WrongFormat, r, c), path, []string{"ReadEnergies"}, true}
	}
	es := make([]float64, r)
	for i := range es {
		es[i] = m.At(i, i)
	}
	return es, nil
}

// ReadCouplingSeries reads the coupling matrices of n consecutive
// trajectory points back from the Ham_i_im files under dir, with i
// starting at from.
func ReadCouplingSeries(dir string, from, n int) ([]*mat.Dense, error) {
	couplings := make([]*mat.Dense, n)
	for k := range couplings {
		var err error
		couplings[k], err = ReadHamiltonian(filepath.Join(dir, fmt.Sprintf("Ham_%d_im", from+k)))
		if err != nil {
			return nil, errDecorate(err, "ReadCouplingSeries")
		}
	}
	return couplings, nil
}

// ReadEnergySeries reads the orbital energies of n consecutive trajectory
// points from the Ham_i_re files under dir, with i starting at from. The
// result has one row per orbital, so row j is the time series of orbital
// j, ready for gap analysis.
func ReadEnergySeries(dir string, from, n int) ([][]float64, error) {
	var series [][]float64
	for k := 0; k < n; k++ {
		es, err := ReadEnergies(filepath.Join(dir, fmt.Sprintf("Ham_%d_re", from+k)))
		if err != nil {
			return nil, errDecorate(err, "ReadEnergySeries")
		}
		if series == nil {
			series = make([][]float64, len(es))
			for j := range series {
				series[j] = make([]float64, n)
			}
		}
		if len(es) != len(series) {
			return nil, Error{fmt.Sprintf("%s: point %d has %d orbitals, the first one %d", WrongFormat, from+k, len(es), len(series)), dir, []string{"ReadEnergySeries"}, true}
		}
		for j, e := range es {
			series[j][k] = e
		}
	}
	return series, nil
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

//Error is the general structure for PYXAID input/output errors. It fulfills
//the gonac Error interface.
type Error struct {
	message  string
	filename string //the offending file, or an empty string.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	if err.filename == "" {
		return err.message
	}
	return fmt.Sprintf("pyxaid file %s error: %s", err.filename, err.message)
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

//FileName returns the file to which the failing operation referred.
func (err Error) FileName() string { return err.filename }

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

const (
	UnableToOpen   = "Unable to open file"
	UnableToCreate = "Unable to create file"
	WriteFailed    = "Failed to write file"
	WrongFormat    = "Wrong format in matrix file"
	MismatchedData = "Couplings and energies do not match"
)
