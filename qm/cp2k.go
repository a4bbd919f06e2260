//Package qm extracts molecular-orbital data from the output of quantum
//chemistry programs. Only the MO print-out of CP2K is supported for now:
//the "MOLog" file produced when the PRINT%MO section of the SCF input is
//active, with eigenvalues, occupations and coefficients in blocks of up
//to 4 orbitals. Files ending in .gz, .zst or .zstd are decompressed on
//the fly.
package qm

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	nac "github.com/rmera/gonac"
	"gonum.org/v1/gonum/mat"
)

//CP2K is the name of the only program whose orbitals we currently read.
const CP2K = "CP2K"

//parser states for MOLogRead.
const (
	seekBlock = iota
	wantEvals
	wantOccs
	wantRows
)

//moBlock is one column block of the print-out: up to 4 orbitals side by
//side, with one coefficient row per basis function.
type moBlock struct {
	indexes []int
	evals   []float64
	occs    []float64
	rows    [][]float64
}

// MOLogRead parses a CP2K MO print-out. It returns the coefficients as a
// matrix with one row per basis function and one column per orbital, in
// the order CP2K printed them, plus the orbital eigenvalues in Hartree.
// Occupations are validated but not returned. If the file holds several
// complete print-outs (CP2K appends one per SCF cycle when the print key
// asks for it), only the last one is kept.
func MOLogRead(r io.Reader) (*mat.Dense, []float64, error) {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 1024*1024), 1024*1024)
	var cols [][]float64
	var energies []float64
	var block *moBlock
	nao := 0       //basis functions per orbital, learned from the first block.
	lastStart := 0 //first orbital index of the previous block, for restart detection.
	state := seekBlock
	//flush folds the block being read into cols/energies and checks it
	//against the previous ones.
	flush := func() error {
		if block == nil {
			return nil
		}
		if block.evals == nil || block.occs == nil || len(block.rows) == 0 {
			return Error{ErrTruncated, CP2K, "", "", []string{"MOLogRead"}, true}
		}
		if nao == 0 {
			nao = len(block.rows)
		} else if len(block.rows) != nao {
			info := fmt.Sprintf("block has %d coefficient rows, previous ones had %d", len(block.rows), nao)
			return Error{ErrBadMOBlock, CP2K, "", info, []string{"MOLogRead"}, true}
		}
		for j := range block.indexes {
			col := make([]float64, nao)
			for i, row := range block.rows {
				col[i] = row[j]
			}
			cols = append(cols, col)
			energies = append(energies, block.evals[j])
		}
		block = nil
		state = seekBlock
		return nil
	}
	for scan.Scan() {
		fields := strings.Fields(scan.Text())
		if len(fields) == 0 {
			//CP2K also prints a blank line between the occupations and the
			//first coefficient row, so only a blank after some rows ends the
			//block.
			if state == wantRows && len(block.rows) > 0 {
				if err := flush(); err != nil {
					return nil, nil, err
				}
			}
			continue
		}
		//The Fermi-energy footer marks the end of the orbitals.
		if fields[0] == "Fermi" {
			if err := flush(); err != nil {
				return nil, nil, err
			}
			break
		}
		switch state {
		case seekBlock, wantRows:
			if indexes, ok := allInts(fields); ok && len(indexes) <= 4 {
				if err := flush(); err != nil {
					return nil, nil, err
				}
				for j, v := range indexes {
					if v != indexes[0]+j {
						info := fmt.Sprintf("orbital indexes %v are not consecutive", indexes)
						return nil, nil, Error{ErrBadMOBlock, CP2K, "", info, []string{"MOLogRead"}, true}
					}
				}
				//A first index that does not advance means CP2K started the
				//print-out over, and only the new set is to be kept.
				if len(cols) > 0 && indexes[0] <= lastStart {
					cols = nil
					energies = nil
				}
				lastStart = indexes[0]
				block = &moBlock{indexes: indexes}
				state = wantEvals
				continue
			}
			if state == seekBlock {
				continue //title or footer line.
			}
			row, ok := aoRow(fields, len(block.indexes))
			if !ok {
				//a stray line ends the block, like the titles CP2K reprints
				//between sets.
				if err := flush(); err != nil {
					return nil, nil, err
				}
				continue
			}
			if row.index != len(block.rows)+1 {
				info := fmt.Sprintf("basis function %d printed where %d was expected", row.index, len(block.rows)+1)
				return nil, nil, Error{ErrBadMOBlock, CP2K, "", info, []string{"MOLogRead"}, true}
			}
			block.rows = append(block.rows, row.coeffs)
		case wantEvals:
			evals, ok := allFloats(fields)
			if !ok || len(evals) != len(block.indexes) {
				return nil, nil, Error{ErrBadMOBlock, CP2K, "", "eigenvalue line does not match the orbital indexes", []string{"MOLogRead"}, true}
			}
			block.evals = evals
			state = wantOccs
		case wantOccs:
			occs, ok := allFloats(fields)
			if !ok || len(occs) != len(block.indexes) {
				return nil, nil, Error{ErrBadMOBlock, CP2K, "", "occupation line does not match the orbital indexes", []string{"MOLogRead"}, true}
			}
			block.occs = occs
			state = wantRows
		}
	}
	if err := scan.Err(); err != nil {
		return nil, nil, Error{ErrRead, CP2K, "", err.Error(), []string{"MOLogRead"}, true}
	}
	if err := flush(); err != nil {
		return nil, nil, err
	}
	if len(cols) == 0 {
		return nil, nil, Error{ErrNoMOs, CP2K, "", "", []string{"MOLogRead"}, true}
	}
	coeff := mat.NewDense(nao, len(cols), nil)
	for j, col := range cols {
		coeff.SetCol(j, col)
	}
	return coeff, energies, nil
}

//aoRowData is one parsed coefficient row: the 1-based basis function index
//and one coefficient per orbital of the block.
type aoRowData struct {
	index  int
	coeffs []float64
}

//aoRow parses a coefficient row, "index atom symbol label" plus ncols
//coefficients. The atom number, symbol and shell label are not used.
func aoRow(fields []string, ncols int) (aoRowData, bool) {
	if len(fields) != 4+ncols {
		return aoRowData{}, false
	}
	index, err := strconv.Atoi(fields[0])
	if err != nil {
		return aoRowData{}, false
	}
	if _, err := strconv.Atoi(fields[1]); err != nil {
		return aoRowData{}, false
	}
	coeffs, ok := allFloats(fields[4:])
	if !ok {
		return aoRowData{}, false
	}
	return aoRowData{index: index, coeffs: coeffs}, true
}

func allInts(fields []string) ([]int, bool) {
	ret := make([]int, len(fields))
	for i, v := range fields {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, false
		}
		ret[i] = n
	}
	return ret, true
}

func allFloats(fields []string) ([]float64, bool) {
	ret := make([]float64, len(fields))
	for i, v := range fields {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false
		}
		ret[i] = f
	}
	return ret, true
}

// MOLogReadFile parses the CP2K MO print-out in the named file, which may
// be gzip- or zstd-compressed.
func MOLogReadFile(name string) (*mat.Dense, []float64, error) {
	f, z, h, err := openReader(name)
	if err != nil {
		return nil, nil, errDecorate(err, "MOLogReadFile")
	}
	defer f.Close()
	if z != nil {
		defer z.Close()
	}
	coeff, energies, err := MOLogRead(h)
	if err != nil {
		if err2, ok := err.(Error); ok {
			err2.filename = name
			return nil, nil, errDecorate(err2, "MOLogReadFile")
		}
		return nil, nil, errDecorate(err, "MOLogReadFile")
	}
	return coeff, energies, nil
}

// MOLogSet supplies per-frame molecular orbitals from a directory of CP2K
// MO print-out files, one file per trajectory frame. It implements the
// nac.MOProvider interface.
type MOLogSet struct {
	dir     string
	pattern string
}

// NewMOLogSet returns a provider that reads the orbitals of frame i from
// dir/pattern, with pattern a format string with one integer verb, as in
// "mo_coeff_%d.MOLog".
func NewMOLogSet(dir, pattern string) *MOLogSet {
	return &MOLogSet{dir: dir, pattern: pattern}
}

// MOs returns the MO coefficients and eigenvalues for the given frame.
func (M *MOLogSet) MOs(frame int) (*mat.Dense, []float64, error) {
	name := filepath.Join(M.dir, fmt.Sprintf(M.pattern, frame))
	coeff, energies, err := MOLogReadFile(name)
	if err != nil {
		return nil, nil, errDecorate(err, fmt.Sprintf("MOs frame %d", frame))
	}
	return coeff, energies, nil
}

//zstd.Decoder.Close returns nothing, so a wrapper is needed for the
//decoder to work as an io.ReadCloser.
type zstdCloser struct {
	closeql func()
	*zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.closeql()
	return nil
}

//openReader opens name and wires the decompressor its suffix calls for.
func openReader(name string) (*os.File, io.ReadCloser, *bufio.Reader, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, nil, Error{ErrCantOpen, CP2K, name, err.Error(), []string{"openReader"}, true}
	}
	var in io.Reader = f
	var z io.ReadCloser
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		gz, err := gzip.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, nil, nil, Error{ErrCantOpen, CP2K, name, err.Error(), []string{"openReader"}, true}
		}
		z = gz
		in = gz
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, nil, nil, Error{ErrCantOpen, CP2K, name, err.Error(), []string{"openReader"}, true}
		}
		z = zstdCloser{zr.Close, zr}
		in = z
	}
	return f, z, bufio.NewReader(in), nil
}

//Errors

//errDecorate is a helper function that asserts that the error implements
//nac.Error and decorates the error with the caller's name before returning
//it. If used with a non-nac.Error error, it will cause a panic.
func errDecorate(err error, caller string) error {
	err2 := err.(nac.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the general structure for errors when reading the output of a
//quantum chemistry program. It fulfills nac.Error.
type Error struct {
	message    string
	program    string //the program whose output failed to parse.
	filename   string //the output file with problems, or empty string if none.
	additional string //any further details, such as an underlying error.
	deco       []string
	critical   bool
}

func (err Error) Error() string {
	s := fmt.Sprintf("%s output file %s error: %s", err.program, err.filename, err.message)
	if err.additional != "" {
		s = fmt.Sprintf("%s (%s)", s, err.additional)
	}
	return s
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

//FileName returns the output file to which the error is associated.
func (err Error) FileName() string { return err.filename }

//Program returns the program whose output could not be parsed.
func (err Error) Program() string { return err.program }

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

const (
	ErrCantOpen   = "Unable to open output file"
	ErrRead       = "Error reading output"
	ErrNoMOs      = "No molecular orbitals found in output"
	ErrBadMOBlock = "Wrong format in MO coefficients block"
	ErrTruncated  = "Output ends in the middle of an MO block"
)
