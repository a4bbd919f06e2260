//Package xyz reads and writes molecular geometries and trajectories in the
//XYZ format: any number of concatenated frames, each one an atom-count
//line, a comment line and one "Symbol x y z" line per atom, with the
//coordinates in Angstrom. Files ending in .gz, .zst or .zstd are
//compressed and decompressed on the fly.
package xyz

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
	v3 "github.com/rmera/gonac/v3"
)

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
		return nil, nil, nil, Error{UnableToOpen, name, []string{"openReader"}, true}
	}
	var in io.Reader = f
	var z io.ReadCloser
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		gz, err := gzip.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, nil, nil, Error{fmt.Sprintf("%s: %v", UnableToOpen, err), name, []string{"openReader"}, true}
		}
		z = gz
		in = gz
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, nil, nil, Error{fmt.Sprintf("%s: %v", UnableToOpen, err), name, []string{"openReader"}, true}
		}
		z = zstdCloser{zr.Close, zr}
		in = z
	}
	return f, z, bufio.NewReader(in), nil
}

//openWriter creates name and wires the compressor its suffix calls for.
func openWriter(name string) (*os.File, io.WriteCloser, *bufio.Writer, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, nil, Error{UnableToCreate, name, []string{"openWriter"}, true}
	}
	var out io.Writer = f
	var z io.WriteCloser
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		gz := gzip.NewWriter(f)
		z = gz
		out = gz
	case ".zst", ".zstd":
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, nil, nil, Error{fmt.Sprintf("%s: %v", UnableToCreate, err), name, []string{"openWriter"}, true}
		}
		z = zw
		out = zw
	}
	return f, z, bufio.NewWriter(out), nil
}

//Read!

// XYZR reads an XYZ trajectory. It implements the nac.Traj interface.
type XYZR struct {
	f        *os.File
	z        io.ReadCloser //decompressor, nil for plain files.
	h        *bufio.Reader
	natoms   int
	symbols  []string
	first    *v3.Matrix //the first frame, parsed on opening.
	filename string
	bohr     bool
	readable bool
}

// New opens an XYZ trajectory for reading. If bohr is given and true, the
// coordinates of every frame are converted from the Angstrom of the file
// to Bohr as they are read, which is what the overlap machinery expects.
// The first frame is parsed immediately, so the atom symbols are available
// right away; Next still delivers that frame first.
func New(name string, bohr ...bool) (*XYZR, error) {
	X := new(XYZR)
	X.filename = name
	if len(bohr) > 0 && bohr[0] {
		X.bohr = true
	}
	var err error
	X.f, X.z, X.h, err = openReader(name)
	if err != nil {
		return nil, errDecorate(err, "New")
	}
	natoms, symbols, frame, err := readFrame(X.h, X.bohr)
	if err != nil {
		X.f.Close()
		if err == io.EOF {
			return nil, Error{fmt.Sprintf("%s: no frames", WrongFormat), name, []string{"New"}, true}
		}
		return nil, errDecorate(err, "New")
	}
	X.natoms = natoms
	X.symbols = symbols
	X.first = frame
	X.readable = true
	return X, nil
}

//readFrame parses one frame from h. A clean end of the stream before the
//atom-count line is reported as io.EOF; anything else that cuts a frame
//short is an error.
func readFrame(h *bufio.Reader, bohr bool) (int, []string, *v3.Matrix, error) {
	line, err := h.ReadString('\n')
	if err == io.EOF && strings.TrimSpace(line) == "" {
		return 0, nil, nil, io.EOF
	}
	if err != nil && err != io.EOF {
		return 0, nil, nil, Error{fmt.Sprintf("%s: %v", ReadError, err), "", []string{"readFrame"}, true}
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || natoms <= 0 {
		return 0, nil, nil, Error{fmt.Sprintf("%s: atom count %q", WrongFormat, strings.TrimSpace(line)), "", []string{"readFrame"}, true}
	}
	if _, err := h.ReadString('\n'); err != nil { //the comment line
		return 0, nil, nil, Error{fmt.Sprintf("%s: frame truncated after the atom count", WrongFormat), "", []string{"readFrame"}, true}
	}
	symbols := make([]string, natoms)
	frame := v3.Zeros(natoms)
	for i := 0; i < natoms; i++ {
		line, err := h.ReadString('\n')
		if err != nil && err != io.EOF {
			return 0, nil, nil, Error{fmt.Sprintf("%s: %v", ReadError, err), "", []string{"readFrame"}, true}
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return 0, nil, nil, Error{fmt.Sprintf("%s: frame truncated at atom %d", WrongFormat, i), "", []string{"readFrame"}, true}
		}
		symbols[i] = fields[0]
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				return 0, nil, nil, Error{fmt.Sprintf("%s: coordinate %q", WrongFormat, fields[j+1]), "", []string{"readFrame"}, true}
			}
			if bohr {
				v *= nac.A2Bohr
			}
			frame.Set(i, j, v)
		}
	}
	return natoms, symbols, frame, nil
}

// Readable returns true if it is possible to call Next on the trajectory.
func (X *XYZR) Readable() bool {
	return X.readable
}

// Len returns the number of atoms in each frame of the trajectory.
func (X *XYZR) Len() int {
	return X.natoms
}

// Symbols returns the chemical symbols of the atoms, in frame order.
func (X *XYZR) Symbols() []string {
	s := make([]string, len(X.symbols))
	copy(s, X.symbols)
	return s
}

// Next reads the next frame into output, which must have one vector per
// atom. A nil output reads and discards the frame. After the last frame it
// closes the file and returns a nac.LastFrameError. Every frame must carry
// the same atoms, in the same order, as the first one.
func (X *XYZR) Next(output *v3.Matrix) error {
	if !X.readable {
		return Error{TrajUnIniRead, X.filename, []string{"Next"}, true}
	}
	var frame *v3.Matrix
	if X.first != nil {
		frame = X.first
		X.first = nil
	} else {
		natoms, symbols, f, err := readFrame(X.h, X.bohr)
		if err == io.EOF {
			X.Close()
			return newlastFrameError(X.filename, "Next")
		}
		if err != nil {
			return errDecorate(err, "Next")
		}
		if natoms != X.natoms {
			return Error{fmt.Sprintf("%s: frame with %d atoms in a %d-atom trajectory", WrongFormat, natoms, X.natoms), X.filename, []string{"Next"}, true}
		}
		for i, s := range symbols {
			if s != X.symbols[i] {
				return Error{fmt.Sprintf("%s: atom %d changed from %s to %s", WrongFormat, i, X.symbols[i], s), X.filename, []string{"Next"}, true}
			}
		}
		frame = f
	}
	if output == nil {
		return nil
	}
	if output.NVecs() != X.natoms {
		return Error{fmt.Sprintf("%d atoms per frame, but %d rows given", X.natoms, output.NVecs()), X.filename, []string{"Next"}, true}
	}
	output.Copy(frame)
	return nil
}

// Close closes the trajectory and marks it as unreadable.
func (X *XYZR) Close() {
	if X.z != nil {
		X.z.Close()
		X.z = nil
	}
	if X.f != nil {
		X.f.Close()
		X.f = nil
	}
	X.readable = false
}

// Read reads a whole XYZ file into a Molecule, with one coordinate frame
// per XYZ frame. If bohr is given and true the coordinates are converted
// from Angstrom to Bohr.
func Read(name string, bohr ...bool) (*nac.Molecule, error) {
	X, err := New(name, bohr...)
	if err != nil {
		return nil, errDecorate(err, "Read")
	}
	defer X.Close()
	var frames []*v3.Matrix
	for {
		frame := v3.Zeros(X.Len())
		err := X.Next(frame)
		if err != nil {
			if _, ok := err.(nac.LastFrameError); ok {
				break
			}
			return nil, errDecorate(err, "Read")
		}
		frames = append(frames, frame)
	}
	mol, err := nac.NewMolecule(X.Symbols(), frames)
	if err != nil {
		return nil, errDecorate(err, "Read")
	}
	return mol, nil
}

//Write!

// XYZW writes an XYZ trajectory, compressed or not depending on the file
// suffix.
type XYZW struct {
	f         *os.File
	z         io.WriteCloser //compressor, nil for plain files.
	h         *bufio.Writer
	symbols   []string
	filename  string
	frombohr  bool
	frames    int
	writeable bool
}

// NewWriter creates an XYZ trajectory writer for the given atoms. If
// fromBohr is given and true, the coordinates handed to WNext are
// converted from Bohr to the Angstrom customary in XYZ files.
func NewWriter(name string, symbols []string, fromBohr ...bool) (*XYZW, error) {
	W := new(XYZW)
	W.filename = name
	W.symbols = symbols
	if len(fromBohr) > 0 && fromBohr[0] {
		W.frombohr = true
	}
	var err error
	W.f, W.z, W.h, err = openWriter(name)
	if err != nil {
		return nil, errDecorate(err, "NewWriter")
	}
	W.writeable = true
	return W, nil
}

// WNext writes coord as the next frame. The comment, if given, goes in the
// frame's second line.
func (W *XYZW) WNext(coord *v3.Matrix, comment ...string) error {
	if !W.writeable {
		return Error{TrajUnIniWrite, W.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, W.filename, []string{"WNext"}, true}
	}
	if coord.NVecs() != len(W.symbols) {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", coord.NVecs(), len(W.symbols)), W.filename, []string{"WNext"}, true}
	}
	c := "frame " + strconv.Itoa(W.frames)
	if len(comment) > 0 {
		c = comment[0]
	}
	fmt.Fprintf(W.h, "%d\n%s\n", len(W.symbols), c)
	for i, s := range W.symbols {
		x, y, z := coord.At(i, 0), coord.At(i, 1), coord.At(i, 2)
		if W.frombohr {
			x, y, z = x*nac.Bohr2A, y*nac.Bohr2A, z*nac.Bohr2A
		}
		fmt.Fprintf(W.h, "%-3s %12.6f %12.6f %12.6f\n", s, x, y, z)
	}
	W.frames++
	return nil
}

// Close flushes and closes the trajectory. The writer cannot be used after
// this call.
func (W *XYZW) Close() {
	if !W.writeable {
		return
	}
	W.h.Flush()
	if W.z != nil {
		W.z.Close()
	}
	W.f.Close()
	W.writeable = false
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

//Error is the general structure for XYZ trajectory errors. It fulfills
//nac.Error and nac.TrajError.
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("xyz file %s error: %s", err.filename, err.message)
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

//FileName returns the file to which the failing trajectory was associated.
func (err Error) FileName() string { return err.filename }

//Format returns the format of the file associated to the error.
func (err Error) Format() string { return "xyz" }

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	WriteError     = "Error writing frame"
	UnableToOpen   = "Unable to open file"
	UnableToCreate = "Unable to create file"
	NilCoordinates = "Given nil coordinates"
	WrongFormat    = "Wrong format in the XYZ file or frame"
	EOF            = "EOF"
)

//lastFrameError implements nac.LastFrameError.
type lastFrameError struct {
	deco     []string
	fileName string
}

//NormalLastFrameTermination does nothing.
func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return "xyz" }

func (E lastFrameError) Decorate(deco string) []string {
	//Even though this method does not use a pointer as a receiver, and tries to alter the receiver,
	//it should work, since E.deco is a slice, and hence a pointer itself.
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}
