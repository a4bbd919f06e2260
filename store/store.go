//Package store caches the intermediate results of a coupling run (projected
//overlap pairs, coupling matrices and orbital energies) in a SQLite
//database, so an interrupted trajectory can restart where it left off.
//Store implements the gonac Store interface.
package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS overlaps (
	pair INTEGER NOT NULL,
	name TEXT NOT NULL,
	rows INTEGER NOT NULL,
	cols INTEGER NOT NULL,
	data BLOB NOT NULL,
	PRIMARY KEY (pair, name)
);
CREATE TABLE IF NOT EXISTS couplings (
	point INTEGER PRIMARY KEY,
	rows INTEGER NOT NULL,
	cols INTEGER NOT NULL,
	data BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS energies (
	frame INTEGER PRIMARY KEY,
	n INTEGER NOT NULL,
	data BLOB NOT NULL
);
`

// Store is a SQLite-backed cache for coupling runs. It is safe for use from
// several goroutines, as the underlying database handle is.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the store at path, creating the database and its tables if
// they do not exist yet.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, Error{fmt.Sprintf("%s: %v", UnableToOpen, err), path, []string{"Open"}, true}
	}
	s := &Store{db: db, path: path}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, Error{fmt.Sprintf("%s: %v", BadSchema, err), path, []string{"Open"}, true}
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filename of the database.
func (s *Store) Path() string {
	return s.path
}

// HasOverlapPair returns whether both projected matrices of the given
// geometry pair are in the store.
func (s *Store) HasOverlapPair(pair int) bool {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM overlaps WHERE pair = ?", pair).Scan(&n)
	return err == nil && n == 2
}

// PutOverlapPair stores the two projected overlap matrices of a geometry
// pair, replacing any previous ones.
func (s *Store) PutOverlapPair(pair int, sji, sij *mat.Dense) error {
	tx, err := s.db.Begin()
	if err != nil {
		return Error{fmt.Sprintf("%s: %v", WriteFailed, err), s.path, []string{"PutOverlapPair"}, true}
	}
	for _, m := range []struct {
		name string
		mtx  *mat.Dense
	}{{"sji", sji}, {"sij", sij}} {
		r, c, blob := encode(m.mtx)
		_, err := tx.Exec("INSERT OR REPLACE INTO overlaps (pair, name, rows, cols, data) VALUES (?, ?, ?, ?, ?)",
			pair, m.name, r, c, blob)
		if err != nil {
			tx.Rollback()
			return Error{fmt.Sprintf("%s: %v", WriteFailed, err), s.path, []string{"PutOverlapPair"}, true}
		}
	}
	if err := tx.Commit(); err != nil {
		return Error{fmt.Sprintf("%s: %v", WriteFailed, err), s.path, []string{"PutOverlapPair"}, true}
	}
	return nil
}

// OverlapPair returns the two projected overlap matrices of a geometry
// pair.
func (s *Store) OverlapPair(pair int) (*mat.Dense, *mat.Dense, error) {
	sji, err := s.overlap(pair, "sji")
	if err != nil {
		return nil, nil, errDecorate(err, "OverlapPair")
	}
	sij, err := s.overlap(pair, "sij")
	if err != nil {
		return nil, nil, errDecorate(err, "OverlapPair")
	}
	return sji, sij, nil
}

func (s *Store) overlap(pair int, name string) (*mat.Dense, error) {
	var r, c int
	var blob []byte
	err := s.db.QueryRow("SELECT rows, cols, data FROM overlaps WHERE pair = ? AND name = ?",
		pair, name).Scan(&r, &c, &blob)
	if err != nil {
		return nil, Error{fmt.Sprintf("%s: pair %d %s: %v", NotFound, pair, name, err), s.path, []string{"overlap"}, true}
	}
	return decode(r, c, blob)
}

// HasCoupling returns whether the coupling matrix of the given trajectory
// point is in the store.
func (s *Store) HasCoupling(point int) bool {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM couplings WHERE point = ?", point).Scan(&n)
	return err == nil && n == 1
}

// PutCoupling stores the coupling matrix of a trajectory point, replacing
// any previous one.
func (s *Store) PutCoupling(point int, coupling *mat.Dense) error {
	r, c, blob := encode(coupling)
	_, err := s.db.Exec("INSERT OR REPLACE INTO couplings (point, rows, cols, data) VALUES (?, ?, ?, ?)",
		point, r, c, blob)
	if err != nil {
		return Error{fmt.Sprintf("%s: %v", WriteFailed, err), s.path, []string{"PutCoupling"}, true}
	}
	return nil
}

// Coupling returns the coupling matrix of a trajectory point.
func (s *Store) Coupling(point int) (*mat.Dense, error) {
	var r, c int
	var blob []byte
	err := s.db.QueryRow("SELECT rows, cols, data FROM couplings WHERE point = ?", point).Scan(&r, &c, &blob)
	if err != nil {
		return nil, Error{fmt.Sprintf("%s: point %d: %v", NotFound, point, err), s.path, []string{"Coupling"}, true}
	}
	return decode(r, c, blob)
}

// PutEnergies stores the orbital energies of a frame, replacing any
// previous ones.
func (s *Store) PutEnergies(frame int, es []float64) error {
	blob := make([]byte, 8*len(es))
	for i, v := range es {
		binary.LittleEndian.PutUint64(blob[8*i:], math.Float64bits(v))
	}
	_, err := s.db.Exec("INSERT OR REPLACE INTO energies (frame, n, data) VALUES (?, ?, ?)",
		frame, len(es), blob)
	if err != nil {
		return Error{fmt.Sprintf("%s: %v", WriteFailed, err), s.path, []string{"PutEnergies"}, true}
	}
	return nil
}

// Energies returns the orbital energies of a frame.
func (s *Store) Energies(frame int) ([]float64, error) {
	var n int
	var blob []byte
	err := s.db.QueryRow("SELECT n, data FROM energies WHERE frame = ?", frame).Scan(&n, &blob)
	if err != nil {
		return nil, Error{fmt.Sprintf("%s: frame %d: %v", NotFound, frame, err), s.path, []string{"Energies"}, true}
	}
	if len(blob) != 8*n {
		return nil, Error{fmt.Sprintf("%s: frame %d", Corrupt, frame), s.path, []string{"Energies"}, true}
	}
	es := make([]float64, n)
	for i := range es {
		es[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[8*i:]))
	}
	return es, nil
}

//matrix blobs are raw little-endian float64s, row major.

func encode(m *mat.Dense) (int, int, []byte) {
	r, c := m.Dims()
	blob := make([]byte, 8*r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			binary.LittleEndian.PutUint64(blob[8*(i*c+j):], math.Float64bits(m.At(i, j)))
		}
	}
	return r, c, blob
}

func decode(r, c int, blob []byte) (*mat.Dense, error) {
	if r <= 0 || c <= 0 || len(blob) != 8*r*c {
		return nil, Error{fmt.Sprintf("%s: %dx%d with %d bytes", Corrupt, r, c, len(blob)), "", []string{"decode"}, true}
	}
	data := make([]float64, r*c)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[8*i:]))
	}
	return mat.NewDense(r, c, data), nil
}

//Errors

//the same as nac.Error, declared here so the store does not depend on the
//rest of gonac.
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

//Error is the general structure for store errors. It fulfills the gonac
//Error interface.
type Error struct {
	message  string
	filename string //the database file.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	if err.filename == "" {
		return err.message
	}
	return fmt.Sprintf("store %s error: %s", err.filename, err.message)
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

//FileName returns the database file behind the store.
func (err Error) FileName() string { return err.filename }

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

const (
	UnableToOpen = "Unable to open database"
	BadSchema    = "Unable to create tables"
	WriteFailed  = "Database write failed"
	NotFound     = "Entry not found in the store"
	Corrupt      = "Corrupt matrix blob in the store"
)
