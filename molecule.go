/*
 * molecule.go, part of gonac.
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
	"fmt"
	"log"

	v3 "github.com/rmera/gonac/v3"
)

// Atom contains the properties of one atom that are relevant for building
// overlap matrices. The coordinates live separately, in v3.Matrix objects,
// one per trajectory frame.
type Atom struct {
	Symbol string  //chemical symbol, as it appears in the basis set file
	Z      int     //atomic number
	Mass   float64 //in Daltons
}

// Molecule is a topology (ordered set of atoms) plus any number of frames
// of coordinates for those atoms. The atom order defines the basis-function
// ordering of every overlap and coefficient matrix, so it must not change
// during a run. Molecule implements the Traj interface, working as an
// in-memory trajectory.
type Molecule struct {
	Atoms   []*Atom
	Coords  []*v3.Matrix
	current int
}

// NewMolecule builds a Molecule from a list of chemical symbols and,
// optionally, coordinate frames. Symbols missing from the atomic data
// tables produce a warning, not an error: whether a symbol is usable is
// decided later, against the basis set.
func NewMolecule(symbols []string, frames []*v3.Matrix) (*Molecule, error) {
	if symbols == nil {
		return nil, CError{string(ErrNilData), []string{"NewMolecule"}}
	}
	atoms := make([]*Atom, 0, len(symbols))
	for _, s := range symbols {
		at := &Atom{Symbol: s}
		z, err := AtomicNumber(s)
		if err != nil {
			log.Printf("gonac: no atomic data for symbol %s, filling with zeros", s)
		} else {
			at.Z = z
			at.Mass, _ = AtomicMass(s) //if the Z lookup worked, this one will too
		}
		atoms = append(atoms, at)
	}
	M := &Molecule{Atoms: atoms}
	for _, f := range frames {
		if err := M.AddFrame(f); err != nil {
			return nil, errDecorate(err, "NewMolecule")
		}
	}
	return M, nil
}

// Atom returns the atom with index i. It panics if i is out of range.
func (M *Molecule) Atom(i int) *Atom {
	return M.Atoms[i]
}

// Len returns the number of atoms in the molecule.
func (M *Molecule) Len() int {
	return len(M.Atoms)
}

// Symbols returns the chemical symbols of the atoms, in order.
func (M *Molecule) Symbols() []string {
	s := make([]string, len(M.Atoms))
	for i, at := range M.Atoms {
		s[i] = at.Symbol
	}
	return s
}

// AddFrame appends a frame of coordinates to the molecule. The frame must
// have one vector per atom.
func (M *Molecule) AddFrame(frame *v3.Matrix) error {
	if frame == nil {
		return CError{string(ErrNilData), []string{"Molecule.AddFrame"}}
	}
	if frame.NVecs() != M.Len() {
		return CError{fmt.Sprintf("%s: frame has %d vectors for %d atoms", ErrShape, frame.NVecs(), M.Len()), []string{"Molecule.AddFrame"}}
	}
	M.Coords = append(M.Coords, frame)
	return nil
}

// LenFrames returns the number of coordinate frames in the molecule.
func (M *Molecule) LenFrames() int {
	return len(M.Coords)
}

//The following implement the Traj interface, so a Molecule with several
//frames can feed a coupling run directly.

// Readable returns true if there are frames left to read.
func (M *Molecule) Readable() bool {
	return M.current < len(M.Coords)
}

// InitRead rewinds the trajectory to its first frame.
func (M *Molecule) InitRead() error {
	M.current = 0
	return nil
}

// Next copies the coordinates of the next frame into output, which must
// have one vector per atom. A nil output skips the frame. After the last
// frame it returns a LastFrameError.
func (M *Molecule) Next(output *v3.Matrix) error {
	if M.current >= len(M.Coords) {
		return newlastFrameError("", "Molecule.Next")
	}
	if output == nil {
		M.current++
		return nil
	}
	if output.NVecs() != M.Len() {
		return CError{fmt.Sprintf("%s: output has %d vectors for %d atoms", ErrShape, output.NVecs(), M.Len()), []string{"Molecule.Next"}}
	}
	output.Copy(M.Coords[M.current])
	M.current++
	return nil
}
