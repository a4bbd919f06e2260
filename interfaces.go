/*
 * interfaces.go, part of gonac.
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
	v3 "github.com/rmera/gonac/v3"
	"gonum.org/v1/gonum/mat"
)

// Traj is the interface for trajectory objects: sources of one geometry
// per frame, all with the same atoms in the same order.
type Traj interface {

	//Is the trajectory ready to be read?
	Readable() bool

	//Next reads the next frame into output, which must have one vector per
	//atom. If output is nil, the frame is read and discarded.
	Next(output *v3.Matrix) error

	//Returns the number of atoms per frame
	Len() int
}

// Atomer is the basic interface for a topology.
type Atomer interface {

	//Atom returns the Atom corresponding to the index i
	//of the Atom slice in the topology. Should panic if
	//out of range.
	Atom(i int) *Atom

	Len() int
}

// MOProvider supplies, per trajectory frame, the molecular-orbital
// coefficients (one column per orbital, one row per basis function, in the
// same basis ordering used by the overlap matrices) and the orbital energies
// in Hartree.
type MOProvider interface {
	MOs(frame int) (coefficients *mat.Dense, energies []float64, err error)
}

// PrimitiveOverlaper computes the overlap integral between two primitive
// Cartesian Gaussians centered at ra and rb (atomic units, 3 elements each),
// with angular momenta la and lb (x,y,z powers) and exponents ea and eb.
// Contraction coefficients are NOT applied here; the overlap builder weights
// each primitive pair by them. Implementations must be safe for concurrent
// use: the builder calls this from several goroutines at once.
type PrimitiveOverlaper interface {
	Overlap(ra, rb []float64, la, lb [3]int, ea, eb float64) float64
}

// Store is the interface for caches of intermediate coupling results, so an
// interrupted trajectory can restart without recomputing. Overlap pairs are
// the MO-projected matrices of one consecutive-geometry pair; couplings are
// indexed by interior frame. The Has methods report presence only: a false
// (including on a broken cache) just means the result will be recomputed.
type Store interface {
	HasOverlapPair(pair int) bool
	PutOverlapPair(pair int, sji, sij *mat.Dense) error
	OverlapPair(pair int) (sji, sij *mat.Dense, err error)
	HasCoupling(point int) bool
	PutCoupling(point int, coupling *mat.Dense) error
	Coupling(point int) (*mat.Dense, error)
}

//Errors

//This error predates the "wrapping" error system of Go (i.e. the "%w" directive and the errors package). We should avoid
//using the Decorate method and/or make it use the "%w" directive internally.

// Error is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing it's type or wrapping it around something else.
type Error interface {
	Error() string
	Decorate(string) []string //This is the new thing for errors. It allows you to add information when you pass it up. Each call also returns the "decoration" slice of strins resulting from the current call. If passed an empty string, it should just return the current value, not add the empty string to the slice.
	//The decorate slice should contain a list of functions in the calling stack, plus, for each function any relevant information, or nothing. If information is to be added to an element of the slice, it should be in this format: "FunctionName: Extra info"
}

// TrajError is the interface for errors in trajectories
type TrajError interface {
	Error
	Critical() bool
	FileName() string
	Format() string
}

// LastFrameError has a useless function to distinguish the harmless errors (i.e. last frame) so  they can be
// filtered in a typeswitch that looks for this interface.
type LastFrameError interface {
	TrajError
	NormalLastFrameTermination() //does nothing, just to separate this interface from other TrajError's

}
