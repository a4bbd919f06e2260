/*
 * pipeline.go, part of gonac.
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
	"math"

	"github.com/rmera/gonac/basis"
	"github.com/rmera/gonac/pyxaid"
	v3 "github.com/rmera/gonac/v3"
	"gonum.org/v1/gonum/mat"
)

// MOWindow selects the contiguous block of molecular orbitals used for the
// couplings: Occupied orbitals up to and including the HOMO, plus Virtual
// orbitals above it. NHOMO is the 1-based index of the HOMO among the
// orbitals delivered by the MO provider. The zero value selects every
// orbital.
type MOWindow struct {
	NHOMO    int
	Occupied int
	Virtual  int
}

//bounds returns the half-open, 0-based orbital range of the window, given
//the total number of orbitals available.
func (w MOWindow) bounds(total int) (int, int, error) {
	if w == (MOWindow{}) {
		return 0, total, nil
	}
	lo := w.NHOMO - w.Occupied
	hi := w.NHOMO + w.Virtual
	if w.NHOMO < 1 || w.Occupied < 1 || w.Virtual < 0 || lo < 0 || hi > total {
		return 0, 0, CError{fmt.Sprintf("%s: window HOMO %d -%d/+%d over %d orbitals", ErrShape, w.NHOMO, w.Occupied, w.Virtual, total), []string{"MOWindow"}}
	}
	return lo, hi, nil
}

// CouplingDriver runs the full 3-point coupling workflow over a trajectory:
// one atomic-overlap matrix per consecutive geometry pair, projected with
// the MO coefficients of its two frames, then one coupling matrix per
// interior frame, reusing each projected pair for the two couplings it
// borders. Cache, when not nil, stores the projected pairs and the
// couplings, and anything already present there is not recomputed.
type CouplingDriver struct {
	Mol   *Molecule
	Basis basis.Set //must be normalized (basis.Normalize).
	MOs   MOProvider
	//Dt is the time between consecutive frames, in femtoseconds. It is
	//converted to atomic units internally.
	Dt      float64
	Window  MOWindow
	Overlap *OverlapOptions
	Cache   Store
	//From is the global index of the first geometry, used for cache keys
	//and output numbering. Leave it at 0 unless the trajectory was split
	//in chunks.
	From int
}

// NewCouplingDriver returns a driver over the given molecule, normalized
// basis set and MO provider, with a time step of dt femtoseconds between
// frames. The remaining fields can be set directly before running.
func NewCouplingDriver(mol *Molecule, bs basis.Set, mos MOProvider, dt float64) *CouplingDriver {
	return &CouplingDriver{Mol: mol, Basis: bs, MOs: mos, Dt: dt}
}

// Couplings computes one nonadiabatic coupling matrix per interior frame of
// the trajectory, i.e. len(geoms)-2 matrices for len(geoms) geometries, in
// atomic units. The geometries must be in Bohr, one row per atom of the
// driver's molecule, and there must be at least 3 of them.
func (d *CouplingDriver) Couplings(geoms []*v3.Matrix) ([]*mat.Dense, error) {
	couplings, _, err := d.run(geoms)
	return couplings, err
}

// CouplingsFromTraj reads every frame left in trj and computes the
// couplings as Couplings does. The trajectory frames must be in Bohr.
func (d *CouplingDriver) CouplingsFromTraj(trj Traj) ([]*mat.Dense, error) {
	geoms, err := AllFrames(trj)
	if err != nil {
		return nil, errDecorate(err, "CouplingsFromTraj")
	}
	return d.Couplings(geoms)
}

// Hamiltonians computes the couplings and writes them, together with the
// orbital energies, as PYXAID input files under dir: one Ham_i_im (the
// coupling matrix) and Ham_i_re (the orbital energies on the diagonal) pair
// per interior frame. The energies written for each point are those of its
// interior frame.
func (d *CouplingDriver) Hamiltonians(geoms []*v3.Matrix, dir string) error {
	couplings, energies, err := d.run(geoms)
	if err != nil {
		return errDecorate(err, "CouplingDriver.Hamiltonians")
	}
	if err := pyxaid.WriteHamiltonians(dir, d.From, couplings, energies[1:len(energies)-1]); err != nil {
		return errDecorate(err, "CouplingDriver.Hamiltonians")
	}
	return nil
}

func (d *CouplingDriver) run(geoms []*v3.Matrix) ([]*mat.Dense, [][]float64, error) {
	if d.Mol == nil || d.Basis == nil || d.MOs == nil {
		return nil, nil, CError{string(ErrNilData), []string{"CouplingDriver"}}
	}
	if !(d.Dt > 0) || math.IsInf(d.Dt, 0) {
		return nil, nil, CError{fmt.Sprintf("%s: %v fs", ErrBadDt, d.Dt), []string{"CouplingDriver"}}
	}
	if len(geoms) < 3 {
		return nil, nil, CError{fmt.Sprintf("%s: got %d", ErrTooFewFrames, len(geoms)), []string{"CouplingDriver"}}
	}
	ix, err := NewBasisIndex(d.Mol, d.Basis)
	if err != nil {
		return nil, nil, errDecorate(err, "CouplingDriver")
	}
	coeffs, energies, err := d.fetchMOs(len(geoms))
	if err != nil {
		return nil, nil, err
	}
	dt := d.Dt * Fs2Au
	npairs := len(geoms) - 1
	sji := make([]*mat.Dense, npairs)
	sij := make([]*mat.Dense, npairs)
	for i := 0; i < npairs; i++ {
		if d.Cache != nil && d.Cache.HasOverlapPair(i+d.From) {
			if sji[i], sij[i], err = d.Cache.OverlapPair(i + d.From); err == nil {
				log.Printf("gonac: overlaps for pair %d are already in the store", i+d.From)
				continue
			}
			//an unreadable cached pair is just recomputed.
		}
		suv, err := BuildOverlap(ix, geoms[i], geoms[i+1], d.Overlap)
		if err != nil {
			return nil, nil, errDecorate(err, "CouplingDriver")
		}
		if sji[i], err = Project(suv, coeffs[i], coeffs[i+1]); err != nil {
			return nil, nil, errDecorate(err, "CouplingDriver")
		}
		if sij[i], err = Project(suv.T(), coeffs[i+1], coeffs[i]); err != nil {
			return nil, nil, errDecorate(err, "CouplingDriver")
		}
		if d.Cache != nil {
			if err := d.Cache.PutOverlapPair(i+d.From, sji[i], sij[i]); err != nil {
				return nil, nil, errDecorate(err, "CouplingDriver")
			}
		}
	}
	couplings := make([]*mat.Dense, len(geoms)-2)
	for t := range couplings {
		if d.Cache != nil && d.Cache.HasCoupling(t+d.From) {
			if couplings[t], err = d.Cache.Coupling(t + d.From); err == nil {
				log.Printf("gonac: coupling %d is already in the store", t+d.From)
				continue
			}
		}
		if couplings[t], err = CouplingFromProjected(sji[t], sij[t], sji[t+1], sij[t+1], dt); err != nil {
			return nil, nil, errDecorate(err, "CouplingDriver")
		}
		if d.Cache != nil {
			if err := d.Cache.PutCoupling(t+d.From, couplings[t]); err != nil {
				return nil, nil, errDecorate(err, "CouplingDriver")
			}
		}
	}
	return couplings, energies, nil
}

//fetchMOs reads coefficients and energies for every frame from the
//provider and applies the MO window to both.
func (d *CouplingDriver) fetchMOs(nframes int) ([]*mat.Dense, [][]float64, error) {
	coeffs := make([]*mat.Dense, nframes)
	energies := make([][]float64, nframes)
	lo, hi := 0, 0
	for f := 0; f < nframes; f++ {
		c, e, err := d.MOs.MOs(f)
		if err != nil {
			//the provider's error type is not ours to assert on.
			return nil, nil, CError{fmt.Sprintf("reading MOs for frame %d: %v", f, err), []string{"CouplingDriver.fetchMOs"}}
		}
		if c == nil {
			return nil, nil, CError{fmt.Sprintf("%s: MOs for frame %d", ErrNilData, f), []string{"CouplingDriver.fetchMOs"}}
		}
		rows, total := c.Dims()
		if len(e) != total {
			return nil, nil, CError{fmt.Sprintf("%s: frame %d has %d orbitals but %d energies", ErrShape, f, total, len(e)), []string{"CouplingDriver.fetchMOs"}}
		}
		if f == 0 {
			if lo, hi, err = d.Window.bounds(total); err != nil {
				return nil, nil, errDecorate(err, "CouplingDriver.fetchMOs")
			}
		}
		if hi > total {
			return nil, nil, CError{fmt.Sprintf("%s: frame %d has only %d orbitals", ErrShape, f, total), []string{"CouplingDriver.fetchMOs"}}
		}
		if lo == 0 && hi == total {
			coeffs[f] = c
			energies[f] = e
		} else {
			coeffs[f] = c.Slice(0, rows, lo, hi).(*mat.Dense)
			energies[f] = e[lo:hi]
		}
	}
	return coeffs, energies, nil
}

// AllFrames reads every frame remaining in a trajectory into memory.
func AllFrames(trj Traj) ([]*v3.Matrix, error) {
	var frames []*v3.Matrix
	for {
		frame := v3.Zeros(trj.Len())
		err := trj.Next(frame)
		if err != nil {
			switch err.(type) {
			case LastFrameError:
				return frames, nil
			default:
				return nil, err
			}
		}
		frames = append(frames, frame)
	}
}
