/*
 * doc.go, part of gonac.
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

/*Package nac is the main package of the gonac library. It computes nonadiabatic
coupling matrices between electronic states sampled along a molecular-dynamics
trajectory, to be used as input for surface-hopping excited-state dynamics
(PYXAID).


	**gonac Capabilities**


    Builds the dense atomic-orbital overlap matrix between two geometries of a
	molecule from a basis of contracted Gaussian functions, distributing rows
	over a worker pool, in Cartesian or spherical-harmonics representation.

    Projects atomic-orbital overlap matrices onto molecular-orbital coefficient
	spaces from two timesteps.

    Estimates the nonadiabatic coupling matrix for each interior frame of a
	trajectory from three consecutive geometries and their MO coefficients,
	with a three-point finite-difference scheme.

    Reads multi-frame XYZ trajectories, plain or compressed (gzip and zstd),
	sequentially, and splits them into chunks for distributed electronic
	structure runs.

    Reads CP2K basis-set files (BASIS_MOLOPT format), normalizing the
	contractions, and CP2K MO logs with the coefficients and energies for
	each frame.

    Caches projected overlaps, couplings and energies in a SQLite file, so an
	interrupted run restarts where it left.

    Writes couplings and energies as the Hamiltonian files expected by PYXAID.

    Computes autocorrelation functions, dephasing functions and spectral
	densities from energy gaps along the trajectory, and plots the results.


gonac uses the v3.Matrix type for coordinates, based on gonum.org/v1/gonum/mat,
where each row represents one point in space. Plain gonum Dense matrices are
used for every overlap, coefficient and coupling matrix, so results integrate
directly with gonum-based analysis code.*/
package nac
