/*
 * units.go, part of gonac.
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

//This provides useful conversion factors and other constants.
//Couplings are built in atomic units throughout the library: lengths in Bohr,
//energies in Hartree, times in atomic time units.

//Conversions
const (
	A2Bohr = 1.889725989 //Angstrom to Bohr
	Bohr2A = 1 / 1.889725989
	Fs2Au  = 41.341374575751 //femtosecond to atomic time unit
	Au2Fs  = 1 / 41.341374575751
	H2eV   = 27.211386 //Hartree to electronvolt
	EV2H   = 1 / 27.211386
	H2Kcal = 627.509 //Hartree to Kcal/mol
	Kcal2H = 1 / 627.509
)
