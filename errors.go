/*
 * errors.go, part of gonac.
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

// CError is the concrete error type of the root package. It implements the
// Error interface declared in interfaces.go.
type CError struct {
	msg  string
	deco []string
}

func (err CError) Error() string { return err.msg }

// Decorate adds the dec string to the decoration slice of strings of the
// error and returns the resulting slice. An empty dec is not added, so
// Decorate("") just returns the current decoration.
func (err CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// errDecorate is a helper function that asserts that the error implements
// Error and decorates the error with the caller's name before returning it.
// If used with a non-Error error, it will cause a panic.
func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}

// PanicMsg is a message type used for panics and to seed CError messages.
// It does satisfy the error interface, but for returned errors use CError.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNilData         = PanicMsg("gonac: Nil data given")
	ErrShape           = PanicMsg("gonac: Dimension mismatch")
	ErrNotFinite       = PanicMsg("gonac: Non-finite value in overlap matrix")
	ErrBadDt           = PanicMsg("gonac: The time step dt must be positive and finite")
	ErrIndexOutOfRange = PanicMsg("gonac: Basis function index out of range")
	ErrMissingSymbol   = PanicMsg("gonac: Atom symbol not present in the basis set")
	ErrTooFewFrames    = PanicMsg("gonac: A coupling calculation needs at least 3 frames")
)

// lastFrameError implements LastFrameError. It signals the normal exhaustion
// of an in-memory trajectory.
type lastFrameError struct {
	deco     []string
	fileName string
}

// NormalLastFrameTermination does nothing. It is there so the interface
// can be distinguished in a typeswitch.
func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return "molecule" }

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
