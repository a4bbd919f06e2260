//Package nacstat analyzes the time series that come out of a nonadiabatic
//coupling calculation: autocorrelation functions, optical-response
//dephasing times and spectral densities, plus Gaussian broadening of
//spectra. Times are in femtoseconds and frequencies in cm-1 throughout.
package nacstat

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

//the conversion from cycles/fs to cm-1, i.e. 1/c with c in cm/fs.
const cyclesPerFs2Cm = 33356.40952

// Autocorrelate returns the unnormalized and the normalized
// autocorrelation functions of f. The mean of f is subtracted first; lags
// wrap around the end of the series, so uacf[0] is the biased variance and
// nacf[0] is 1. A series with no variance has no normalized
// autocorrelation, which is reported as an error.
func Autocorrelate(f []float64) (uacf, nacf []float64, err error) {
	n := len(f)
	if n < 2 {
		return nil, nil, Error{fmt.Sprintf("%s: %d points", NotEnoughData, n), []string{"Autocorrelate"}, true}
	}
	mean := stat.Mean(f, nil)
	df := make([]float64, n)
	for i, v := range f {
		df[i] = v - mean
	}
	uacf = make([]float64, n)
	for k := 0; k < n; k++ {
		var s float64
		for i := 0; i < n; i++ {
			s += df[i] * df[(i+k)%n]
		}
		uacf[k] = s / float64(n)
	}
	if uacf[0] == 0 {
		return nil, nil, Error{FlatSignal, []string{"Autocorrelate"}, true}
	}
	nacf = make([]float64, n)
	for k, v := range uacf {
		nacf[k] = v / uacf[0]
	}
	return uacf, nacf, nil
}

//cumTrapz is the cumulative trapezoidal integral of f on a grid of
//spacing dt.
func cumTrapz(f []float64, dt float64) []float64 {
	out := make([]float64, len(f))
	for i := 1; i < len(f); i++ {
		out[i] = out[i-1] + 0.5*dt*(f[i-1]+f[i])
	}
	return out
}

// Dephasing computes the optical-response dephasing function of f, an
// unnormalized autocorrelation function sampled every dt fs, through the
// second-order cumulant expansion: the double cumulative integral of f,
// exponentiated with a minus sign (Mukamel, Principles of Nonlinear
// Optical Spectroscopy; Kilina et al., J. Phys. Chem. C 113, 4871, 2009).
// The dephasing time tau comes from a least-squares fit of the function to
// the Gaussian exp(-0.5(t/tau)^2), and fit holds that Gaussian evaluated
// on the same time grid.
func Dephasing(f []float64, dt float64) (deph, fit []float64, tau float64, err error) {
	if len(f) < 2 {
		return nil, nil, 0, Error{fmt.Sprintf("%s: %d points", NotEnoughData, len(f)), []string{"Dephasing"}, true}
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, nil, 0, Error{fmt.Sprintf("%s: dt %v", BadParameter, dt), []string{"Dephasing"}, true}
	}
	cumu := cumTrapz(cumTrapz(f, dt), dt)
	deph = make([]float64, len(f))
	for i, v := range cumu {
		deph[i] = math.Exp(-v)
	}
	//the fit is linear in 1/tau^2: -2 ln deph = (t/tau)^2. Points where
	//the exponential under or overflowed carry no information and are left
	//out.
	var xs, ys []float64
	for i := 1; i < len(deph); i++ {
		if deph[i] <= 0 || math.IsInf(deph[i], 0) {
			continue
		}
		t := float64(i) * dt
		xs = append(xs, t*t)
		ys = append(ys, -2*math.Log(deph[i]))
	}
	if len(xs) < 2 {
		return nil, nil, 0, Error{fmt.Sprintf("%s: %d usable points", NotEnoughData, len(xs)), []string{"Dephasing"}, true}
	}
	_, beta := stat.LinearRegression(xs, ys, nil, true)
	if !(beta > 0) || math.IsInf(beta, 0) {
		return nil, nil, 0, Error{NoDecay, []string{"Dephasing"}, true}
	}
	tau = 1 / math.Sqrt(beta)
	fit = make([]float64, len(deph))
	for i := range fit {
		fit[i] = GaussFunction(float64(i)*dt, tau)
	}
	return deph, fit, tau, nil
}

// SpectralDensity returns the spectral density of f, a correlation
// function sampled every dt fs: the squared modulus of its Fourier
// transform on a zero-padded grid, 100000 points unless a different grid
// size is given. The frequencies of the returned grid are in cm-1.
func SpectralDensity(f []float64, dt float64, points ...int) (dens, freqs []float64, err error) {
	if len(f) < 2 {
		return nil, nil, Error{fmt.Sprintf("%s: %d points", NotEnoughData, len(f)), []string{"SpectralDensity"}, true}
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, nil, Error{fmt.Sprintf("%s: dt %v", BadParameter, dt), []string{"SpectralDensity"}, true}
	}
	n := 100000
	if len(points) > 0 {
		if points[0] < len(f) {
			return nil, nil, Error{fmt.Sprintf("%s: %d grid points for %d samples", BadParameter, points[0], len(f)), []string{"SpectralDensity"}, true}
		}
		n = points[0]
	}
	padded := make([]float64, n)
	copy(padded, f)
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, padded)
	pre := dt / math.Sqrt(2*math.Pi)
	dens = make([]float64, len(coeffs))
	freqs = make([]float64, len(coeffs))
	for i, v := range coeffs {
		dens[i] = (real(v)*real(v) + imag(v)*imag(v)) * pre * pre
		freqs[i] = float64(i) / (float64(n) * dt) * cyclesPerFs2Cm
	}
	return dens, freqs, nil
}

// GaussFunction is a Gaussian centered at zero with width sigma,
// exp(-0.5(x/sigma)^2).
func GaussFunction(x, sigma float64) float64 {
	u := x / sigma
	return math.Exp(-0.5 * u * u)
}

// Convolute broadens the spectrum with intensities ys at positions xs onto
// grid, replacing each point by a Gaussian of width sigma.
func Convolute(xs, ys, grid []float64, sigma float64) ([]float64, error) {
	if len(xs) != len(ys) {
		return nil, Error{fmt.Sprintf("%s: %d positions for %d intensities", MismatchedData, len(xs), len(ys)), []string{"Convolute"}, true}
	}
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, Error{fmt.Sprintf("%s: sigma %v", BadParameter, sigma), []string{"Convolute"}, true}
	}
	pre := math.Sqrt2 / (sigma * math.Sqrt(math.Pi))
	out := make([]float64, len(grid))
	for k, g := range grid {
		var s float64
		for i, x := range xs {
			s += ys[i] * GaussFunction(g-x, sigma)
		}
		out[k] = pre * s
	}
	return out, nil
}

//Errors

//Error is the general structure for errors in the analysis functions.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("nacstat error: %s", err.message)
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

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

const (
	NotEnoughData  = "Not enough data points"
	FlatSignal     = "The series has no variance"
	MismatchedData = "Mismatched data lengths"
	BadParameter   = "Invalid parameter"
	NoDecay        = "The function does not decay, no dephasing time can be fit"
)
