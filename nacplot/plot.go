//Package nacplot draws the usual pictures of a nonadiabatic coupling
//calculation: coupling elements along the trajectory, orbital energy gaps
//and spectral densities. Plots are written as image files, in PNG unless
//the options say otherwise.
package nacplot

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Options controls the looks of a plot. The zero value for any field means
// the default for that field.
type Options struct {
	Title  string
	XLabel string
	YLabel string
	Width  float64 //in cm.
	Height float64 //in cm.
	Format string  //any format plot.Save understands: png, svg, pdf, tiff...
}

// DefaultOptions returns the default plot settings: 15x10 cm, PNG.
func DefaultOptions() *Options {
	return &Options{Width: 15, Height: 10, Format: "png"}
}

//fill replaces the zero fields of o with defaults, taking the axis labels
//from the caller.
func (o *Options) fill(xlabel, ylabel string) *Options {
	def := DefaultOptions()
	if o == nil {
		o = def
	}
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.Format == "" {
		o.Format = def.Format
	}
	if o.XLabel == "" {
		o.XLabel = xlabel
	}
	if o.YLabel == "" {
		o.YLabel = ylabel
	}
	return o
}

func basicPlot(o *Options) *plot.Plot {
	p := plot.New()
	p.Title.Text = o.Title
	p.Title.Padding = vg.Length(3) * vg.Millimeter
	p.X.Label.Text = o.XLabel
	p.Y.Label.Text = o.YLabel
	p.Add(plotter.NewGrid())
	return p
}

func save(p *plot.Plot, o *Options, plotname string) error {
	filename := fmt.Sprintf("%s.%s", plotname, o.Format)
	if err := p.Save(vg.Length(o.Width)*vg.Centimeter, vg.Length(o.Height)*vg.Centimeter, filename); err != nil {
		return Error{fmt.Sprintf("%s: %v", SaveFailed, err), filename, []string{"save"}, true}
	}
	return nil
}

// CouplingSeries plots the time evolution of the given coupling matrix
// elements, one line per (i,j) pair, with the couplings separated by dt fs.
// The plot is saved as plotname plus the format extension.
func CouplingSeries(couplings []*mat.Dense, pairs [][2]int, dt float64, o *Options, plotname string) error {
	if len(couplings) == 0 || len(pairs) == 0 {
		return Error{NilData, plotname, []string{"CouplingSeries"}, true}
	}
	o = o.fill("t (fs)", "coupling (a.u.)")
	p := basicPlot(o)
	for n, pair := range pairs {
		i, j := pair[0], pair[1]
		xys := make(plotter.XYs, len(couplings))
		for t, D := range couplings {
			r, c := D.Dims()
			if i < 0 || j < 0 || i >= r || j >= c {
				return Error{fmt.Sprintf("%s: element (%d,%d) of a %dx%d coupling", OutOfRange, i, j, r, c), plotname, []string{"CouplingSeries"}, true}
			}
			xys[t].X = float64(t) * dt
			xys[t].Y = D.At(i, j)
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return Error{fmt.Sprintf("%s: %v", PlotFailed, err), plotname, []string{"CouplingSeries"}, true}
		}
		l.Color = plotutil.Color(n)
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("%d-%d", i, j), l)
	}
	return save(p, o, plotname)
}

// EnergyGapPlot plots orbital energy gaps along the trajectory: for each
// (i,j) pair, the difference series[j]-series[i], with series as returned
// by pyxaid.ReadEnergySeries (one row per orbital) and points separated by
// dt fs. Units on the Y axis are whatever the series came in.
func EnergyGapPlot(series [][]float64, pairs [][2]int, dt float64, o *Options, plotname string) error {
	if len(series) == 0 || len(pairs) == 0 {
		return Error{NilData, plotname, []string{"EnergyGapPlot"}, true}
	}
	o = o.fill("t (fs)", "energy gap (a.u.)")
	p := basicPlot(o)
	for n, pair := range pairs {
		i, j := pair[0], pair[1]
		if i < 0 || j < 0 || i >= len(series) || j >= len(series) {
			return Error{fmt.Sprintf("%s: orbitals (%d,%d) of %d", OutOfRange, i, j, len(series)), plotname, []string{"EnergyGapPlot"}, true}
		}
		if len(series[i]) != len(series[j]) {
			return Error{fmt.Sprintf("%s: orbitals %d and %d have %d and %d points", MismatchedData, i, j, len(series[i]), len(series[j])), plotname, []string{"EnergyGapPlot"}, true}
		}
		xys := make(plotter.XYs, len(series[i]))
		for t := range series[i] {
			xys[t].X = float64(t) * dt
			xys[t].Y = series[j][t] - series[i][t]
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return Error{fmt.Sprintf("%s: %v", PlotFailed, err), plotname, []string{"EnergyGapPlot"}, true}
		}
		l.Color = plotutil.Color(n)
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("%d-%d", i, j), l)
	}
	return save(p, o, plotname)
}

// SpectralDensityPlot plots a spectral density against its frequency grid,
// as returned by nacstat.SpectralDensity.
func SpectralDensityPlot(freqs, dens []float64, o *Options, plotname string) error {
	if len(freqs) == 0 || len(dens) == 0 {
		return Error{NilData, plotname, []string{"SpectralDensityPlot"}, true}
	}
	if len(freqs) != len(dens) {
		return Error{fmt.Sprintf("%s: %d frequencies for %d densities", MismatchedData, len(freqs), len(dens)), plotname, []string{"SpectralDensityPlot"}, true}
	}
	o = o.fill("frequency (cm-1)", "spectral density")
	p := basicPlot(o)
	xys := make(plotter.XYs, len(freqs))
	for i := range freqs {
		xys[i].X = freqs[i]
		xys[i].Y = dens[i]
	}
	l, err := plotter.NewLine(xys)
	if err != nil {
		return Error{fmt.Sprintf("%s: %v", PlotFailed, err), plotname, []string{"SpectralDensityPlot"}, true}
	}
	l.Color = plotutil.Color(0)
	p.Add(l)
	return save(p, o, plotname)
}

//Errors

//Error is the general structure for plotting errors.
type Error struct {
	message  string
	plotname string //the plot that could not be produced, or an empty string.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("nacplot %s error: %s", err.plotname, err.message)
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
	NilData        = "Given nil data"
	MismatchedData = "Mismatched data lengths"
	OutOfRange     = "Requested element out of range"
	PlotFailed     = "Unable to build plot"
	SaveFailed     = "Unable to save plot"
)
