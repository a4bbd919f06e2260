package nacplot

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
)

//checks that the plot file was written and is not empty.
func checkPlotFile(Te *testing.T, filename string) {
	info, err := os.Stat(filename)
	if err != nil {
		Te.Fatalf("plot file %s not produced: %v", filename, err)
	}
	if info.Size() == 0 {
		Te.Errorf("plot file %s is empty", filename)
	}
}

func testCouplings(n int) []*mat.Dense {
	couplings := make([]*mat.Dense, n)
	for t := range couplings {
		x := float64(t) * 0.5
		couplings[t] = mat.NewDense(2, 2, []float64{
			0, 1e-3 * math.Sin(x),
			-1e-3 * math.Sin(x), 0,
		})
	}
	return couplings
}

func TestCouplingSeries(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "coupling")
	err := CouplingSeries(testCouplings(20), [][2]int{{0, 1}, {1, 0}}, 0.5, nil, name)
	if err != nil {
		Te.Fatal(err)
	}
	checkPlotFile(Te, name+".png")
}

func TestCouplingSeriesSVG(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "coupling")
	o := DefaultOptions()
	o.Format = "svg"
	o.Title = "Couplings"
	err := CouplingSeries(testCouplings(10), [][2]int{{0, 1}}, 1.0, o, name)
	if err != nil {
		Te.Fatal(err)
	}
	checkPlotFile(Te, name+".svg")
}

func TestEnergyGapPlot(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "gap")
	series := [][]float64{
		{-0.30, -0.31, -0.30, -0.29, -0.30},
		{-0.10, -0.09, -0.10, -0.11, -0.10},
		{0.05, 0.06, 0.05, 0.04, 0.05},
	}
	err := EnergyGapPlot(series, [][2]int{{0, 1}, {1, 2}}, 1.0, nil, name)
	if err != nil {
		Te.Fatal(err)
	}
	checkPlotFile(Te, name+".png")
}

func TestSpectralDensityPlot(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "density")
	n := 50
	freqs := make([]float64, n)
	dens := make([]float64, n)
	for i := range freqs {
		freqs[i] = float64(i) * 30
		x := (freqs[i] - 700) / 100
		dens[i] = math.Exp(-0.5 * x * x)
	}
	err := SpectralDensityPlot(freqs, dens, nil, name)
	if err != nil {
		Te.Fatal(err)
	}
	checkPlotFile(Te, name+".png")
}

func TestPlotErrors(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "bad")
	if err := CouplingSeries(nil, [][2]int{{0, 1}}, 1.0, nil, name); err == nil {
		Te.Errorf("CouplingSeries accepted nil couplings")
	}
	if err := CouplingSeries(testCouplings(5), nil, 1.0, nil, name); err == nil {
		Te.Errorf("CouplingSeries accepted nil pairs")
	}
	if err := CouplingSeries(testCouplings(5), [][2]int{{0, 5}}, 1.0, nil, name); err == nil {
		Te.Errorf("CouplingSeries accepted an out of range element")
	}
	if err := EnergyGapPlot([][]float64{{1, 2}, {3, 4}}, [][2]int{{0, 3}}, 1.0, nil, name); err == nil {
		Te.Errorf("EnergyGapPlot accepted an out of range orbital")
	}
	if err := EnergyGapPlot([][]float64{{1, 2}, {3}}, [][2]int{{0, 1}}, 1.0, nil, name); err == nil {
		Te.Errorf("EnergyGapPlot accepted mismatched series")
	}
	if err := SpectralDensityPlot([]float64{1, 2}, []float64{1}, nil, name); err == nil {
		Te.Errorf("SpectralDensityPlot accepted mismatched data")
	}
	if err := SpectralDensityPlot(nil, nil, nil, name); err == nil {
		Te.Errorf("SpectralDensityPlot accepted nil data")
	}
	//the error message should name the failing plot.
	err := CouplingSeries(nil, nil, 1.0, nil, "nothing")
	if err == nil || err.Error() == "" {
		Te.Errorf("expected a descriptive error, got %v", err)
	}
}
