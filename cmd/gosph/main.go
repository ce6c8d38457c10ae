package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"runtime"
	"sort"

	"gopkg.in/gcfg.v1"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/post"
	"github.com/anovak/gosph/quant"
	"github.com/anovak/gosph/sched"
	"github.com/anovak/gosph/sphio"
	"github.com/anovak/gosph/units"
)

func main() {
	var (
		sfdStr, extractStr, orbitsStr, infoStr string
		exampleConfig                          string
		threadCnt                              int
	)
	vars := map[string]*string{
		"Sfd":     &sfdStr,
		"Extract": &extractStr,
		"Orbits":  &orbitsStr,
		"Info":    &infoStr,
	}

	flag.IntVar(
		&threadCnt, "Threads", runtime.NumCPU(),
		"Number of threads used. Default is the number of logical cores.",
	)
	flag.StringVar(
		&sfdStr, "Sfd", "",
		"Configuration file for [Sfd] mode: pkdgrav dump to cumulative "+
			"size-frequency distribution.",
	)
	flag.StringVar(
		&extractStr, "Extract", "",
		"Configuration file for [Extract] mode: binary dump to largest "+
			"remnant in its center-of-mass frame.",
	)
	flag.StringVar(
		&orbitsStr, "Orbits", "",
		"Configuration file for [Orbits] mode: MPC catalog to "+
			"orbital-frequency against diameter scatter plot.",
	)
	flag.StringVar(
		&infoStr, "Info", "",
		"A binary or compressed dump whose header is printed. Further "+
			"dumps may be given as positional arguments.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example configuration file of the specified type to "+
			"stdout. Accepted arguments are 'Sfd', 'Extract', and 'Orbits'.",
	)

	flag.Parse()

	if exampleConfig != "" {
		if err := printExampleConfig(exampleConfig); err != nil {
			log.Fatal(err.Error())
		}
		return
	}

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	var s sched.Scheduler = sched.Serial{}
	if threadCnt > 1 {
		s = sched.NewPool(threadCnt)
	}

	switch modeName {
	case "Sfd":
		wrap := DefaultSfdWrapper()
		if err := gcfg.ReadFileInto(wrap, sfdStr); err != nil {
			log.Fatal(err.Error())
		}
		con := &wrap.Sfd
		if !con.ValidInput() {
			log.Fatal("Invalid/non-existent 'Input' value.")
		} else if !con.ValidOutput() {
			log.Fatal("Invalid/non-existent 'Output' value.")
		} else if !con.ValidComponentRadius() {
			log.Fatal("Invalid 'ComponentRadius' value.")
		} else if !con.ValidReferenceDensity() {
			log.Fatal("Invalid 'ReferenceDensity' value.")
		} else if !con.ValidRange() {
			log.Fatal("'RangeMax' must be larger than 'RangeMin'.")
		}
		setupLog(con.LogFile)
		if err := sfdMain(s, con); err != nil {
			log.Fatal(err.Error())
		}
	case "Extract":
		wrap := DefaultExtractWrapper()
		if err := gcfg.ReadFileInto(wrap, extractStr); err != nil {
			log.Fatal(err.Error())
		}
		con := &wrap.Extract
		if !con.ValidInput() {
			log.Fatal("Invalid/non-existent 'Input' value.")
		} else if !con.ValidOutput() {
			log.Fatal("Invalid/non-existent 'Output' value.")
		} else if !con.ValidComponentRadius() {
			log.Fatal("Invalid 'ComponentRadius' value.")
		}
		setupLog(con.LogFile)
		if err := extractMain(s, con); err != nil {
			log.Fatal(err.Error())
		}
	case "Orbits":
		wrap := DefaultOrbitsWrapper()
		if err := gcfg.ReadFileInto(wrap, orbitsStr); err != nil {
			log.Fatal(err.Error())
		}
		con := &wrap.Orbits
		if !con.ValidInput() {
			log.Fatal("Invalid/non-existent 'Input' value.")
		} else if !con.ValidOutput() {
			log.Fatal("Invalid/non-existent 'Output' value.")
		} else if !con.ValidCentralMass() {
			log.Fatal("Invalid 'CentralMass' value.")
		} else if !con.ValidAlbedo() {
			log.Fatal("Invalid 'Albedo' value.")
		}
		setupLog(con.LogFile)
		if err := orbitsMain(con); err != nil {
			log.Fatal(err.Error())
		}
	case "Info":
		paths := append([]string{infoStr}, flag.Args()...)
		if err := infoMain(paths); err != nil {
			log.Fatal(err.Error())
		}
	}
}

func getModeName(vars map[string]*string) (string, error) {
	var set []string
	for name, val := range vars {
		if *val != "" {
			set = append(set, name)
		}
	}
	sort.Strings(set)
	switch len(set) {
	case 0:
		return "", fmt.Errorf(
			"No mode flag given. Run with -help for the mode list.")
	case 1:
		return set[0], nil
	}
	return "", fmt.Errorf("The mode flags %v conflict. Give exactly one.", set)
}

func printExampleConfig(name string) error {
	switch name {
	case "Sfd":
		fmt.Println(ExampleSfdFile)
	case "Extract":
		fmt.Println(ExampleExtractFile)
	case "Orbits":
		fmt.Println(ExampleOrbitsFile)
	default:
		return fmt.Errorf(
			"Unrecognized 'ExampleConfig' argument %q. Accepted arguments "+
				"are 'Sfd', 'Extract', and 'Orbits'.", name)
	}
	return nil
}

func setupLog(path string) {
	if path == "" {
		return
	}
	lf, err := os.Create(path)
	if err != nil {
		log.Fatal(err.Error())
	}
	log.SetOutput(lf)
}

// sfdMain reads a pkdgrav dump and writes the cumulative size-frequency
// distribution of its bodies as a two-column text table.
func sfdMain(s sched.Scheduler, con *SfdConfig) error {
	storage := quant.NewStorage()
	if err := sphio.NewPkdgravInput().Load(con.Input, storage); err != nil {
		return err
	}
	log.Printf("read %d particles from %s", storage.ParticleCnt(), con.Input)

	params := post.DefaultHistogramParams()
	params.Id = post.HistogramRadii
	params.ComponentRadius = con.ComponentRadius
	params.ReferenceDensity = con.ReferenceDensity
	params.MassCutoff = con.MassCutoff
	params.VelocityCutoff = con.VelocityCutoff
	if con.Components {
		params.Source = post.SourceComponents
	}
	if con.RangeMax > con.RangeMin {
		params.Range = quant.NewInterval(con.RangeMin, con.RangeMax)
	}

	hist, err := post.CumulativeHistogram(s, storage, params)
	if err != nil {
		return err
	}
	log.Printf("histogram has %d distinct radii", len(hist))

	f, err := os.Create(con.Output)
	if err != nil {
		return err
	}
	fmt.Fprintf(f, "# radius [m] | cumulative count\n")
	for _, p := range hist {
		fmt.Fprintf(f, "%g %d\n", p.Value, p.Count)
	}
	return f.Close()
}

// extractMain pulls the most massive component out of a binary dump and
// rewrites it centered on its own center of mass.
func extractMain(s sched.Scheduler, con *ExtractConfig) error {
	storage := quant.NewStorage()
	stats, err := sphio.BinaryInput{}.Load(con.Input, storage)
	if err != nil {
		return err
	}
	info, err := sphio.ReadBinaryInfo(con.Input)
	if err != nil {
		return err
	}
	log.Printf("read %d particles from %s (version %s)",
		storage.ParticleCnt(), con.Input, info.Version)

	comp, err := post.FindComponents(
		s, storage, con.ComponentRadius, post.SortByMass)
	if err != nil {
		return err
	}
	remnant, err := post.ExtractComponent(storage, comp, 0)
	if err != nil {
		return err
	}
	quant.MoveToCenterOfMassFrame(remnant)
	log.Printf("largest of %d components has %d particles",
		comp.Cnt, remnant.ParticleCnt())

	file, err := sphio.NewOutputFile(con.Output)
	if err != nil {
		return err
	}
	path, err := sphio.NewBinaryOutput(file, info.RunType).Dump(remnant, stats)
	if err != nil {
		return err
	}
	log.Printf("wrote %s", path)
	return nil
}

// orbitsMain plots orbital frequency against diameter for every bound
// body of an MPC catalog.
func orbitsMain(con *OrbitsConfig) error {
	storage := quant.NewStorage()
	in := sphio.NewMpcorpInput()
	in.Albedo = con.Albedo
	if con.Density > 0 {
		in.Density = con.Density
	}
	if err := in.Load(con.Input, storage); err != nil {
		return err
	}
	log.Printf("read %d bodies from %s", storage.ParticleCnt(), con.Input)

	positions := storage.Vectors(quant.Position)
	velocities := storage.VectorsDt(quant.Position)
	masses := storage.Scalars(quant.Mass)
	central := con.CentralMass * units.SolarMass

	var diameters, frequencies []float64
	for i := range positions {
		m := central + masses[i]
		mu := central * masses[i] / m
		el, ok := post.ComputeOrbitalElements(
			m, mu, positions[i].Spatial(), velocities[i])
		if !ok {
			continue
		}
		n := math.Sqrt(units.G * m / (el.A * el.A * el.A))
		frequencies = append(frequencies, n*units.Day/(2*math.Pi))
		diameters = append(diameters, 2*positions[i][geom.H]/units.Km)
	}
	log.Printf("%d of %d bodies are bound",
		len(diameters), storage.ParticleCnt())

	plt.Reset()
	plt.Figure()
	plt.Plot(diameters, frequencies, "ok")
	plt.XLabel(`$D$ [km]`, plt.FontSize(16))
	plt.YLabel(`$f$ [rev/day]`, plt.FontSize(16))
	plt.XScale("log")
	plt.SaveFig(con.Output)
	plt.Execute()
	return nil
}

// infoMain prints dump headers without loading particle payloads.
func infoMain(paths []string) error {
	for _, path := range paths {
		info, err := sphio.ReadBinaryInfo(path)
		if err != nil {
			cinfo, cerr := sphio.ReadCompressedInfo(path)
			if cerr != nil {
				return fmt.Errorf(
					"%s is neither a binary dump (%v) nor a compressed one (%v)",
					path, err, cerr)
			}
			info = cinfo
		}
		fmt.Printf("%s:\n", path)
		fmt.Printf("  version:     %s\n", info.Version)
		fmt.Printf("  run type:    %s\n", info.RunType)
		fmt.Printf("  run time:    %g\n", info.RunTime)
		fmt.Printf("  time step:   %g\n", info.TimeStep)
		fmt.Printf("  particles:   %d\n", info.ParticleCnt)
		fmt.Printf("  quantities:  %d\n", info.QuantityCnt)
		fmt.Printf("  materials:   %d\n", info.MaterialCnt)
		fmt.Printf("  attractors:  %d\n", info.AttractorCnt)
		if info.BuildDate != "" {
			fmt.Printf("  build date:  %s\n", info.BuildDate)
		}
		if info.WallclockSeconds != 0 {
			fmt.Printf("  wallclock:   %ds\n", info.WallclockSeconds)
		}
	}
	return nil
}
