package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/phil-mansfield/flowfly/io"
	"github.com/phil-mansfield/flowfly/plots"
	"github.com/phil-mansfield/flowfly/run"
)

// FileGroup contains utility files for logging and writing profiles to.
type FileGroup struct {
	log, prof *os.File
}

// Close closes the files inside FileGroup.
func (fg *FileGroup) Close() {
	if fg.log != nil {
		if err := fg.log.Close(); err != nil {
			log.Fatal(err.Error())
		}
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		if err := fg.prof.Close(); err != nil {
			log.Fatal(err.Error())
		}
	}
}

func setupFileGroup(con *io.OutputConfig) *FileGroup {
	fg := new(FileGroup)
	var err error

	if con.ValidLogFile() {
		fg.log, err = os.Create(con.LogFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		log.SetOutput(fg.log)
	}

	if con.ValidProfileFile() {
		fg.prof, err = os.Create(con.ProfileFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		if err = pprof.StartCPUProfile(fg.prof); err != nil {
			log.Fatal(err.Error())
		}
	}

	return fg
}

func main() {
	var (
		runStr, exampleConfig string
		threads               int
	)
	vars := map[string]*string{
		"Run":           &runStr,
		"ExampleConfig": &exampleConfig,
	}

	flag.IntVar(
		&threads, "Threads", runtime.NumCPU(),
		"Number of threads used. Default is the number of logical cores. "+
			"Runs are only reproducible for a fixed number of threads.",
	)
	flag.StringVar(&runStr, "Run", "", "Configuration file for [Run] mode.")
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the "+
			"specified type to stdout. The only accepted argument is 'Run'.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "Run":
		wrap, err := io.ReadRunConfig(runStr)
		if err != nil {
			log.Fatal(err.Error())
		}
		runMain(wrap, threads)

	case "ExampleConfig":
		switch exampleConfig {
		case "Run":
			fmt.Println(io.ExampleRunFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. The only recognized " +
					"argument is 'Run'.",
			)
		}
	default:
		panic("Impossible")
	}
}

// getModeName returns the name of the mode and fails with a descriptive error
// if the user provided less or more than one mode flag.
func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but flowfly "+
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func runMain(wrap *io.RunWrapper, threads int) {
	fg := setupFileGroup(&wrap.Output)
	defer fg.Close()

	gen, err := wrap.GeneratorConfig()
	if err != nil {
		log.Fatal(err.Error())
	}

	con := run.Config{
		Events:     wrap.Generator.Events,
		Seed:       wrap.Seed(),
		Generator:  gen,
		Estimator:  wrap.EstimatorConfig(),
		Correlator: wrap.CorrelatorConfig(),
	}

	t0 := time.Now()
	res, err := run.Run(context.Background(), con, threads)
	if err != nil {
		log.Fatal(err.Error())
	}
	v, verr := res.Estimator.Flow()
	log.Printf(
		"Finished %d events in %s: v%d = %.5f +/- %.5f",
		res.Events, time.Since(t0), con.Estimator.Harmonic, v, verr,
	)

	info := io.NewRunInfo(res.Seed, res.Events, res.Workers, con.Estimator.Harmonic)
	out := res.Output()

	if wrap.Output.ValidDatabase() {
		err := io.WriteDatabase(wrap.Output.Database, info, out)
		if err != nil {
			log.Fatal(err.Error())
		}
		log.Printf("Wrote run %s to %s.", info.ID, wrap.Output.Database)
	}
	if wrap.Output.ValidSummary() {
		if err := io.WriteSummary(wrap.Output.Summary, info, out); err != nil {
			log.Fatal(err.Error())
		}
	}
	if wrap.Output.ValidPlotDir() {
		err := plots.Write(wrap.Output.PlotDir, wrap.Output.PlotFormat, out)
		if err != nil {
			log.Fatal(err.Error())
		}
	}
}
