package io

import (
	"fmt"
	"math"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/flowfly"
	"github.com/phil-mansfield/flowfly/efficiency"
	"github.com/phil-mansfield/flowfly/generator"
	"github.com/phil-mansfield/flowfly/mcep"
	"github.com/phil-mansfield/flowfly/sample"
	"github.com/phil-mansfield/flowfly/stats"
)

const (
	ExampleRunFile = `[Generator]

#######################
# Required Parameters #
#######################

# Number of events to generate and analyze.
Events = 10000

# Multiplicities are drawn uniformly from [MinMult, MaxMult). Setting
# MaxMult = MinMult + 1 gives every event the same multiplicity.
MinMult = 500
MaxMult = 501

# Flow harmonics v1 through v6. Each must satisfy |vn| <= 0.5.
V2 = 0.05

#######################
# Optional Parameters #
#######################

# A Seed of 0 draws a new seed from system entropy. Any other value gives a
# reproducible run.
# Seed = 0

# V1Mode controls how the first harmonic depends on the particle:
# [ Constant | PtDamped | EtaCharge | EtaChargePtDamped ]
# V1 = 0
# V1Mode = Constant

# PtSpectrum must be one of [ Boltzmann | DMeson ]. The Boltzmann spectrum
# uses Mass and Temperature (in GeV), the D meson spectrum uses
# CentralityClass.
# PtSpectrum = Boltzmann
# Mass = 0.13957
# Temperature = 0.44
# PtMin = 0
# PtMax = 10

# Pseudorapidities are uniform over [EtaMin, EtaMax] unless EtaDip is set, in
# which case they follow 1 + a eta^2, with a set by CentralityClass.
# EtaMin = -1
# EtaMax = 1
# EtaDip = false

# CentralityClass selects the efficiency table, reaction plane resolution,
# D meson suppression, and eta dip. Must be one of [ 0 | 1 | 2 ].
# CentralityClass = 0

# Detector efficiency. When UniformEfficiency is false, the efficiency table
# is read from EfficiencyFile (two columns: pT threshold and probability) if
# it is set, otherwise particles with EfficiencyPtMin <= pT < EfficiencyPtMax
# are kept with EfficiencyProbability if EfficiencyPtMax is set, otherwise the
# built-in table of the centrality class is used.
# UniformEfficiency = true
# EfficiencyFile = path/to/efficiency.txt
# EfficiencyPtMin = 0.8
# EfficiencyPtMax = 1.2
# EfficiencyProbability = 0.5

# Azimuthal acceptance: particles inside each sector (in degrees) are kept
# with the sector's probability.
# UniformAcceptance = true
# Sector1PhiMin = 60
# Sector1PhiMax = 120
# Sector1Probability = 0.5
# Sector2PhiMin = 0
# Sector2PhiMax = 0
# Sector2Probability = 1

# Width of the Gaussian smearing of the reaction plane in radians. Negative
# values use the resolution of the centrality class.
# Resolution = -1

# Every kept particle is added NTimes, which introduces non-flow.
# NTimes = 1

[Analysis]

# Order of the measured harmonic.
# Harmonic = 2

# Binning of the differential flow profiles.
# PtMin = 0
# PtMax = 10
# PtBins = 100
# EtaMin = -1
# EtaMax = 1
# EtaBins = 80

# At most two ascending pT cut offs, which split the eta profiles into
# up to three pT sub-ranges.
# PtCutOff = 2
# PtCutOff = 5

# Binning of the flow versus multiplicity and spread of flow histograms.
# MultBins = 10000
# MultMin = 0
# MultMax = 10000
# SpreadBins = 1000

# Mixed harmonic pair correlators <cos(m phi_pair - k psi)> with
# phi_pair = x phi_1 + (1 - x) phi_2. These take O(N^2) time per event and
# will dominate the runtime of high multiplicity runs.
# EvaluateMixedHarmonics = false
# MixedM = 2
# MixedK = 2
# MixedX = 0.5
# MixedMultBins = 10000
# MixedMultMin = 0
# MixedMultMax = 10000

# Selections for reference particles and particles of interest. Angles are in
# degrees. Values missing from a section take the defaults shown below, which
# can be changed for both sections in a [default-Cuts] section. Either section
# can be left out, which accepts everything.
[Cuts "RP"]
# PtMin = 0
# PtMax = 10
# EtaMin = -1
# EtaMax = 1
# PhiMin = 0
# PhiMax = 360
# UseCharge = false
# Charge = 1

[Cuts "POI"]
# PtMin = 0
# PtMax = 10

[Output]
# Database = flow.db
# Summary = flow.json
# PlotDir = path/to/plot/dir
# PlotFormat must be one of [ png | pyplot ].
# PlotFormat = png

# Output files which are useful for profiling and debugging.
# ProfileFile = prof.out
# LogFile = log.out`
)

type GeneratorConfig struct {
	// Required
	Events           int
	MinMult, MaxMult int
	V1, V2, V3       float64
	V4, V5, V6       float64

	// Optional
	Seed   int64
	V1Mode string

	PtSpectrum        string
	Mass, Temperature float64
	PtMin, PtMax      float64
	EtaMin, EtaMax    float64
	EtaDip            bool
	CentralityClass   int

	UniformEfficiency                bool
	EfficiencyFile                   string
	EfficiencyPtMin, EfficiencyPtMax float64
	EfficiencyProbability            float64
	UniformAcceptance                bool
	Sector1PhiMin, Sector1PhiMax     float64
	Sector1Probability               float64
	Sector2PhiMin, Sector2PhiMax     float64
	Sector2Probability               float64

	Resolution float64
	NTimes     int
}

func (con *GeneratorConfig) ValidEvents() bool { return con.Events > 0 }
func (con *GeneratorConfig) ValidSeed() bool   { return con.Seed >= 0 }
func (con *GeneratorConfig) ValidMinMult() bool {
	return con.MinMult >= 0 && con.MinMult < con.MaxMult
}
func (con *GeneratorConfig) ValidMaxMult() bool { return con.MaxMult > 0 }

func (con *GeneratorConfig) ValidV1Mode() bool {
	_, err := generator.ParseV1Mode(con.V1Mode)
	return err == nil
}
func (con *GeneratorConfig) ValidPtSpectrum() bool {
	_, err := generator.ParseSpectrum(con.PtSpectrum)
	return err == nil
}
func (con *GeneratorConfig) ValidTemperature() bool {
	return con.Temperature > 0 && !math.IsInf(con.Temperature, 0)
}
func (con *GeneratorConfig) ValidMass() bool { return con.Mass >= 0 }
func (con *GeneratorConfig) ValidPtMin() bool {
	return con.PtMin >= 0 && con.PtMin < con.PtMax
}
func (con *GeneratorConfig) ValidEtaMin() bool { return con.EtaMin < con.EtaMax }
func (con *GeneratorConfig) ValidCentralityClass() bool {
	return con.CentralityClass >= 0 &&
		con.CentralityClass < sample.CentralityClasses
}
func (con *GeneratorConfig) ValidEfficiencyFile() bool {
	return con.EfficiencyFile != ""
}
func (con *GeneratorConfig) ValidEfficiencyPtMax() bool {
	return con.EfficiencyPtMax > con.EfficiencyPtMin && con.EfficiencyPtMin >= 0
}
func (con *GeneratorConfig) ValidEfficiencyProbability() bool {
	return con.EfficiencyProbability >= 0 && con.EfficiencyProbability <= 1
}
func (con *GeneratorConfig) ValidResolution() bool {
	return !math.IsNaN(con.Resolution) && !math.IsInf(con.Resolution, 0)
}
func (con *GeneratorConfig) ValidNTimes() bool { return con.NTimes >= 1 }

// Harmonics returns V1 through V6.
func (con *GeneratorConfig) Harmonics() generator.Harmonics {
	return generator.Harmonics{con.V1, con.V2, con.V3, con.V4, con.V5, con.V6}
}

type AnalysisConfig struct {
	Harmonic int

	PtMin, PtMax   float64
	PtBins         int
	EtaMin, EtaMax float64
	EtaBins        int
	PtCutOff       []float64

	MultBins         int
	MultMin, MultMax float64
	SpreadBins       int

	EvaluateMixedHarmonics     bool
	MixedM, MixedK             int
	MixedX                     float64
	MixedMultBins              int
	MixedMultMin, MixedMultMax float64
}

func (con *AnalysisConfig) ValidHarmonic() bool { return con.Harmonic > 0 }
func (con *AnalysisConfig) ValidPtBins() bool {
	return con.PtBins > 0 && con.PtMin < con.PtMax
}
func (con *AnalysisConfig) ValidEtaBins() bool {
	return con.EtaBins > 0 && con.EtaMin < con.EtaMax
}
func (con *AnalysisConfig) ValidPtCutOff() bool {
	if len(con.PtCutOff) > mcep.MaxPtCutOffs {
		return false
	}
	for i := 1; i < len(con.PtCutOff); i++ {
		if con.PtCutOff[i] <= con.PtCutOff[i-1] {
			return false
		}
	}
	return true
}
func (con *AnalysisConfig) ValidMultBins() bool {
	return con.MultBins > 0 && con.MultMin < con.MultMax
}
func (con *AnalysisConfig) ValidSpreadBins() bool { return con.SpreadBins > 0 }
func (con *AnalysisConfig) ValidMixedX() bool {
	return con.MixedX >= 0 && con.MixedX <= 1
}
func (con *AnalysisConfig) ValidMixedMultBins() bool {
	return con.MixedMultBins > 0 && con.MixedMultMin < con.MixedMultMax
}

type CutsConfig struct {
	PtMin, PtMax   float64
	EtaMin, EtaMax float64
	PhiMin, PhiMax float64
	UseCharge      bool
	Charge         int
}

func (con *CutsConfig) ValidCharge() bool {
	return !con.UseCharge || con.Charge == 1 || con.Charge == -1
}

// Cuts converts the configured selection into a flowfly.Cuts.
func (con *CutsConfig) Cuts() *flowfly.Cuts {
	return &flowfly.Cuts{
		PtMin: con.PtMin, PtMax: con.PtMax,
		EtaMin: con.EtaMin, EtaMax: con.EtaMax,
		PhiMin: con.PhiMin * math.Pi / 180, PhiMax: con.PhiMax * math.Pi / 180,
		UseCharge: con.UseCharge, Charge: con.Charge,
	}
}

func defaultCuts() *CutsConfig {
	return &CutsConfig{
		PtMin: 0, PtMax: 10, EtaMin: -1, EtaMax: 1, PhiMin: 0, PhiMax: 360,
		Charge: 1,
	}
}

type OutputConfig struct {
	Database, Summary    string
	PlotDir, PlotFormat  string
	LogFile, ProfileFile string
}

func (con *OutputConfig) ValidDatabase() bool    { return con.Database != "" }
func (con *OutputConfig) ValidSummary() bool     { return con.Summary != "" }
func (con *OutputConfig) ValidPlotDir() bool     { return con.PlotDir != "" }
func (con *OutputConfig) ValidLogFile() bool     { return con.LogFile != "" }
func (con *OutputConfig) ValidProfileFile() bool { return con.ProfileFile != "" }
func (con *OutputConfig) ValidPlotFormat() bool {
	return con.PlotFormat == "png" || con.PlotFormat == "pyplot"
}

type RunWrapper struct {
	Generator GeneratorConfig
	Analysis  AnalysisConfig
	Cuts      map[string]*CutsConfig
	Output    OutputConfig

	// CutsDefaults fills in the values missing from each [Cuts "..."]
	// section which is present in the file.
	CutsDefaults CutsConfig `gcfg:"default-Cuts"`
}

func DefaultRunWrapper() *RunWrapper {
	gen := GeneratorConfig{
		V1Mode: "Constant", PtSpectrum: "Boltzmann",
		Mass: 0.13957, Temperature: 0.44, PtMin: 0, PtMax: 10,
		EtaMin: -1, EtaMax: 1,
		UniformEfficiency: true, EfficiencyProbability: 1,
		UniformAcceptance:  true,
		Sector1Probability: 1, Sector2Probability: 1,
		Resolution: -1, NTimes: 1,
	}

	an := AnalysisConfig{
		Harmonic: 2,
		PtMin:    0, PtMax: 10, PtBins: 100,
		EtaMin: -1, EtaMax: 1, EtaBins: 80,
		MultBins: 10000, MultMin: 0, MultMax: 10000,
		SpreadBins: 1000,
		MixedM:     2, MixedK: 2, MixedX: 0.5,
		MixedMultBins: 10000, MixedMultMin: 0, MixedMultMax: 10000,
	}

	return &RunWrapper{
		Generator: gen,
		Analysis:  an,
		Output:    OutputConfig{PlotFormat: "png"},

		CutsDefaults: *defaultCuts(),
	}
}

// ReadRunConfig reads and validates a [Generator]/[Analysis] config file.
func ReadRunConfig(fname string) (*RunWrapper, error) {
	wrap := DefaultRunWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	if err := wrap.CheckInit(); err != nil {
		return nil, err
	}
	return wrap, nil
}

// ReadRunString is ReadRunConfig for config text held in memory.
func ReadRunString(text string) (*RunWrapper, error) {
	wrap := DefaultRunWrapper()
	if err := gcfg.ReadStringInto(wrap, text); err != nil {
		return nil, err
	}
	if err := wrap.CheckInit(); err != nil {
		return nil, err
	}
	return wrap, nil
}

type check struct {
	name  string
	valid bool
}

// CheckInit returns a *flowfly.ConfigError naming the first invalid value.
func (wrap *RunWrapper) CheckInit() error {
	gen, an, out := &wrap.Generator, &wrap.Analysis, &wrap.Output

	checks := []check{
		{"Events", gen.ValidEvents()},
		{"Seed", gen.ValidSeed()},
		{"MaxMult", gen.ValidMaxMult()},
		{"MinMult", gen.ValidMinMult()},
		{"V1Mode", gen.ValidV1Mode()},
		{"PtSpectrum", gen.ValidPtSpectrum()},
		{"Mass", gen.ValidMass()},
		{"Temperature", gen.ValidTemperature()},
		{"PtMin", gen.ValidPtMin()},
		{"EtaMin", gen.ValidEtaMin()},
		{"CentralityClass", gen.ValidCentralityClass()},
		{"EfficiencyProbability", gen.ValidEfficiencyProbability()},
		{"Resolution", gen.ValidResolution()},
		{"NTimes", gen.ValidNTimes()},

		{"Harmonic", an.ValidHarmonic()},
		{"PtBins", an.ValidPtBins()},
		{"EtaBins", an.ValidEtaBins()},
		{"PtCutOff", an.ValidPtCutOff()},
		{"MultBins", an.ValidMultBins()},
		{"SpreadBins", an.ValidSpreadBins()},
		{"MixedX", an.ValidMixedX()},
		{"MixedMultBins", an.ValidMixedMultBins()},

		{"PlotFormat", out.ValidPlotFormat()},
	}
	for _, c := range checks {
		if !c.valid {
			return &flowfly.ConfigError{
				Param: c.name, Reason: "invalid or missing value",
			}
		}
	}

	for i, v := range gen.Harmonics() {
		if !(math.Abs(v) <= generator.MaxFlow) {
			return flowfly.Configf(fmt.Sprintf("V%d", i+1),
				"|v%d| must be at most %g", i+1, generator.MaxFlow)
		}
	}

	for name, cuts := range wrap.Cuts {
		if name != "RP" && name != "POI" {
			return flowfly.Configf(
				"Cuts", "unrecognized section '%s', use 'RP' or 'POI'", name,
			)
		} else if !cuts.ValidCharge() {
			return flowfly.Configf("Charge", "%s charge must be +1 or -1, got %d",
				name, cuts.Charge)
		}
	}

	return nil
}

// RPCuts and POICuts return the two particle selections.
func (wrap *RunWrapper) RPCuts() *flowfly.Cuts  { return wrap.cuts("RP") }
func (wrap *RunWrapper) POICuts() *flowfly.Cuts { return wrap.cuts("POI") }

func (wrap *RunWrapper) cuts(name string) *flowfly.Cuts {
	if c, ok := wrap.Cuts[name]; ok {
		return c.Cuts()
	}
	return flowfly.OpenCuts()
}

// Seed returns the configured seed, with 0 replaced by an entropy seed.
func (wrap *RunWrapper) Seed() uint64 {
	return sample.ResolveSeed(uint64(wrap.Generator.Seed))
}

// EfficiencyTable returns the configured efficiency table or nil for a
// perfect detector.
func (wrap *RunWrapper) EfficiencyTable() (efficiency.Table, error) {
	gen := &wrap.Generator
	switch {
	case gen.UniformEfficiency:
		return nil, nil
	case gen.ValidEfficiencyFile():
		return efficiency.ReadTable(gen.EfficiencyFile)
	case gen.ValidEfficiencyPtMax():
		return efficiency.WindowTable(
			gen.EfficiencyPtMin, gen.EfficiencyPtMax, gen.EfficiencyProbability,
		)
	default:
		return efficiency.CentralityTable(gen.CentralityClass)
	}
}

// Acceptance returns the configured azimuthal acceptance or nil for a
// perfect detector.
func (wrap *RunWrapper) Acceptance() (efficiency.Acceptance, error) {
	gen := &wrap.Generator
	if gen.UniformAcceptance {
		return nil, nil
	}
	deg := math.Pi / 180
	return efficiency.NewAcceptance(
		efficiency.Sector{
			PhiMin: gen.Sector1PhiMin * deg, PhiMax: gen.Sector1PhiMax * deg,
			Probability: gen.Sector1Probability,
		},
		efficiency.Sector{
			PhiMin: gen.Sector2PhiMin * deg, PhiMax: gen.Sector2PhiMax * deg,
			Probability: gen.Sector2Probability,
		},
	)
}

// ParticleSampler builds the sampler for single particle kinematics.
func (wrap *RunWrapper) ParticleSampler() (*generator.ParticleSampler, error) {
	gen := &wrap.Generator
	spectrum, err := generator.ParseSpectrum(gen.PtSpectrum)
	if err != nil {
		return nil, err
	}
	mode, err := generator.ParseV1Mode(gen.V1Mode)
	if err != nil {
		return nil, err
	}

	pt, err := generator.PtSampler(spectrum, gen.CentralityClass,
		gen.Mass, gen.Temperature, gen.PtMin, gen.PtMax)
	if err != nil {
		return nil, err
	}

	dip := 0.0
	if gen.EtaDip {
		dip = sample.EtaDipCoefficient(gen.CentralityClass)
	}
	eta, err := generator.EtaSampler(dip, gen.EtaMin, gen.EtaMax)
	if err != nil {
		return nil, err
	}

	return generator.NewParticleSampler(pt, eta, gen.Harmonics(), mode)
}

// GeneratorConfig builds the event generator configuration.
func (wrap *RunWrapper) GeneratorConfig() (generator.Config, error) {
	gen := &wrap.Generator
	con := generator.Config{
		MinMult: gen.MinMult, MaxMult: gen.MaxMult,
		Resolution: gen.Resolution, NTimes: gen.NTimes,
		RP: wrap.RPCuts(), POI: wrap.POICuts(),
		LogEvery: 100,
	}
	if con.Resolution < 0 {
		con.Resolution = generator.ClassResolution(gen.CentralityClass)
	}

	var err error
	if con.Particles, err = wrap.ParticleSampler(); err != nil {
		return con, err
	}
	if con.Efficiency, err = wrap.EfficiencyTable(); err != nil {
		return con, err
	}
	if con.Acceptance, err = wrap.Acceptance(); err != nil {
		return con, err
	}
	return con, nil
}

// EstimatorConfig returns the binning of the event plane analysis.
func (wrap *RunWrapper) EstimatorConfig() mcep.Config {
	an := &wrap.Analysis
	return mcep.Config{
		Harmonic:  an.Harmonic,
		Pt:        stats.Binning{Min: an.PtMin, Max: an.PtMax, Bins: an.PtBins},
		Eta:       stats.Binning{Min: an.EtaMin, Max: an.EtaMax, Bins: an.EtaBins},
		Mult:      stats.Binning{Min: an.MultMin, Max: an.MultMax, Bins: an.MultBins},
		Spread:    stats.Binning{Min: -1, Max: 1, Bins: an.SpreadBins},
		PtCutOffs: append([]float64{}, an.PtCutOff...),
	}
}

// CorrelatorConfig returns the mixed harmonics configuration, or nil if mixed
// harmonics are not evaluated.
func (wrap *RunWrapper) CorrelatorConfig() *mcep.CorrelatorConfig {
	an := &wrap.Analysis
	if !an.EvaluateMixedHarmonics {
		return nil
	}
	return &mcep.CorrelatorConfig{
		M: an.MixedM, K: an.MixedK, X: an.MixedX,
		Mult: stats.Binning{
			Min: an.MixedMultMin, Max: an.MixedMultMax, Bins: an.MixedMultBins,
		},
		Pt: stats.Binning{Min: an.PtMin, Max: an.PtMax, Bins: an.PtBins},
	}
}
