// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	m "github.com/mkhts/gosp3"
)

func main() {

	// Parse command line arguments
	args, err := parseArgs()
	if err != nil {
		m.PrintE(err)
		flag.Usage()
		os.Exit(1)
	}

	// Run the main application
	if err := runApplication(args); err != nil {
		m.PrintE(err)
		os.Exit(1)
	}
}

// Main application processing
func runApplication(args cmdOpt) error {

	// Load the ephemeris file
	sp3, err := m.NewSp3(args.sp3Fn)
	if err != nil {
		return fmt.Errorf("failed to load ephemeris file: %w", err)
	}
	defer sp3.Close()

	sat, err := selectSat(sp3, args.sat)
	if err != nil {
		return err
	}

	// Build the interpolator
	opt := m.NewInterpOpt()
	if args.radius > 0 {
		opt.MaxDiff = time.Duration(args.radius * float64(time.Second))
	}
	if args.minDpts > 0 {
		opt.MinDpts = args.minDpts
	}
	itp, err := m.NewSvInterpolator(sp3, sat, opt)
	if err != nil {
		return err
	}

	// Prepare output file
	out, err := prepareOutput(args)
	if err != nil {
		return fmt.Errorf("failed to prepare output: %w", err)
	}
	defer closeOutput(out)

	// Print header
	if !args.noHeader {
		printHeader(out, args, sp3, itp)
	}

	// Process query epochs
	return processEpochs(args, sp3, itp, out)
}

// Pick the satellite to interpolate. -s may be omitted for a file that
// carries a single satellite.
func selectSat(sp3 *m.Sp3, s string) (m.SatType, error) {
	if s != "" {
		sat := m.SatType(s)
		if !sp3.HasSv(sat) {
			return sat, fmt.Errorf("satellite %s is not in the file (has %v)", sat, sp3.Sats())
		}
		return sat, nil
	}
	if sp3.NumSats() == 1 {
		return sp3.Sats()[0], nil
	}
	return "", fmt.Errorf("the file carries %d satellites, pick one! (-s option)", sp3.NumSats())
}

// Prepare output file
func prepareOutput(args cmdOpt) (io.WriteCloser, error) {

	// Use stdout if no output file is specified
	if len(args.outFn) == 0 {
		return &nopCloser{os.Stdout}, nil
	}

	// Create output file
	outf, err := os.Create(args.outFn)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return outf, nil
}

// Close output file
func closeOutput(out io.WriteCloser) {
	if out != nil {
		out.Close()
	}
}

// Print output header
func printHeader(out io.Writer, args cmdOpt, sp3 *m.Sp3, itp *m.SvInterpolator) {
	first, last := itp.TimeSpan()
	fmt.Fprintf(out, "%% program   : %s\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(out, "%% inp file  : %s (sp3-%c, %s, %s, %s)\n",
		args.sp3Fn, sp3.Version(), sp3.CrdSys(), sp3.OrbType(), sp3.Agency())
	fmt.Fprintf(out, "%% satellite : %s (%d data points)\n", itp.Sat(), itp.NumDpts())
	fmt.Fprintf(out, "%% data span : %s - %s, every %v (%s)\n",
		first.String(), last.String(), sp3.Interval(), sp3.TimeSys())
	fmt.Fprintf(out, "%%  %s                       x(km)          y(km)          z(km)     ex(mm)     ey(mm)     ez(mm)", sp3.TimeSys())
	if itp.HasVelocity() {
		fmt.Fprintf(out, "      vx(dm/s)      vy(dm/s)      vz(dm/s)")
	}
	if args.hasObs {
		fmt.Fprintf(out, "  az(deg) el(deg)")
	}
	fmt.Fprintln(out)
}

// Process query epochs
func processEpochs(args cmdOpt, sp3 *m.Sp3, itp *m.SvInterpolator, out io.Writer) error {
	first, last := itp.TimeSpan()
	ts := first
	if !args.ts.IsZero() {
		ts = *m.NewGTime(args.ts)
	}
	te := last
	if !args.te.IsZero() {
		te = *m.NewGTime(args.te)
	}
	step := float64(args.ti)
	if step <= 0 {
		step = sp3.Interval().Seconds()
	}

	var pos, perr, vel, verr [3]float64
	var velp, verrp *[3]float64
	if itp.HasVelocity() {
		velp, verrp = &vel, &verr
	}

	// per-axis fit error estimates [mm], for the summary
	var exs, eys, ezs []float64

	for t := ts; t.LessOrEqual(te); t = t.AddSec(step) {
		err := itp.InterpolateAt(t, &pos, &perr, velp, verrp)
		if errors.Is(err, m.ErrFewDataPoints) {
			m.PrintD(1, "skipping %s: %s\n", t.String(), err.Error())
			continue
		}
		if err != nil {
			return err
		}
		printRow(out, args, t, &pos, &perr, velp)
		exs = append(exs, perr[0]*1e6)
		eys = append(eys, perr[1]*1e6)
		ezs = append(ezs, perr[2]*1e6)
	}

	if m.DBG_ >= 1 && len(exs) > 0 {
		printErrSummary(exs, eys, ezs)
	}
	return nil
}

// Output one result row
func printRow(out io.Writer, args cmdOpt, t m.GTime, pos, perr, vel *[3]float64) {
	fmt.Fprintf(out, "%s %14.6f %14.6f %14.6f %10.3f %10.3f %10.3f",
		t.String(), pos[0], pos[1], pos[2], perr[0]*1e6, perr[1]*1e6, perr[2]*1e6)
	if vel != nil {
		fmt.Fprintf(out, " %13.6f %13.6f %13.6f", vel[0], vel[1], vel[2])
	}
	if args.hasObs {
		sxyz := m.PosXYZ{X: pos[0] * 1e3, Y: pos[1] * 1e3, Z: pos[2] * 1e3}
		fmt.Fprintf(out, " %8.3f %7.3f",
			m.ToDeg(args.obsLLH.Azimuth(sxyz)), m.ToDeg(args.obsLLH.Elevation(sxyz)))
	}
	fmt.Fprintln(out)
}

// Summarize the per-axis fit error estimates
func printErrSummary(exs, eys, ezs []float64) {
	m.PrintA("--- fit error estimate summary [mm] ---\n")
	for _, c := range []struct {
		name string
		v    []float64
	}{
		{"x", exs}, {"y", eys}, {"z", ezs},
	} {
		mean, std := stat.MeanStdDev(c.v, nil)
		m.PrintA("%s: n=%d mean=%.3f std=%.3f max=%.3f\n",
			c.name, len(c.v), mean, std, floats.Max(c.v))
	}
}

// nopCloser - WriteCloser that ignores close operations
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// Structure to hold command line argument information
type cmdOpt struct {
	sp3Fn    string
	sat      string
	ts, te   time.Time
	ti       int
	radius   float64
	minDpts  int
	outFn    string
	obsLLH   m.PosLLH
	hasObs   bool
	noHeader bool
}

// Parse command line arguments
func parseArgs() (a cmdOpt, err error) {
	flag.Usage = func() {
		m.PrintA(`
[Usage]
	%s [Options] ephemeris.sp3

[Options]
`, filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	iOpt := m.NewInterpOpt()
	flag.StringVar(&a.sat, "s", "", "Satellite to interpolate, like G07. May be omitted when the file carries a single satellite.")
	var ts_, te_ m.TimeStr
	flag.TextVar(&ts_, "ts", m.NewTimeStr(time.Time{}), "Start epoch specification. Enclose in quotes like -ts \"2021/07/01 00:00:00\". Defaults to the first data epoch.")
	flag.TextVar(&te_, "te", m.NewTimeStr(time.Time{}), "End epoch specification. Enclose in quotes like -te \"2021/07/01 06:00:00\". This epoch is also included. Defaults to the last data epoch.")
	flag.IntVar(&a.ti, "ti", 0, "Query interval [s]. Omit or set to 0 to query at the file's epoch interval.")
	flag.Float64Var(&a.radius, "r", iOpt.MaxDiff.Seconds(), "Max time distance [s] between a query epoch and a data point used in the fit.")
	flag.IntVar(&a.minDpts, "mp", iOpt.MinDpts, "Min number of data points required on each side of a query epoch.")
	flag.StringVar(&a.outFn, "o", "", "Output file path. If not specified, output to stdout.")
	var obs m.PosLLH
	flag.Var(&obs, "l", "Observer latitude/longitude/ellipsoidal height; adds azimuth/elevation columns. Enclose in quotes like -l \"35.73101206 139.7396917 80.33\"")
	flag.BoolVar(&a.noHeader, "nh", false, "Do not output the header section.")
	var cfgFn string
	flag.StringVar(&cfgFn, "c", "", "Run configuration file (yaml). Options given on the command line win over the file.")
	var dbg int
	flag.IntVar(&dbg, "x", 0, "Debug information display. Specify level value. 0(OFF), 1(summary), 2(detailed), 3(most detailed)")
	flag.Parse()

	if flag.NArg() != 1 {
		return a, fmt.Errorf("exactly one sp3 file expected")
	}
	a.sp3Fn = flag.Arg(0)
	a.ts = time.Time(ts_)
	a.te = time.Time(te_)
	a.obsLLH = obs
	a.hasObs = obs.Lat != 0 || obs.Lon != 0 || obs.Hei != 0
	m.DBG_ = dbg

	if cfgFn != "" {
		if err := applyConfig(&a, cfgFn); err != nil {
			return a, err
		}
	}
	return a, nil
}

// Fill options the command line left unset from the run configuration file
func applyConfig(a *cmdOpt, fn string) error {
	cfg, err := loadRunConfig(fn)
	if err != nil {
		return err
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["s"] && cfg.Sat != "" {
		a.sat = cfg.Sat
	}
	if !set["ts"] && cfg.Ts != "" {
		if a.ts, err = time.Parse("2006/01/02 15:04:05", cfg.Ts); err != nil {
			return fmt.Errorf("bad ts in run config: %w", err)
		}
	}
	if !set["te"] && cfg.Te != "" {
		if a.te, err = time.Parse("2006/01/02 15:04:05", cfg.Te); err != nil {
			return fmt.Errorf("bad te in run config: %w", err)
		}
	}
	if !set["ti"] && cfg.Ti > 0 {
		a.ti = cfg.Ti
	}
	if !set["r"] && cfg.RadiusSec > 0 {
		a.radius = cfg.RadiusSec
	}
	if !set["mp"] && cfg.MinDpts > 0 {
		a.minDpts = cfg.MinDpts
	}
	if !set["o"] && cfg.Out != "" {
		a.outFn = cfg.Out
	}
	if !set["l"] && cfg.Observer != "" {
		if err := a.obsLLH.Set(cfg.Observer); err != nil {
			return fmt.Errorf("bad observer in run config: %w", err)
		}
		a.hasObs = true
	}
	if !set["nh"] && cfg.NoHeader {
		a.noHeader = true
	}
	if !set["x"] && cfg.Debug > 0 {
		m.DBG_ = cfg.Debug
	}
	return nil
}
