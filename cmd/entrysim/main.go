package main

import (
	"flag"
	"log"
	"os"
	"time"

	kitlog "github.com/go-kit/kit/log"

	"github.com/entryviz/entry"
)

// entrysim propagates a planetary atmospheric entry from the configured
// entry interface to parachute deployment and exports the trajectory.

var (
	bankDeg   float64
	duration  float64
	step      float64
	euler     bool
	csvPath   string
	xyzvPath  string
	epochFlag string
)

func init() {
	flag.Float64Var(&bankDeg, "bank", 30, "constant bank angle in degrees")
	flag.Float64Var(&duration, "duration", 300, "propagation duration in seconds (Euler integrator only)")
	flag.Float64Var(&step, "step", 0, "integration step in seconds (0 uses the configured step)")
	flag.BoolVar(&euler, "euler", false, "use the semi-implicit Euler integrator instead of the Vinh RK4 propagator")
	flag.StringVar(&csvPath, "csv", "", "write the trajectory table to this CSV file")
	flag.StringVar(&xyzvPath, "xyzv", "", "write interpolated states to this xyzv file")
	flag.StringVar(&epochFlag, "epoch", "2012-08-06 05:10:02", "entry interface epoch (UTC) for xyzv stamps")
}

func main() {
	flag.Parse()
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	logger = kitlog.With(logger, "subsys", "entrysim")

	cfg, err := entry.LoadConfig()
	if err != nil {
		log.Fatalf("config: %s", err)
	}
	if step > 0 {
		cfg.Step = step
	}
	profile := entry.ConstantBank(bankDeg)

	var traj *entry.Trajectory
	if euler {
		init := cfg.EntryState()
		ig := entry.Integrator{Planet: cfg.Planet, Vehicle: cfg.Vehicle, Step: cfg.Step}
		traj = ig.Integrate(init.Cartesian(), init.CartesianVelocity(), duration, profile)
	} else {
		vp := entry.NewVinhPropagator(cfg, profile)
		traj, err = vp.Propagate(cfg.EntryState())
		if err != nil {
			log.Fatalf("propagation: %s", err)
		}
	}

	session := entry.NewEntrySession(traj, entry.PhaseMachine{Phases: entry.DefaultPhases(cfg)})
	session.SetLogger(logger)
	last := traj.At(traj.Len() - 1)
	for t := traj.At(0).Time; t <= last.Time; t += 1.0 {
		session.Update(t)
	}
	session.Update(last.Time)

	phase, progress := session.Phase()
	logger.Log("level", "notice", "status", "finished", "samples", traj.Len(),
		"final t(s)", last.Time, "final altitude(m)", last.Altitude,
		"final v(m/s)", last.VelocityMag, "phase", phase.Name, "progress", progress,
		"mission", session.Status())

	if csvPath != "" {
		writeFile(csvPath, func(f *os.File) error { return entry.WriteCSV(f, traj) })
		logger.Log("level", "info", "csv", csvPath)
	}
	if xyzvPath != "" {
		epoch, err := time.Parse("2006-01-02 15:04:05", epochFlag)
		if err != nil {
			log.Fatalf("epoch: %s", err)
		}
		writeFile(xyzvPath, func(f *os.File) error { return entry.WriteXYZV(f, traj, epoch) })
		logger.Log("level", "info", "xyzv", xyzvPath)
	}
}

func writeFile(path string, write func(*os.File) error) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("create %s: %s", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		log.Fatalf("write %s: %s", path, err)
	}
}
