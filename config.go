package entry

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

var (
	cfgLoaded = false
	cfgCached = PhysicsConfig{}
)

// EntryConditions are the state at entry interface (t=0). Angles in degrees.
type EntryConditions struct {
	Altitude     float64 // m
	Velocity     float64 // m/s
	LongitudeDeg float64
	LatitudeDeg  float64
	FPADeg       float64 // flight path angle, negative descending
	HeadingDeg   float64
	BankDeg      float64
}

// MissionLimits hold the thresholds of the default phase table and its
// critical-failure predicates.
type MissionLimits struct {
	PeakHeatingAltitude float64 // m, entry threshold of the peak-heating phase
	ParachuteAltitude   float64 // m, parachute deployment altitude
	MaxDynamicPressure  float64 // Pa, structural limit
	MaxGLoad            float64 // aerodynamic deceleration limit, in g
	MaxDeploySpeed      float64 // m/s, parachute deployment limit
	MaxLandingSpeed     float64 // m/s, above this a touchdown is a crash
}

// PhysicsConfig is the immutable-after-construction simulation configuration.
type PhysicsConfig struct {
	Planet      Planet
	Vehicle     Vehicle
	Step        float64 // integration step, s
	LengthScale float64 // presentation scale factor; never enters the dynamics
	Entry       EntryConditions
	Limits      MissionLimits
}

// DefaultConfig returns the MSL-class Mars entry configuration
// (Li and Jiang 2014; MSL SPICE initial state).
func DefaultConfig() PhysicsConfig {
	return PhysicsConfig{
		Planet:      Mars,
		Vehicle:     MSLClass,
		Step:        0.02,
		LengthScale: 1e-6,
		Entry: EntryConditions{
			Altitude:     124999,
			Velocity:     6083.6,
			LongitudeDeg: -78.8618,
			LatitudeDeg:  27.1050,
			FPADeg:       -15.5,
			HeadingDeg:   0,
			BankDeg:      30,
		},
		Limits: MissionLimits{
			PeakHeatingAltitude: 60e3,
			ParachuteAltitude:   6500,
			MaxDynamicPressure:  20e3,
			MaxGLoad:            15,
			MaxDeploySpeed:      500,
			MaxLandingSpeed:     20,
		},
	}
}

// LoadConfig returns the simulation configuration, overriding the defaults
// with conf.toml from the directory in ENTRYSIM_CONFIG when that variable is
// set. The configuration is loaded once and cached.
func LoadConfig() (PhysicsConfig, error) {
	if cfgLoaded {
		return cfgCached, nil
	}
	cfg := DefaultConfig()
	confPath := os.Getenv("ENTRYSIM_CONFIG")
	if confPath == "" {
		cfgLoaded = true
		cfgCached = cfg
		return cfg, nil
	}
	viper.SetConfigName("conf")
	viper.AddConfigPath(confPath)
	if err := viper.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("%s/conf.toml not found or unreadable: %s", confPath, err)
	}
	if name := viper.GetString("planet.name"); name != "" {
		planet, err := PlanetFromString(name)
		if err != nil {
			return cfg, err
		}
		cfg.Planet = planet
	}
	if name := viper.GetString("vehicle.name"); name != "" {
		vehicle, err := VehicleFromString(name)
		if err != nil {
			return cfg, err
		}
		cfg.Vehicle = vehicle
	}
	setIfPresent := func(key string, dst *float64) {
		if viper.IsSet(key) {
			*dst = viper.GetFloat64(key)
		}
	}
	setIfPresent("sim.step", &cfg.Step)
	setIfPresent("sim.length_scale", &cfg.LengthScale)
	setIfPresent("entry.altitude", &cfg.Entry.Altitude)
	setIfPresent("entry.velocity", &cfg.Entry.Velocity)
	setIfPresent("entry.longitude", &cfg.Entry.LongitudeDeg)
	setIfPresent("entry.latitude", &cfg.Entry.LatitudeDeg)
	setIfPresent("entry.fpa", &cfg.Entry.FPADeg)
	setIfPresent("entry.heading", &cfg.Entry.HeadingDeg)
	setIfPresent("entry.bank", &cfg.Entry.BankDeg)
	setIfPresent("limits.peak_heating_altitude", &cfg.Limits.PeakHeatingAltitude)
	setIfPresent("limits.parachute_altitude", &cfg.Limits.ParachuteAltitude)
	setIfPresent("limits.max_dynamic_pressure", &cfg.Limits.MaxDynamicPressure)
	setIfPresent("limits.max_g_load", &cfg.Limits.MaxGLoad)
	setIfPresent("limits.max_deploy_speed", &cfg.Limits.MaxDeploySpeed)
	setIfPresent("limits.max_landing_speed", &cfg.Limits.MaxLandingSpeed)
	if cfg.Step <= 0 {
		panic(fmt.Errorf("sim.step must be positive, got %f", cfg.Step))
	}
	cfgLoaded = true
	cfgCached = cfg
	return cfg, nil
}

// EntryState returns the spherical entry state of the configured entry conditions.
func (cfg PhysicsConfig) EntryState() EntryState {
	// Signed conversion: the flight path angle is negative on descent.
	return EntryState{
		R:         cfg.Planet.Radius + cfg.Entry.Altitude,
		Longitude: cfg.Entry.LongitudeDeg * deg2rad,
		Latitude:  cfg.Entry.LatitudeDeg * deg2rad,
		V:         cfg.Entry.Velocity,
		FPA:       cfg.Entry.FPADeg * deg2rad,
		Heading:   cfg.Entry.HeadingDeg * deg2rad,
	}
}

// standardGravity converts aerodynamic deceleration to g-load.
const standardGravity = 9.80665

// DynamicPressure returns 0.5*ρ*v² for the sample's altitude and speed.
func DynamicPressure(p Planet, s TrajectorySample) float64 {
	return 0.5 * p.Density(s.Altitude) * s.VelocityMag * s.VelocityMag
}

// AeroGLoad returns the aerodynamic deceleration of the vehicle in g.
func AeroGLoad(p Planet, v Vehicle, s TrajectorySample) float64 {
	return DynamicPressure(p, s) * v.RefArea / v.Mass / standardGravity
}

// DefaultPhases builds the standard entry phase table from the configuration:
// EntryInterface, PeakHeating, ParachuteDeploy, Touchdown.
func DefaultPhases(cfg PhysicsConfig) []PhaseDefinition {
	planet, vehicle, lim := cfg.Planet, cfg.Vehicle, cfg.Limits
	return []PhaseDefinition{
		{
			Name:              "EntryInterface",
			Description:       "hypersonic flight from entry interface",
			TimeThreshold:     0,
			AltitudeThreshold: NoThreshold(),
			EndConditions: []NamedPredicate{
				{"below entry interface", func(s TrajectorySample) bool { return s.Altitude < cfg.Entry.Altitude }},
			},
			Failures: []FailureCondition{
				{"skipped out of the atmosphere", func(s TrajectorySample) bool { return s.Altitude > cfg.Entry.Altitude+20e3 }},
			},
		},
		{
			Name:              "PeakHeating",
			Description:       "maximum heat flux and deceleration",
			TimeThreshold:     NoThreshold(),
			AltitudeThreshold: lim.PeakHeatingAltitude,
			StartConditions: []NamedPredicate{
				{"descending", func(s TrajectorySample) bool { return s.VelocityMag > 0 }},
			},
			EndConditions: []NamedPredicate{
				{"dynamic pressure subsiding", func(s TrajectorySample) bool {
					return DynamicPressure(planet, s) < lim.MaxDynamicPressure
				}},
			},
			Events: []NamedPredicate{
				{"peak heating", func(s TrajectorySample) bool {
					return DynamicPressure(planet, s) > lim.MaxDynamicPressure/2
				}},
			},
			Failures: []FailureCondition{
				{"heat shield structural limit exceeded", func(s TrajectorySample) bool {
					return DynamicPressure(planet, s) > lim.MaxDynamicPressure
				}},
				{"deceleration limit exceeded", func(s TrajectorySample) bool {
					return AeroGLoad(planet, vehicle, s) > lim.MaxGLoad
				}},
			},
		},
		{
			Name:              "ParachuteDeploy",
			Description:       "supersonic parachute deployment",
			TimeThreshold:     NoThreshold(),
			AltitudeThreshold: lim.ParachuteAltitude,
			StartConditions: []NamedPredicate{
				{"below deployment ceiling", func(s TrajectorySample) bool { return s.Altitude <= lim.ParachuteAltitude }},
			},
			EndConditions: []NamedPredicate{
				{"subsonic descent", func(s TrajectorySample) bool {
					return s.VelocityMag < planet.SoundSpeed(s.Altitude)
				}},
			},
			Events: []NamedPredicate{
				{"parachute mortar fire", func(s TrajectorySample) bool { return s.Altitude <= lim.ParachuteAltitude }},
			},
			Failures: []FailureCondition{
				{"parachute deployment overspeed", func(s TrajectorySample) bool {
					return s.VelocityMag > lim.MaxDeploySpeed
				}},
			},
		},
		{
			Name:              "Touchdown",
			Description:       "surface contact",
			TimeThreshold:     NoThreshold(),
			AltitudeThreshold: 0,
			Terminal:          true,
			Failures: []FailureCondition{
				{"landing impact limit exceeded", func(s TrajectorySample) bool {
					return s.Altitude <= 0 && s.VelocityMag > lim.MaxLandingSpeed
				}},
			},
		},
	}
}
