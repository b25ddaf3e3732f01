// Package config loads the planner's deployment-time tunables. It exists
// so those tunables can come from flags or environment variables the way
// the teacher's main.go loads its XMPP settings, without this module
// shipping a CLI binary of its own (host applications call config.Load
// before constructing a planner.Planner).
package config

import (
	"flag"
	"time"

	"github.com/peterbourgon/ff"
)

// Config holds the numeric parameters spec.md §3/§6 calls out as
// configuration constants.
type Config struct {
	// Speed is the default cruise speed (m/s) used until SetSpeed is
	// called. Must be > 0.
	Speed float64

	// MaxAcceleration is a_max, 9.81 m/s² by default; Load lets the -a-max
	// flag override it.
	MaxAcceleration float64

	// StitchingSecurityHorizon is Δ_security, the fixed horizon (default
	// 4s) a regeneration stitches past "now".
	StitchingSecurityHorizon time.Duration

	// StitchingSafetyCoefficient is TIME_STITCHING_SECURITY_COEF (0.9).
	StitchingSafetyCoefficient float64

	// SecurityZoneWidth is SECURITY_ZONE_MULTIPLIER's configured width.
	// Spec.md documents this as "disabled, reserve knob" — it is checked
	// but inert at its default of 0.
	SecurityZoneWidth float64

	// WorkerPollInterval is how often the background worker wakes to check
	// the dirty flag when it hasn't been signaled directly (~1ms default).
	WorkerPollInterval time.Duration

	// WaypointsAppendedFromStitching is N_WAYPOINTS_TO_APPEND (1). The
	// stitching step uses it only to size next_deque; it always prepends
	// exactly one synthetic waypoint whatever this value is.
	WaypointsAppendedFromStitching int

	// DerivativeToOptimize is the default optimizer objective order
	// (Acceleration = 2, per spec.md §6).
	DerivativeToOptimize int
}

// Default returns the configuration spec.md's constants section specifies.
func Default() Config {
	return Config{
		Speed:                      1.0,
		MaxAcceleration:            9.81,
		StitchingSecurityHorizon:   4 * time.Second,
		StitchingSafetyCoefficient: 0.9,
		SecurityZoneWidth:          0.0,
		WorkerPollInterval:         time.Millisecond,
		WaypointsAppendedFromStitching: 1,
		DerivativeToOptimize:       2,
	}
}

// Load parses args (and any DTG_-prefixed environment variables) over
// Default(), the same flag-plus-env-var idiom the teacher's main.go uses
// via github.com/peterbourgon/ff.
func Load(args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("dynamic-trajectory-generator", flag.ContinueOnError)
	speed := fs.Float64("speed", cfg.Speed, "default cruise speed in m/s")
	aMax := fs.Float64("a-max", cfg.MaxAcceleration, "maximum acceleration in m/s^2")
	stitchHorizon := fs.Duration("stitch-horizon", cfg.StitchingSecurityHorizon, "stitching security horizon")
	stitchCoef := fs.Float64("stitch-safety-coef", cfg.StitchingSafetyCoefficient, "stitching safety coefficient")
	securityZone := fs.Float64("security-zone-width", cfg.SecurityZoneWidth, "security zone width (reserved, currently inert)")
	pollInterval := fs.Duration("worker-poll-interval", cfg.WorkerPollInterval, "background worker poll interval")

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("DTG")); err != nil {
		return Config{}, err
	}

	cfg.Speed = *speed
	cfg.MaxAcceleration = *aMax
	cfg.StitchingSecurityHorizon = *stitchHorizon
	cfg.StitchingSafetyCoefficient = *stitchCoef
	cfg.SecurityZoneWidth = *securityZone
	cfg.WorkerPollInterval = *pollInterval

	return cfg, nil
}
