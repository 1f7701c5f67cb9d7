package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/spaceguard/impactor"
	"github.com/spf13/viper"
	"golang.org/x/exp/rand"
)

// Scenario constants
const (
	defaultScenario = "~~unset~~"
	defaultVelocity = 20.0 // km/s
	defaultAngle    = 45.0 // degrees
)

var scenario string
var debug = flag.Bool("debug", false, "verbose debug")

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "impact scenario TOML file")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}

	scenario = strings.Replace(scenario, ".toml", "", 1)
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml: Error %s", scenario, err)
	}

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC, "scenario", scenario)

	// Read asteroid parameters.
	body := impactor.AsteroidBody{
		Diameter: viper.GetFloat64("asteroid.diameter"),
		Density:  viper.GetFloat64("asteroid.density"),
		Angle:    defaultAngle,
	}
	if viper.IsSet("asteroid.angle") {
		body.Angle = viper.GetFloat64("asteroid.angle")
	}
	if err := body.Validate(); err != nil {
		log.Fatalf("asteroid: %s", err)
	}
	velocity := defaultVelocity
	if viper.IsSet("asteroid.velocity") {
		velocity = viper.GetFloat64("asteroid.velocity")
	}

	// Read orbit.
	a := viper.GetFloat64("orbit.sma")
	e := viper.GetFloat64("orbit.ecc")
	i := viper.GetFloat64("orbit.inc")
	Ω := viper.GetFloat64("orbit.RAAN")
	ω := viper.GetFloat64("orbit.argPeri")
	M := viper.GetFloat64("orbit.mAnomaly")
	elements, err := impactor.NewElements(a, e, i, Ω, ω, M)
	if err != nil {
		log.Fatalf("orbit: %s", err)
	}
	logger.Log("level", "info", "msg", "scenario loaded", "orbit", elements.String(), "diameter(m)", body.Diameter)

	// Optional explicit target.
	var target *impactor.ImpactLocation
	if viper.IsSet("target.latitude") {
		target = &impactor.ImpactLocation{
			Latitude:  viper.GetFloat64("target.latitude"),
			Longitude: viper.GetFloat64("target.longitude"),
		}
	}

	// Intercept search drives the entry kinematics when it succeeds; the
	// scenario velocity and angle are the fallback.
	angle := body.Angle
	var location impactor.ImpactLocation
	sol, err := impactor.FindEarthIntercept(elements)
	switch {
	case err == nil:
		velocity = sol.EntryVelocity
		angle = sol.EntryAngle
		location = impactor.ResolveImpactLocation(sol.RelativeVelocity, angle, target)
		if target == nil {
			location.Latitude = sol.Latitude
			location.Longitude = sol.Longitude
		}
		logger.Log("level", "info", "msg", "intercept found", "M(deg)", sol.MeanAnomaly, "residual(km)", sol.Residual, "v(km/s)", velocity)
	case err == impactor.ErrNoIntercept:
		logger.Log("level", "warning", "msg", "no Earth intercept, using scenario kinematics")
		if target != nil {
			location = *target
			location.Angle = angle
		} else {
			lat, lon := impactor.RandomImpactPoint(rand.NewSource(uint64(time.Now().UnixNano())))
			location = impactor.ImpactLocation{Latitude: lat, Longitude: lon, Angle: angle}
		}
	default:
		log.Fatalf("intercept: %s", err)
	}
	logger.Log("level", "info", "msg", "impact location", "lat", location.Latitude, "lon", location.Longitude)

	// Atmospheric entry.
	profile, err := impactor.PropagateEntry(velocity, angle, body.Diameter, body.Density)
	if err != nil {
		log.Fatalf("entry: %s", err)
	}
	impactVelocity := profile.ImpactVelocity
	if profile.Fragmented {
		logger.Log("level", "notice", "msg", "airburst", "altitude(km)", profile.AirburstAltitude)
	} else {
		logger.Log("level", "info", "msg", "ground impact", "v(km/s)", impactVelocity)
	}

	// Ground effects, computed from the post-entry velocity when the body
	// survived to the surface and from the pre-entry velocity otherwise.
	effectsVelocity := impactVelocity
	if effectsVelocity <= 0 {
		effectsVelocity = velocity
	}
	effects, err := impactor.ComputeEffects(body.Diameter, effectsVelocity, body.Density, angle)
	if err != nil {
		log.Fatalf("effects: %s", err)
	}
	logger.Log("level", "info", "msg", "effects", "energy(MT)", effects.EnergyMT, "crater(m)", effects.CraterDiameter, "magnitude", effects.SeismicMagnitude)

	// Orbit path for the renderer.
	path := impactor.GenerateOrbitPath(elements, impactor.PathOptions{
		NumPoints:      viper.GetInt("path.points"),
		CheckCollision: viper.GetBool("path.checkCollision"),
		FullOrbit:      viper.GetBool("path.fullOrbit"),
	})

	// Optional Monte Carlo heatmap.
	var heatmap *impactor.ImpactMap
	if viper.GetBool("montecarlo.enabled") {
		cov := impactor.CovarianceMatrix{
			Labels:  viper.GetStringSlice("covariance.labels"),
			EpochJD: viper.GetFloat64("covariance.epoch_jd"),
		}
		for _, val := range viper.GetStringSlice("covariance.matrix") {
			fl, errp := strconv.ParseFloat(val, 64)
			if errp != nil {
				log.Fatalf("covariance: cannot parse %q", val)
			}
			cov.Data = append(cov.Data, fl)
		}
		mcOpts := impactor.MonteCarloOptions{
			Samples: viper.GetInt("montecarlo.samples"),
			BinSize: viper.GetFloat64("montecarlo.bin"),
			Seed:    uint64(viper.GetInt64("montecarlo.seed")),
			Workers: viper.GetInt("montecarlo.workers"),
		}
		if *debug {
			mcOpts.Logger = logger
		}
		heatmap, err = impactor.SampleImpactMap(elements, cov, body, mcOpts)
		if err != nil {
			log.Fatalf("montecarlo: %s", err)
		}
		logger.Log("level", "info", "msg", "heatmap", "valid", heatmap.ValidSamples, "invalid", heatmap.InvalidSamples, "bins", len(heatmap.Bins))
	}

	// Exports.
	export := impactor.ExportConfig{
		Filename:  viper.GetString("export.filename"),
		AsCSV:     viper.GetBool("export.csv"),
		AsJSON:    viper.GetBool("export.json"),
		Timestamp: viper.GetBool("export.timestamp"),
	}
	if export.Filename == "" {
		export.Filename = scenario
	}
	if !export.IsUseless() {
		if err := impactor.ExportEntryProfile(export, profile); err != nil {
			log.Fatalf("export entry: %s", err)
		}
		if err := impactor.ExportOrbitPath(export, path); err != nil {
			log.Fatalf("export path: %s", err)
		}
		if heatmap != nil {
			if err := impactor.ExportImpactMap(export, heatmap); err != nil {
				log.Fatalf("export heatmap: %s", err)
			}
		}
	}

	// Scenario summary on stdout for downstream consumers.
	summary := map[string]interface{}{
		"location":   location,
		"entry":      profile,
		"effects":    effects,
		"orbit_path": path,
	}
	if heatmap != nil {
		summary["heatmap"] = heatmap
	}
	out, err := json.Marshal(summary)
	if err != nil {
		log.Fatalf("summary: %s", err)
	}
	os.Stdout.Write(out)
	os.Stdout.WriteString("\n")
}
