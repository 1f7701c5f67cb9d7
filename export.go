package impactor

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ExportConfig configures how results are written out.
type ExportConfig struct {
	Filename  string
	AsCSV     bool
	AsJSON    bool
	Timestamp bool
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV && !c.AsJSON
}

// outputPath builds the destination path from the configured output directory,
// optionally timestamped.
func (c ExportConfig) outputPath(prefix, ext string) string {
	conf := impactorConfig()
	if err := os.MkdirAll(conf.outputDir, 0755); err != nil {
		panic(err)
	}
	if c.Timestamp {
		t := time.Now()
		return fmt.Sprintf("%s/%s-%s-%d-%02d-%02dT%02d.%02d.%02d.%s", conf.outputDir, prefix, c.Filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), ext)
	}
	return fmt.Sprintf("%s/%s-%s.%s", conf.outputDir, prefix, c.Filename, ext)
}

// createTrajectoryCSVFile returns a file which requires a defer close statement!
func createTrajectoryCSVFile(conf ExportConfig) *os.File {
	f, err := os.Create(conf.outputPath("entry", "csv"))
	if err != nil {
		panic(err)
	}
	// Header
	f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Records are time, altitude, velocity, horizontal distance, dynamic pressure, density.
#   Time in seconds, altitude and distance in km, velocity in km/s, pressure in Pa
time,altitude_km,velocity_km_s,horizontal_distance_km,dynamic_pressure_pa,atmospheric_density
`, time.Now().UTC()))
	return f
}

// StreamTrajectory streams descent samples from the channel to a CSV file.
// It returns once the channel is closed and the file flushed.
func StreamTrajectory(conf ExportConfig, ptChan <-chan TrajectoryPoint) {
	if !conf.AsCSV {
		for range ptChan {
			// Drain so the producer never blocks.
		}
		return
	}
	f := createTrajectoryCSVFile(conf)
	defer f.Close()
	for pt := range ptChan {
		f.WriteString(fmt.Sprintf("%f,%f,%f,%f,%f,%g\n", pt.Time, pt.Altitude, pt.Velocity, pt.HorizontalDistance, pt.DynamicPressure, pt.AtmosphericDensity))
	}
}

// ExportEntryProfile writes a completed descent to CSV and/or JSON per the
// config.
func ExportEntryProfile(conf ExportConfig, profile *EntryProfile) error {
	if conf.IsUseless() {
		return nil
	}
	if conf.AsCSV {
		ptChan := make(chan TrajectoryPoint)
		done := make(chan struct{})
		go func() {
			StreamTrajectory(conf, ptChan)
			close(done)
		}()
		for _, pt := range profile.Points {
			ptChan <- pt
		}
		close(ptChan)
		<-done
	}
	if conf.AsJSON {
		return writeJSON(conf.outputPath("entry", "json"), profile)
	}
	return nil
}

// ExportImpactMap writes a Monte Carlo heatmap to CSV and/or JSON per the
// config.
func ExportImpactMap(conf ExportConfig, m *ImpactMap) error {
	if conf.IsUseless() {
		return nil
	}
	if conf.AsCSV {
		f, err := os.Create(conf.outputPath("heatmap", "csv"))
		if err != nil {
			return err
		}
		defer f.Close()
		f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Records are bin indices, bin centers (degrees), sample count and probability.
lat_bin,lon_bin,lat_center_deg,lon_center_deg,count,probability
`, time.Now().UTC()))
		for _, bin := range m.Bins {
			f.WriteString(fmt.Sprintf("%d,%d,%f,%f,%d,%f\n", bin.LatBin, bin.LonBin, bin.LatCenter, bin.LonCenter, bin.Count, bin.Probability))
		}
	}
	if conf.AsJSON {
		return writeJSON(conf.outputPath("heatmap", "json"), m)
	}
	return nil
}

// ExportOrbitPath writes a sampled orbit to JSON per the config. The path is
// a rendering artifact, so CSV is not supported.
func ExportOrbitPath(conf ExportConfig, path *OrbitPath) error {
	if !conf.AsJSON {
		return nil
	}
	return writeJSON(conf.outputPath("path", "json"), path)
}

func writeJSON(filename string, v interface{}) error {
	marsh, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(marsh)
	return err
}
