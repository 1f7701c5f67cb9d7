package impactor

import (
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"
)

const (
	// DefaultBinSize is the heatmap grid cell size in degrees.
	DefaultBinSize = 5.0
	// minSampledSMA floors the sampled semi-major axis, AU.
	minSampledSMA = 0.1
	// maxSampledEcc keeps sampled orbits elliptic.
	maxSampledEcc = 0.999
)

// HeatmapBin is one geographic grid cell of the impact probability map.
type HeatmapBin struct {
	LatBin      int     `json:"lat_bin"`
	LonBin      int     `json:"lon_bin"`
	LatCenter   float64 `json:"lat_center_deg"`
	LonCenter   float64 `json:"lon_center_deg"`
	Count       int     `json:"count"`
	Probability float64 `json:"probability"`
}

// ImpactMap aggregates a Monte Carlo run into a geographic histogram.
// Discarded after the response; never persisted.
type ImpactMap struct {
	TotalSamples   int          `json:"total_samples"`
	ValidSamples   int          `json:"valid_samples"`
	InvalidSamples int          `json:"invalid_samples"`
	BinSize        float64      `json:"bin_size_deg"`
	Bins           []HeatmapBin `json:"heatmap"`
	MeanLatitude   float64      `json:"mean_latitude"`
	MeanLongitude  float64      `json:"mean_longitude"`
	CalcTimeMS     float64      `json:"calculation_time_ms"`
}

// MonteCarloOptions tunes SampleImpactMap.
type MonteCarloOptions struct {
	Samples int
	BinSize float64 // degrees; DefaultBinSize when 0
	// Seed seeds the multivariate normal generator. Zero means
	// nondeterministic (time-based).
	Seed uint64
	// Workers caps pipeline parallelism; <= 1 runs sequentially, 0 selects
	// GOMAXPROCS. The histogram is identical for any worker count.
	Workers int
	Logger  kitlog.Logger // optional
}

// binKey identifies a heatmap cell.
type binKey struct {
	lat, lon int
}

// binAccumulator collects per-worker partial results. Merging is count
// addition, so the aggregation is associative and commutative: any fan-out
// produces the same histogram as the sequential baseline.
type binAccumulator struct {
	counts         map[binKey]int
	latSum, lonSum float64
	valid, invalid int
}

func newBinAccumulator() *binAccumulator {
	return &binAccumulator{counts: make(map[binKey]int)}
}

func (acc *binAccumulator) merge(other *binAccumulator) {
	for k, n := range other.counts {
		acc.counts[k] += n
	}
	acc.latSum += other.latSum
	acc.lonSum += other.lonSum
	acc.valid += other.valid
	acc.invalid += other.invalid
}

// record runs one sampled element vector through the intercept pipeline and
// bins the resulting impact point.
func (acc *binAccumulator) record(el OrbitalElements, binSize float64) {
	sol, err := FindEarthIntercept(el)
	if err != nil {
		acc.invalid++
		return
	}
	lat, lon := sol.Latitude, sol.Longitude
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		acc.invalid++
		return
	}
	acc.valid++
	acc.latSum += lat
	acc.lonSum += lon
	key := binKey{
		lat: int(math.Floor((lat + 90) / binSize)),
		lon: int(math.Floor((lon + 180) / binSize)),
	}
	acc.counts[key]++
}

// conditionSample wraps a raw multivariate normal draw back into the physical
// element domains: the semi-major axis is floored, the eccentricity clamped to
// [0, 0.999) and the angular elements wrapped into their periodic ranges.
func conditionSample(s []float64) OrbitalElements {
	return OrbitalElements{
		a: math.Max(s[0], minSampledSMA),
		e: math.Min(math.Max(s[1], 0), maxSampledEcc),
		i: pmod(s[2], 180),
		Ω: pmod(s[3], 360),
		ω: pmod(s[4], 360),
		m: pmod(s[5], 360),
	}
}

// SampleImpactMap draws element vectors from the multivariate normal defined
// by (nominal, cov), runs each through the intercept pipeline and aggregates
// the impact points into a geographic probability heatmap.
//
// Covariance validation happens before any sampling; an unusable matrix is a
// CovarianceError. Per-sample failures (no intercept, non-finite location)
// are absorbed into the invalid counter rather than aborting the batch.
func SampleImpactMap(nominal OrbitalElements, cov CovarianceMatrix, body AsteroidBody, opts MonteCarloOptions) (*ImpactMap, error) {
	start := time.Now()
	if err := body.Validate(); err != nil {
		return nil, err
	}
	if opts.Samples <= 0 {
		return nil, ValidationError{"samples", float64(opts.Samples), "must be strictly positive"}
	}
	if opts.BinSize == 0 {
		opts.BinSize = DefaultBinSize
	}
	if opts.BinSize < 0 {
		return nil, ValidationError{"bin size", opts.BinSize, "must be strictly positive (degrees)"}
	}
	logger := opts.Logger
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}

	sub, err := cov.Submatrix(RequiredElementLabels)
	if err != nil {
		return nil, err
	}
	sub, err = ensurePositiveSemiDefinite(sub)
	if err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	a, e, i, Ω, ω, M := nominal.Elements()
	normal, ok := distmv.NewNormal([]float64{a, e, i, Ω, ω, M}, sub, rand.NewSource(seed))
	if !ok {
		return nil, CovarianceError{"matrix rejected by the multivariate normal sampler"}
	}

	// Draw every sample up front from the seeded generator so the result is
	// reproducible regardless of how the pipeline work is split.
	draws := make([][]float64, opts.Samples)
	for n := range draws {
		draws[n] = normal.Rand(nil)
	}
	logger.Log("level", "info", "subsys", "montecarlo", "msg", "sampling", "samples", opts.Samples, "bin(deg)", opts.BinSize)

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(draws) {
		workers = len(draws)
	}

	total := newBinAccumulator()
	if workers <= 1 {
		for _, s := range draws {
			total.record(conditionSample(s), opts.BinSize)
		}
	} else {
		accs := make([]*binAccumulator, workers)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			accs[w] = newBinAccumulator()
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for n := w; n < len(draws); n += workers {
					accs[w].record(conditionSample(draws[n]), opts.BinSize)
				}
			}(w)
		}
		wg.Wait()
		for _, acc := range accs {
			total.merge(acc)
		}
	}

	m := &ImpactMap{
		TotalSamples:   opts.Samples,
		ValidSamples:   total.valid,
		InvalidSamples: total.invalid,
		BinSize:        opts.BinSize,
		Bins:           make([]HeatmapBin, 0, len(total.counts)),
	}
	for key, count := range total.counts {
		m.Bins = append(m.Bins, HeatmapBin{
			LatBin:      key.lat,
			LonBin:      key.lon,
			LatCenter:   -90 + (float64(key.lat)+0.5)*opts.BinSize,
			LonCenter:   -180 + (float64(key.lon)+0.5)*opts.BinSize,
			Count:       count,
			Probability: float64(count) / float64(total.valid),
		})
	}
	sort.Slice(m.Bins, func(x, y int) bool {
		if m.Bins[x].LatBin != m.Bins[y].LatBin {
			return m.Bins[x].LatBin < m.Bins[y].LatBin
		}
		return m.Bins[x].LonBin < m.Bins[y].LonBin
	})
	if total.valid > 0 {
		m.MeanLatitude = total.latSum / float64(total.valid)
		m.MeanLongitude = total.lonSum / float64(total.valid)
	}
	m.CalcTimeMS = float64(time.Since(start).Microseconds()) / 1000
	logger.Log("level", "info", "subsys", "montecarlo", "msg", "done",
		"valid", total.valid, "invalid", total.invalid, "bins", len(m.Bins), "ms", m.CalcTimeMS)
	return m, nil
}

// RandomImpactPoint picks a uniformly distributed fallback impact point when
// a scenario supplies neither an intercept nor an explicit target. It is
// deliberately isolated from the deterministic geometry code and takes an
// explicit source so callers stay testable.
func RandomImpactPoint(src rand.Source) (lat, lon float64) {
	rng := rand.New(src)
	return -60 + 120*rng.Float64(), -180 + 360*rng.Float64()
}
