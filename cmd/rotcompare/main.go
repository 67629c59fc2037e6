// Command rotcompare synthesizes a co-located ring laser and broadband
// recording of one event and runs the full backazimuth and phase velocity
// analysis on it. Every parameter can be overridden from the environment
// with the ROTCOMPARE_ prefix.
package main

import (
	"math"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/Nicolucas/RLdatabase/seis/condition"
	"github.com/Nicolucas/RLdatabase/seis/geo"
	"github.com/Nicolucas/RLdatabase/seis/pipeline"
	"github.com/Nicolucas/RLdatabase/seis/response"
	"github.com/Nicolucas/RLdatabase/seis/synth"
)

// Config holds the demo scenario parameters.
type Config struct {
	StationLat float64 `envconfig:"STATION_LAT" default:"49.144"`
	StationLon float64 `envconfig:"STATION_LON" default:"12.879"`

	// Event placement relative to the station.
	DistanceKm     float64 `envconfig:"DISTANCE_KM" default:"500"`
	BackazimuthDeg float64 `envconfig:"BACKAZIMUTH_DEG" default:"120"`
	DepthKm        float64 `envconfig:"DEPTH_KM" default:"10"`

	// Recording parameters.
	SampleRateHz    float64 `envconfig:"SAMPLE_RATE_HZ" default:"20"`
	DurationSec     float64 `envconfig:"DURATION_SEC" default:"600"`
	OriginOffsetSec float64 `envconfig:"ORIGIN_OFFSET_SEC" default:"200"`

	// Wavefield parameters. AmplitudeRatio/2 is the phase velocity the
	// analysis should recover.
	AmplitudeRatio float64 `envconfig:"AMPLITUDE_RATIO" default:"2"`
	SignalHz       float64 `envconfig:"SIGNAL_HZ" default:"0.2"`
	LeakHz         float64 `envconfig:"LEAK_HZ" default:"0.4"`
	NoiseAmplitude float64 `envconfig:"NOISE_AMPLITUDE" default:"0.01"`
	Seed           int64   `envconfig:"SEED" default:"1"`

	Debug bool `envconfig:"DEBUG" default:"false"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("rotcompare", &cfg); err != nil {
		panic(err)
	}

	log := newLogger(cfg.Debug)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("analysis failed", zap.Error(err))
	}
}

func newLogger(debug bool) *zap.Logger {
	zcfg := zap.NewDevelopmentConfig()
	if !debug {
		zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	log, err := zcfg.Build()
	if err != nil {
		panic(err)
	}

	return log
}

func run(cfg Config, log *zap.Logger) error {
	gen := synth.NewGenerator(synth.WithSampleRate(cfg.SampleRateHz), synth.WithSeed(cfg.Seed))

	rec, err := gen.Event(synth.EventParams{
		BackazimuthDeg: cfg.BackazimuthDeg,
		AmplitudeRatio: cfg.AmplitudeRatio,
		SignalHz:       cfg.SignalHz,
		LeakHz:         cfg.LeakHz,
		NoiseAmplitude: cfg.NoiseAmplitude,
		DurationSec:    cfg.DurationSec,
	}, time.Now().UTC())
	if err != nil {
		return err
	}

	evLat, evLon := destination(cfg.StationLat, cfg.StationLon, cfg.BackazimuthDeg, cfg.DistanceKm)
	flat := response.PAZ{Gain: 1, Sensitivity: 1}

	engine := pipeline.New(pipeline.WithLogger(log))

	res, err := engine.Run(pipeline.Input{
		Event: pipeline.Event{
			LatitudeDeg:     evLat,
			LongitudeDeg:    evLon,
			DepthKm:         cfg.DepthKm,
			OriginOffsetSec: cfg.OriginOffsetSec,
		},
		Station: pipeline.Station{
			LatitudeDeg:  cfg.StationLat,
			LongitudeDeg: cfg.StationLon,
		},
		Raw: condition.Input{
			Rotation:            rec.Rotation,
			North:               rec.North,
			East:                rec.East,
			Vertical:            rec.Vertical,
			RotationResponse:    flat,
			TranslationResponse: flat,
		},
	})
	if err != nil {
		return err
	}

	report(res, log)

	return nil
}

func report(res *pipeline.Result, log *zap.Logger) {
	fields := []zap.Field{
		zap.String("zone", res.Zone.Kind.String()),
		zap.Float64("distance_km", res.Geometry.DistanceKm),
		zap.Float64("theoretical_baz_deg", res.Geometry.BackazimuthDeg),
		zap.Float64("p_arrival_sec", res.Arrivals.P),
		zap.Float64("surface_arrival_sec", res.Arrivals.Surface),
		zap.Float64("rotation_peak", res.RotationPeak),
		zap.Float64("transverse_peak", res.TransversePeak),
		zap.Float64("rotation_snr", res.RotationSNR),
	}

	if res.RefinedOK {
		fields = append(fields, zap.Float64("refined_baz_deg", res.Refined))
	}

	log.Info("analysis complete", fields...)

	for _, band := range res.Bands {
		if band.Count == 0 {
			continue
		}

		log.Info("dispersion band",
			zap.Float64("low_hz", band.Band.LowHz),
			zap.Float64("high_hz", band.Band.HighHz),
			zap.Float64("mean_mps", band.Mean),
			zap.Float64("std_mps", band.Std),
			zap.Int("windows", band.Count),
		)
	}

	if len(res.Degraded) > 0 {
		log.Warn("sections degraded", zap.Strings("sections", res.Degraded))
	}
}

// destination moves distKm from the station along the given bearing on the
// spherical earth, so the synthesized event sits at the configured
// backazimuth.
func destination(latDeg, lonDeg, bearingDeg, distKm float64) (lat, lon float64) {
	la1 := latDeg * math.Pi / 180
	lo1 := lonDeg * math.Pi / 180
	br := bearingDeg * math.Pi / 180
	d := distKm / geo.EarthRadiusKm

	la2 := math.Asin(math.Sin(la1)*math.Cos(d) + math.Cos(la1)*math.Sin(d)*math.Cos(br))
	lo2 := lo1 + math.Atan2(math.Sin(br)*math.Sin(d)*math.Cos(la1),
		math.Cos(d)-math.Sin(la1)*math.Sin(la2))

	return la2 * 180 / math.Pi, lo2 * 180 / math.Pi
}
