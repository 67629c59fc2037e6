// Package pipeline composes the full event analysis: geometry, zone
// classification, signal conditioning, the backazimuth grid searches, and
// the phase velocity estimates for one event-station pair.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Nicolucas/RLdatabase/seis/arrival"
	"github.com/Nicolucas/RLdatabase/seis/condition"
	"github.com/Nicolucas/RLdatabase/seis/geo"
	"github.com/Nicolucas/RLdatabase/seis/gridsearch"
	"github.com/Nicolucas/RLdatabase/seis/phasevel"
	"github.com/Nicolucas/RLdatabase/seis/rotate"
	"github.com/Nicolucas/RLdatabase/seis/trace"
	"github.com/Nicolucas/RLdatabase/seis/zone"
	"github.com/Nicolucas/RLdatabase/stats/series"
	"github.com/Nicolucas/RLdatabase/stats/xcorr"
)

// Pass thresholds and window parameters.
const (
	fineThreshold  = 0.9
	pcodaThreshold = 0.5

	fineWindowSeconds  = 30.0
	pcodaWindowSeconds = 2.0

	coarseStepDeg = 10.0
	fineStepDeg   = 1.0
)

// Event locates the source.
type Event struct {
	LatitudeDeg  float64
	LongitudeDeg float64
	DepthKm      float64
	// OriginOffsetSec is the origin time relative to the trace start.
	OriginOffsetSec float64
}

// Station locates the receiver.
type Station struct {
	LatitudeDeg  float64
	LongitudeDeg float64
}

// Input is one event-station pair: source and receiver coordinates plus
// the raw recordings and response descriptors.
type Input struct {
	Event   Event
	Station Station
	Raw     condition.Input
}

// Result collects everything the analysis derives for one pair. Sections
// produced by a failed pass are left nil; Degraded lists them.
type Result struct {
	Geometry geo.Geometry
	Zone     zone.Parameters
	Arrivals arrival.Times
	Windows  arrival.Windows

	// TheoreticalCC is the per-window correlation at the theoretical
	// backazimuth, over the zone window length.
	TheoreticalCC []float64

	Coarse *gridsearch.Result
	Fine   *gridsearch.Result
	// Refined is the estimated backazimuth from the fine pass; valid
	// only when RefinedOK.
	Refined   float64
	RefinedOK bool

	// PCoda holds the per-window P-coda grid pass.
	PCoda *gridsearch.Result

	// Broadband are the zone-window phase velocity estimates at the
	// theoretical backazimuth; Bands the dispersion analysis.
	Broadband []phasevel.Estimate
	Bands     []phasevel.BandStats

	// Peak amplitudes of the conditioned traces (nrad/s, nm/s^2) and
	// signal-to-noise ratios relative to the pre-P window.
	RotationPeak   float64
	TransversePeak float64
	RotationSNR    float64
	TransverseSNR  float64

	// Degraded names the sections omitted after a pass failure.
	Degraded []string
}

// Engine runs analyses. The zero value is not usable; construct with New.
type Engine struct {
	log     *zap.Logger
	workers int
}

// Option adjusts an Engine.
type Option func(*Engine)

// WithLogger attaches a structured logger; the default engine is silent.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithWorkers bounds the grid search concurrency.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// New returns an Engine. Engines are stateless and safe for concurrent
// use.
func New(opts ...Option) *Engine {
	e := &Engine{log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run analyzes one pair. A geometry or conditioning failure aborts the
// run; later pass failures degrade their section of the Result and are
// logged.
func (e *Engine) Run(in Input) (*Result, error) {
	g, err := geo.New(in.Event.LatitudeDeg, in.Event.LongitudeDeg, in.Event.DepthKm,
		in.Station.LatitudeDeg, in.Station.LongitudeDeg)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	zp := zone.Classify(g.DistanceKm)
	times := arrival.Estimate(g.DistanceKm, in.Event.DepthKm, in.Event.OriginOffsetSec)
	windows := arrival.Analysis(times, g.DistanceKm, zp.Kind)

	e.log.Info("classified event",
		zap.Float64("distance_km", g.DistanceKm),
		zap.Float64("theoretical_baz_deg", g.BackazimuthDeg),
		zap.String("zone", zp.Kind.String()),
	)

	conditioned, err := condition.Run(in.Raw, zp)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	res := &Result{
		Geometry: g,
		Zone:     zp,
		Arrivals: times,
		Windows:  windows,
	}

	e.theoretical(res, conditioned.Main, zp)
	e.coarsePass(res, conditioned.Main, zp)
	e.finePass(res, conditioned.Main)
	e.pcodaPass(res, conditioned.PCoda)
	e.velocities(res, conditioned.Main, zp)
	e.statistics(res, conditioned.Main)

	return res, nil
}

func (e *Engine) degrade(res *Result, section string, err error) {
	res.Degraded = append(res.Degraded, section)
	e.log.Warn("pass failed", zap.String("section", section), zap.Error(err))
}

// theoretical correlates rotation rate with the transverse acceleration at
// the theoretical backazimuth, and keeps that transverse trace's peak.
func (e *Engine) theoretical(res *Result, main condition.Set, zp zone.Parameters) {
	transverse, err := transverseAt(main, res.Geometry.BackazimuthDeg)
	if err != nil {
		e.degrade(res, "theoretical", err)

		return
	}

	perWindow, _ := main.Rotation.WindowSamples(zp.WindowSeconds)
	cc, err := xcorr.PerWindow(main.Rotation.Data(), transverse.Data(), perWindow)
	if err != nil {
		e.degrade(res, "theoretical", err)

		return
	}

	res.TheoreticalCC = cc
	res.TransversePeak = series.Peak(transverse.Data())
}

func (e *Engine) coarsePass(res *Result, main condition.Set, zp zone.Parameters) {
	cfg := gridsearch.Config{
		AngleStepDeg:  coarseStepDeg,
		AngleCount:    36,
		WindowSeconds: zp.WindowSeconds,
		Threshold:     fineThreshold,
		Workers:       e.workers,
	}

	out, err := gridsearch.Run(main.Rotation, main.North, main.East, cfg)
	if err != nil {
		e.degrade(res, "coarse", err)

		return
	}

	res.Coarse = out
}

// finePass searches a 1 degree grid over the S-wave through latter
// surface-wave segment and refines the backazimuth from the accepted
// windows.
func (e *Engine) finePass(res *Result, main condition.Set) {
	seg, err := segment(main, res.Windows.SStart, res.Windows.SurfLaterEnd)
	if err != nil {
		e.degrade(res, "fine", err)

		return
	}

	cfg := gridsearch.Config{
		AngleStepDeg:  fineStepDeg,
		AngleCount:    360,
		WindowSeconds: fineWindowSeconds,
		Threshold:     fineThreshold,
		Workers:       e.workers,
	}

	out, err := gridsearch.Run(seg.Rotation, seg.North, seg.East, cfg)
	if err != nil {
		e.degrade(res, "fine", err)

		return
	}

	res.Fine = out

	baz, err := out.Refine()
	if err != nil {
		e.degrade(res, "refine", err)

		return
	}

	res.Refined = baz
	res.RefinedOK = true

	e.log.Info("estimated backazimuth",
		zap.Float64("refined_deg", baz),
		zap.Float64("theoretical_deg", res.Geometry.BackazimuthDeg),
		zap.Int("accepted_windows", len(out.Accepted())),
	)
}

// pcodaPass runs the short-window grid over the pre-surface-wave segment
// of the highpassed trace set. Only per-window results are kept; the
// scattered P coda has no single stable backazimuth to refine.
func (e *Engine) pcodaPass(res *Result, pcoda condition.Set) {
	seg, err := segment(pcoda, 0, res.Windows.PCodaEnd())
	if err != nil {
		e.degrade(res, "pcoda", err)

		return
	}

	cfg := gridsearch.Config{
		AngleStepDeg:  coarseStepDeg,
		AngleCount:    36,
		WindowSeconds: pcodaWindowSeconds,
		Threshold:     pcodaThreshold,
		Workers:       e.workers,
	}

	out, err := gridsearch.Run(seg.Rotation, seg.North, seg.East, cfg)
	if err != nil {
		e.degrade(res, "pcoda", err)

		return
	}

	res.PCoda = out
}

func (e *Engine) velocities(res *Result, main condition.Set, zp zone.Parameters) {
	transverse, err := transverseAt(main, res.Geometry.BackazimuthDeg)
	if err != nil {
		e.degrade(res, "phasevel", err)

		return
	}

	broadband, err := phasevel.PerWindow(main.Rotation, transverse, zp.WindowSeconds, phasevel.DefaultThreshold)
	if err != nil {
		e.degrade(res, "phasevel", err)

		return
	}

	res.Broadband = broadband

	bands, err := phasevel.Analyze(main.Rotation, transverse, phasevel.DefaultBands(), phasevel.DefaultThreshold)
	if err != nil {
		e.degrade(res, "bands", err)

		return
	}

	res.Bands = bands
}

func (e *Engine) statistics(res *Result, main condition.Set) {
	res.RotationPeak = series.Peak(main.Rotation.Data())

	snr, err := series.SNR(main.Rotation.Data(), res.Arrivals.P, main.SampleRate())
	if err != nil {
		e.degrade(res, "snr", err)

		return
	}

	res.RotationSNR = snr

	transverse, err := transverseAt(main, res.Geometry.BackazimuthDeg)
	if err != nil {
		e.degrade(res, "snr", err)

		return
	}

	snr, err = series.SNR(transverse.Data(), res.Arrivals.P, main.SampleRate())
	if err != nil {
		e.degrade(res, "snr", err)

		return
	}

	res.TransverseSNR = snr
}

// transverseAt rotates the horizontal pair to the transverse component at
// the given backazimuth.
func transverseAt(set condition.Set, bazDeg float64) (trace.Trace, error) {
	data, err := rotate.Transverse(set.North.Data(), set.East.Data(), bazDeg)
	if err != nil {
		return trace.Trace{}, err
	}

	return trace.New(data, set.SampleRate(), set.Rotation.Start())
}

// segment slices every trace of the set to [t0, t1] seconds after the
// trace start, clamped to the recording. The full set is returned when
// the clamped interval is degenerate.
func segment(set condition.Set, t0, t1 float64) (condition.Set, error) {
	dur := set.Rotation.Duration()

	if t0 < 0 {
		t0 = 0
	}

	if t1 > dur {
		t1 = dur
	}

	if t1 <= t0 {
		return set, nil
	}

	out := condition.Set{}
	dst := []*trace.Trace{&out.Rotation, &out.North, &out.East, &out.Vertical}
	src := []trace.Trace{set.Rotation, set.North, set.East, set.Vertical}

	for i, tr := range src {
		sliced, err := tr.SliceSeconds(t0, t1)
		if err != nil {
			return condition.Set{}, err
		}

		*dst[i] = sliced
	}

	return out, nil
}
