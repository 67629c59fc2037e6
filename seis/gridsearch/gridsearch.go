// Package gridsearch estimates the backazimuth of an event by rotating the
// horizontal acceleration pair through a grid of candidate angles and
// correlating the transverse component against the rotation rate in
// non-overlapping time windows.
package gridsearch

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Nicolucas/RLdatabase/seis/rotate"
	"github.com/Nicolucas/RLdatabase/seis/trace"
	"github.com/Nicolucas/RLdatabase/stats/xcorr"
)

var (
	// ErrTooShort indicates traces shorter than one correlation window.
	ErrTooShort = errors.New("gridsearch: traces shorter than one window")
	// ErrMisaligned indicates input traces that do not share sample rate
	// and length.
	ErrMisaligned = errors.New("gridsearch: input traces not aligned")
	// ErrNoAcceptedWindows indicates that no window correlated above the
	// acceptance threshold.
	ErrNoAcceptedWindows = errors.New("gridsearch: no window above threshold")
)

// Config describes one search pass over the angle grid.
type Config struct {
	// AngleStartDeg is the first candidate angle.
	AngleStartDeg float64
	// AngleStepDeg is the grid spacing in degrees.
	AngleStepDeg float64
	// AngleCount is the number of grid angles.
	AngleCount int
	// WindowSeconds is the correlation window length.
	WindowSeconds float64
	// Threshold is the exclusive acceptance bound on a window's best
	// correlation coefficient.
	Threshold float64
	// Workers bounds the number of concurrent angle evaluations; zero or
	// negative means one per CPU.
	Workers int
}

// Window is the winning angle of one correlation window.
type Window struct {
	// Index is the window's position, counting from the trace start.
	Index int
	// AngleDeg is the grid angle with the highest coefficient in this
	// window. Ties go to the smallest angle.
	AngleDeg float64
	// CC is that highest coefficient.
	CC float64
}

// Accepted reports whether the window clears the given threshold.
func (w Window) Accepted(threshold float64) bool { return w.CC > threshold }

// Result holds the full correlation grid of one pass.
type Result struct {
	// Angles lists the evaluated grid angles in ascending order.
	Angles []float64
	// CC is the correlation matrix, indexed [window][angle].
	CC [][]float64
	// Best is the winning angle of each window.
	Best []Window
	// Threshold echoes the pass configuration.
	Threshold float64
}

// Accepted returns the windows whose best coefficient exceeds the pass
// threshold, in window order.
func (r *Result) Accepted() []Window {
	out := make([]Window, 0, len(r.Best))
	for _, w := range r.Best {
		if w.Accepted(r.Threshold) {
			out = append(out, w)
		}
	}

	return out
}

// Refine returns the arithmetic mean of the accepted windows' angles. It
// fails with ErrNoAcceptedWindows when the accepted set is empty.
func (r *Result) Refine() (float64, error) {
	accepted := r.Accepted()
	if len(accepted) == 0 {
		return 0, ErrNoAcceptedWindows
	}

	var sum float64
	for _, w := range accepted {
		sum += w.AngleDeg
	}

	return sum / float64(len(accepted)), nil
}

// Run evaluates the configured angle grid against the rotation rate trace.
// The horizontal pair is rotated once per angle; each angle's transverse
// component is then correlated with the rotation rate window by window. A
// trailing partial window is discarded.
func Run(rotation, north, east trace.Trace, cfg Config) (*Result, error) {
	if cfg.AngleCount <= 0 || cfg.AngleStepDeg <= 0 {
		return nil, fmt.Errorf("gridsearch: invalid grid %v x %v deg", cfg.AngleCount, cfg.AngleStepDeg)
	}

	if !trace.Aligned(rotation, north) || !trace.Aligned(rotation, east) {
		return nil, ErrMisaligned
	}

	perWindow, windows := rotation.WindowSamples(cfg.WindowSeconds)
	if windows < 1 {
		return nil, fmt.Errorf("%w: %d samples, window %v s at %v Hz",
			ErrTooShort, rotation.Len(), cfg.WindowSeconds, rotation.SampleRate())
	}

	angles := make([]float64, cfg.AngleCount)
	for i := range angles {
		angles[i] = cfg.AngleStartDeg + float64(i)*cfg.AngleStepDeg
	}

	byAngle, err := correlateAngles(rotation.Data(), north.Data(), east.Data(), angles, perWindow, cfg.Workers)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Angles:    angles,
		CC:        make([][]float64, windows),
		Best:      make([]Window, windows),
		Threshold: cfg.Threshold,
	}

	for w := 0; w < windows; w++ {
		row := make([]float64, len(angles))
		best := Window{Index: w, AngleDeg: angles[0], CC: byAngle[0][w]}

		for a := range angles {
			cc := byAngle[a][w]
			row[a] = cc

			// Strict comparison keeps the smallest angle on ties.
			if cc > best.CC {
				best.AngleDeg = angles[a]
				best.CC = cc
			}
		}

		res.CC[w] = row
		res.Best[w] = best
	}

	return res, nil
}

// correlateAngles computes the per-window coefficients of every candidate
// angle, indexed [angle][window]. Angles are independent, so they are
// distributed over a bounded worker pool.
func correlateAngles(rot, n, e []float64, angles []float64, perWindow, workers int) ([][]float64, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	if workers > len(angles) {
		workers = len(angles)
	}

	out := make([][]float64, len(angles))
	jobs := make(chan int)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for a := range jobs {
				transverse, err := rotate.Transverse(n, e, angles[a])
				if err == nil {
					out[a], err = xcorr.PerWindow(rot, transverse, perWindow)
				}

				// Keep draining jobs after a failure so the feeder
				// never blocks.
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}

	for a := range angles {
		jobs <- a
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return out, nil
}
