// Package rotate transforms horizontal component pairs between the N/E and
// radial/transverse frames for a given backazimuth angle.
package rotate

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// ErrLengthMismatch indicates component slices of different lengths.
var ErrLengthMismatch = errors.New("rotate: component length mismatch")

// NE2RT rotates the N and E components by the backazimuth angle (degrees):
//
//	radial     =  N*cos(a) + E*sin(a)
//	transverse = -N*sin(a) + E*cos(a)
//
// The inputs are not modified.
func NE2RT(n, e []float64, angleDeg float64) (radial, transverse []float64, err error) {
	if len(n) != len(e) {
		return nil, nil, ErrLengthMismatch
	}

	a := angleDeg * math.Pi / 180
	cos, sin := math.Cos(a), math.Sin(a)

	radial = make([]float64, len(n))
	transverse = make([]float64, len(n))
	tmp := make([]float64, len(n))

	vecmath.ScaleBlock(radial, n, cos)
	vecmath.ScaleBlock(tmp, e, sin)
	vecmath.AddBlockInPlace(radial, tmp)

	vecmath.ScaleBlock(transverse, n, -sin)
	vecmath.ScaleBlock(tmp, e, cos)
	vecmath.AddBlockInPlace(transverse, tmp)

	return radial, transverse, nil
}

// Transverse computes only the transverse component for the given angle.
// The grid search evaluates this once per candidate angle.
func Transverse(n, e []float64, angleDeg float64) ([]float64, error) {
	if len(n) != len(e) {
		return nil, ErrLengthMismatch
	}

	a := angleDeg * math.Pi / 180
	cos, sin := math.Cos(a), math.Sin(a)

	transverse := make([]float64, len(n))
	tmp := make([]float64, len(n))

	vecmath.ScaleBlock(transverse, n, -sin)
	vecmath.ScaleBlock(tmp, e, cos)
	vecmath.AddBlockInPlace(transverse, tmp)

	return transverse, nil
}

// RT2NE inverts NE2RT, reconstructing the N and E components.
func RT2NE(radial, transverse []float64, angleDeg float64) (n, e []float64, err error) {
	if len(radial) != len(transverse) {
		return nil, nil, ErrLengthMismatch
	}

	a := angleDeg * math.Pi / 180
	cos, sin := math.Cos(a), math.Sin(a)

	n = make([]float64, len(radial))
	e = make([]float64, len(radial))
	tmp := make([]float64, len(radial))

	vecmath.ScaleBlock(n, radial, cos)
	vecmath.ScaleBlock(tmp, transverse, -sin)
	vecmath.AddBlockInPlace(n, tmp)

	vecmath.ScaleBlock(e, radial, sin)
	vecmath.ScaleBlock(tmp, transverse, cos)
	vecmath.AddBlockInPlace(e, tmp)

	return n, e, nil
}
