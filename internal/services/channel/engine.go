// Package channel computes least-squares regression channels over ordered
// windows of closing prices.
//
// Definitions fixed for both the closed-bar and live paths so results are
// comparable across modes:
//   - center is the mean of the fitted line's two window-endpoint values
//     (equivalently the mean close, since x positions are 0..n-1),
//   - the residual deviation is the population standard deviation
//     (divide by n, not n-1),
//   - the slope angle is computed on closes normalized by the first close in
//     the window, removing price-scale dependence.
package channel

import (
	"errors"
	"math"
	"time"

	"TrendPull/internal/domain/models"
)

var (
	// ErrInsufficientData is returned when the window is shorter than the
	// requested length. Never silently defaulted.
	ErrInsufficientData = errors.New("insufficient data for channel window")

	// ErrZeroVariance is returned for degenerate windows where the index
	// positions carry no variance (malformed input).
	ErrZeroVariance = errors.New("zero variance in index positions")
)

// Params controls one channel computation.
type Params struct {
	Length  int
	DevMult float64
}

// DefaultParams returns the standard 50-bar, 2-sigma channel.
func DefaultParams() Params {
	return Params{Length: 50, DevMult: 2.0}
}

// Engine computes regression channels. Stateless apart from the flat-angle
// threshold, so recomputation over an identical window is bit-identical.
type Engine struct {
	flatEpsilonDeg float64
}

// NewEngine creates an engine. flatEpsilonDeg is the angle magnitude below
// which a channel is classified flat; 0.5 degrees when non-positive.
func NewEngine(flatEpsilonDeg float64) *Engine {
	if flatEpsilonDeg <= 0 {
		flatEpsilonDeg = 0.5
	}
	return &Engine{flatEpsilonDeg: flatEpsilonDeg}
}

// Compute fits a regression channel over exactly p.Length ordered closes
// (oldest first). live marks windows whose last point is the live tick.
func (e *Engine) Compute(symbol, granularity string, closes []float64, p Params, live bool) (models.Channel, error) {
	if p.Length < 2 {
		return models.Channel{}, ErrInsufficientData
	}
	if len(closes) != p.Length {
		return models.Channel{}, ErrInsufficientData
	}

	slope, intercept, err := fitLine(closes)
	if err != nil {
		return models.Channel{}, err
	}

	n := len(closes)
	first := intercept
	last := intercept + slope*float64(n-1)
	center := (first + last) / 2

	// population standard deviation of residuals
	var ss float64
	for i, y := range closes {
		r := y - (intercept + slope*float64(i))
		ss += r * r
	}
	stdDev := math.Sqrt(ss / float64(n))

	upper := center + p.DevMult*stdDev
	lower := center - p.DevMult*stdDev

	var widthPct float64
	if center != 0 {
		widthPct = (upper - lower) / center * 100
	}

	angle := e.angleDegrees(closes, slope)

	return models.Channel{
		Symbol:       symbol,
		Granularity:  granularity,
		ComputedAt:   time.Now().UTC(),
		Length:       p.Length,
		DevMult:      p.DevMult,
		Slope:        slope,
		Intercept:    intercept,
		Center:       center,
		Upper:        upper,
		Lower:        lower,
		StdDev:       stdDev,
		WidthPercent: widthPct,
		AngleDegrees: angle,
		Direction:    e.direction(angle),
		Live:         live,
	}, nil
}

// angleDegrees computes the slope angle on closes divided by the first close
// in the window. Falls back to the raw slope when the first close is zero.
func (e *Engine) angleDegrees(closes []float64, rawSlope float64) float64 {
	slope := rawSlope
	if closes[0] != 0 {
		normalized := make([]float64, len(closes))
		for i, y := range closes {
			normalized[i] = y / closes[0]
		}
		if s, _, err := fitLine(normalized); err == nil {
			slope = s
		}
	}
	return math.Atan(slope) * 180 / math.Pi
}

func (e *Engine) direction(angleDeg float64) models.ChannelDirection {
	switch {
	case angleDeg > e.flatEpsilonDeg:
		return models.DirectionUp
	case angleDeg < -e.flatEpsilonDeg:
		return models.DirectionDown
	default:
		return models.DirectionFlat
	}
}

// fitLine runs ordinary least squares of ys against index positions 0..n-1:
// slope = Σ(x-x̄)(y-ȳ) / Σ(x-x̄)².
func fitLine(ys []float64) (slope, intercept float64, err error) {
	n := float64(len(ys))
	xMean := (n - 1) / 2

	var yMean float64
	for _, y := range ys {
		yMean += y
	}
	yMean /= n

	var cov, varX float64
	for i, y := range ys {
		dx := float64(i) - xMean
		cov += dx * (y - yMean)
		varX += dx * dx
	}
	if varX == 0 {
		return 0, 0, ErrZeroVariance
	}

	slope = cov / varX
	intercept = yMean - slope*xMean
	return slope, intercept, nil
}
