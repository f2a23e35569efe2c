package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/ta-engine/internal/models"
)

// CalculateEMA computes the Exponential Moving Average over closes.
// The first output value is the SMA of the first period closes (the seed);
// each subsequent value is EMAStep(prev, nextClose, period). The output has
// length len(closes)-period+1.
// Returns ErrInsufficientData if fewer than period closes are supplied.
func CalculateEMA(closes []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, fmt.Errorf("EMA period must be at least 1, got %d", period)
	}
	if len(closes) < period {
		return nil, insufficientData(period, len(closes))
	}

	out := make([]float64, len(closes)-period+1)

	var seed float64
	for _, price := range closes[:period] {
		seed += price
	}
	out[0] = seed / float64(period)

	for k := 1; k < len(out); k++ {
		out[k] = EMAStep(out[k-1], closes[period+k-1], period)
	}
	return out, nil
}

// EMAStep computes the next EMA value from the previous one and a new close
// in O(1), without rescanning history. Applying it repeatedly from the SMA
// seed reproduces CalculateEMA exactly.
func EMAStep(prevEMA, nextClose float64, period int) float64 {
	alpha := 2.0 / float64(period+1)
	return nextClose*alpha + prevEMA*(1-alpha)
}

// EMA calculates the Exponential Moving Average over a streaming sequence of
// bars. The warmup accumulates the first period closes and seeds the EMA with
// their mean, so streaming output matches CalculateEMA bit-for-bit.
type EMA struct {
	period    int
	name      string
	warmupSum float64
	value     float64
	ready     bool
	processed int
}

// NewEMA creates a new EMA calculator with the specified period
func NewEMA(period int) (*EMA, error) {
	if period < 1 {
		return nil, fmt.Errorf("EMA period must be at least 1, got %d", period)
	}

	return &EMA{
		period: period,
		name:   fmt.Sprintf("ema_%d", period),
	}, nil
}

// Name returns the indicator name
func (e *EMA) Name() string {
	return e.name
}

// Update processes a new bar and updates the EMA calculation
func (e *EMA) Update(bar *models.Bar) (float64, error) {
	if bar == nil {
		return 0, fmt.Errorf("bar cannot be nil")
	}
	v, ok := e.step(bar.Close)
	if !ok {
		return 0, nil
	}
	return v, nil
}

// step feeds one value into the EMA. It returns false while the seed window
// is still filling. Shared with MACD, which runs EMAs over derived values
// rather than bars.
func (e *EMA) step(price float64) (float64, bool) {
	e.processed++

	if !e.ready {
		e.warmupSum += price
		if e.processed < e.period {
			return 0, false
		}
		e.value = e.warmupSum / float64(e.period)
		e.ready = true
		return e.value, true
	}

	e.value = EMAStep(e.value, price, e.period)
	return e.value, true
}

// Value returns the current EMA value
func (e *EMA) Value() (float64, error) {
	if !e.ready {
		return 0, fmt.Errorf("EMA not ready: %w", insufficientData(e.period, e.processed))
	}
	return e.value, nil
}

// Reset clears the EMA state
func (e *EMA) Reset() {
	e.warmupSum = 0
	e.value = 0
	e.ready = false
	e.processed = 0
}

// IsReady returns true if the EMA has enough data
func (e *EMA) IsReady() bool {
	return e.ready
}

// WindowSize returns the period (bars needed to seed the EMA)
func (e *EMA) WindowSize() int {
	return e.period
}

// BarsProcessed returns the number of bars processed
func (e *EMA) BarsProcessed() int {
	return e.processed
}
