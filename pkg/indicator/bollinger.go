package indicator

import (
	"fmt"
	"math"

	"github.com/mohamedkhairy/ta-engine/internal/models"
)

// BollingerResult holds the three aligned Bollinger Band sequences
type BollingerResult struct {
	SMA   []float64
	Upper []float64
	Lower []float64
}

// CalculateBollinger computes Bollinger Bands over a rolling window: the SMA
// of each window plus/minus k times its standard deviation. The standard
// deviation is the population form (denominator = period, not period-1); this
// matches the common charting convention and is a deliberate choice.
// Returns ErrInsufficientData if fewer than period closes are supplied.
func CalculateBollinger(closes []float64, period int, k float64) (BollingerResult, error) {
	if period < 1 {
		return BollingerResult{}, fmt.Errorf("Bollinger period must be at least 1, got %d", period)
	}
	if k < 0 {
		return BollingerResult{}, fmt.Errorf("Bollinger band width k must be non-negative, got %g", k)
	}
	if len(closes) < period {
		return BollingerResult{}, insufficientData(period, len(closes))
	}

	n := len(closes) - period + 1
	result := BollingerResult{
		SMA:   make([]float64, n),
		Upper: make([]float64, n),
		Lower: make([]float64, n),
	}

	for j := 0; j < n; j++ {
		window := closes[j : j+period]
		mean, stddev := meanStddev(window)
		result.SMA[j] = mean
		result.Upper[j] = mean + k*stddev
		result.Lower[j] = mean - k*stddev
	}
	return result, nil
}

// meanStddev returns the mean and population standard deviation of a window
func meanStddev(window []float64) (float64, float64) {
	var sum float64
	for _, v := range window {
		sum += v
	}
	mean := sum / float64(len(window))

	var variance float64
	for _, v := range window {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(window))

	return mean, math.Sqrt(variance)
}

// BollingerBands calculates Bollinger Bands over a streaming sequence of
// bars. Value reports the middle band; Values adds upper and lower.
type BollingerBands struct {
	period    int
	k         float64
	name      string
	prices    []float64
	ready     bool
	processed int
}

// NewBollingerBands creates a new Bollinger Bands calculator
// (typically period 20, k 2)
func NewBollingerBands(period int, k float64) (*BollingerBands, error) {
	if period < 1 {
		return nil, fmt.Errorf("Bollinger period must be at least 1, got %d", period)
	}
	if k < 0 {
		return nil, fmt.Errorf("Bollinger band width k must be non-negative, got %g", k)
	}

	return &BollingerBands{
		period: period,
		k:      k,
		name:   fmt.Sprintf("bb_%d_%.1f", period, k),
		prices: make([]float64, 0, period),
	}, nil
}

// Name returns the indicator name
func (b *BollingerBands) Name() string {
	return b.name
}

// Update processes a new bar and returns the middle band once warm
func (b *BollingerBands) Update(bar *models.Bar) (float64, error) {
	if bar == nil {
		return 0, fmt.Errorf("bar cannot be nil")
	}

	b.prices = append(b.prices, bar.Close)
	b.processed++

	if len(b.prices) > b.period {
		copy(b.prices, b.prices[1:])
		b.prices = b.prices[:len(b.prices)-1]
	}
	if len(b.prices) < b.period {
		return 0, nil
	}
	b.ready = true

	mean, _ := meanStddev(b.prices)
	return mean, nil
}

// Value returns the current middle band (SMA)
func (b *BollingerBands) Value() (float64, error) {
	if !b.ready {
		return 0, fmt.Errorf("Bollinger Bands not ready: %w", insufficientData(b.period, len(b.prices)))
	}
	mean, _ := meanStddev(b.prices)
	return mean, nil
}

// Values returns the middle, upper and lower bands
func (b *BollingerBands) Values() (map[string]float64, error) {
	if !b.ready {
		return nil, fmt.Errorf("Bollinger Bands not ready: %w", insufficientData(b.period, len(b.prices)))
	}
	mean, stddev := meanStddev(b.prices)
	return map[string]float64{
		"middle": mean,
		"upper":  mean + b.k*stddev,
		"lower":  mean - b.k*stddev,
	}, nil
}

// Reset clears the Bollinger Bands state
func (b *BollingerBands) Reset() {
	b.prices = b.prices[:0]
	b.ready = false
	b.processed = 0
}

// IsReady returns true if the window is full
func (b *BollingerBands) IsReady() bool {
	return b.ready
}

// WindowSize returns the period
func (b *BollingerBands) WindowSize() int {
	return b.period
}

// BarsProcessed returns the number of bars processed
func (b *BollingerBands) BarsProcessed() int {
	return b.processed
}
