package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/ta-engine/internal/models"
)

// CalculateSMA computes the Simple Moving Average over closes.
// The output has length len(closes)-period+1; the value at output index j is
// the arithmetic mean of closes[j .. j+period-1].
// Returns ErrInsufficientData if fewer than period closes are supplied.
func CalculateSMA(closes []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, fmt.Errorf("SMA period must be at least 1, got %d", period)
	}
	if len(closes) < period {
		return nil, insufficientData(period, len(closes))
	}

	out := make([]float64, len(closes)-period+1)
	for j := range out {
		var sum float64
		for _, price := range closes[j : j+period] {
			sum += price
		}
		out[j] = sum / float64(period)
	}
	return out, nil
}

// SMA calculates the Simple Moving Average over a streaming sequence of bars.
// SMA = Sum of closes over period / period
type SMA struct {
	period    int
	name      string
	prices    []float64 // Rolling window of closes
	ready     bool
	processed int
}

// NewSMA creates a new SMA calculator with the specified period
func NewSMA(period int) (*SMA, error) {
	if period < 1 {
		return nil, fmt.Errorf("SMA period must be at least 1, got %d", period)
	}

	return &SMA{
		period: period,
		name:   fmt.Sprintf("sma_%d", period),
		prices: make([]float64, 0, period),
	}, nil
}

// Name returns the indicator name
func (s *SMA) Name() string {
	return s.name
}

// Update processes a new bar and updates the SMA calculation
func (s *SMA) Update(bar *models.Bar) (float64, error) {
	if bar == nil {
		return 0, fmt.Errorf("bar cannot be nil")
	}

	s.push(bar.Close)
	if !s.ready {
		return 0, nil
	}
	return s.mean(), nil
}

// push adds a close to the rolling window, evicting the oldest when full
func (s *SMA) push(price float64) {
	s.prices = append(s.prices, price)
	s.processed++

	if len(s.prices) > s.period {
		copy(s.prices, s.prices[1:])
		s.prices = s.prices[:len(s.prices)-1]
	}
	if len(s.prices) >= s.period {
		s.ready = true
	}
}

func (s *SMA) mean() float64 {
	var sum float64
	for _, price := range s.prices {
		sum += price
	}
	return sum / float64(len(s.prices))
}

// Value returns the current SMA value
func (s *SMA) Value() (float64, error) {
	if !s.ready {
		return 0, fmt.Errorf("SMA not ready: %w", insufficientData(s.period, len(s.prices)))
	}
	return s.mean(), nil
}

// Reset clears the SMA state
func (s *SMA) Reset() {
	s.prices = s.prices[:0]
	s.ready = false
	s.processed = 0
}

// IsReady returns true if the SMA has enough data
func (s *SMA) IsReady() bool {
	return s.ready
}

// WindowSize returns the period (number of bars required)
func (s *SMA) WindowSize() int {
	return s.period
}

// BarsProcessed returns the number of bars processed
func (s *SMA) BarsProcessed() int {
	return s.processed
}
