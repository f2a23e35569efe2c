package indicator

import (
	"fmt"
	"math"
	"sort"

	"github.com/mohamedkhairy/ta-engine/internal/models"
)

// Levels holds estimated support and resistance levels plus the close they
// were derived against.
type Levels struct {
	Support    float64
	Resistance float64
	Current    float64
}

// EstimateLevels estimates support and resistance as the 20th and 80th
// percentiles of the last lookback closes. This is a percentile
// approximation, not a true support/resistance detection algorithm; it is
// kept deliberately simple.
// Returns ErrInsufficientData if fewer than lookback closes are supplied.
func EstimateLevels(closes []float64, lookback int) (Levels, error) {
	if lookback < 1 {
		return Levels{}, fmt.Errorf("levels lookback must be at least 1, got %d", lookback)
	}
	if len(closes) < lookback {
		return Levels{}, insufficientData(lookback, len(closes))
	}

	window := closes[len(closes)-lookback:]
	sorted := make([]float64, lookback)
	copy(sorted, window)
	sort.Float64s(sorted)

	return Levels{
		Support:    sorted[percentileIndex(lookback, 0.2)],
		Resistance: sorted[percentileIndex(lookback, 0.8)],
		Current:    closes[len(closes)-1],
	}, nil
}

// percentileIndex clamps floor(n*p) into [0, n-1]
func percentileIndex(n int, p float64) int {
	idx := int(math.Floor(float64(n) * p))
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}

// SupportResistance estimates percentile support and resistance over a
// streaming sequence of bars. Value reports the support level; Values adds
// resistance and the current close.
type SupportResistance struct {
	lookback  int
	name      string
	prices    []float64
	ready     bool
	processed int
}

// NewSupportResistance creates a new support/resistance estimator with the
// given lookback (typically 20)
func NewSupportResistance(lookback int) (*SupportResistance, error) {
	if lookback < 1 {
		return nil, fmt.Errorf("levels lookback must be at least 1, got %d", lookback)
	}

	return &SupportResistance{
		lookback: lookback,
		name:     fmt.Sprintf("levels_%d", lookback),
		prices:   make([]float64, 0, lookback),
	}, nil
}

// Name returns the indicator name
func (s *SupportResistance) Name() string {
	return s.name
}

// Update processes a new bar and returns the support level once warm
func (s *SupportResistance) Update(bar *models.Bar) (float64, error) {
	if bar == nil {
		return 0, fmt.Errorf("bar cannot be nil")
	}

	s.prices = append(s.prices, bar.Close)
	s.processed++

	if len(s.prices) > s.lookback {
		copy(s.prices, s.prices[1:])
		s.prices = s.prices[:len(s.prices)-1]
	}
	if len(s.prices) < s.lookback {
		return 0, nil
	}
	s.ready = true

	levels, _ := EstimateLevels(s.prices, s.lookback)
	return levels.Support, nil
}

// Levels returns the current support/resistance estimate
func (s *SupportResistance) Levels() (Levels, error) {
	if !s.ready {
		return Levels{}, fmt.Errorf("levels not ready: %w", insufficientData(s.lookback, len(s.prices)))
	}
	return EstimateLevels(s.prices, s.lookback)
}

// Value returns the current support level
func (s *SupportResistance) Value() (float64, error) {
	levels, err := s.Levels()
	if err != nil {
		return 0, err
	}
	return levels.Support, nil
}

// Values returns support, resistance and the current close
func (s *SupportResistance) Values() (map[string]float64, error) {
	levels, err := s.Levels()
	if err != nil {
		return nil, err
	}
	return map[string]float64{
		"support":    levels.Support,
		"resistance": levels.Resistance,
		"current":    levels.Current,
	}, nil
}

// Reset clears the estimator state
func (s *SupportResistance) Reset() {
	s.prices = s.prices[:0]
	s.ready = false
	s.processed = 0
}

// IsReady returns true if the lookback window is full
func (s *SupportResistance) IsReady() bool {
	return s.ready
}

// WindowSize returns the lookback
func (s *SupportResistance) WindowSize() int {
	return s.lookback
}

// BarsProcessed returns the number of bars processed
func (s *SupportResistance) BarsProcessed() int {
	return s.processed
}
