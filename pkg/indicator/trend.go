package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/ta-engine/internal/models"
)

// Trend is the classification of recent price direction
type Trend int

const (
	TrendNeutral Trend = iota
	TrendUp
	TrendDown
)

// Classification thresholds, in percent change over the lookback window
const (
	trendUpThreshold   = 2.0
	trendDownThreshold = -2.0
)

func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "UP"
	case TrendDown:
		return "DOWN"
	default:
		return "NEUTRAL"
	}
}

// Direction returns +1 for up, -1 for down, 0 for neutral. Used when a trend
// has to travel inside a float64 snapshot.
func (t Trend) Direction() float64 {
	switch t {
	case TrendUp:
		return 1
	case TrendDown:
		return -1
	default:
		return 0
	}
}

// ClassifyTrend classifies the last lookback closes by percentage change:
// above +2% is UP, below -2% is DOWN, otherwise NEUTRAL.
// Returns ErrInsufficientData if fewer than lookback closes are supplied.
func ClassifyTrend(closes []float64, lookback int) (Trend, error) {
	pct, err := trendChangePct(closes, lookback)
	if err != nil {
		return TrendNeutral, err
	}
	return classifyChangePct(pct), nil
}

// ClassifyTrendOrNeutral is the lenient variant: a window shorter than
// lookback classifies as NEUTRAL instead of failing. Callers that prefer a
// typed failure use ClassifyTrend.
func ClassifyTrendOrNeutral(closes []float64, lookback int) Trend {
	trend, err := ClassifyTrend(closes, lookback)
	if err != nil {
		return TrendNeutral
	}
	return trend
}

func trendChangePct(closes []float64, lookback int) (float64, error) {
	if lookback < 2 {
		return 0, fmt.Errorf("trend lookback must be at least 2, got %d", lookback)
	}
	if len(closes) < lookback {
		return 0, insufficientData(lookback, len(closes))
	}

	window := closes[len(closes)-lookback:]
	first, last := window[0], window[len(window)-1]
	return (last - first) / first * 100.0, nil
}

func classifyChangePct(pct float64) Trend {
	switch {
	case pct > trendUpThreshold:
		return TrendUp
	case pct < trendDownThreshold:
		return TrendDown
	default:
		return TrendNeutral
	}
}

// TrendClassifier classifies price direction over a streaming sequence of
// bars. Value reports the percentage change over the lookback window; Trend
// reports the classification.
type TrendClassifier struct {
	lookback  int
	name      string
	prices    []float64
	ready     bool
	processed int
}

// NewTrendClassifier creates a new trend classifier with the given lookback
// (typically 10)
func NewTrendClassifier(lookback int) (*TrendClassifier, error) {
	if lookback < 2 {
		return nil, fmt.Errorf("trend lookback must be at least 2, got %d", lookback)
	}

	return &TrendClassifier{
		lookback: lookback,
		name:     fmt.Sprintf("trend_%d", lookback),
		prices:   make([]float64, 0, lookback),
	}, nil
}

// Name returns the indicator name
func (t *TrendClassifier) Name() string {
	return t.name
}

// Update processes a new bar and returns the window change percentage once warm
func (t *TrendClassifier) Update(bar *models.Bar) (float64, error) {
	if bar == nil {
		return 0, fmt.Errorf("bar cannot be nil")
	}

	t.prices = append(t.prices, bar.Close)
	t.processed++

	if len(t.prices) > t.lookback {
		copy(t.prices, t.prices[1:])
		t.prices = t.prices[:len(t.prices)-1]
	}
	if len(t.prices) < t.lookback {
		return 0, nil
	}
	t.ready = true

	pct, _ := trendChangePct(t.prices, t.lookback)
	return pct, nil
}

// Value returns the current change percentage over the lookback window
func (t *TrendClassifier) Value() (float64, error) {
	if !t.ready {
		return 0, fmt.Errorf("trend not ready: %w", insufficientData(t.lookback, len(t.prices)))
	}
	return trendChangePct(t.prices, t.lookback)
}

// Trend returns the current classification. A classifier that is not warm
// yet reports NEUTRAL, mirroring ClassifyTrendOrNeutral.
func (t *TrendClassifier) Trend() Trend {
	if !t.ready {
		return TrendNeutral
	}
	pct, _ := trendChangePct(t.prices, t.lookback)
	return classifyChangePct(pct)
}

// Values returns the change percentage and the classification direction
func (t *TrendClassifier) Values() (map[string]float64, error) {
	pct, err := t.Value()
	if err != nil {
		return nil, err
	}
	return map[string]float64{
		"change_pct": pct,
		"direction":  classifyChangePct(pct).Direction(),
	}, nil
}

// Reset clears the classifier state
func (t *TrendClassifier) Reset() {
	t.prices = t.prices[:0]
	t.ready = false
	t.processed = 0
}

// IsReady returns true if the lookback window is full
func (t *TrendClassifier) IsReady() bool {
	return t.ready
}

// WindowSize returns the lookback
func (t *TrendClassifier) WindowSize() int {
	return t.lookback
}

// BarsProcessed returns the number of bars processed
func (t *TrendClassifier) BarsProcessed() int {
	return t.processed
}
