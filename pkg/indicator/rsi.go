package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/ta-engine/internal/models"
)

// CalculateRSI computes the Relative Strength Index using Wilder's smoothing.
// Per-step deltas are split into gains and losses; the first period of each is
// averaged to seed avgGain/avgLoss, then every later delta is folded in with
// avg = (avg*(period-1) + new) / period. RSI = 100 - 100/(1+avgGain/avgLoss).
//
// Zero-division policy: avgLoss == 0 with avgGain > 0 yields 100 (maximal
// strength); both zero (a flat price run) yields 50 (neutral). These are
// documented contract values, never NaN.
//
// The output has length len(closes)-period, aligned to the first computable
// index. Returns ErrInsufficientData if fewer than period+1 closes are
// supplied.
func CalculateRSI(closes []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, fmt.Errorf("RSI period must be at least 1, got %d", period)
	}
	if len(closes) < period+1 {
		return nil, insufficientData(period+1, len(closes))
	}

	var sumGain, sumLoss float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			sumGain += delta
		} else {
			sumLoss += -delta
		}
	}
	avgGain := sumGain / float64(period)
	avgLoss := sumLoss / float64(period)

	out := make([]float64, len(closes)-period)
	out[0] = rsiFromAverages(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		var gain, loss float64
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i-period] = rsiFromAverages(avgGain, avgLoss)
	}
	return out, nil
}

// rsiFromAverages applies the documented zero-loss policy before dividing
func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain > 0 {
			return 100.0
		}
		return 50.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// RSI calculates the Relative Strength Index over a streaming sequence of
// bars. Warmup and smoothing mirror CalculateRSI, so once ready the streaming
// value matches the batch output for the same closes.
type RSI struct {
	period    int
	name      string
	prevClose float64
	hasPrev   bool
	sumGain   float64
	sumLoss   float64
	deltas    int
	avgGain   float64
	avgLoss   float64
	ready     bool
	processed int
}

// NewRSI creates a new RSI calculator with the specified period (typically 14)
func NewRSI(period int) (*RSI, error) {
	if period < 1 {
		return nil, fmt.Errorf("RSI period must be at least 1, got %d", period)
	}

	return &RSI{
		period: period,
		name:   fmt.Sprintf("rsi_%d", period),
	}, nil
}

// Name returns the indicator name
func (r *RSI) Name() string {
	return r.name
}

// Update processes a new bar and updates the RSI calculation
func (r *RSI) Update(bar *models.Bar) (float64, error) {
	if bar == nil {
		return 0, fmt.Errorf("bar cannot be nil")
	}

	r.processed++

	// First bar only establishes the previous close
	if !r.hasPrev {
		r.prevClose = bar.Close
		r.hasPrev = true
		return 0, nil
	}

	delta := bar.Close - r.prevClose
	r.prevClose = bar.Close

	var gain, loss float64
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	if !r.ready {
		r.sumGain += gain
		r.sumLoss += loss
		r.deltas++
		if r.deltas < r.period {
			return 0, nil
		}
		r.avgGain = r.sumGain / float64(r.period)
		r.avgLoss = r.sumLoss / float64(r.period)
		r.ready = true
		return rsiFromAverages(r.avgGain, r.avgLoss), nil
	}

	r.avgGain = (r.avgGain*float64(r.period-1) + gain) / float64(r.period)
	r.avgLoss = (r.avgLoss*float64(r.period-1) + loss) / float64(r.period)
	return rsiFromAverages(r.avgGain, r.avgLoss), nil
}

// Value returns the current RSI value
func (r *RSI) Value() (float64, error) {
	if !r.ready {
		return 0, fmt.Errorf("RSI not ready: %w", insufficientData(r.period+1, r.processed))
	}
	return rsiFromAverages(r.avgGain, r.avgLoss), nil
}

// Reset clears the RSI state
func (r *RSI) Reset() {
	r.prevClose = 0
	r.hasPrev = false
	r.sumGain = 0
	r.sumLoss = 0
	r.deltas = 0
	r.avgGain = 0
	r.avgLoss = 0
	r.ready = false
	r.processed = 0
}

// IsReady returns true if the RSI has enough data
func (r *RSI) IsReady() bool {
	return r.ready
}

// WindowSize returns the number of bars required (period + 1 for the first delta)
func (r *RSI) WindowSize() int {
	return r.period + 1
}

// BarsProcessed returns the number of bars processed
func (r *RSI) BarsProcessed() int {
	return r.processed
}
