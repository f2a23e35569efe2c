package indicator

import (
	"fmt"
	"math"
	"time"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"

	"github.com/mohamedkhairy/ta-engine/internal/models"
)

// TechanCalculator adapts a techan indicator to the Calculator interface.
// The indicator must be built over the same TimeSeries the adapter appends
// candles to.
type TechanCalculator struct {
	name      string
	series    *techan.TimeSeries
	indicator techan.Indicator
	period    int
	processed int
}

// NewTechanCalculator wraps an indicator and its backing series. period is
// the number of bars required before values are considered meaningful.
func NewTechanCalculator(name string, series *techan.TimeSeries, ind techan.Indicator, period int) *TechanCalculator {
	return &TechanCalculator{
		name:      name,
		series:    series,
		indicator: ind,
		period:    period,
	}
}

func (t *TechanCalculator) Name() string {
	return t.name
}

func (t *TechanCalculator) Update(bar *models.Bar) (float64, error) {
	if bar == nil {
		return 0, fmt.Errorf("bar cannot be nil")
	}

	candle := techan.NewCandle(techan.NewTimePeriod(bar.Timestamp, time.Minute))
	candle.OpenPrice = big.NewDecimal(bar.Open)
	candle.MaxPrice = big.NewDecimal(bar.High)
	candle.MinPrice = big.NewDecimal(bar.Low)
	candle.ClosePrice = big.NewDecimal(bar.Close)
	candle.Volume = big.NewDecimal(bar.Volume)

	t.series.AddCandle(candle)
	t.processed++

	if !t.IsReady() {
		return 0, nil
	}

	value := t.indicator.Calculate(t.series.LastIndex()).Float()
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("indicator %s produced a non-finite value", t.name)
	}
	return value, nil
}

func (t *TechanCalculator) Value() (float64, error) {
	if !t.IsReady() {
		return 0, fmt.Errorf("indicator %s not ready: %w", t.name, insufficientData(t.period, t.processed))
	}
	return t.indicator.Calculate(t.series.LastIndex()).Float(), nil
}

func (t *TechanCalculator) Reset() {
	// techan indicators hold a reference to their series, so the series
	// contents are truncated in place rather than replaced
	t.series.Candles = t.series.Candles[:0]
	t.processed = 0
}

func (t *TechanCalculator) IsReady() bool {
	return t.processed >= t.period
}

// WindowSize returns the number of bars required for this indicator
func (t *TechanCalculator) WindowSize() int {
	return t.period
}

// BarsProcessed returns the number of bars processed so far
func (t *TechanCalculator) BarsProcessed() int {
	return t.processed
}

// NewTechanATR creates a factory for an Average True Range calculator backed
// by techan
func NewTechanATR(period int) Factory {
	return func() (Calculator, error) {
		if period < 1 {
			return nil, fmt.Errorf("ATR period must be at least 1, got %d", period)
		}
		series := techan.NewTimeSeries()
		atr := techan.NewAverageTrueRangeIndicator(series, period)
		return NewTechanCalculator(fmt.Sprintf("atr_%d", period), series, atr, period+1), nil
	}
}

// NewTechanStochastic creates a factory for a fast stochastic oscillator (%K)
// backed by techan
func NewTechanStochastic(period int) Factory {
	return func() (Calculator, error) {
		if period < 1 {
			return nil, fmt.Errorf("stochastic period must be at least 1, got %d", period)
		}
		series := techan.NewTimeSeries()
		k := techan.NewFastStochasticIndicator(series, period)
		return NewTechanCalculator(fmt.Sprintf("stoch_%d", period), series, k, period), nil
	}
}
