package models

import (
	"time"
)

// Bar represents one finalized OHLCV observation. Bars are immutable once
// ingested into a PriceSeries.
type Bar struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Validate validates a Bar
func (b *Bar) Validate() error {
	if b.Symbol == "" {
		return ErrInvalidSymbol
	}
	if b.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	if b.Close <= 0 || b.Open <= 0 {
		return ErrInvalidPrice
	}
	if b.High < b.Low {
		return ErrInvalidBar
	}
	if b.Volume < 0 {
		return ErrInvalidVolume
	}
	return nil
}

// PriceSeries is an ordered sequence of bars with strictly increasing
// timestamps. It is owned by the caller; indicator engines borrow read-only
// views of it (usually the closing prices).
type PriceSeries struct {
	symbol string
	bars   []Bar
}

// NewPriceSeries creates an empty series for a symbol
func NewPriceSeries(symbol string) *PriceSeries {
	return &PriceSeries{symbol: symbol}
}

// Symbol returns the symbol this series belongs to
func (s *PriceSeries) Symbol() string {
	return s.symbol
}

// Append validates the bar and appends it to the series.
// Bars must arrive in strictly increasing timestamp order.
func (s *PriceSeries) Append(bar Bar) error {
	if err := bar.Validate(); err != nil {
		return err
	}
	if n := len(s.bars); n > 0 {
		last := s.bars[n-1].Timestamp
		if bar.Timestamp.Equal(last) {
			return ErrDuplicateTimestamp
		}
		if bar.Timestamp.Before(last) {
			return ErrOutOfOrderBar
		}
	}
	s.bars = append(s.bars, bar)
	return nil
}

// Len returns the number of bars in the series
func (s *PriceSeries) Len() int {
	return len(s.bars)
}

// Bar returns the bar at index i
func (s *PriceSeries) Bar(i int) Bar {
	return s.bars[i]
}

// Last returns the most recent bar, or false if the series is empty
func (s *PriceSeries) Last() (Bar, bool) {
	if len(s.bars) == 0 {
		return Bar{}, false
	}
	return s.bars[len(s.bars)-1], true
}

// Bars returns a copy of the bars in the series
func (s *PriceSeries) Bars() []Bar {
	bars := make([]Bar, len(s.bars))
	copy(bars, s.bars)
	return bars
}

// Closes returns the closing prices of the series, oldest first.
// This is the derived view every indicator consumes.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.bars))
	for i, bar := range s.bars {
		closes[i] = bar.Close
	}
	return closes
}
