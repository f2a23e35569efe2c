package indicator

import (
	"github.com/mohamedkhairy/ta-engine/internal/models"
)

// Calculator is the streaming interface for computing technical indicators.
// A calculator owns its state exclusively; it is not safe for concurrent use
// without external synchronization (SymbolState provides that).
type Calculator interface {
	// Name returns the unique name of this indicator (e.g., "rsi_14", "ema_20")
	Name() string

	// Update processes a new bar and updates the indicator state.
	// Returns the new indicator value, or 0 while the warmup window is
	// still filling.
	Update(bar *models.Bar) (float64, error)

	// Value returns the current indicator value.
	// Returns an error wrapping ErrInsufficientData until enough bars
	// have been processed.
	Value() (float64, error)

	// Reset clears the indicator state (useful for rehydration or testing)
	Reset()

	// IsReady returns true if the indicator has enough data to produce a valid value
	IsReady() bool
}

// WindowedCalculator extends Calculator for indicators that require a window of bars
type WindowedCalculator interface {
	Calculator

	// WindowSize returns the number of bars required for this indicator
	WindowSize() int

	// BarsProcessed returns the number of bars processed so far
	BarsProcessed() int
}

// MultiValue is implemented by calculators that produce more than one aligned
// output per bar (MACD line/signal/histogram, Bollinger upper/middle/lower).
// SymbolState snapshots merge these under "<name>_<component>" keys.
type MultiValue interface {
	// Values returns all current component values.
	// Returns an error wrapping ErrInsufficientData when not ready.
	Values() (map[string]float64, error)
}
