package indicator

import (
	"fmt"
	"sync"
	"time"

	"github.com/mohamedkhairy/ta-engine/internal/models"
)

// SymbolState manages indicator state for a single symbol: a rolling window
// of recent bars plus the calculators fed from it. All access is
// synchronized, so one state can be shared between a consumer goroutine and
// snapshot readers.
type SymbolState struct {
	symbol      string
	mu          sync.RWMutex
	calculators map[string]Calculator
	bars        []models.Bar
	maxBars     int
	lastUpdate  time.Time
}

// NewSymbolState creates a new symbol state keeping at most maxBars bars
func NewSymbolState(symbol string, maxBars int) *SymbolState {
	return &SymbolState{
		symbol:      symbol,
		calculators: make(map[string]Calculator),
		bars:        make([]models.Bar, 0, maxBars),
		maxBars:     maxBars,
	}
}

// Symbol returns the symbol this state belongs to
func (s *SymbolState) Symbol() string {
	return s.symbol
}

// AddCalculator attaches a calculator to this symbol's state
func (s *SymbolState) AddCalculator(calc Calculator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calculators[calc.Name()] = calc
}

// RemoveCalculator detaches a calculator
func (s *SymbolState) RemoveCalculator(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.calculators, name)
}

// Update appends a bar to the rolling window and feeds every calculator.
// Bars for other symbols are ignored; bars that do not advance the clock are
// rejected so indicators stay causal.
func (s *SymbolState) Update(bar models.Bar) error {
	if bar.Symbol != s.symbol {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.bars) > 0 && !bar.Timestamp.After(s.bars[len(s.bars)-1].Timestamp) {
		return fmt.Errorf("%w: %s at %s", models.ErrOutOfOrderBar, bar.Symbol, bar.Timestamp)
	}

	s.appendBar(bar)

	for _, calc := range s.calculators {
		if _, err := calc.Update(&bar); err != nil {
			return fmt.Errorf("calculator %s: %w", calc.Name(), err)
		}
	}

	s.lastUpdate = bar.Timestamp
	return nil
}

func (s *SymbolState) appendBar(bar models.Bar) {
	s.bars = append(s.bars, bar)
	if len(s.bars) > s.maxBars {
		copy(s.bars, s.bars[1:])
		s.bars = s.bars[:len(s.bars)-1]
	}
}

// Snapshot returns the current value of every ready calculator. Multi-value
// calculators contribute one entry per component, keyed
// "<name>_<component>".
func (s *SymbolState) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make(map[string]float64)
	for name, calc := range s.calculators {
		if !calc.IsReady() {
			continue
		}
		if mv, ok := calc.(MultiValue); ok {
			components, err := mv.Values()
			if err != nil {
				continue
			}
			for component, v := range components {
				values[name+"_"+component] = v
			}
			continue
		}
		if v, err := calc.Value(); err == nil {
			values[name] = v
		}
	}
	return values
}

// Bars returns a copy of the current bar window
func (s *SymbolState) Bars() []models.Bar {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bars := make([]models.Bar, len(s.bars))
	copy(bars, s.bars)
	return bars
}

// Closes returns the closing prices of the current bar window
func (s *SymbolState) Closes() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	closes := make([]float64, len(s.bars))
	for i, bar := range s.bars {
		closes[i] = bar.Close
	}
	return closes
}

// LastUpdate returns the timestamp of the last accepted bar
func (s *SymbolState) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

// Reset clears the window and every calculator
func (s *SymbolState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bars = s.bars[:0]
	for _, calc := range s.calculators {
		calc.Reset()
	}
	s.lastUpdate = time.Time{}
}

// Rehydrate resets the state and replays historical bars in order. Useful
// when a worker restarts and needs to rebuild streaming state before going
// live.
func (s *SymbolState) Rehydrate(bars []models.Bar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bars = s.bars[:0]
	for _, calc := range s.calculators {
		calc.Reset()
	}
	s.lastUpdate = time.Time{}

	for _, bar := range bars {
		if bar.Symbol != s.symbol {
			continue
		}
		if len(s.bars) > 0 && !bar.Timestamp.After(s.bars[len(s.bars)-1].Timestamp) {
			return fmt.Errorf("%w: %s at %s", models.ErrOutOfOrderBar, bar.Symbol, bar.Timestamp)
		}

		s.appendBar(bar)
		for _, calc := range s.calculators {
			if _, err := calc.Update(&bar); err != nil {
				return fmt.Errorf("calculator %s: %w", calc.Name(), err)
			}
		}
		s.lastUpdate = bar.Timestamp
	}

	return nil
}
