package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/mohamedkhairy/ta-engine/internal/models"
	"github.com/mohamedkhairy/ta-engine/internal/telemetry"
	"github.com/mohamedkhairy/ta-engine/pkg/indicator"
	"github.com/mohamedkhairy/ta-engine/pkg/logger"
)

// OnSnapshot is called after a bar has been processed, with the updated
// indicator values for that symbol
type OnSnapshot func(symbol string, values map[string]float64)

// Engine feeds finalized bars into per-symbol indicator state. Calculators
// for a new symbol are built from the registry on first sight.
type Engine struct {
	registry   *indicator.Registry
	states     map[string]*indicator.SymbolState
	onSnapshot OnSnapshot
	maxBars    int
	mu         sync.RWMutex
}

// Config holds engine configuration
type Config struct {
	MaxBars int // Bars kept per symbol; bounds rehydration and window indicators
}

// DefaultConfig returns default engine configuration
func DefaultConfig() Config {
	return Config{MaxBars: 200}
}

// New creates a new engine over a registry of indicator factories
func New(cfg Config, registry *indicator.Registry) *Engine {
	return &Engine{
		registry: registry,
		states:   make(map[string]*indicator.SymbolState),
		maxBars:  cfg.MaxBars,
	}
}

// SetOnSnapshot registers the snapshot callback
func (e *Engine) SetOnSnapshot(fn OnSnapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onSnapshot = fn
}

// ProcessBar validates a bar, routes it to the owning symbol state and
// invokes the snapshot callback with the refreshed values
func (e *Engine) ProcessBar(bar models.Bar) error {
	if err := bar.Validate(); err != nil {
		telemetry.BarsRejected.WithLabelValues("invalid").Inc()
		return fmt.Errorf("invalid bar: %w", err)
	}

	state := e.stateFor(bar.Symbol)

	start := time.Now()
	if err := state.Update(bar); err != nil {
		telemetry.BarsRejected.WithLabelValues("out_of_order").Inc()
		return err
	}
	telemetry.ComputeDuration.Observe(time.Since(start).Seconds())
	telemetry.BarsProcessed.Inc()

	e.mu.RLock()
	fn := e.onSnapshot
	e.mu.RUnlock()

	if fn != nil {
		if values := state.Snapshot(); len(values) > 0 {
			fn(bar.Symbol, values)
		}
	}
	return nil
}

// stateFor returns the state for a symbol, creating it with a full set of
// calculators on first sight
func (e *Engine) stateFor(symbol string) *indicator.SymbolState {
	e.mu.RLock()
	state, exists := e.states[symbol]
	e.mu.RUnlock()
	if exists {
		return state
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if state, exists = e.states[symbol]; exists {
		return state
	}

	state = indicator.NewSymbolState(symbol, e.maxBars)
	for _, name := range e.registry.List() {
		calc, err := e.registry.Create(name)
		if err != nil {
			logger.Warn("Failed to create calculator",
				logger.String("name", name),
				logger.String("symbol", symbol),
				logger.ErrorField(err),
			)
			continue
		}
		state.AddCalculator(calc)
	}
	e.states[symbol] = state
	telemetry.TrackedSymbols.Set(float64(len(e.states)))
	return state
}

// Snapshot returns the current indicator values for a symbol
func (e *Engine) Snapshot(symbol string) (map[string]float64, error) {
	e.mu.RLock()
	state, exists := e.states[symbol]
	e.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("symbol %s not found", symbol)
	}
	return state.Snapshot(), nil
}

// Symbols returns the symbols with live state
func (e *Engine) Symbols() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	symbols := make([]string, 0, len(e.states))
	for symbol := range e.states {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// Rehydrate rebuilds a symbol's streaming state from historical bars
func (e *Engine) Rehydrate(symbol string, bars []models.Bar) error {
	return e.stateFor(symbol).Rehydrate(bars)
}

// Reset clears a symbol's state; unknown symbols are a no-op
func (e *Engine) Reset(symbol string) {
	e.mu.RLock()
	state, exists := e.states[symbol]
	e.mu.RUnlock()

	if exists {
		state.Reset()
	}
}
