package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/ta-engine/internal/models"
)

// MACDResult holds the aligned MACD output sequences. Line always covers
// len(closes)-slow+1 points; Signal and Histogram are empty (not an error)
// when the line is shorter than the signal period.
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// CalculateMACD computes Moving Average Convergence Divergence.
// The fast and slow EMAs are aligned to their common suffix (the fast EMA is
// front-truncated by slow-fast points), the line is their difference, the
// signal is an EMA over the line, and the histogram is the line minus the
// signal over the signal's coverage.
// Returns ErrInsufficientData if fewer than slow closes are supplied.
func CalculateMACD(closes []float64, fast, slow, signal int) (MACDResult, error) {
	if fast < 1 || slow < 1 || signal < 1 {
		return MACDResult{}, fmt.Errorf("MACD periods must be at least 1, got (%d, %d, %d)", fast, slow, signal)
	}
	if fast >= slow {
		return MACDResult{}, fmt.Errorf("MACD fast period %d must be less than slow period %d", fast, slow)
	}
	if len(closes) < slow {
		return MACDResult{}, insufficientData(slow, len(closes))
	}

	emaFast, err := CalculateEMA(closes, fast)
	if err != nil {
		return MACDResult{}, err
	}
	emaSlow, err := CalculateEMA(closes, slow)
	if err != nil {
		return MACDResult{}, err
	}

	offset := slow - fast
	line := make([]float64, len(emaSlow))
	for i := range line {
		line[i] = emaFast[i+offset] - emaSlow[i]
	}

	result := MACDResult{Line: line}
	if len(line) < signal {
		// Not enough MACD-line points for the signal EMA yet
		return result, nil
	}

	sig, err := CalculateEMA(line, signal)
	if err != nil {
		return MACDResult{}, err
	}
	result.Signal = sig

	hist := make([]float64, len(sig))
	lineOffset := len(line) - len(sig)
	for i := range hist {
		hist[i] = line[i+lineOffset] - sig[i]
	}
	result.Histogram = hist

	return result, nil
}

// MACD calculates Moving Average Convergence Divergence over a streaming
// sequence of bars. It owns a fast and a slow EMA internally plus a signal
// EMA fed with the line values, matching CalculateMACD's alignment.
type MACD struct {
	name      string
	fast      *EMA
	slow      *EMA
	signal    *EMA
	line      float64
	signalVal float64
	lineReady bool
	sigReady  bool
	processed int
}

// NewMACD creates a new MACD calculator with the given periods
// (typically 12, 26, 9)
func NewMACD(fastPeriod, slowPeriod, signalPeriod int) (*MACD, error) {
	if fastPeriod < 1 || slowPeriod < 1 || signalPeriod < 1 {
		return nil, fmt.Errorf("MACD periods must be at least 1, got (%d, %d, %d)", fastPeriod, slowPeriod, signalPeriod)
	}
	if fastPeriod >= slowPeriod {
		return nil, fmt.Errorf("MACD fast period %d must be less than slow period %d", fastPeriod, slowPeriod)
	}

	fast, err := NewEMA(fastPeriod)
	if err != nil {
		return nil, err
	}
	slow, err := NewEMA(slowPeriod)
	if err != nil {
		return nil, err
	}
	sig, err := NewEMA(signalPeriod)
	if err != nil {
		return nil, err
	}

	return &MACD{
		name:   fmt.Sprintf("macd_%d_%d_%d", fastPeriod, slowPeriod, signalPeriod),
		fast:   fast,
		slow:   slow,
		signal: sig,
	}, nil
}

// Name returns the indicator name
func (m *MACD) Name() string {
	return m.name
}

// Update processes a new bar. The returned value is the MACD line; the
// signal and histogram are available through Values once warm.
func (m *MACD) Update(bar *models.Bar) (float64, error) {
	if bar == nil {
		return 0, fmt.Errorf("bar cannot be nil")
	}

	m.processed++

	fastVal, fastOK := m.fast.step(bar.Close)
	slowVal, slowOK := m.slow.step(bar.Close)
	if !fastOK || !slowOK {
		return 0, nil
	}

	m.line = fastVal - slowVal
	m.lineReady = true

	if sigVal, ok := m.signal.step(m.line); ok {
		m.signalVal = sigVal
		m.sigReady = true
	}

	return m.line, nil
}

// Value returns the current MACD line value
func (m *MACD) Value() (float64, error) {
	if !m.lineReady {
		return 0, fmt.Errorf("MACD not ready: %w", insufficientData(m.slow.WindowSize(), m.processed))
	}
	return m.line, nil
}

// Values returns the line plus, once the signal EMA is seeded, the signal
// and histogram components
func (m *MACD) Values() (map[string]float64, error) {
	if !m.lineReady {
		return nil, fmt.Errorf("MACD not ready: %w", insufficientData(m.slow.WindowSize(), m.processed))
	}
	values := map[string]float64{"line": m.line}
	if m.sigReady {
		values["signal"] = m.signalVal
		values["histogram"] = m.line - m.signalVal
	}
	return values, nil
}

// Reset clears the MACD state
func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
	m.line = 0
	m.signalVal = 0
	m.lineReady = false
	m.sigReady = false
	m.processed = 0
}

// IsReady returns true once the slow EMA is seeded and the line is defined
func (m *MACD) IsReady() bool {
	return m.lineReady
}

// WindowSize returns the bars needed for the line (the slow EMA seed)
func (m *MACD) WindowSize() int {
	return m.slow.WindowSize()
}

// BarsProcessed returns the number of bars processed
func (m *MACD) BarsProcessed() int {
	return m.processed
}
