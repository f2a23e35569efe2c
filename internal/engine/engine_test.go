package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/ta-engine/internal/config"
	"github.com/mohamedkhairy/ta-engine/internal/models"
	"github.com/mohamedkhairy/ta-engine/pkg/indicator"
)

func testIndicatorsConfig() config.IndicatorsConfig {
	return config.IndicatorsConfig{
		MaxBars:         100,
		SMAPeriods:      []int{3},
		EMAPeriods:      []int{3},
		RSIPeriod:       3,
		MACDFast:        3,
		MACDSlow:        5,
		MACDSignal:      4,
		BollingerPeriod: 3,
		BollingerK:      2.0,
		TrendLookback:   4,
		LevelsLookback:  5,
		ATRPeriod:       3,
		StochPeriod:     3,
	}
}

func barAt(symbol string, minute int, close float64) models.Bar {
	ts := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC).Add(time.Duration(minute) * time.Minute)
	return models.Bar{
		Symbol:    symbol,
		Timestamp: ts,
		Open:      close,
		High:      close + 0.25,
		Low:       close - 0.25,
		Close:     close,
		Volume:    500,
	}
}

func TestRegisterDefaults(t *testing.T) {
	registry := indicator.NewRegistry()
	require.NoError(t, RegisterDefaults(registry, testIndicatorsConfig()))

	names := registry.List()
	assert.Contains(t, names, "sma_3")
	assert.Contains(t, names, "ema_3")
	assert.Contains(t, names, "rsi_3")
	assert.Contains(t, names, "macd_3_5_4")
	assert.Contains(t, names, "bb_3_2.0")
	assert.Contains(t, names, "trend_4")
	assert.Contains(t, names, "levels_5")
	assert.Contains(t, names, "atr_3")
	assert.Contains(t, names, "stoch_3")
}

func TestEngine_ProcessBarAndSnapshot(t *testing.T) {
	registry := indicator.NewRegistry()
	require.NoError(t, RegisterDefaults(registry, testIndicatorsConfig()))

	eng := New(Config{MaxBars: 100}, registry)

	var lastSymbol string
	var lastValues map[string]float64
	eng.SetOnSnapshot(func(symbol string, values map[string]float64) {
		lastSymbol = symbol
		lastValues = values
	})

	closes := []float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109}
	for i, c := range closes {
		require.NoError(t, eng.ProcessBar(barAt("AAPL", i, c)))
	}

	assert.Equal(t, "AAPL", lastSymbol)
	assert.Equal(t, 108.0, lastValues["sma_3"])
	assert.Equal(t, 100.0, lastValues["rsi_3"], "pure uptrend pins RSI at 100")
	assert.Contains(t, lastValues, "macd_3_5_4_line")
	assert.Contains(t, lastValues, "macd_3_5_4_signal")
	assert.Contains(t, lastValues, "bb_3_2.0_upper")
	assert.Contains(t, lastValues, "trend_4_change_pct")
	assert.Contains(t, lastValues, "levels_5_support")

	snapshot, err := eng.Snapshot("AAPL")
	require.NoError(t, err)
	assert.Equal(t, lastValues, snapshot)
}

func TestEngine_RejectsInvalidBar(t *testing.T) {
	registry := indicator.NewRegistry()
	require.NoError(t, RegisterDefaults(registry, testIndicatorsConfig()))
	eng := New(DefaultConfig(), registry)

	bad := barAt("AAPL", 0, 100)
	bad.Symbol = ""
	assert.Error(t, eng.ProcessBar(bad))
}

func TestEngine_RejectsOutOfOrderBar(t *testing.T) {
	registry := indicator.NewRegistry()
	require.NoError(t, RegisterDefaults(registry, testIndicatorsConfig()))
	eng := New(DefaultConfig(), registry)

	require.NoError(t, eng.ProcessBar(barAt("AAPL", 5, 100)))
	assert.ErrorIs(t, eng.ProcessBar(barAt("AAPL", 4, 101)), models.ErrOutOfOrderBar)
}

func TestEngine_SymbolsAreIndependent(t *testing.T) {
	registry := indicator.NewRegistry()
	require.NoError(t, RegisterDefaults(registry, testIndicatorsConfig()))
	eng := New(DefaultConfig(), registry)

	for i := 0; i < 5; i++ {
		require.NoError(t, eng.ProcessBar(barAt("AAPL", i, 100+float64(i))))
		require.NoError(t, eng.ProcessBar(barAt("MSFT", i, 300-float64(i))))
	}

	assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, eng.Symbols())

	aapl, err := eng.Snapshot("AAPL")
	require.NoError(t, err)
	msft, err := eng.Snapshot("MSFT")
	require.NoError(t, err)
	assert.NotEqual(t, aapl["sma_3"], msft["sma_3"])

	_, err = eng.Snapshot("GOOG")
	assert.Error(t, err)
}

func TestEngine_Rehydrate(t *testing.T) {
	registry := indicator.NewRegistry()
	require.NoError(t, RegisterDefaults(registry, testIndicatorsConfig()))

	history := make([]models.Bar, 8)
	for i := range history {
		history[i] = barAt("AAPL", i, 100+float64(i))
	}

	rehydrated := New(DefaultConfig(), registry)
	require.NoError(t, rehydrated.Rehydrate("AAPL", history))

	streamed := New(DefaultConfig(), registry)
	for _, bar := range history {
		require.NoError(t, streamed.ProcessBar(bar))
	}

	a, err := rehydrated.Snapshot("AAPL")
	require.NoError(t, err)
	b, err := streamed.Snapshot("AAPL")
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestEngine_Reset(t *testing.T) {
	registry := indicator.NewRegistry()
	require.NoError(t, RegisterDefaults(registry, testIndicatorsConfig()))
	eng := New(DefaultConfig(), registry)

	for i := 0; i < 6; i++ {
		require.NoError(t, eng.ProcessBar(barAt("AAPL", i, 100+float64(i))))
	}
	eng.Reset("AAPL")

	snapshot, err := eng.Snapshot("AAPL")
	require.NoError(t, err)
	assert.Empty(t, snapshot)
}
