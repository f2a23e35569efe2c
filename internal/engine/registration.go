package engine

import (
	"fmt"

	"github.com/mohamedkhairy/ta-engine/internal/config"
	"github.com/mohamedkhairy/ta-engine/pkg/indicator"
)

// RegisterDefaults registers the standard indicator set from configuration:
// the hand-rolled kernels for SMA/EMA/RSI/MACD/Bollinger/trend/levels plus
// techan-backed ATR and stochastic.
func RegisterDefaults(registry *indicator.Registry, cfg config.IndicatorsConfig) error {
	for _, period := range cfg.SMAPeriods {
		period := period
		if err := registry.Register(fmt.Sprintf("sma_%d", period), func() (indicator.Calculator, error) {
			return indicator.NewSMA(period)
		}); err != nil {
			return err
		}
	}

	for _, period := range cfg.EMAPeriods {
		period := period
		if err := registry.Register(fmt.Sprintf("ema_%d", period), func() (indicator.Calculator, error) {
			return indicator.NewEMA(period)
		}); err != nil {
			return err
		}
	}

	if err := registry.Register(fmt.Sprintf("rsi_%d", cfg.RSIPeriod), func() (indicator.Calculator, error) {
		return indicator.NewRSI(cfg.RSIPeriod)
	}); err != nil {
		return err
	}

	macdName := fmt.Sprintf("macd_%d_%d_%d", cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	if err := registry.Register(macdName, func() (indicator.Calculator, error) {
		return indicator.NewMACD(cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	}); err != nil {
		return err
	}

	bbName := fmt.Sprintf("bb_%d_%.1f", cfg.BollingerPeriod, cfg.BollingerK)
	if err := registry.Register(bbName, func() (indicator.Calculator, error) {
		return indicator.NewBollingerBands(cfg.BollingerPeriod, cfg.BollingerK)
	}); err != nil {
		return err
	}

	if err := registry.Register(fmt.Sprintf("trend_%d", cfg.TrendLookback), func() (indicator.Calculator, error) {
		return indicator.NewTrendClassifier(cfg.TrendLookback)
	}); err != nil {
		return err
	}

	if err := registry.Register(fmt.Sprintf("levels_%d", cfg.LevelsLookback), func() (indicator.Calculator, error) {
		return indicator.NewSupportResistance(cfg.LevelsLookback)
	}); err != nil {
		return err
	}

	if err := registry.Register(fmt.Sprintf("atr_%d", cfg.ATRPeriod), indicator.NewTechanATR(cfg.ATRPeriod)); err != nil {
		return err
	}
	if err := registry.Register(fmt.Sprintf("stoch_%d", cfg.StochPeriod), indicator.NewTechanStochastic(cfg.StochPeriod)); err != nil {
		return err
	}

	return nil
}
