package indicator

import (
	"errors"
	"math/rand"
	"testing"
)

func TestCalculateEMA_SeedIsSMA(t *testing.T) {
	closes := []float64{10, 20, 30, 40, 50}
	out, err := CalculateEMA(closes, 5)
	if err != nil {
		t.Fatalf("CalculateEMA failed: %v", err)
	}
	if len(out) != 1 || out[0] != 30.0 {
		t.Errorf("expected seed [30], got %v", out)
	}
}

func TestCalculateEMA_Length(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	for _, period := range []int{1, 2, 12, 26, 40} {
		out, err := CalculateEMA(closes, period)
		if err != nil {
			t.Fatalf("CalculateEMA(period=%d) failed: %v", period, err)
		}
		if want := len(closes) - period + 1; len(out) != want {
			t.Errorf("period %d: expected length %d, got %d", period, want, len(out))
		}
	}
}

func TestCalculateEMA_PeriodOne(t *testing.T) {
	// alpha = 1, so the EMA is the close itself
	closes := []float64{3, 1, 4, 1, 5}
	out, err := CalculateEMA(closes, 1)
	if err != nil {
		t.Fatalf("CalculateEMA failed: %v", err)
	}
	for i := range closes {
		if out[i] != closes[i] {
			t.Errorf("index %d: expected %v, got %v", i, closes[i], out[i])
		}
	}
}

func TestEMAStep_ReproducesBatch(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	closes := make([]float64, 300)
	for i := range closes {
		closes[i] = 200 + rng.NormFloat64()*5
	}

	const period = 12
	batch, err := CalculateEMA(closes, period)
	if err != nil {
		t.Fatalf("CalculateEMA failed: %v", err)
	}

	// Re-derive the whole sequence from the seed with EMAStep only
	ema := batch[0]
	for k := 1; k < len(batch); k++ {
		ema = EMAStep(ema, closes[period+k-1], period)
		if ema != batch[k] {
			t.Fatalf("index %d: step value %v != batch %v", k, ema, batch[k])
		}
	}
}

func TestEMA_StreamingMatchesBatch(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 75 + rng.Float64()*10
	}

	const period = 26
	batch, err := CalculateEMA(closes, period)
	if err != nil {
		t.Fatalf("CalculateEMA failed: %v", err)
	}

	ema, err := NewEMA(period)
	if err != nil {
		t.Fatalf("NewEMA failed: %v", err)
	}
	streamed := feedCloses(ema, closes)

	if len(streamed) != len(batch) {
		t.Fatalf("expected %d streamed values, got %d", len(batch), len(streamed))
	}
	for i := range batch {
		if streamed[i] != batch[i] {
			t.Fatalf("index %d: streamed %v != batch %v", i, streamed[i], batch[i])
		}
	}
}

func TestCalculateEMA_InsufficientData(t *testing.T) {
	_, err := CalculateEMA([]float64{1, 2}, 3)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestEMA_NotReadyThenReady(t *testing.T) {
	ema, _ := NewEMA(3)
	for i, c := range []float64{10, 20} {
		if _, err := ema.Update(testBar("AAPL", i, c)); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if ema.IsReady() {
			t.Fatalf("EMA should not be ready after %d bars", i+1)
		}
	}

	v, err := ema.Update(testBar("AAPL", 2, 30))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !ema.IsReady() {
		t.Fatal("EMA should be ready after 3 bars")
	}
	if v != 20.0 {
		t.Errorf("expected seed 20, got %v", v)
	}
}

func TestEMA_Reset(t *testing.T) {
	ema, _ := NewEMA(2)
	feedCloses(ema, []float64{1, 2, 3})
	ema.Reset()

	if ema.IsReady() {
		t.Error("EMA should not be ready after reset")
	}
	if _, err := ema.Value(); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData after reset, got %v", err)
	}
}
