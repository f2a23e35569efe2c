package indicator

import (
	"errors"
	"math"
	"testing"
)

func TestCalculateBollinger_FlatSeries(t *testing.T) {
	closes := []float64{100, 100, 100, 100, 100, 100}
	result, err := CalculateBollinger(closes, 3, 2)
	if err != nil {
		t.Fatalf("CalculateBollinger failed: %v", err)
	}

	for i := range result.SMA {
		if result.SMA[i] != 100 || result.Upper[i] != 100 || result.Lower[i] != 100 {
			t.Errorf("index %d: expected all bands at 100, got sma=%v upper=%v lower=%v",
				i, result.SMA[i], result.Upper[i], result.Lower[i])
		}
	}
}

func TestCalculateBollinger_BandWidth(t *testing.T) {
	closes := randomWalk(11, 90)
	const period = 20
	const k = 2.0

	result, err := CalculateBollinger(closes, period, k)
	if err != nil {
		t.Fatalf("CalculateBollinger failed: %v", err)
	}

	for j := range result.SMA {
		_, stddev := meanStddev(closes[j : j+period])
		width := result.Upper[j] - result.Lower[j]
		if math.Abs(width-2*k*stddev) > 1e-9*math.Max(1, math.Abs(width)) {
			t.Fatalf("index %d: width %v != 2*k*stddev %v", j, width, 2*k*stddev)
		}
	}
}

func TestCalculateBollinger_BandOrdering(t *testing.T) {
	closes := randomWalk(12, 120)
	result, err := CalculateBollinger(closes, 20, 2)
	if err != nil {
		t.Fatalf("CalculateBollinger failed: %v", err)
	}

	for i := range result.SMA {
		if result.Lower[i] > result.SMA[i] || result.SMA[i] > result.Upper[i] {
			t.Fatalf("index %d: band ordering violated: lower=%v sma=%v upper=%v",
				i, result.Lower[i], result.SMA[i], result.Upper[i])
		}
	}
}

func TestCalculateBollinger_Length(t *testing.T) {
	closes := randomWalk(13, 50)
	result, err := CalculateBollinger(closes, 20, 2)
	if err != nil {
		t.Fatalf("CalculateBollinger failed: %v", err)
	}
	want := len(closes) - 20 + 1
	if len(result.SMA) != want || len(result.Upper) != want || len(result.Lower) != want {
		t.Errorf("expected all lengths %d, got sma=%d upper=%d lower=%d",
			want, len(result.SMA), len(result.Upper), len(result.Lower))
	}
}

func TestCalculateBollinger_InsufficientData(t *testing.T) {
	_, err := CalculateBollinger([]float64{1, 2, 3}, 20, 2)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestBollingerBands_StreamingMatchesBatch(t *testing.T) {
	closes := randomWalk(14, 60)
	const period = 20
	const k = 2.0

	batch, err := CalculateBollinger(closes, period, k)
	if err != nil {
		t.Fatalf("CalculateBollinger failed: %v", err)
	}

	bb, err := NewBollingerBands(period, k)
	if err != nil {
		t.Fatalf("NewBollingerBands failed: %v", err)
	}
	for i, c := range closes {
		if _, err := bb.Update(testBar("AAPL", i, c)); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	values, err := bb.Values()
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}

	last := len(batch.SMA) - 1
	if values["middle"] != batch.SMA[last] {
		t.Errorf("streamed middle %v != batch %v", values["middle"], batch.SMA[last])
	}
	if values["upper"] != batch.Upper[last] {
		t.Errorf("streamed upper %v != batch %v", values["upper"], batch.Upper[last])
	}
	if values["lower"] != batch.Lower[last] {
		t.Errorf("streamed lower %v != batch %v", values["lower"], batch.Lower[last])
	}
}

func TestBollingerBands_NotReady(t *testing.T) {
	bb, _ := NewBollingerBands(5, 2)
	if _, err := bb.Values(); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}
