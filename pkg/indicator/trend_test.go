package indicator

import (
	"errors"
	"testing"
)

func TestClassifyTrend_Up(t *testing.T) {
	closes := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 105}
	trend, err := ClassifyTrend(closes, 10)
	if err != nil {
		t.Fatalf("ClassifyTrend failed: %v", err)
	}
	if trend != TrendUp {
		t.Errorf("expected UP for +5%% change, got %s", trend)
	}
}

func TestClassifyTrend_Down(t *testing.T) {
	closes := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 97}
	trend, err := ClassifyTrend(closes, 10)
	if err != nil {
		t.Fatalf("ClassifyTrend failed: %v", err)
	}
	if trend != TrendDown {
		t.Errorf("expected DOWN for -3%% change, got %s", trend)
	}
}

func TestClassifyTrend_Neutral(t *testing.T) {
	closes := []float64{100, 101, 99, 100, 102, 101, 100, 99, 101, 101}
	trend, err := ClassifyTrend(closes, 10)
	if err != nil {
		t.Fatalf("ClassifyTrend failed: %v", err)
	}
	if trend != TrendNeutral {
		t.Errorf("expected NEUTRAL for +1%% change, got %s", trend)
	}
}

func TestClassifyTrend_ThresholdIsExclusive(t *testing.T) {
	// Exactly +2% stays neutral; the threshold is strict
	closes := []float64{100, 102}
	trend, err := ClassifyTrend(closes, 2)
	if err != nil {
		t.Fatalf("ClassifyTrend failed: %v", err)
	}
	if trend != TrendNeutral {
		t.Errorf("expected NEUTRAL at exactly +2%%, got %s", trend)
	}
}

func TestClassifyTrend_UsesOnlyLookbackWindow(t *testing.T) {
	// The crash before the window must not affect the classification
	closes := []float64{500, 400, 100, 100, 100, 105}
	trend, err := ClassifyTrend(closes, 4)
	if err != nil {
		t.Fatalf("ClassifyTrend failed: %v", err)
	}
	if trend != TrendUp {
		t.Errorf("expected UP over the last 4 closes, got %s", trend)
	}
}

func TestClassifyTrend_InsufficientData(t *testing.T) {
	_, err := ClassifyTrend([]float64{100, 101}, 10)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestClassifyTrendOrNeutral(t *testing.T) {
	if trend := ClassifyTrendOrNeutral([]float64{100}, 10); trend != TrendNeutral {
		t.Errorf("expected NEUTRAL for short input, got %s", trend)
	}
	if trend := ClassifyTrendOrNeutral([]float64{100, 105}, 2); trend != TrendUp {
		t.Errorf("expected UP, got %s", trend)
	}
}

func TestTrend_String(t *testing.T) {
	cases := map[Trend]string{
		TrendUp:      "UP",
		TrendDown:    "DOWN",
		TrendNeutral: "NEUTRAL",
	}
	for trend, want := range cases {
		if trend.String() != want {
			t.Errorf("expected %s, got %s", want, trend.String())
		}
	}
}

func TestTrendClassifier_Streaming(t *testing.T) {
	tc, err := NewTrendClassifier(4)
	if err != nil {
		t.Fatalf("NewTrendClassifier failed: %v", err)
	}

	if tc.Trend() != TrendNeutral {
		t.Error("unwarmed classifier should report NEUTRAL")
	}

	feedCloses(tc, []float64{100, 100, 100, 105})
	if !tc.IsReady() {
		t.Fatal("classifier should be ready after 4 bars")
	}
	if tc.Trend() != TrendUp {
		t.Errorf("expected UP, got %s", tc.Trend())
	}

	values, err := tc.Values()
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if values["change_pct"] != 5.0 {
		t.Errorf("expected change_pct 5, got %v", values["change_pct"])
	}
	if values["direction"] != 1.0 {
		t.Errorf("expected direction 1, got %v", values["direction"])
	}

	// Window slides: three falling closes flip the classification
	feedCloses(tc, []float64{100, 100, 95})
	if tc.Trend() != TrendDown {
		t.Errorf("expected DOWN after slide, got %s", tc.Trend())
	}
}

func TestTrendClassifier_Reset(t *testing.T) {
	tc, _ := NewTrendClassifier(3)
	feedCloses(tc, []float64{1, 2, 3})
	tc.Reset()

	if tc.IsReady() {
		t.Error("classifier should not be ready after reset")
	}
	if _, err := tc.Value(); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData after reset, got %v", err)
	}
}
