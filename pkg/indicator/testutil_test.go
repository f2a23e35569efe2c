package indicator

import (
	"time"

	"github.com/mohamedkhairy/ta-engine/internal/models"
)

var testBase = time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)

// testBar builds the i-th one-minute bar of a test sequence
func testBar(symbol string, i int, close float64) *models.Bar {
	return &models.Bar{
		Symbol:    symbol,
		Timestamp: testBase.Add(time.Duration(i) * time.Minute),
		Open:      close,
		High:      close,
		Low:       close,
		Close:     close,
		Volume:    1000,
	}
}

// feedCloses runs a sequence of closes through a calculator and collects the
// value produced at each ready step
func feedCloses(calc Calculator, closes []float64) []float64 {
	var out []float64
	for i, c := range closes {
		v, err := calc.Update(testBar("AAPL", i, c))
		if err == nil && calc.IsReady() {
			out = append(out, v)
		}
	}
	return out
}
