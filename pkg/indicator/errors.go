package indicator

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when an input window is shorter than the
// minimum required by an indicator's period parameters. It is a precondition
// failure detected before any computation runs; callers never receive a
// partial result alongside it.
var ErrInsufficientData = errors.New("insufficient data")

// insufficientData wraps ErrInsufficientData with the concrete requirement
func insufficientData(need, got int) error {
	return fmt.Errorf("%w: need %d closes, got %d", ErrInsufficientData, need, got)
}
