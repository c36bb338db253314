package threshold

import (
	"errors"
	"fmt"
	"strconv"
)

// Direction tells in which direction a value gets worse.
type Direction int

const (
	// Ascending values get worse when they grow, ex.: cpu usage.
	Ascending Direction = iota

	// Descending values get worse when they shrink, ex.: availability.
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}

	return "ascending"
}

// Boundary decides if reaching a bound already counts as crossing it.
type Boundary int

const (
	// Strict means the bound must be passed (> or <).
	Strict Boundary = iota

	// Inclusive means reaching the bound is enough (>= or <=).
	Inclusive
)

func (b Boundary) String() string {
	if b == Inclusive {
		return "inclusive"
	}

	return "strict"
}

// ErrCriticalNotWorse is returned by Validate if the critical bound is not more severe than the warning bound.
var ErrCriticalNotWorse = errors.New("critical threshold is not more severe than warning threshold")

// Threshold contains a warning and a critical bound together with the comparison rules.
type Threshold struct {
	Warning   float64
	Critical  float64
	Direction Direction
	Boundary  Boundary
}

// New creates a Threshold.
func New(warning, critical float64, direction Direction, boundary Boundary) Threshold {
	return Threshold{
		Warning:   warning,
		Critical:  critical,
		Direction: direction,
		Boundary:  boundary,
	}
}

// String returns the comparison in a human readable form, ex.: "> 75 / > 90"
func (t Threshold) String() string {
	return fmt.Sprintf("%s %s / %s %s", t.operator(), formatNum(t.Warning), t.operator(), formatNum(t.Critical))
}

func (t Threshold) operator() string {
	switch {
	case t.Direction == Ascending && t.Boundary == Strict:
		return ">"
	case t.Direction == Ascending:
		return ">="
	case t.Boundary == Strict:
		return "<"
	default:
		return "<="
	}
}

// Validate checks that critical represents a more severe condition than warning.
// Evaluate does not rely on this, so callers usually only log the error.
func (t Threshold) Validate() error {
	switch t.Direction {
	case Ascending:
		if t.Critical <= t.Warning {
			return fmt.Errorf("%w: %s", ErrCriticalNotWorse, t.String())
		}
	case Descending:
		if t.Critical >= t.Warning {
			return fmt.Errorf("%w: %s", ErrCriticalNotWorse, t.String())
		}
	}

	return nil
}

// crosses returns true if value is beyond the bound.
func (t Threshold) crosses(value, bound float64) bool {
	switch {
	case t.Direction == Ascending && t.Boundary == Strict:
		return value > bound
	case t.Direction == Ascending:
		return value >= bound
	case t.Boundary == Strict:
		return value < bound
	default:
		return value <= bound
	}
}

// Evaluate maps a value to a verdict. The critical bound is checked first.
func Evaluate(value float64, t Threshold) Verdict {
	switch {
	case t.crosses(value, t.Critical):
		return Critical
	case t.crosses(value, t.Warning):
		return Warning
	}

	return OK
}

// Evaluate is a shortcut for Evaluate(value, t).
func (t Threshold) Evaluate(value float64) Verdict {
	return Evaluate(value, t)
}

func formatNum(num float64) string {
	return strconv.FormatFloat(num, 'f', -1, 64)
}
