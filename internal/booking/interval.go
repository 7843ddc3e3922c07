package booking

import (
	"fmt"
	"time"
)

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Validate checks that both bounds are set and Start is strictly before End.
func (i Interval) Validate() error {
	if i.Start.IsZero() || i.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidInterval)
	}
	if !i.Start.Before(i.End) {
		return fmt.Errorf("%w: start %s is not before end %s",
			ErrInvalidInterval, i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
	}
	return nil
}

// Overlaps reports whether the two ranges share an instant. Touching ranges
// (one ends exactly when the other starts) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}
