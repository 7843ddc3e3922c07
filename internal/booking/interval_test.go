package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInterval_Validate(t *testing.T) {
	base := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)

	testCases := []struct {
		name    string
		in      Interval
		wantErr bool
	}{
		{"start before end", Interval{Start: base, End: base.Add(time.Hour)}, false},
		{"one minute", Interval{Start: base, End: base.Add(time.Minute)}, false},
		{"start equals end", Interval{Start: base, End: base}, true},
		{"inverted", Interval{Start: base.Add(time.Hour), End: base}, true},
		{"missing start", Interval{End: base}, true},
		{"missing end", Interval{Start: base}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInterval)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInterval_Overlaps(t *testing.T) {
	h := func(hour int) time.Time { return time.Date(2024, 1, 15, hour, 0, 0, 0, time.UTC) }
	existing := Interval{Start: h(14), End: h(16)}

	testCases := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"overlaps the tail", Interval{Start: h(15), End: h(17)}, true},
		{"overlaps the head", Interval{Start: h(13), End: h(15)}, true},
		{"contained", Interval{Start: h(14), End: h(15)}, true},
		{"contains", Interval{Start: h(12), End: h(18)}, true},
		{"identical", existing, true},
		{"touches the end", Interval{Start: h(16), End: h(17)}, false},
		{"touches the start", Interval{Start: h(12), End: h(14)}, false},
		{"disjoint", Interval{Start: h(8), End: h(9)}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, existing.Overlaps(tc.other))
			assert.Equal(t, tc.want, tc.other.Overlaps(existing), "overlap must be symmetric")
		})
	}
}
