package booking

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a minute-of-day value in 0..1439. Slot and window times are
// always same-day local times, so there is no cross-midnight arithmetic.
type TimeOfDay int

// ParseTimeOfDay accepts 24-hour "15:04" and 12-hour "5:51pm" / "5:51 PM"
// forms. Booking pages render the 12-hour form; config files use either.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if norm == "" {
		return 0, fmt.Errorf("empty time of day")
	}

	layout := "15:04"
	if strings.HasSuffix(norm, "AM") || strings.HasSuffix(norm, "PM") {
		layout = "3:04PM"
	}
	t, err := time.Parse(layout, norm)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Hour() int    { return int(t) / 60 }
func (t TimeOfDay) Minute() int  { return int(t) % 60 }
func (t TimeOfDay) Minutes() int { return int(t) }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// DistanceMinutes is the absolute distance between two times of day.
func (t TimeOfDay) DistanceMinutes(o TimeOfDay) int {
	d := int(t) - int(o)
	if d < 0 {
		d = -d
	}
	return d
}
