package eventform

import "time"

// Layouts accepted by <input type="datetime-local">. Values are always UTC.
const (
	inputLayout        = "2006-01-02T15:04"
	inputLayoutSeconds = "2006-01-02T15:04:05"
	inputLayoutNanos   = "2006-01-02T15:04:05.999999999"
)

// FormatInput renders t for a datetime-local input. Seconds and fractions are
// written only when present so that ParseInput(FormatInput(t)) equals t.
func FormatInput(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.UTC()
	switch {
	case t.Nanosecond() != 0:
		return t.Format(inputLayoutNanos)
	case t.Second() != 0:
		return t.Format(inputLayoutSeconds)
	default:
		return t.Format(inputLayout)
	}
}

// ParseInput is the inverse of FormatInput.
func ParseInput(s string) (time.Time, error) {
	t, err := time.ParseInLocation(inputLayoutSeconds, s, time.UTC)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation(inputLayout, s, time.UTC)
}
