package utils

import (
	"fmt"
	"strings"
	"time"
)

// slotLayouts are the label formats accepted from callers and schedule
// configuration. Everything is normalized to 24h "15:04" so two spellings of
// the same wall-clock time cannot alias distinct slots.
var slotLayouts = []string{"15:04", "3:04 PM", "3:04PM", "15:04:05"}

// NormalizeSlot parses a slot label and returns its canonical "15:04" form.
func NormalizeSlot(label string) (string, error) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return "", fmt.Errorf("empty slot label")
	}
	upper := strings.ToUpper(trimmed)
	for _, layout := range slotLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("unrecognized slot label %q", label)
}

// ParseDate validates a calendar date in "2006-01-02" form.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}
