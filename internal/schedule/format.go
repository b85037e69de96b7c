package schedule

import (
	"fmt"
	"time"
)

// FormatCountdown renders d as HH:MM:SS, truncating to whole seconds.
// Negative durations are rendered by magnitude.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

// Label is the short human text shown next to a task for a snapshot.
func (s Snapshot) Label() string {
	switch s.Status {
	case StatusPending:
		return "Starts in: " + FormatCountdown(s.Countdown)
	case StatusLive:
		return "Time left: " + FormatCountdown(s.Countdown)
	case StatusOverdue:
		return "Overdue by: " + FormatCountdown(s.Countdown)
	case StatusCompletedOnTime:
		return "Completed on time"
	case StatusCompletedLate:
		return "Completed late"
	default:
		return "Not scheduled today"
	}
}
