package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/keepmind9/rosebot/pkg/constants"
)

// ParseMuteDuration converts a compact duration token into seconds.
//
// Grammar: digits followed by a single unit suffix, one of m/h/d
// (case-insensitive). Examples: "10m" -> 600, "2h" -> 7200, "3d" -> 259200.
//
// An absent token, an unknown suffix, or a malformed numeric prefix all fall
// back to DefaultMuteSeconds. Falling back instead of rejecting keeps a mute
// command usable even when the duration argument is garbage.
func ParseMuteDuration(token string) int64 {
	t := strings.ToLower(strings.TrimSpace(token))
	if len(t) < 2 {
		return constants.DefaultMuteSeconds
	}

	var multiplier int64
	switch t[len(t)-1] {
	case 'm':
		multiplier = constants.SecondsPerMinute
	case 'h':
		multiplier = constants.SecondsPerHour
	case 'd':
		multiplier = constants.SecondsPerDay
	default:
		return constants.DefaultMuteSeconds
	}

	n, err := strconv.ParseInt(t[:len(t)-1], 10, 64)
	if err != nil || n <= 0 {
		return constants.DefaultMuteSeconds
	}

	return n * multiplier
}

// FormatDuration renders seconds as a human-readable duration string using
// the coarsest whole unit: days at >= 1 day, hours at >= 1 hour, minutes
// otherwise. Division floors, so 90000s is "1 day" and 59s is "0 minutes".
func FormatDuration(seconds int64) string {
	switch {
	case seconds >= constants.SecondsPerDay:
		return pluralize(seconds/constants.SecondsPerDay, "day")
	case seconds >= constants.SecondsPerHour:
		return pluralize(seconds/constants.SecondsPerHour, "hour")
	default:
		return pluralize(seconds/constants.SecondsPerMinute, "minute")
	}
}

func pluralize(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
