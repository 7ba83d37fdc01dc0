// Package duration renders and parses Slurm-style time values such as
// "1-02:03:04" and "UNLIMITED".
package duration

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Unlimited marks a time value without a bound.
const Unlimited = time.Duration(math.MaxInt64)

const unlimitedText = "UNLIMITED"

var ErrInvalid = errors.New("invalid time value")

// Format renders d as D-HH:MM:SS, H:MM:SS or M:SS depending on its
// magnitude. Sub-second precision is dropped and negative values render as 0:00.
func Format(d time.Duration) string {
	if d == Unlimited {
		return unlimitedText
	}
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	seconds := total % 60
	minutes := (total / 60) % 60
	hours := (total / 3600) % 24
	days := total / 86400
	switch {
	case days > 0:
		return fmt.Sprintf("%d-%02d:%02d:%02d", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	default:
		return fmt.Sprintf("%d:%02d", minutes, seconds)
	}
}

// Parse accepts the forms Format produces plus the ones squeue and scontrol
// accept: "MM", "MM:SS", "HH:MM:SS", "D-HH", "D-HH:MM" and "D-HH:MM:SS".
// "UNLIMITED" and "INFINITE" parse to Unlimited.
func Parse(text string) (time.Duration, error) {
	s := strings.TrimSpace(text)
	switch strings.ToUpper(s) {
	case "":
		return 0, fmt.Errorf("%w: empty", ErrInvalid)
	case unlimitedText, "INFINITE":
		return Unlimited, nil
	}
	var days int64
	hasDays := false
	if idx := strings.IndexByte(s, '-'); idx >= 0 {
		n, err := strconv.ParseInt(s[:idx], 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalid, text)
		}
		days = n
		hasDays = true
		s = s[idx+1:]
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, text)
	}
	nums := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalid, text)
		}
		nums[i] = n
	}
	var h, m, sec int64
	if hasDays {
		// after a day prefix the fields read hours[:minutes[:seconds]]
		h = nums[0]
		if len(nums) > 1 {
			m = nums[1]
		}
		if len(nums) > 2 {
			sec = nums[2]
		}
	} else {
		switch len(nums) {
		case 1:
			m = nums[0]
		case 2:
			m, sec = nums[0], nums[1]
		case 3:
			h, m, sec = nums[0], nums[1], nums[2]
		}
	}
	total, ok := int64(0), true
	for _, step := range []struct{ mul, add int64 }{{0, days}, {24, h}, {60, m}, {60, sec}} {
		if total, ok = scale(total, step.mul, step.add); !ok {
			return 0, fmt.Errorf("%w: %q is out of range", ErrInvalid, text)
		}
	}
	return time.Duration(total) * time.Second, nil
}

// maxSeconds is the largest whole-second count a time.Duration can hold.
const maxSeconds = math.MaxInt64 / int64(time.Second)

// scale returns total*mul+add, or false once the result passes maxSeconds.
func scale(total, mul, add int64) (int64, bool) {
	if mul != 0 && total > maxSeconds/mul {
		return 0, false
	}
	total *= mul
	if add > maxSeconds-total {
		return 0, false
	}
	return total + add, true
}
