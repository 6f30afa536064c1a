package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var linePattern = regexp.MustCompile(`^(\d+)_(\d+)_(\d+)\.(\d{1,3}): *(\w+)[, ]*(.*)$`)

// LogLine is one matched line of a device log. Elapsed is measured from the
// most recent boot.
type LogLine struct {
	Number  int
	Elapsed time.Duration
	Tag     string
	Params  string
	Raw     string
}

// ParseLine matches raw against the log line grammar. Lines that do not match
// are reported with ok=false and must be dropped without touching session state.
func ParseLine(raw string, number int) (LogLine, bool) {
	m := linePattern.FindStringSubmatch(raw)
	if m == nil {
		return LogLine{}, false
	}
	hours, err := strconv.Atoi(m[1])
	if err != nil {
		return LogLine{}, false
	}
	minutes, err := strconv.Atoi(m[2])
	if err != nil {
		return LogLine{}, false
	}
	seconds, err := strconv.Atoi(m[3])
	if err != nil {
		return LogLine{}, false
	}
	frac, _ := strconv.Atoi(m[4])
	var sub time.Duration
	switch len(m[4]) {
	case 1:
		sub = time.Duration(frac) * 100 * time.Millisecond
	case 3:
		sub = time.Duration(frac) * time.Millisecond
	default:
		return LogLine{}, false
	}
	elapsed := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second + sub
	return LogLine{
		Number:  number,
		Elapsed: elapsed,
		Tag:     m[5],
		Params:  m[6],
		Raw:     raw,
	}, true
}

// ElapsedLabel renders the elapsed time the way the device writes it, with
// tenths of a second.
func (l LogLine) ElapsedLabel() string {
	total := l.Elapsed
	h := total / time.Hour
	total -= h * time.Hour
	m := total / time.Minute
	total -= m * time.Minute
	s := total / time.Second
	total -= s * time.Second
	return fmt.Sprintf("%d_%02d_%02d.%d", h, m, s, total/(100*time.Millisecond))
}
