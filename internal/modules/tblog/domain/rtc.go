package domain

import (
	"regexp"
	"strconv"
	"time"
)

// MinimumRTCYear is the first year an RTC reading is trusted. Earlier values
// are hardware power-on defaults.
const MinimumRTCYear = 2022

// RTCValue is a parsed clock reading. When TimeOnly is set only the clock
// fields of At are meaningful and the date must come from elsewhere.
type RTCValue struct {
	At       time.Time
	TimeOnly bool
	Layout   string
}

// WithDate combines a time-of-day reading with the calendar date of day.
func (v RTCValue) WithDate(day time.Time) RTCValue {
	if !v.TimeOnly {
		return v
	}
	return RTCValue{
		At:     time.Date(day.Year(), day.Month(), day.Day(), v.At.Hour(), v.At.Minute(), v.At.Second(), v.At.Nanosecond(), time.UTC),
		Layout: v.Layout,
	}
}

type rtcLayout struct {
	name  string
	parse func(string) (RTCValue, bool)
}

var (
	millisPattern   = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})[ T]+(\d{1,2})[:_](\d{2})[:_](\d{2})\.(\d{3})(?:\D|$)`)
	twoDigitPattern = regexp.MustCompile(`(?:^|\D)(\d{2}|\d{4})-(\d{2})-(\d{2})[ T]+(\d{2})[:_](\d{2})[:_](\d{2})(?:[^.\d]|$)`)
	dateTimePattern = regexp.MustCompile(`Dt:\s*(\d{4})-(\d{1,2})-(\d{1,2})(?:\s*\(\w+\))?\s*,\s*Tm:\s*(\d{1,2})[_:](\d{2})[_:](\d{2})(?:\.\d+)?`)
	timeOnlyPattern = regexp.MustCompile(`^\s*Tm:\s*(\d{1,2})[_:](\d{2})[_:](\d{2})(?:\.\d+)?\s*$`)
	setRTCPattern   = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})[ T,]+(\d{1,2})[:_](\d{2})`)
)

var rtcLayouts = []rtcLayout{
	{name: "datetime-millis", parse: ParseRTCMillis},
	{name: "datetime-two-digit", parse: ParseRTCTwoDigit},
	{name: "date-and-time-of-day", parse: ParseRTCDateAndTime},
	{name: "time-of-day", parse: ParseRTCTimeOfDay},
}

// ParseRTC tries each RTC layout in priority order.
func ParseRTC(params string) (RTCValue, bool) {
	for _, layout := range rtcLayouts {
		if v, ok := layout.parse(params); ok {
			v.Layout = layout.name
			return v, true
		}
	}
	return RTCValue{}, false
}

func ParseRTCMillis(params string) (RTCValue, bool) {
	m := millisPattern.FindStringSubmatch(params)
	if m == nil {
		return RTCValue{}, false
	}
	ms := atoi(m[7])
	return buildTime(atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]), atoi(m[5]), atoi(m[6]), ms)
}

func ParseRTCTwoDigit(params string) (RTCValue, bool) {
	m := twoDigitPattern.FindStringSubmatch(params)
	if m == nil {
		return RTCValue{}, false
	}
	year := atoi(m[1])
	if len(m[1]) == 2 {
		year += 2000
	}
	return buildTime(year, atoi(m[2]), atoi(m[3]), atoi(m[4]), atoi(m[5]), atoi(m[6]), 0)
}

// ParseRTCDateAndTime handles `Dt: 2022-01-11 (Tue), Tm: 13_29_32.2147483647`.
// The fraction after the seconds is not a real sub-second value and is dropped.
func ParseRTCDateAndTime(params string) (RTCValue, bool) {
	m := dateTimePattern.FindStringSubmatch(params)
	if m == nil {
		return RTCValue{}, false
	}
	return buildTime(atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]), atoi(m[5]), atoi(m[6]), 0)
}

func ParseRTCTimeOfDay(params string) (RTCValue, bool) {
	m := timeOnlyPattern.FindStringSubmatch(params)
	if m == nil {
		return RTCValue{}, false
	}
	v, ok := buildTime(2000, 1, 1, atoi(m[1]), atoi(m[2]), atoi(m[3]), 0)
	if !ok {
		return RTCValue{}, false
	}
	v.TimeOnly = true
	return v, true
}

// ParseSetRTC parses the minute-resolution layout written when the device is
// told the time.
func ParseSetRTC(params string) (RTCValue, bool) {
	m := setRTCPattern.FindStringSubmatch(params)
	if m == nil {
		return RTCValue{}, false
	}
	v, ok := buildTime(atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]), atoi(m[5]), 0, 0)
	if !ok {
		return RTCValue{}, false
	}
	v.Layout = "set-datetime"
	return v, true
}

func buildTime(year, month, day, hour, minute, second, millis int) (RTCValue, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || second > 59 {
		return RTCValue{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, millis*int(time.Millisecond), time.UTC)
	if t.Day() != day {
		return RTCValue{}, false
	}
	return RTCValue{At: t}, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
