package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/LiteracyBridge/utilities-sub000/internal/platform/clock"
)

const (
	// LargeTimeJump is how far past the latest time a record may land before
	// it is flagged.
	LargeTimeJump = 2 * time.Hour
	// RTCTolerance is the disagreement allowed between a reported RTC value
	// and the locally computed time.
	RTCTolerance = 2 * time.Second
)

// Engine applies log lines to a SessionContext. It holds only collaborators
// that are read-only or owned by the caller; session state is passed in on
// every call.
type Engine struct {
	catalog *Deployment
	stats   StatsSink
	clock   clock.Clock
}

func NewEngine(catalog *Deployment, stats StatsSink, clk clock.Clock) Engine {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return Engine{catalog: catalog, stats: stats, clock: clk}
}

// ApplyRaw parses one raw log line and applies it. A line that does not
// parse yields a dropped outcome and leaves the session untouched.
func (e Engine) ApplyRaw(sc *SessionContext, raw string, number int) Outcome {
	line, ok := ParseLine(raw, number)
	if !ok {
		return Outcome{Status: StatusDropped, Record: Record{Line: LogLine{Number: number, Raw: raw}}}
	}
	return e.Apply(sc, line)
}

// Apply dispatches one parsed line against the session.
func (e Engine) Apply(sc *SessionContext, line LogLine) Outcome {
	kind := KindForTag(line.Tag)
	rec := Record{Line: line, Kind: kind, Params: ParseParams(line.Params)}
	out := Outcome{Status: StatusProduced}

	switch kind {
	case KindReboot:
		e.reboot(sc, rec)
		e.stamp(sc, &rec, &out)
	case KindRTC:
		// A rejected reading must leave the time base untouched, including
		// the latest time.
		trusted := e.rtc(sc, rec, &out)
		e.stampAdvancing(sc, &rec, &out, trusted)
	case KindSetRTC:
		e.setRTC(sc, rec, &out)
		e.stamp(sc, &rec, &out)
	case KindChangePackage:
		e.stamp(sc, &rec, &out)
		e.changePackage(sc, rec, &out)
	case KindPlayMessage:
		e.stamp(sc, &rec, &out)
		e.playMessage(sc, rec, &out)
	case KindPause, KindResume:
		e.stamp(sc, &rec, &out)
		if sc.Playing == nil {
			out.info(fmt.Sprintf("%s with nothing playing", kind))
		}
	case KindAdjustPosition:
		e.stamp(sc, &rec, &out)
		e.adjustPosition(sc, rec, &out)
	case KindMessageDone:
		e.stamp(sc, &rec, &out)
		e.messageDone(sc, rec, &out)
	case KindFirmware:
		e.stamp(sc, &rec, &out)
		if _, v, ok := rec.Params.First("Ver", "ver", "Version"); ok && v != "" {
			sc.Firmware = v
		} else if len(rec.Params.Bare) > 0 {
			sc.Firmware = rec.Params.Bare[0]
		}
	case KindPowerDown, KindCounters, KindIgnored:
		e.stamp(sc, &rec, &out)
	}

	out.Record = rec
	return out
}

// stamp computes the record's absolute time and, for time-adjusting kinds,
// advances the latest time. The latest time never moves backwards here.
func (e Engine) stamp(sc *SessionContext, rec *Record, out *Outcome) {
	e.stampAdvancing(sc, rec, out, rec.Kind.AdjustsTime())
}

func (e Engine) stampAdvancing(sc *SessionContext, rec *Record, out *Outcome, advance bool) {
	if !sc.TimeEstablished() {
		return
	}
	at := sc.BaseDay.Add(rec.Line.Elapsed)
	rec.Timestamp = &at
	if sc.LatestTime != nil && at.Sub(*sc.LatestTime) > LargeTimeJump {
		out.warn(fmt.Sprintf("large time jump: %s is %s past latest time %s",
			at.Format(time.DateTime), at.Sub(*sc.LatestTime).Round(time.Second), sc.LatestTime.Format(time.DateTime)))
	}
	if advance && (sc.LatestTime == nil || at.After(*sc.LatestTime)) {
		sc.setLatest(at)
	}
}

func (e Engine) reboot(sc *SessionContext, rec Record) {
	sc.AwaitingTime = true
	sc.BaseDay = nil
	sc.Playing = nil
	sc.Boots++
	key, value, ok := rec.Params.First("BootKeys", "BootKey")
	if !ok {
		sc.BootKey = ""
		sc.TimeOfDayRTC = false
		return
	}
	sc.BootKey = value
	sc.TimeOfDayRTC = key == "BootKeys"
}

func (e Engine) rtc(sc *SessionContext, rec Record, out *Outcome) bool {
	v, ok := ParseRTC(rec.Line.Params)
	if !ok {
		out.fail(fmt.Sprintf("unparseable RTC value %q", rec.Line.Params))
		return false
	}
	if v.TimeOnly {
		if sc.LatestTime == nil {
			out.fail("time-of-day RTC with no remembered date")
			return false
		}
		v = v.WithDate(*sc.LatestTime)
	}
	if v.At.Year() < MinimumRTCYear {
		out.fail(fmt.Sprintf("ignoring implausible RTC value %s", v.At.Format(time.DateTime)))
		return false
	}

	if sc.TimeEstablished() {
		local := sc.BaseDay.Add(rec.Line.Elapsed)
		if diff := v.At.Sub(local); diff > RTCTolerance || diff < -RTCTolerance {
			out.info(fmt.Sprintf("RTC %s differs from computed time %s by %s",
				v.At.Format(time.DateTime), local.Format(time.DateTime), diff.Round(time.Millisecond)))
		}
		return true
	}

	if now := e.clock.Now(); v.At.After(now) {
		out.fail(fmt.Sprintf("setting time to the future: %s", v.At.Format(time.DateTime)))
	}
	if sc.LatestTime != nil && v.At.Before(*sc.LatestTime) {
		if sc.TimeOfDayRTC || v.TimeOnly {
			out.fail(fmt.Sprintf("RTC time of day %s moves time backwards from %s",
				v.At.Format(time.TimeOnly), sc.LatestTime.Format(time.DateTime)))
		} else {
			out.fail(fmt.Sprintf("RTC %s moves time backwards from %s",
				v.At.Format(time.DateTime), sc.LatestTime.Format(time.DateTime)))
		}
		return false
	}
	sc.setBase(v.At)
	return true
}

func (e Engine) setRTC(sc *SessionContext, rec Record, out *Outcome) {
	v, ok := ParseSetRTC(rec.Line.Params)
	if !ok || v.At.Year() < MinimumRTCYear {
		out.fail(fmt.Sprintf("unparseable %s value %q", rec.Line.Tag, rec.Line.Params))
		// An established base is kept.
		if sc.AwaitingTime && sc.LatestTime != nil {
			sc.setBase(*sc.LatestTime)
		}
		return
	}
	sc.setBase(v.At)
	sc.setLatest(v.At)
}

func (e Engine) changePackage(sc *SessionContext, rec Record, out *Outcome) {
	_, name, ok := rec.Params.First("Pkg", "pkg", "Package")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		sc.CurrentPackage = nil
		out.fail("package change without a package name")
		return
	}
	sc.PackageName = name
	pkg, found := e.catalog.FindPackage(name)
	if !found {
		sc.CurrentPackage = nil
		out.fail(fmt.Sprintf("package %q is not in the catalog", name))
		return
	}
	sc.CurrentPackage = pkg
}

func (e Engine) playMessage(sc *SessionContext, rec Record, out *Outcome) {
	sc.Playing = nil
	msg, playlist, err := resolveMessage(sc.CurrentPackage, rec.Params)
	if err != nil {
		_, fileName, _ := rec.Params.First("fn", "Fn", "file")
		placeholder, ok := placeholderMessage(fileName)
		if !ok {
			out.fail(fmt.Sprintf("cannot resolve message: %v", err))
			return
		}
		out.warn(fmt.Sprintf("cannot resolve message (%v), using file name %s", err, placeholder.ID))
		msg = placeholder
	}
	if sc.LatestTime == nil {
		out.fail(fmt.Sprintf("play of %s with no known time", msg.ID))
		return
	}
	sc.Playing = &PlayContext{Message: msg, Playlist: playlist, Started: *sc.LatestTime}
}

func (e Engine) adjustPosition(sc *SessionContext, rec Record, out *Outcome) {
	seconds, ok := skipSeconds(rec.Params)
	if !ok {
		out.info("position adjustment without a magnitude")
	}
	if sc.Playing == nil {
		out.info("position adjustment with nothing playing")
		return
	}
	if ok {
		out.info(fmt.Sprintf("%s position adjusted by %.1fs", sc.Playing.Message.ID, seconds))
	}
	if sc.LatestTime != nil {
		sc.Playing.Started = *sc.LatestTime
	}
}

func (e Engine) messageDone(sc *SessionContext, rec Record, out *Outcome) {
	playing := sc.Playing
	sc.Playing = nil
	if playing == nil {
		out.fail("MsgDone with no play context")
		return
	}
	pauses, _ := rec.Params.Int("nPaus")
	fact := Fact{
		MessageID:   playing.Message.ID,
		Playlist:    playing.Playlist,
		DurationMS:  millisField(rec.Params, "L"),
		PlayedMS:    millisField(rec.Params, "P"),
		Pauses:      pauses,
		ForwardMS:   millisField(rec.Params, "Fwd"),
		BackwardMS:  millisField(rec.Params, "Bk"),
		PackageName: sc.PackageName,
	}
	if sc.CurrentPackage != nil {
		fact.PackageName = sc.CurrentPackage.Name
	}
	if e.stats != nil {
		e.stats.Record(fact)
	}
}

// millisField reads `<name>_ms` in milliseconds, falling back to `<name>` in
// seconds.
func millisField(params Params, name string) int {
	if v, ok := params.Int(name + "_ms"); ok {
		return v
	}
	if v, ok := params.Int(name); ok {
		return v * 1000
	}
	return 0
}

// skipSeconds normalizes an adjPos magnitude to seconds.
func skipSeconds(params Params) (float64, bool) {
	if v, ok := params.Int("ms"); ok {
		return float64(v) / 1000, true
	}
	if v, ok := params.Int("Ms"); ok {
		return float64(v) / 1000, true
	}
	if v, ok := params.Int("sec"); ok {
		return float64(v), true
	}
	if v, ok := params.Int("Sec"); ok {
		return float64(v), true
	}
	return 0, false
}
