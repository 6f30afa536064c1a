package domain

import "time"

type Kind int

const (
	KindIgnored Kind = iota
	KindReboot
	KindRTC
	KindSetRTC
	KindChangePackage
	KindPlayMessage
	KindPause
	KindResume
	KindAdjustPosition
	KindMessageDone
	KindPowerDown
	KindFirmware
	KindCounters
)

var kindByTag = map[string]Kind{
	"REBOOT":   KindReboot,
	"RTC":      KindRTC,
	"setRTC":   KindSetRTC,
	"resetRTC": KindSetRTC,
	"ChgPkg":   KindChangePackage,
	"PlayMsg":  KindPlayMessage,
	"plPause":  KindPause,
	"plResume": KindResume,
	"adjPos":   KindAdjustPosition,
	"MsgDone":  KindMessageDone,
	"PwrDown":  KindPowerDown,
	"FWver":    KindFirmware,
	"Cntrs":    KindCounters,
	"BattCk":   KindCounters,
}

var kindNames = map[Kind]string{
	KindIgnored:        "ignored",
	KindReboot:         "reboot",
	KindRTC:            "rtc",
	KindSetRTC:         "set_rtc",
	KindChangePackage:  "change_package",
	KindPlayMessage:    "play_message",
	KindPause:          "pause",
	KindResume:         "resume",
	KindAdjustPosition: "adjust_position",
	KindMessageDone:    "message_done",
	KindPowerDown:      "power_down",
	KindFirmware:       "firmware",
	KindCounters:       "counters",
}

// KindForTag maps a record-type tag to its kind. Unknown tags are KindIgnored.
func KindForTag(tag string) Kind {
	if k, ok := kindByTag[tag]; ok {
		return k
	}
	return KindIgnored
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// AdjustsTime reports whether a record of this kind is evidence of elapsed
// real time and may advance the session's latest time.
func (k Kind) AdjustsTime() bool {
	switch k {
	case KindReboot, KindRTC, KindSetRTC, KindChangePackage, KindPlayMessage,
		KindPause, KindResume, KindAdjustPosition, KindMessageDone, KindPowerDown:
		return true
	default:
		return false
	}
}

// Record is a dispatched log line. Timestamp is nil while the session is
// awaiting time.
type Record struct {
	Line      LogLine
	Kind      Kind
	Params    Params
	Timestamp *time.Time
}

func (r Record) TimeLabel() string {
	if r.Timestamp != nil {
		return r.Timestamp.Format("2006-01-02T15:04:05.000")
	}
	return "+" + r.Line.ElapsedLabel()
}

type Status int

const (
	StatusProduced Status = iota
	StatusWarning
	StatusDropped
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

type Issue struct {
	Severity Severity
	Message  string
}

// Outcome is the result of processing one line.
type Outcome struct {
	Status Status
	Record Record
	Issues []Issue
}

func (o *Outcome) info(msg string) {
	o.Issues = append(o.Issues, Issue{Severity: SeverityInfo, Message: msg})
}

func (o *Outcome) warn(msg string) {
	o.Issues = append(o.Issues, Issue{Severity: SeverityWarning, Message: msg})
	o.Status = StatusWarning
}

func (o *Outcome) fail(msg string) {
	o.Issues = append(o.Issues, Issue{Severity: SeverityError, Message: msg})
	o.Status = StatusWarning
}

func (o Outcome) Errors() int {
	n := 0
	for _, issue := range o.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

func (o Outcome) Warnings() int {
	n := 0
	for _, issue := range o.Issues {
		if issue.Severity == SeverityWarning {
			n++
		}
	}
	return n
}
