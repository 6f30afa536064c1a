package domain

import "time"

// PlayContext is the message currently playing and the absolute time it
// started. Holding both in one value keeps them set and cleared together.
type PlayContext struct {
	Message  Message
	Playlist string
	Started  time.Time
}

// SessionContext is the state carried across every record of one collection
// event. It is owned by a single worker and never shared between sessions.
type SessionContext struct {
	BaseDay      *time.Time
	LatestTime   *time.Time
	AwaitingTime bool
	// TimeOfDayRTC is set per boot from the boot record's format.
	TimeOfDayRTC bool

	CurrentPackage *Package
	// PackageName is the last package the device switched to, resolved or not.
	PackageName string
	Playing     *PlayContext

	BootKey  string
	Boots    int
	Firmware string
}

func NewSessionContext() *SessionContext {
	return &SessionContext{AwaitingTime: true}
}

// TimeEstablished reports whether records currently get absolute timestamps.
func (sc *SessionContext) TimeEstablished() bool {
	return !sc.AwaitingTime && sc.BaseDay != nil
}

func (sc *SessionContext) setBase(t time.Time) {
	sc.BaseDay = &t
	sc.AwaitingTime = false
}

func (sc *SessionContext) setLatest(t time.Time) {
	sc.LatestTime = &t
}
