package dto

import "time"

type ProcessLogsInput struct {
	BundleDir string
	// Deployment names the catalog the bundle is expected to carry, letting a
	// cached catalog be reused.
	Deployment   string
	WithTimeline bool
}

type TimelineEntry struct {
	File     string
	Line     int
	Time     string
	Absolute bool
	Kind     string
	Tag      string
	Params   string
	Issues   []string
}

type PlayStatistic struct {
	MessageID     string
	PackageName   string
	Plays         int
	Completions   int
	ThreeQuarters int
	Half          int
	Quarter       int
	TenSeconds    int
	PlayedMS      int
	MaxPlayedMS   int
	DurationMS    int
	Pauses        int
	ForwardMS     int
	BackwardMS    int
}

type ProcessLogsOutput struct {
	Deployment     string
	Files          []string
	Lines          int
	Records        int
	Dropped        int
	Errors         int
	Warnings       int
	Boots          int
	LatestTime     *time.Time
	ContentPackage string
	Firmware       string
	Statistics     []PlayStatistic
	Timeline       []TimelineEntry
	// Problems lists bundle-level degradations such as a missing catalog.
	Problems []string
}
