package domain

import (
	"strconv"
	"time"
)

const SchemaVersion = 1

// PlayStatistic is one exported per-message aggregate.
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

var PlayStatisticsColumns = []string{
	"talkingbookid", "deployment", "contentpackage", "messageid", "plays", "completions",
	"threequarters", "half", "quarter", "tenseconds", "played_ms", "max_played_ms",
	"duration_ms", "pauses", "forward_ms", "backward_ms",
}

// SessionResult is everything produced for one collection bundle. Collected
// and Deployed are nil when the row was rejected or skipped.
type SessionResult struct {
	BundleDir   string
	ProcessedAt time.Time
	Collected   *Row
	Deployed    *Row
	Statistics  []PlayStatistic

	Files      []string
	Lines      int
	Records    int
	Errors     int
	Warnings   int
	Boots      int
	LatestTime *time.Time

	// Supplied reports which tables came from rows produced on the device.
	Supplied   map[string]bool
	Mismatches []Mismatch
	Problems   []string
}

func (r SessionResult) TalkingBookID() string {
	if r.Collected != nil {
		return r.Collected.Get("talkingbookid")
	}
	if r.Deployed != nil {
		return r.Deployed.Get("talkingbookid")
	}
	return ""
}

func (r SessionResult) CollectionID() string {
	if r.Collected != nil {
		return r.Collected.Get("collection_uuid")
	}
	return ""
}

// StatisticsRows renders the statistics in PlayStatisticsColumns order.
func (r SessionResult) StatisticsRows() [][]string {
	tb, deployment := r.TalkingBookID(), ""
	if r.Collected != nil {
		deployment = r.Collected.Get("deployment")
	}
	rows := make([][]string, 0, len(r.Statistics))
	for _, s := range r.Statistics {
		rows = append(rows, []string{
			tb, deployment, s.PackageName, s.MessageID,
			strconv.Itoa(s.Plays), strconv.Itoa(s.Completions), strconv.Itoa(s.ThreeQuarters),
			strconv.Itoa(s.Half), strconv.Itoa(s.Quarter), strconv.Itoa(s.TenSeconds),
			strconv.Itoa(s.PlayedMS), strconv.Itoa(s.MaxPlayedMS), strconv.Itoa(s.DurationMS),
			strconv.Itoa(s.Pauses), strconv.Itoa(s.ForwardMS), strconv.Itoa(s.BackwardMS),
		})
	}
	return rows
}

// CollectionSummary is the indexed view of a processed collection.
type CollectionSummary struct {
	CollectionID   string
	TalkingBookID  string
	Deployment     string
	ContentPackage string
	CollectedAt    string
	Messages       int
	Plays          int
	Errors         int
	ProcessedAt    string
}
