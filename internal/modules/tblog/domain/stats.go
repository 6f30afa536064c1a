package domain

import "sort"

// Fact is what a single MsgDone record contributes to play statistics.
type Fact struct {
	MessageID   string
	PackageName string
	Playlist    string
	DurationMS  int
	PlayedMS    int
	Pauses      int
	ForwardMS   int
	BackwardMS  int
}

// StatsSink receives completed-message facts.
type StatsSink interface {
	Record(fact Fact)
}

// Aggregate summarizes every fact recorded for one message of one package.
type Aggregate struct {
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

type aggregateKey struct {
	packageName string
	messageID   string
}

// Accumulator is the in-memory StatsSink used for one session. Plays of the
// same message id in different packages are kept apart.
type Accumulator struct {
	byMessage map[aggregateKey]*Aggregate
}

func NewAccumulator() *Accumulator {
	return &Accumulator{byMessage: map[aggregateKey]*Aggregate{}}
}

func (a *Accumulator) Record(fact Fact) {
	key := aggregateKey{packageName: fact.PackageName, messageID: fact.MessageID}
	agg, ok := a.byMessage[key]
	if !ok {
		agg = &Aggregate{MessageID: fact.MessageID, PackageName: fact.PackageName}
		a.byMessage[key] = agg
	}
	agg.Plays++
	agg.PlayedMS += fact.PlayedMS
	if fact.PlayedMS > agg.MaxPlayedMS {
		agg.MaxPlayedMS = fact.PlayedMS
	}
	if fact.DurationMS > agg.DurationMS {
		agg.DurationMS = fact.DurationMS
	}
	agg.Pauses += fact.Pauses
	agg.ForwardMS += fact.ForwardMS
	agg.BackwardMS += fact.BackwardMS
	if fact.PlayedMS >= 10_000 {
		agg.TenSeconds++
	}
	if fact.DurationMS <= 0 {
		return
	}
	played, length := int64(fact.PlayedMS), int64(fact.DurationMS)
	switch {
	case played >= length:
		agg.Completions++
		fallthrough
	case played*4 >= length*3:
		agg.ThreeQuarters++
		fallthrough
	case played*2 >= length:
		agg.Half++
		fallthrough
	case played*4 >= length:
		agg.Quarter++
	}
}

// Export returns the aggregates ordered by package, then message id.
func (a *Accumulator) Export() []Aggregate {
	out := make([]Aggregate, 0, len(a.byMessage))
	for _, agg := range a.byMessage {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PackageName != out[j].PackageName {
			return out[i].PackageName < out[j].PackageName
		}
		return out[i].MessageID < out[j].MessageID
	})
	return out
}

func (a *Accumulator) Len() int {
	return len(a.byMessage)
}
