package domain_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/domain"
	"github.com/LiteracyBridge/utilities-sub000/internal/platform/clock"
)

var now = clock.Fixed(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

type factRecorder struct {
	facts []domain.Fact
}

func (r *factRecorder) Record(fact domain.Fact) {
	r.facts = append(r.facts, fact)
}

func demoCatalog() *domain.Deployment {
	tutorial := domain.Playlist{Title: "tutorial"}
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("tut-%d", i)
		tutorial.Messages = append(tutorial.Messages, domain.Message{ID: id, FileName: "messages/" + id + ".a18"})
	}
	health := domain.Playlist{Title: "health", Messages: []domain.Message{
		{ID: "health-0", FileName: "messages/health-0.a18"},
		{ID: "health-1", FileName: "messages/health-1.a18"},
	}}
	return &domain.Deployment{
		Name: "DEMO-DL-1",
		Packages: []domain.Package{
			{Name: "DEMO-DL-1-en-c", Playlists: []domain.Playlist{tutorial, health}},
		},
	}
}

type session struct {
	t      *testing.T
	engine domain.Engine
	sc     *domain.SessionContext
	stats  *factRecorder
}

func newSession(t *testing.T) *session {
	t.Helper()
	stats := &factRecorder{}
	return &session{
		t:      t,
		engine: domain.NewEngine(demoCatalog(), stats, now),
		sc:     domain.NewSessionContext(),
		stats:  stats,
	}
}

func (s *session) apply(raw string) domain.Outcome {
	s.t.Helper()
	line, ok := domain.ParseLine(raw, 1)
	require.True(s.t, ok, "line must parse: %s", raw)
	out := s.engine.Apply(s.sc, line)
	assertPlayContextPaired(s.t, s.sc)
	return out
}

func assertPlayContextPaired(t *testing.T, sc *domain.SessionContext) {
	t.Helper()
	if sc.Playing == nil {
		return
	}
	assert.NotEmpty(t, sc.Playing.Message.ID, "playing message without id")
	assert.False(t, sc.Playing.Started.IsZero(), "playing message without start time")
}

var (
	scenarioBase = time.Date(2022, 1, 11, 13, 29, 32, 0, time.UTC)
	scenario     = []string{
		"0_00_00.2: REBOOT --------, BootKey: ' '",
		"0_00_00.3: RTC, Dt: 2022-01-11 (Tue), Tm: 13_29_32.2147483647",
		"0_00_01.1: ChgPkg, Pkg: 'DEMO-DL-1-en-c'",
		"0_00_01.6: PlayMsg, Subj: 'tutorial', iM: 11",
		"0_00_33.8: MsgDone, S:0, M:11, L_ms:32000, P_ms:32000, nPaus:0, Fwd_ms:0, Bk_ms:0",
	}
)

func TestScenarioRecordsOneFact(t *testing.T) {
	t.Parallel()
	s := newSession(t)

	out := s.apply(scenario[0])
	assert.True(t, s.sc.AwaitingTime)
	assert.Nil(t, out.Record.Timestamp)

	out = s.apply(scenario[1])
	require.Zero(t, out.Errors(), "issues: %+v", out.Issues)
	require.True(t, s.sc.TimeEstablished())
	assert.Equal(t, scenarioBase, *s.sc.BaseDay)

	out = s.apply(scenario[2])
	require.Zero(t, out.Errors())
	require.NotNil(t, s.sc.CurrentPackage)
	assert.Equal(t, "DEMO-DL-1-en-c", s.sc.CurrentPackage.Name)

	out = s.apply(scenario[3])
	require.Zero(t, out.Errors(), "issues: %+v", out.Issues)
	require.NotNil(t, s.sc.Playing)
	assert.Equal(t, "tut-11", s.sc.Playing.Message.ID)
	assert.Equal(t, scenarioBase.Add(1600*time.Millisecond), s.sc.Playing.Started)

	out = s.apply(scenario[4])
	require.Zero(t, out.Errors())
	assert.Nil(t, s.sc.Playing)
	require.Len(t, s.stats.facts, 1)
	fact := s.stats.facts[0]
	assert.Equal(t, "tut-11", fact.MessageID)
	assert.Equal(t, 32000, fact.DurationMS)
	assert.Equal(t, 32000, fact.PlayedMS)
	assert.Equal(t, "DEMO-DL-1-en-c", fact.PackageName)
	assert.Equal(t, "tutorial", fact.Playlist)
	assert.Equal(t, scenarioBase.Add(33800*time.Millisecond), *out.Record.Timestamp)
}

func TestRebootAlwaysAwaitsTime(t *testing.T) {
	t.Parallel()
	prefixes := map[string][]string{
		"initial":      nil,
		"mid-session":  scenario[:4],
		"after reboot": scenario[:1],
		"after a play": scenario,
	}
	for name, prefix := range prefixes {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s := newSession(t)
			for _, raw := range prefix {
				s.apply(raw)
			}
			out := s.apply("0_00_00.1: REBOOT --------, BootKey: ' '")
			assert.True(t, s.sc.AwaitingTime)
			assert.False(t, s.sc.TimeEstablished())
			assert.Nil(t, s.sc.Playing)
			assert.Nil(t, out.Record.Timestamp)
		})
	}
}

func TestImplausibleRTCLeavesTimeBaseAlone(t *testing.T) {
	t.Parallel()
	prefixes := map[string][]string{
		"initial":            nil,
		"awaiting":           scenario[:1],
		"established":        scenario[:4],
		"awaiting with date": append(append([]string{}, scenario[:4]...), "0_00_00.1: REBOOT"),
	}
	for name, prefix := range prefixes {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			for _, rtc := range []string{
				"0_00_02.0: RTC, 2019-05-01 10:00:00.000",
				"0_00_02.0: RTC, Dt: 2000-01-01 (Sat), Tm: 00_00_05.1",
			} {
				s := newSession(t)
				for _, raw := range prefix {
					s.apply(raw)
				}
				base, latest, awaiting := s.sc.BaseDay, s.sc.LatestTime, s.sc.AwaitingTime

				out := s.apply(rtc)
				assert.Equal(t, 1, out.Errors(), "issues: %+v", out.Issues)
				assert.Equal(t, base, s.sc.BaseDay)
				assert.Equal(t, latest, s.sc.LatestTime)
				assert.Equal(t, awaiting, s.sc.AwaitingTime)
			}
		})
	}
}

func TestMsgDoneWithoutPlayIsOneError(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	for _, raw := range scenario[:3] {
		s.apply(raw)
	}
	out := s.apply("0_00_10.0: MsgDone, L_ms:32000, P_ms:32000")
	assert.Equal(t, 1, out.Errors())
	assert.Empty(t, s.stats.facts)
	assert.Nil(t, s.sc.Playing)
}

type snapshot struct {
	base, latest time.Time
	awaiting     bool
	pkg          string
	playing      domain.PlayContext
	hasPlaying   bool
}

func snap(sc *domain.SessionContext) snapshot {
	out := snapshot{awaiting: sc.AwaitingTime, pkg: sc.PackageName}
	if sc.BaseDay != nil {
		out.base = *sc.BaseDay
	}
	if sc.LatestTime != nil {
		out.latest = *sc.LatestTime
	}
	if sc.Playing != nil {
		out.playing, out.hasPlaying = *sc.Playing, true
	}
	return out
}

func TestReplayingALineIsIdempotent(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	s.apply(scenario[0])
	for _, raw := range []string{
		scenario[1],
		scenario[2],
		scenario[3],
		"0_00_05.0: plPause",
		"0_00_07.0: plResume",
		"0_00_09.0: adjPos, sec: 5",
		"0_00_09.5: Cntrs, a: 1",
	} {
		first := s.apply(raw)
		before := snap(s.sc)
		second := s.apply(raw)
		require.NotNil(t, first.Record.Timestamp, raw)
		assert.Equal(t, *first.Record.Timestamp, *second.Record.Timestamp, raw)
		assert.Equal(t, before, snap(s.sc), raw)
	}
}

func TestRTCMovingBackwardsIsRejected(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	for _, raw := range scenario[:4] {
		s.apply(raw)
	}
	s.apply("0_00_00.1: REBOOT")
	latest := *s.sc.LatestTime

	out := s.apply("0_00_00.3: RTC, 2022-01-11 12:00:00.000")
	assert.Equal(t, 1, out.Errors())
	assert.True(t, s.sc.AwaitingTime)
	assert.Equal(t, latest, *s.sc.LatestTime)

	out = s.apply("0_00_05.0: PwrDown")
	assert.Nil(t, out.Record.Timestamp)
}

func TestRTCSlightlyBehindLatestTimeIsRejected(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	for _, raw := range scenario[:4] {
		s.apply(raw)
	}
	require.Equal(t, time.Date(2022, 1, 11, 13, 29, 33, 600*int(time.Millisecond), time.UTC), *s.sc.LatestTime)
	s.apply("0_00_00.1: REBOOT")
	base, latest := s.sc.BaseDay, *s.sc.LatestTime

	out := s.apply("0_00_00.3: RTC, 2022-01-11 13:29:32.600")
	assert.Equal(t, 1, out.Errors(), "issues: %+v", out.Issues)
	assert.True(t, s.sc.AwaitingTime)
	assert.Equal(t, base, s.sc.BaseDay)
	assert.Equal(t, latest, *s.sc.LatestTime)
}

func TestRTCEqualToLatestTimeIsAccepted(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	for _, raw := range scenario[:4] {
		s.apply(raw)
	}
	s.apply("0_00_00.1: REBOOT")

	out := s.apply("0_00_00.3: RTC, 2022-01-11 13:29:33.600")
	require.Zero(t, out.Errors(), "issues: %+v", out.Issues)
	assert.False(t, s.sc.AwaitingTime)
	assert.Equal(t, time.Date(2022, 1, 11, 13, 29, 33, 600*int(time.Millisecond), time.UTC), *s.sc.BaseDay)
}

func TestRTCDisagreementIsInformational(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	for _, raw := range scenario[:2] {
		s.apply(raw)
	}
	out := s.apply("0_00_02.0: RTC, 2022-01-11 13:29:44.000")
	assert.Equal(t, domain.StatusProduced, out.Status)
	require.Len(t, out.Issues, 1)
	assert.Equal(t, domain.SeverityInfo, out.Issues[0].Severity)
	assert.Equal(t, scenarioBase, *s.sc.BaseDay)
	assert.Equal(t, scenarioBase.Add(2*time.Second), *s.sc.LatestTime)
}

func TestTimeOfDayRTCUsesRememberedDate(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	for _, raw := range scenario[:4] {
		s.apply(raw)
	}
	s.apply("0_00_00.1: REBOOT --------, BootKeys: 'abc'")
	require.True(t, s.sc.TimeOfDayRTC)

	out := s.apply("0_00_00.2: RTC, Tm: 15_00_00.5")
	require.Zero(t, out.Errors(), "issues: %+v", out.Issues)
	assert.Equal(t, time.Date(2022, 1, 11, 15, 0, 0, 0, time.UTC), *s.sc.BaseDay)
	assert.Equal(t, time.Date(2022, 1, 11, 15, 0, 0, 200*int(time.Millisecond), time.UTC), *out.Record.Timestamp)
}

func TestTimeOfDayRTCWithoutDateIsAnError(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	s.apply("0_00_00.1: REBOOT --------, BootKeys: 'abc'")
	out := s.apply("0_00_00.2: RTC, Tm: 15_00_00.5")
	assert.Equal(t, 1, out.Errors())
	assert.True(t, s.sc.AwaitingTime)
}

func TestSetRTCEstablishesTime(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	s.apply("0_00_00.1: REBOOT")
	out := s.apply("0_00_00.5: setRTC, 2022-05-06 07:08")
	require.Zero(t, out.Errors())
	set := time.Date(2022, 5, 6, 7, 8, 0, 0, time.UTC)
	assert.Equal(t, set, *s.sc.BaseDay)
	assert.Equal(t, set.Add(500*time.Millisecond), *out.Record.Timestamp)
	assert.Equal(t, set.Add(500*time.Millisecond), *s.sc.LatestTime)
}

func TestUnparseableSetRTCFallsBackToLatestTime(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	for _, raw := range scenario[:4] {
		s.apply(raw)
	}
	latest := *s.sc.LatestTime
	s.apply("0_00_00.1: REBOOT")

	out := s.apply("0_00_00.4: resetRTC, sometime soon")
	assert.Equal(t, 1, out.Errors())
	assert.False(t, s.sc.AwaitingTime)
	assert.Equal(t, latest, *s.sc.BaseDay)
}

func TestUnparseableSetRTCKeepsEstablishedBase(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	for _, raw := range scenario[:4] {
		s.apply(raw)
	}
	base := *s.sc.BaseDay

	out := s.apply("0_00_02.0: setRTC, sometime soon")
	assert.Equal(t, 1, out.Errors())
	assert.False(t, s.sc.AwaitingTime)
	assert.Equal(t, base, *s.sc.BaseDay)
	require.NotNil(t, out.Record.Timestamp)
	assert.Equal(t, base.Add(2*time.Second), *out.Record.Timestamp)
}

func TestLargeTimeJumpWarns(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	for _, raw := range scenario[:2] {
		s.apply(raw)
	}
	latest := *s.sc.LatestTime
	out := s.apply("3_00_00.0: Cntrs, n: 4")
	assert.Equal(t, 1, out.Warnings())
	assert.Equal(t, domain.StatusWarning, out.Status)
	require.NotNil(t, out.Record.Timestamp)
	assert.Equal(t, latest, *s.sc.LatestTime, "counters do not advance time")
}

func TestUnknownTagIsIgnoredQuietly(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	for _, raw := range scenario[:2] {
		s.apply(raw)
	}
	latest := *s.sc.LatestTime
	out := s.apply("0_00_09.0: SomethingNew, a: b")
	assert.Equal(t, domain.KindIgnored, out.Record.Kind)
	assert.Equal(t, domain.StatusProduced, out.Status)
	assert.Empty(t, out.Issues)
	assert.NotNil(t, out.Record.Timestamp)
	assert.Equal(t, latest, *s.sc.LatestTime)
}

func TestUnknownPackageFallsBackToFileName(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	for _, raw := range scenario[:2] {
		s.apply(raw)
	}
	out := s.apply("0_00_01.0: ChgPkg, Pkg: 'NOPE'")
	assert.Equal(t, 1, out.Errors())
	assert.Nil(t, s.sc.CurrentPackage)

	out = s.apply("0_00_02.0: PlayMsg, Subj: 'tutorial', iM: 2, fn: 'messages/custom-7.a18'")
	assert.Zero(t, out.Errors())
	assert.Equal(t, 1, out.Warnings())
	require.NotNil(t, s.sc.Playing)
	assert.True(t, s.sc.Playing.Message.Placeholder)

	s.apply("0_00_04.0: MsgDone, L_ms:1000, P_ms:500")
	require.Len(t, s.stats.facts, 1)
	assert.Equal(t, "custom-7", s.stats.facts[0].MessageID)
	assert.Equal(t, "NOPE", s.stats.facts[0].PackageName)
}

func TestPlayWithoutKnownTimeHasNoContext(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	s.apply("0_00_00.1: REBOOT")
	s.apply("0_00_01.0: ChgPkg, Pkg: 'DEMO-DL-1-en-c'")
	out := s.apply("0_00_02.0: PlayMsg, iS: 1, iM: 0")
	assert.Equal(t, 1, out.Errors())
	assert.Nil(t, s.sc.Playing)

	out = s.apply("0_00_04.0: MsgDone, L:3, P:3")
	assert.Equal(t, 1, out.Errors())
	assert.Empty(t, s.stats.facts)
}

func TestMessageDoneSecondsAndPosition(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	for _, raw := range scenario[:3] {
		s.apply(raw)
	}
	s.apply("0_00_02.0: PlayMsg, iS: 1, iM: 1")
	require.NotNil(t, s.sc.Playing)
	assert.Equal(t, "health-1", s.sc.Playing.Message.ID)

	s.apply("0_00_06.0: adjPos, ms: 3000")
	assert.Equal(t, scenarioBase.Add(6*time.Second), s.sc.Playing.Started)

	s.apply("0_00_20.0: MsgDone, L:30, P:15, nPaus:2, Fwd:3, Bk:1")
	require.Len(t, s.stats.facts, 1)
	assert.Equal(t, domain.Fact{
		MessageID:   "health-1",
		PackageName: "DEMO-DL-1-en-c",
		Playlist:    "health",
		DurationMS:  30000,
		PlayedMS:    15000,
		Pauses:      2,
		ForwardMS:   3000,
		BackwardMS:  1000,
	}, s.stats.facts[0])
}

func TestFirmwareVersionIsRemembered(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	s.apply("0_00_00.1: FWver, Ver: r2210")
	assert.Equal(t, "r2210", s.sc.Firmware)
	s.apply("0_00_00.2: FWver r2300")
	assert.Equal(t, "r2300", s.sc.Firmware)
}

func TestApplyRawDropsUnparseableLines(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	for _, raw := range scenario[:4] {
		s.apply(raw)
	}
	before := *s.sc

	for _, raw := range []string{"this is not a log line", "0_00_01.25: PlayMsg, iM: 1", "0_00_01.2: "} {
		out := s.engine.ApplyRaw(s.sc, raw, 7)
		assert.Equal(t, domain.StatusDropped, out.Status, "line %q", raw)
		assert.Empty(t, out.Issues)
		assert.Nil(t, out.Record.Timestamp)
		assert.Equal(t, 7, out.Record.Line.Number)
	}
	assert.Equal(t, before, *s.sc)

	out := s.engine.ApplyRaw(s.sc, scenario[4], 8)
	assert.Equal(t, domain.StatusProduced, out.Status)
	assert.Equal(t, domain.KindMessageDone, out.Record.Kind)
}
