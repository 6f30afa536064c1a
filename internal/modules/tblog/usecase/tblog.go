package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/domain"
	"github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/dto"
	tblogin "github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/port/in"
	tblogout "github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/port/out"
	"github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/service"
	"github.com/LiteracyBridge/utilities-sub000/internal/platform/clock"
	apperrors "github.com/LiteracyBridge/utilities-sub000/internal/platform/errors"
)

type Interactor struct {
	reader   *service.ReaderService
	catalogs tblogout.CatalogLoader
	clock    clock.Clock
	logger   *slog.Logger
}

func NewInteractor(reader *service.ReaderService, catalogs tblogout.CatalogLoader, clk clock.Clock, logger *slog.Logger) tblogin.Usecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interactor{reader: reader, catalogs: catalogs, clock: clk, logger: logger}
}

// ProcessLogs reconstructs the timeline of one bundle and collects its play
// statistics. A missing catalog or log directory degrades the output instead
// of failing.
func (i *Interactor) ProcessLogs(ctx context.Context, input dto.ProcessLogsInput) (dto.ProcessLogsOutput, error) {
	if input.BundleDir == "" {
		return dto.ProcessLogsOutput{}, fmt.Errorf("bundle dir is required: %w", apperrors.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return dto.ProcessLogsOutput{}, err
	}
	out := dto.ProcessLogsOutput{}

	catalog, err := i.catalogs.Load(ctx, input.BundleDir, input.Deployment)
	if err != nil {
		i.logger.Warn("content catalog unavailable", "bundle", input.BundleDir, "error", err)
		out.Problems = append(out.Problems, fmt.Sprintf("catalog: %v", err))
	}
	if catalog != nil {
		out.Deployment = catalog.Name
	}

	stats := domain.NewAccumulator()
	engine := domain.NewEngine(catalog, stats, i.clock)
	sc := domain.NewSessionContext()

	var visit service.Visitor
	if input.WithTimeline {
		visit = func(file string, outcome domain.Outcome) {
			out.Timeline = append(out.Timeline, toTimelineEntry(file, outcome))
		}
	}
	summary, err := i.reader.Read(ctx, input.BundleDir, engine, sc, visit)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNoLogDirectory) {
			return dto.ProcessLogsOutput{}, err
		}
		i.logger.Warn("bundle has no logs", "bundle", input.BundleDir)
		out.Problems = append(out.Problems, err.Error())
	}

	out.Files = summary.Files
	out.Lines = summary.Lines
	out.Records = summary.Records
	out.Dropped = summary.Dropped
	out.Errors = summary.Errors
	out.Warnings = summary.Warnings
	out.Boots = sc.Boots
	out.LatestTime = sc.LatestTime
	out.ContentPackage = sc.PackageName
	out.Firmware = sc.Firmware
	for _, agg := range stats.Export() {
		out.Statistics = append(out.Statistics, toPlayStatistic(agg))
	}
	return out, nil
}

func toTimelineEntry(file string, outcome domain.Outcome) dto.TimelineEntry {
	rec := outcome.Record
	entry := dto.TimelineEntry{
		File:     file,
		Line:     rec.Line.Number,
		Time:     rec.TimeLabel(),
		Absolute: rec.Timestamp != nil,
		Kind:     rec.Kind.String(),
		Tag:      rec.Line.Tag,
		Params:   rec.Line.Params,
	}
	for _, issue := range outcome.Issues {
		entry.Issues = append(entry.Issues, issue.Message)
	}
	return entry
}

func toPlayStatistic(agg domain.Aggregate) dto.PlayStatistic {
	return dto.PlayStatistic{
		MessageID:     agg.MessageID,
		PackageName:   agg.PackageName,
		Plays:         agg.Plays,
		Completions:   agg.Completions,
		ThreeQuarters: agg.ThreeQuarters,
		Half:          agg.Half,
		Quarter:       agg.Quarter,
		TenSeconds:    agg.TenSeconds,
		PlayedMS:      agg.PlayedMS,
		MaxPlayedMS:   agg.MaxPlayedMS,
		DurationMS:    agg.DurationMS,
		Pauses:        agg.Pauses,
		ForwardMS:     agg.ForwardMS,
		BackwardMS:    agg.BackwardMS,
	}
}
