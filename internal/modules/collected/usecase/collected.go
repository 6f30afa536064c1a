package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/domain"
	"github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/dto"
	collectedin "github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/port/in"
	collectedout "github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/port/out"
	"github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/service"
	tblogdto "github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/dto"
	tblogin "github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/port/in"
	"github.com/LiteracyBridge/utilities-sub000/internal/platform/clock"
	apperrors "github.com/LiteracyBridge/utilities-sub000/internal/platform/errors"
)

const defaultWorkers = 4

type Dependencies struct {
	Logs       tblogin.Usecase
	Properties collectedout.PropertiesStore
	Operations collectedout.OperationalDataStore
	Processor  *service.ProcessorService
	Sinks      []collectedout.ResultSink
	Index      collectedout.CollectionIndex
	Metrics    collectedout.Metrics
	Clock      clock.Clock
	Workers    int
	Logger     *slog.Logger
}

type Interactor struct {
	logs       tblogin.Usecase
	properties collectedout.PropertiesStore
	operations collectedout.OperationalDataStore
	processor  *service.ProcessorService
	sinks      []collectedout.ResultSink
	index      collectedout.CollectionIndex
	metrics    collectedout.Metrics
	clock      clock.Clock
	workers    int
	logger     *slog.Logger
}

func NewInteractor(deps Dependencies) collectedin.Usecase {
	if deps.Clock == nil {
		deps.Clock = clock.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Workers <= 0 {
		deps.Workers = defaultWorkers
	}
	return &Interactor{
		logs:       deps.Logs,
		properties: deps.Properties,
		operations: deps.Operations,
		processor:  deps.Processor,
		sinks:      deps.Sinks,
		index:      deps.Index,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
		workers:    deps.Workers,
		logger:     deps.Logger,
	}
}

// ProcessBundle runs one unpacked collection bundle through the log engine,
// derives its output rows and hands the result to every sink. A missing
// or malformed properties file and a missing tbData log degrade the rows;
// sink failures are errors.
func (i *Interactor) ProcessBundle(ctx context.Context, input dto.ProcessBundleInput) (dto.BundleOutput, error) {
	if input.BundleDir == "" {
		return dto.BundleOutput{}, fmt.Errorf("bundle dir is required: %w", apperrors.ErrInvalidInput)
	}
	result, err := i.process(ctx, input.BundleDir)
	if err != nil {
		return dto.BundleOutput{}, err
	}
	for _, sink := range i.sinks {
		if err := sink.Save(ctx, result); err != nil {
			return dto.BundleOutput{}, fmt.Errorf("save %s: %w", input.BundleDir, err)
		}
	}
	if i.metrics != nil {
		i.metrics.ObserveSession(result)
	}
	i.logger.Info("bundle processed",
		"bundle", input.BundleDir,
		"talkingbook", result.TalkingBookID(),
		"messages", len(result.Statistics),
		"errors", result.Errors,
		"warnings", result.Warnings)
	return toBundleOutput(result), nil
}

func (i *Interactor) process(ctx context.Context, bundleDir string) (domain.SessionResult, error) {
	var problems []string

	props, err := i.properties.Load(ctx, bundleDir)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrPropertiesFormat) {
			return domain.SessionResult{}, err
		}
		i.logger.Warn("session properties unusable", "bundle", bundleDir, "error", err)
		problems = append(problems, err.Error())
		props = domain.Properties{}
	}

	record, found, err := i.operations.LatestOperation(ctx, bundleDir)
	if err != nil {
		return domain.SessionResult{}, err
	}
	if !found {
		record = nil
	}

	logs, err := i.logs.ProcessLogs(ctx, tblogdto.ProcessLogsInput{
		BundleDir:  bundleDir,
		Deployment: props.Lookup("deployment"),
	})
	if err != nil {
		return domain.SessionResult{}, err
	}
	problems = append(problems, logs.Problems...)

	rowsInput := service.RowsInput{
		BundleName: filepath.Base(filepath.Clean(bundleDir)),
		Sources: domain.Sources{
			TBData:     record,
			Properties: props,
			Recomputed: domain.Recomputed{ContentPackage: logs.ContentPackage, Firmware: logs.Firmware},
		},
	}
	if rowsInput.SuppliedCollected, err = i.supplied(ctx, bundleDir, domain.CollectedTable); err != nil {
		return domain.SessionResult{}, err
	}
	if rowsInput.SuppliedDeployed, err = i.supplied(ctx, bundleDir, domain.DeployedTable); err != nil {
		return domain.SessionResult{}, err
	}
	rows := i.processor.BuildRows(rowsInput)
	problems = append(problems, rows.Problems...)
	if rows.Collected == nil {
		i.logger.Warn("collection row omitted", "bundle", bundleDir, "error", apperrors.ErrNoTalkingBookID)
	}

	result := domain.SessionResult{
		BundleDir:   bundleDir,
		ProcessedAt: i.clock.Now(),
		Collected:   rows.Collected,
		Deployed:    rows.Deployed,
		Files:       logs.Files,
		Lines:       logs.Lines,
		Records:     logs.Records,
		Errors:      logs.Errors,
		Warnings:    logs.Warnings,
		Boots:       logs.Boots,
		LatestTime:  logs.LatestTime,
		Supplied:    rows.Supplied,
		Mismatches:  rows.Mismatches,
		Problems:    problems,
	}
	for _, s := range logs.Statistics {
		result.Statistics = append(result.Statistics, domain.PlayStatistic(s))
	}
	return result, nil
}

func (i *Interactor) supplied(ctx context.Context, bundleDir string, table domain.Table) (*domain.Row, error) {
	row, ok, err := i.operations.SuppliedRow(ctx, bundleDir, table)
	if err != nil {
		return nil, fmt.Errorf("supplied %s: %w", table.Name, err)
	}
	if !ok {
		return nil, nil
	}
	return &row, nil
}

// ProcessBundles processes bundles concurrently. Each worker owns its bundle
// end to end; one failing bundle is recorded and never cancels the others.
func (i *Interactor) ProcessBundles(ctx context.Context, input dto.ProcessBundlesInput) (dto.BatchOutput, error) {
	type slot struct {
		out dto.BundleOutput
		err error
	}
	slots := make([]slot, len(input.BundleDirs))

	var g errgroup.Group
	g.SetLimit(i.workers)
	for idx, dir := range input.BundleDirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				slots[idx].err = err
				return nil
			}
			out, err := i.ProcessBundle(ctx, dto.ProcessBundleInput{BundleDir: dir})
			slots[idx] = slot{out: out, err: err}
			return nil
		})
	}
	_ = g.Wait()

	batch := dto.BatchOutput{}
	for idx, s := range slots {
		if s.err != nil {
			i.logger.Error("bundle failed", "bundle", input.BundleDirs[idx], "error", s.err)
			if i.metrics != nil {
				i.metrics.ObserveFailure()
			}
			batch.Failures = append(batch.Failures, dto.BundleFailure{BundleDir: input.BundleDirs[idx], Error: s.err.Error()})
			continue
		}
		batch.Bundles = append(batch.Bundles, s.out)
	}
	if i.metrics != nil {
		if err := i.metrics.Flush(); err != nil {
			return batch, fmt.Errorf("flush metrics: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return batch, err
	}
	return batch, nil
}

func (i *Interactor) ListCollections(ctx context.Context) ([]dto.CollectionOutput, error) {
	if i.index == nil {
		return nil, fmt.Errorf("no collection index configured: %w", apperrors.ErrNotFound)
	}
	summaries, err := i.index.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CollectionOutput, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, dto.CollectionOutput(s))
	}
	return out, nil
}

func toBundleOutput(result domain.SessionResult) dto.BundleOutput {
	out := dto.BundleOutput{
		BundleDir:     result.BundleDir,
		TalkingBookID: result.TalkingBookID(),
		CollectionID:  result.CollectionID(),
		Messages:      len(result.Statistics),
		Files:         len(result.Files),
		Records:       result.Records,
		Errors:        result.Errors,
		Warnings:      result.Warnings,
		Boots:         result.Boots,
		Problems:      result.Problems,
	}
	if result.Collected != nil {
		out.Collected = result.Collected.Map()
	}
	if result.Deployed != nil {
		out.Deployed = result.Deployed.Map()
	}
	for _, s := range result.Statistics {
		out.Plays += s.Plays
	}
	if result.LatestTime != nil {
		out.LatestTime = result.LatestTime.Format(time.RFC3339)
	}
	for table, ok := range result.Supplied {
		if ok {
			out.Supplied = append(out.Supplied, table)
		}
	}
	sort.Strings(out.Supplied)
	for _, m := range result.Mismatches {
		out.Mismatches = append(out.Mismatches, fmt.Sprintf("%s.%s: supplied %q, recomputed %q", m.Table, m.Column, m.Supplied, m.Recomputed))
	}
	return out
}
