package service

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/domain"
	tblogout "github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/port/out"
)

// ReadSummary accumulates counts across every file of one session.
type ReadSummary struct {
	Files    []string
	Lines    int
	Records  int
	Dropped  int
	Errors   int
	Warnings int
}

// Visitor observes every dispatched record in processing order.
type Visitor func(file string, outcome domain.Outcome)

// ReaderService feeds the numbered log files of a bundle, in order, through
// one engine and one session context.
type ReaderService struct {
	files   tblogout.LogFileStore
	logger  *slog.Logger
	verbose bool
}

func NewReaderService(files tblogout.LogFileStore, logger *slog.Logger, verbose bool) *ReaderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReaderService{files: files, logger: logger, verbose: verbose}
}

func (s *ReaderService) Read(ctx context.Context, bundleDir string, engine domain.Engine, sc *domain.SessionContext, visit Visitor) (ReadSummary, error) {
	paths, err := s.files.List(ctx, bundleDir)
	if err != nil {
		return ReadSummary{}, err
	}
	summary := ReadSummary{Files: make([]string, 0, len(paths))}
	for _, path := range paths {
		name := filepath.Base(path)
		summary.Files = append(summary.Files, name)
		lineNo := 0
		err := s.files.ReadLines(ctx, path, func(raw string) {
			lineNo++
			summary.Lines++
			outcome := engine.ApplyRaw(sc, raw, lineNo)
			if outcome.Status == domain.StatusDropped {
				summary.Dropped++
				return
			}
			summary.Records++
			summary.Errors += outcome.Errors()
			summary.Warnings += outcome.Warnings()
			s.report(name, outcome)
			if visit != nil {
				visit(name, outcome)
			}
		})
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (s *ReaderService) report(file string, outcome domain.Outcome) {
	if !s.verbose {
		return
	}
	for _, issue := range outcome.Issues {
		attrs := []any{
			"file", file,
			"line", outcome.Record.Line.Number,
			"kind", outcome.Record.Kind.String(),
			"at", outcome.Record.TimeLabel(),
		}
		switch issue.Severity {
		case domain.SeverityError:
			s.logger.Error(issue.Message, attrs...)
		case domain.SeverityWarning:
			s.logger.Warn(issue.Message, attrs...)
		default:
			s.logger.Info(issue.Message, attrs...)
		}
	}
}
