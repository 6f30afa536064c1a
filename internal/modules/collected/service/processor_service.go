package service

import (
	"fmt"
	"log/slog"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/domain"
	"github.com/LiteracyBridge/utilities-sub000/internal/platform/id"
)

type RowsInput struct {
	// BundleName is the base name of the bundle directory; it is one of the
	// inputs of derived row identities.
	BundleName        string
	Sources           domain.Sources
	SuppliedCollected *domain.Row
	SuppliedDeployed  *domain.Row
}

type Rows struct {
	Collected  *domain.Row
	Deployed   *domain.Row
	Supplied   map[string]bool
	Mismatches []domain.Mismatch
	Problems   []string
}

// ProcessorService derives the canonical output rows of a collection event.
type ProcessorService struct {
	idGen  id.Generator
	logger *slog.Logger
}

func NewProcessorService(idGen id.Generator, logger *slog.Logger) *ProcessorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessorService{idGen: idGen, logger: logger}
}

func (s *ProcessorService) BuildRows(input RowsInput) Rows {
	rows := Rows{Supplied: map[string]bool{}}

	collected := s.reconcile(domain.BuildCollected(input.Sources), input.SuppliedCollected, &rows)
	if collected.Get("talkingbookid") == "" {
		rows.Problems = append(rows.Problems, "collection row omitted: no talking book id")
	} else {
		collected.Fill(domain.CollectedTable.IdentityColumn, s.identity(collected, "collectedtimestamp", input.BundleName))
		rows.Collected = &collected
	}

	deployed := s.reconcile(domain.BuildDeployed(input.Sources), input.SuppliedDeployed, &rows)
	action := deployed.Get("action")
	if action == "" {
		action = collected.Get("action")
	}
	switch {
	case domain.IsStatsOnly(action):
		delete(rows.Supplied, domain.DeployedTable.Name)
	case deployed.Get("talkingbookid") == "":
		rows.Problems = append(rows.Problems, "deployment row omitted: no talking book id")
	default:
		deployed.Fill(domain.DeployedTable.IdentityColumn, s.identity(deployed, "deployedtimestamp", input.BundleName))
		rows.Deployed = &deployed
	}
	return rows
}

func (s *ProcessorService) identity(row domain.Row, timestampColumn, bundleName string) string {
	return s.idGen.New(row.Table().Name, row.Get("talkingbookid"), row.Get(timestampColumn), bundleName)
}

// reconcile prefers a row supplied by the device over the recomputed one and
// records any disagreement between the two.
func (s *ProcessorService) reconcile(recomputed domain.Row, supplied *domain.Row, rows *Rows) domain.Row {
	if supplied == nil {
		return recomputed
	}
	table := recomputed.Table()
	preferred := supplied.Normalize()
	if mismatches := domain.Compare(preferred, recomputed); len(mismatches) > 0 {
		for _, m := range mismatches {
			s.logger.Warn("supplied row differs from recomputed row",
				"table", m.Table, "column", m.Column, "supplied", m.Supplied, "recomputed", m.Recomputed)
		}
		rows.Mismatches = append(rows.Mismatches, mismatches...)
		rows.Problems = append(rows.Problems, fmt.Sprintf("%s: %d column(s) differ from recomputed values", table.Name, len(mismatches)))
	}
	preferred.Fill(table.IdentityColumn, recomputed.Get(table.IdentityColumn))
	rows.Supplied[table.Name] = true
	return preferred
}
