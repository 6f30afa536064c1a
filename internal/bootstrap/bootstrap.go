package bootstrap

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"

	collectedinadapter "github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/adapter/in"
	collectedoutadapter "github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/adapter/out"
	collectedout "github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/port/out"
	collectedservice "github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/service"
	collectedusecase "github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/usecase"
	tbloginadapter "github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/adapter/in"
	tblogoutadapter "github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/adapter/out"
	tblogservice "github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/service"
	tblogusecase "github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/usecase"
	"github.com/LiteracyBridge/utilities-sub000/internal/platform/clock"
	"github.com/LiteracyBridge/utilities-sub000/internal/platform/config"
	"github.com/LiteracyBridge/utilities-sub000/internal/platform/id"
	uiapp "github.com/LiteracyBridge/utilities-sub000/internal/ui/app"
)

type App struct {
	LogsCLI      tbloginadapter.CLIHandler
	CollectedCLI collectedinadapter.CLIHandler

	dbPath     string
	projection *collectedoutadapter.SQLiteProjector
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	clk := clock.SystemClock{}
	ids := id.NameBased{}

	catalogs := tblogoutadapter.NewCachedCatalogLoader(tblogoutadapter.NewPackagesDataLoader(), cfg.CatalogCacheTTL)
	reader := tblogservice.NewReaderService(tblogoutadapter.NewLocalLogFileStore(), logger, cfg.Verbose)
	logsUC := tblogusecase.NewInteractor(reader, catalogs, clk, logger)

	projection, err := collectedoutadapter.NewSQLiteProjector(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new collection projection: %w", err)
	}
	metrics, err := collectedoutadapter.NewTextfileMetrics(prometheus.NewRegistry(), cfg.MetricsFile)
	if err != nil {
		projection.Close()
		return nil, err
	}

	collectedUC := collectedusecase.NewInteractor(collectedusecase.Dependencies{
		Logs:       logsUC,
		Properties: collectedoutadapter.NewFilePropertiesStore(),
		Operations: collectedoutadapter.NewBundleOperationalStore(),
		Processor:  collectedservice.NewProcessorService(ids, logger),
		Sinks: []collectedout.ResultSink{
			collectedoutadapter.NewCSVDirectorySink(cfg.OutputDir),
			collectedoutadapter.NewMarkdownReportStore(cfg.ReportDir),
			projection,
		},
		Index:   projection,
		Metrics: metrics,
		Clock:   clk,
		Workers: cfg.Workers,
		Logger:  logger,
	})

	return &App{
		LogsCLI:      tbloginadapter.NewCLIHandler(logsUC),
		CollectedCLI: collectedinadapter.NewCLIHandler(collectedUC),
		dbPath:       cfg.DBPath,
		projection:   projection,
	}, nil
}

func (a *App) Close() error {
	return a.projection.Close()
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.dbPath, app.CollectedCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
