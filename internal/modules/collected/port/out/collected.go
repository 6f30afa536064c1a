package out

import (
	"context"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/domain"
)

type PropertiesStore interface {
	Load(ctx context.Context, bundleDir string) (domain.Properties, error)
}

type OperationalDataStore interface {
	// LatestOperation returns the newest tbData record of the bundle, if any.
	LatestOperation(ctx context.Context, bundleDir string) (domain.OperationalRecord, bool, error)
	// SuppliedRow returns a row the device already produced for table, if any.
	SuppliedRow(ctx context.Context, bundleDir string, table domain.Table) (domain.Row, bool, error)
}

type ResultSink interface {
	Save(ctx context.Context, result domain.SessionResult) error
}

type CollectionIndex interface {
	ResultSink
	List(ctx context.Context) ([]domain.CollectionSummary, error)
}

type Metrics interface {
	ObserveSession(result domain.SessionResult)
	ObserveFailure()
	Flush() error
}
