package out

import (
	"context"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/domain"
)

type CatalogLoader interface {
	// Load reads the content catalog of a bundle. deployment may be empty.
	Load(ctx context.Context, bundleDir, deployment string) (*domain.Deployment, error)
}

type LogFileStore interface {
	// List returns the log files of a bundle in processing order.
	List(ctx context.Context, bundleDir string) ([]string, error)
	ReadLines(ctx context.Context, path string, fn func(line string)) error
}
