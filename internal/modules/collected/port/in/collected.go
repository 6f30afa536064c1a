package in

import (
	"context"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/dto"
)

type Usecase interface {
	ProcessBundle(ctx context.Context, input dto.ProcessBundleInput) (dto.BundleOutput, error)
	ProcessBundles(ctx context.Context, input dto.ProcessBundlesInput) (dto.BatchOutput, error)
	ListCollections(ctx context.Context) ([]dto.CollectionOutput, error)
}
