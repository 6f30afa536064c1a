package in

import (
	"context"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/dto"
	collectedin "github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/port/in"
)

type CLIHandler struct {
	usecase collectedin.Usecase
}

func NewCLIHandler(usecase collectedin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Process(ctx context.Context, bundleDirs []string) (dto.BatchOutput, error) {
	return h.usecase.ProcessBundles(ctx, dto.ProcessBundlesInput{BundleDirs: bundleDirs})
}

func (h CLIHandler) ListCollections(ctx context.Context) ([]dto.CollectionOutput, error) {
	return h.usecase.ListCollections(ctx)
}
