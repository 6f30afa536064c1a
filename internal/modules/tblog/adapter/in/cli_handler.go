package in

import (
	"context"

	tblogdto "github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/dto"
	tblogin "github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/port/in"
)

type CLIHandler struct {
	usecase tblogin.Usecase
}

func NewCLIHandler(usecase tblogin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Timeline(ctx context.Context, bundleDir string) (tblogdto.ProcessLogsOutput, error) {
	return h.usecase.ProcessLogs(ctx, tblogdto.ProcessLogsInput{BundleDir: bundleDir, WithTimeline: true})
}
