package in

import (
	"context"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/dto"
)

type Usecase interface {
	ProcessLogs(ctx context.Context, input dto.ProcessLogsInput) (dto.ProcessLogsOutput, error)
}
