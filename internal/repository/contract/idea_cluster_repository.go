package contract

import (
	"context"

	"ai-ideation-be/internal/entity"
	"ai-ideation-be/internal/repository/specification"

	"github.com/google/uuid"
)

type IdeaClusterRepository interface {
	CreateBulk(ctx context.Context, clusters []*entity.IdeaCluster) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IdeaCluster, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
