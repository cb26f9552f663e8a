package contract

import (
	"context"

	"ai-ideation-be/internal/entity"
	"ai-ideation-be/internal/repository/specification"

	"github.com/google/uuid"
)

type IdeaRepository interface {
	CreateBulk(ctx context.Context, ideas []*entity.Idea) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Idea, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Idea, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// Per-step mutations. Each write is keyed by idea id so results from
	// concurrent workers cannot be cross-assigned.
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
	AssignCluster(ctx context.Context, id uuid.UUID, clusterNumber int) error
	UpdateEnrichment(ctx context.Context, id uuid.UUID, useCases, edgeCases, implementationNotes []string) error
	UpdateScores(ctx context.Context, id uuid.UUID, scores entity.CriterionScores) error
	MarkDuplicate(ctx context.Context, id uuid.UUID, duplicateOfId uuid.UUID) error
	MarkFinal(ctx context.Context, id uuid.UUID) error

	// UpdateContent is the narrow user override for title/description.
	UpdateContent(ctx context.Context, id uuid.UUID, title, description string) error
}
