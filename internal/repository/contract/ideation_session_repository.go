package contract

import (
	"context"

	"ai-ideation-be/internal/entity"
	"ai-ideation-be/internal/repository/specification"

	"github.com/google/uuid"
)

type IdeationSessionRepository interface {
	Create(ctx context.Context, session *entity.IdeationSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IdeationSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IdeationSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// AdvanceProgress atomically moves the session to a new status/step.
	// The write is rejected (false, nil) when it would move progress_step
	// backwards or touch a completed session, so a slow stale step can
	// never overwrite an already-advanced run.
	AdvanceProgress(ctx context.Context, id uuid.UUID, status string, step int, message string) (bool, error)

	// MarkFailed terminates the run. Guarded the same way as AdvanceProgress.
	MarkFailed(ctx context.Context, id uuid.UUID, step int, errorMessage string) (bool, error)

	// ResetForRetry rewinds a failed session to pending/step 0 and clears
	// run artifacts. Returns false when the session is not in failed state.
	ResetForRetry(ctx context.Context, id uuid.UUID) (bool, error)

	UpdateStructuredProblem(ctx context.Context, id uuid.UUID, problem *entity.StructuredProblem) error
	UpdateConfidence(ctx context.Context, id uuid.UUID, confidence string) error
	UpdateGenerationMetadata(ctx context.Context, id uuid.UUID, metadata *entity.GenerationMetadata) error
}
