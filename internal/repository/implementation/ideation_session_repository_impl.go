package implementation

import (
	"context"
	"errors"

	"ai-ideation-be/internal/constant"
	"ai-ideation-be/internal/entity"
	"ai-ideation-be/internal/mapper"
	"ai-ideation-be/internal/model"
	"ai-ideation-be/internal/repository/contract"
	"ai-ideation-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IdeationSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.IdeationSessionMapper
}

func NewIdeationSessionRepository(db *gorm.DB) contract.IdeationSessionRepository {
	return &IdeationSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewIdeationSessionMapper(),
	}
}

func (r *IdeationSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *IdeationSessionRepositoryImpl) Create(ctx context.Context, session *entity.IdeationSession) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *IdeationSessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.IdeationSession{}, id).Error
}

func (r *IdeationSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IdeationSession, error) {
	var m model.IdeationSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *IdeationSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IdeationSession, error) {
	var models []*model.IdeationSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *IdeationSessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.IdeationSession{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *IdeationSessionRepositoryImpl) AdvanceProgress(ctx context.Context, id uuid.UUID, status string, step int, message string) (bool, error) {
	// progress_step guard: last-writer-wins is unsafe when a stale step
	// finishes after the run has already advanced past it.
	res := r.db.WithContext(ctx).Model(&model.IdeationSession{}).
		Where("id = ? AND progress_step <= ? AND status <> ?", id, step, constant.StatusCompleted).
		Updates(map[string]interface{}{
			"status":           status,
			"progress_step":    step,
			"progress_message": message,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *IdeationSessionRepositoryImpl) MarkFailed(ctx context.Context, id uuid.UUID, step int, errorMessage string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.IdeationSession{}).
		Where("id = ? AND progress_step <= ? AND status NOT IN ?", id, step,
			[]string{constant.StatusCompleted, constant.StatusFailed}).
		Updates(map[string]interface{}{
			"status":        constant.StatusFailed,
			"error_message": errorMessage,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *IdeationSessionRepositoryImpl) ResetForRetry(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.IdeationSession{}).
		Where("id = ? AND status = ?", id, constant.StatusFailed).
		Updates(map[string]interface{}{
			"status":              constant.StatusPending,
			"progress_step":       constant.StepPending,
			"progress_message":    "",
			"confidence":          constant.ConfidenceHigh,
			"error_message":       "",
			"structured_problem":  nil,
			"generation_metadata": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *IdeationSessionRepositoryImpl) UpdateStructuredProblem(ctx context.Context, id uuid.UUID, problem *entity.StructuredProblem) error {
	helper := entity.IdeationSession{StructuredProblem: problem}
	m := r.mapper.ToModel(&helper)
	return r.db.WithContext(ctx).Model(&model.IdeationSession{}).
		Where("id = ?", id).
		Update("structured_problem", m.StructuredProblem).Error
}

func (r *IdeationSessionRepositoryImpl) UpdateConfidence(ctx context.Context, id uuid.UUID, confidence string) error {
	return r.db.WithContext(ctx).Model(&model.IdeationSession{}).
		Where("id = ?", id).
		Update("confidence", confidence).Error
}

func (r *IdeationSessionRepositoryImpl) UpdateGenerationMetadata(ctx context.Context, id uuid.UUID, metadata *entity.GenerationMetadata) error {
	helper := entity.IdeationSession{GenerationMetadata: metadata}
	m := r.mapper.ToModel(&helper)
	return r.db.WithContext(ctx).Model(&model.IdeationSession{}).
		Where("id = ?", id).
		Update("generation_metadata", m.GenerationMetadata).Error
}
