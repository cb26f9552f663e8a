package implementation

import (
	"context"
	"errors"

	"ai-ideation-be/internal/entity"
	"ai-ideation-be/internal/mapper"
	"ai-ideation-be/internal/model"
	"ai-ideation-be/internal/repository/contract"
	"ai-ideation-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type IdeaRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.IdeaMapper
}

func NewIdeaRepository(db *gorm.DB) contract.IdeaRepository {
	return &IdeaRepositoryImpl{
		db:     db,
		mapper: mapper.NewIdeaMapper(),
	}
}

func (r *IdeaRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *IdeaRepositoryImpl) CreateBulk(ctx context.Context, ideas []*entity.Idea) error {
	if len(ideas) == 0 {
		return nil
	}
	models := r.mapper.ToModels(ideas)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*ideas[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *IdeaRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("session_id = ?", sessionId).
		Delete(&model.Idea{}).Error
}

func (r *IdeaRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Idea, error) {
	var m model.Idea
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *IdeaRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Idea, error) {
	var models []*model.Idea
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *IdeaRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Idea{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *IdeaRepositoryImpl) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	v := pgvector.NewVector(embedding)
	return r.db.WithContext(ctx).Model(&model.Idea{}).
		Where("id = ?", id).
		Update("embedding", &v).Error
}

func (r *IdeaRepositoryImpl) AssignCluster(ctx context.Context, id uuid.UUID, clusterNumber int) error {
	return r.db.WithContext(ctx).Model(&model.Idea{}).
		Where("id = ?", id).
		Update("cluster_number", clusterNumber).Error
}

func (r *IdeaRepositoryImpl) UpdateEnrichment(ctx context.Context, id uuid.UUID, useCases, edgeCases, implementationNotes []string) error {
	helper := entity.Idea{
		UseCases:            useCases,
		EdgeCases:           edgeCases,
		ImplementationNotes: implementationNotes,
	}
	m := r.mapper.ToModel(&helper)
	return r.db.WithContext(ctx).Model(&model.Idea{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"use_cases":            m.UseCases,
			"edge_cases":           m.EdgeCases,
			"implementation_notes": m.ImplementationNotes,
		}).Error
}

func (r *IdeaRepositoryImpl) UpdateScores(ctx context.Context, id uuid.UUID, scores entity.CriterionScores) error {
	helper := entity.Idea{ScoreRationale: scores.Rationale}
	m := r.mapper.ToModel(&helper)
	return r.db.WithContext(ctx).Model(&model.Idea{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"impact_score":        scores.Impact,
			"feasibility_score":   scores.Feasibility,
			"effort_score":        scores.Effort,
			"strategic_fit_score": scores.StrategicFit,
			"risk_score":          scores.Risk,
			"score_rationale":     m.ScoreRationale,
			"composite_score":     scores.Composite,
		}).Error
}

func (r *IdeaRepositoryImpl) MarkDuplicate(ctx context.Context, id uuid.UUID, duplicateOfId uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Idea{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_duplicate":    true,
			"duplicate_of_id": duplicateOfId,
			"is_final":        false,
		}).Error
}

func (r *IdeaRepositoryImpl) MarkFinal(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Idea{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_duplicate":    false,
			"duplicate_of_id": nil,
			"is_final":        true,
		}).Error
}

func (r *IdeaRepositoryImpl) UpdateContent(ctx context.Context, id uuid.UUID, title, description string) error {
	return r.db.WithContext(ctx).Model(&model.Idea{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":       title,
			"description": description,
		}).Error
}
