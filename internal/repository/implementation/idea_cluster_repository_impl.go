package implementation

import (
	"context"

	"ai-ideation-be/internal/entity"
	"ai-ideation-be/internal/mapper"
	"ai-ideation-be/internal/model"
	"ai-ideation-be/internal/repository/contract"
	"ai-ideation-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IdeaClusterRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.IdeaClusterMapper
}

func NewIdeaClusterRepository(db *gorm.DB) contract.IdeaClusterRepository {
	return &IdeaClusterRepositoryImpl{
		db:     db,
		mapper: mapper.NewIdeaClusterMapper(),
	}
}

func (r *IdeaClusterRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *IdeaClusterRepositoryImpl) CreateBulk(ctx context.Context, clusters []*entity.IdeaCluster) error {
	if len(clusters) == 0 {
		return nil
	}
	models := r.mapper.ToModels(clusters)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*clusters[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *IdeaClusterRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("session_id = ?", sessionId).
		Delete(&model.IdeaCluster{}).Error
}

func (r *IdeaClusterRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IdeaCluster, error) {
	var models []*model.IdeaCluster
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *IdeaClusterRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.IdeaCluster{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
