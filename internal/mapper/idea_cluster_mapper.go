package mapper

import (
	"time"

	"ai-ideation-be/internal/entity"
	"ai-ideation-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type IdeaClusterMapper struct{}

func NewIdeaClusterMapper() *IdeaClusterMapper {
	return &IdeaClusterMapper{}
}

func (m *IdeaClusterMapper) ToEntity(c *model.IdeaCluster) *entity.IdeaCluster {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	var centroid []float32
	if c.Centroid != nil {
		centroid = c.Centroid.Slice()
	}

	return &entity.IdeaCluster{
		Id:               c.Id,
		SessionId:        c.SessionId,
		ClusterNumber:    c.ClusterNumber,
		ThemeName:        c.ThemeName,
		ThemeDescription: c.ThemeDescription,
		IdeaCount:        c.IdeaCount,
		Centroid:         centroid,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *IdeaClusterMapper) ToModel(c *entity.IdeaCluster) *model.IdeaCluster {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	var centroid *pgvector.Vector
	if c.Centroid != nil {
		v := pgvector.NewVector(c.Centroid)
		centroid = &v
	}

	return &model.IdeaCluster{
		Id:               c.Id,
		SessionId:        c.SessionId,
		ClusterNumber:    c.ClusterNumber,
		ThemeName:        c.ThemeName,
		ThemeDescription: c.ThemeDescription,
		IdeaCount:        c.IdeaCount,
		Centroid:         centroid,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *IdeaClusterMapper) ToEntities(clusters []*model.IdeaCluster) []*entity.IdeaCluster {
	entities := make([]*entity.IdeaCluster, len(clusters))
	for i, c := range clusters {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *IdeaClusterMapper) ToModels(clusters []*entity.IdeaCluster) []*model.IdeaCluster {
	models := make([]*model.IdeaCluster, len(clusters))
	for i, c := range clusters {
		models[i] = m.ToModel(c)
	}
	return models
}
