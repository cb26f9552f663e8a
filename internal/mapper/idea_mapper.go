package mapper

import (
	"time"

	"ai-ideation-be/internal/entity"
	"ai-ideation-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type IdeaMapper struct{}

func NewIdeaMapper() *IdeaMapper {
	return &IdeaMapper{}
}

func (m *IdeaMapper) ToEntity(i *model.Idea) *entity.Idea {
	if i == nil {
		return nil
	}

	var deletedAt *time.Time
	if i.DeletedAt.Valid {
		t := i.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !i.UpdatedAt.IsZero() {
		t := i.UpdatedAt
		updatedAt = &t
	}

	var embedding []float32
	if i.Embedding != nil {
		embedding = i.Embedding.Slice()
	}

	return &entity.Idea{
		Id:                  i.Id,
		SessionId:           i.SessionId,
		Title:               i.Title,
		Description:         i.Description,
		Category:            i.Category,
		EffortEstimate:      i.EffortEstimate,
		ImpactEstimate:      i.ImpactEstimate,
		Embedding:           embedding,
		ClusterNumber:       i.ClusterNumber,
		UseCases:            jsonToStrings(i.UseCases),
		EdgeCases:           jsonToStrings(i.EdgeCases),
		ImplementationNotes: jsonToStrings(i.ImplementationNotes),
		ImpactScore:         i.ImpactScore,
		FeasibilityScore:    i.FeasibilityScore,
		EffortScore:         i.EffortScore,
		StrategicFitScore:   i.StrategicFitScore,
		RiskScore:           i.RiskScore,
		ScoreRationale:      jsonToMap(i.ScoreRationale),
		CompositeScore:      i.CompositeScore,
		IsDuplicate:         i.IsDuplicate,
		DuplicateOfId:       i.DuplicateOfId,
		IsFinal:             i.IsFinal,
		DisplayOrder:        i.DisplayOrder,
		CreatedAt:           i.CreatedAt,
		UpdatedAt:           updatedAt,
		DeletedAt:           deletedAt,
		IsDeleted:           i.DeletedAt.Valid,
	}
}

func (m *IdeaMapper) ToModel(i *entity.Idea) *model.Idea {
	if i == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if i.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *i.DeletedAt, Valid: true}
	} else if i.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if i.UpdatedAt != nil {
		updatedAt = *i.UpdatedAt
	}

	var embedding *pgvector.Vector
	if i.Embedding != nil {
		v := pgvector.NewVector(i.Embedding)
		embedding = &v
	}

	return &model.Idea{
		Id:                  i.Id,
		SessionId:           i.SessionId,
		Title:               i.Title,
		Description:         i.Description,
		Category:            i.Category,
		EffortEstimate:      i.EffortEstimate,
		ImpactEstimate:      i.ImpactEstimate,
		Embedding:           embedding,
		ClusterNumber:       i.ClusterNumber,
		UseCases:            stringsToJSON(i.UseCases),
		EdgeCases:           stringsToJSON(i.EdgeCases),
		ImplementationNotes: stringsToJSON(i.ImplementationNotes),
		ImpactScore:         i.ImpactScore,
		FeasibilityScore:    i.FeasibilityScore,
		EffortScore:         i.EffortScore,
		StrategicFitScore:   i.StrategicFitScore,
		RiskScore:           i.RiskScore,
		ScoreRationale:      mapToJSON(i.ScoreRationale),
		CompositeScore:      i.CompositeScore,
		IsDuplicate:         i.IsDuplicate,
		DuplicateOfId:       i.DuplicateOfId,
		IsFinal:             i.IsFinal,
		DisplayOrder:        i.DisplayOrder,
		CreatedAt:           i.CreatedAt,
		UpdatedAt:           updatedAt,
		DeletedAt:           deletedAt,
	}
}

func (m *IdeaMapper) ToEntities(ideas []*model.Idea) []*entity.Idea {
	entities := make([]*entity.Idea, len(ideas))
	for i, idea := range ideas {
		entities[i] = m.ToEntity(idea)
	}
	return entities
}

func (m *IdeaMapper) ToModels(ideas []*entity.Idea) []*model.Idea {
	models := make([]*model.Idea, len(ideas))
	for i, idea := range ideas {
		models[i] = m.ToModel(idea)
	}
	return models
}
