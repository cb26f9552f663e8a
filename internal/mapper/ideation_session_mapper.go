package mapper

import (
	"encoding/json"
	"time"

	"ai-ideation-be/internal/entity"
	"ai-ideation-be/internal/model"

	"gorm.io/gorm"
)

type IdeationSessionMapper struct{}

func NewIdeationSessionMapper() *IdeationSessionMapper {
	return &IdeationSessionMapper{}
}

func (m *IdeationSessionMapper) ToEntity(s *model.IdeationSession) *entity.IdeationSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	var structured *entity.StructuredProblem
	if len(s.StructuredProblem) > 0 {
		var sp entity.StructuredProblem
		if err := json.Unmarshal(s.StructuredProblem, &sp); err == nil {
			structured = &sp
		}
	}

	var metadata *entity.GenerationMetadata
	if len(s.GenerationMetadata) > 0 {
		var gm entity.GenerationMetadata
		if err := json.Unmarshal(s.GenerationMetadata, &gm); err == nil {
			metadata = &gm
		}
	}

	return &entity.IdeationSession{
		Id:                 s.Id,
		UserId:             s.UserId,
		ProblemStatement:   s.ProblemStatement,
		Constraints:        jsonToStrings(s.Constraints),
		Goals:              jsonToStrings(s.Goals),
		ResearchInsights:   jsonToStrings(s.ResearchInsights),
		KnowledgeBaseIds:   jsonToStrings(s.KnowledgeBaseIds),
		StructuredProblem:  structured,
		Status:             s.Status,
		ProgressStep:       s.ProgressStep,
		ProgressMessage:    s.ProgressMessage,
		Confidence:         s.Confidence,
		ErrorMessage:       s.ErrorMessage,
		GenerationMetadata: metadata,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          updatedAt,
		DeletedAt:          deletedAt,
		IsDeleted:          s.DeletedAt.Valid,
	}
}

func (m *IdeationSessionMapper) ToModel(s *entity.IdeationSession) *model.IdeationSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	out := &model.IdeationSession{
		Id:               s.Id,
		UserId:           s.UserId,
		ProblemStatement: s.ProblemStatement,
		Constraints:      stringsToJSON(s.Constraints),
		Goals:            stringsToJSON(s.Goals),
		ResearchInsights: stringsToJSON(s.ResearchInsights),
		KnowledgeBaseIds: stringsToJSON(s.KnowledgeBaseIds),
		Status:           s.Status,
		ProgressStep:     s.ProgressStep,
		ProgressMessage:  s.ProgressMessage,
		Confidence:       s.Confidence,
		ErrorMessage:     s.ErrorMessage,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        updatedAt,
		DeletedAt:        deletedAt,
	}

	if s.StructuredProblem != nil {
		out.StructuredProblem = structToJSON(s.StructuredProblem)
	}
	if s.GenerationMetadata != nil {
		out.GenerationMetadata = structToJSON(s.GenerationMetadata)
	}

	return out
}

func (m *IdeationSessionMapper) ToEntities(sessions []*model.IdeationSession) []*entity.IdeationSession {
	entities := make([]*entity.IdeationSession, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
