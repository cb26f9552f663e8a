package entity

import (
	"time"

	"github.com/google/uuid"
)

// StructuredProblem is the normalized representation of the free-text
// problem statement produced by the parsing step.
type StructuredProblem struct {
	ProblemCore    string   `json:"problem_core"`
	AffectedUsers  []string `json:"affected_users"`
	CurrentMetrics []string `json:"current_metrics"`
	DesiredOutcome string   `json:"desired_outcome"`
}

// GenerationMetadata records how a completed run behaved.
type GenerationMetadata struct {
	LLMModel           string `json:"llm_model"`
	EmbeddingModel     string `json:"embedding_model"`
	GeneratedCount     int    `json:"generated_count"`
	DuplicatesRemoved  int    `json:"duplicates_removed"`
	EnrichmentFailures int    `json:"enrichment_failures"`
	ScoringFallbacks   int    `json:"scoring_fallbacks"`
	DurationMs         int64  `json:"duration_ms"`
}

type IdeationSession struct {
	Id                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId             uuid.UUID `gorm:"type:uuid;index"`
	ProblemStatement   string
	Constraints        []string
	Goals              []string
	ResearchInsights   []string
	KnowledgeBaseIds   []string
	StructuredProblem  *StructuredProblem
	Status             string
	ProgressStep       int
	ProgressMessage    string
	Confidence         string
	ErrorMessage       string
	GenerationMetadata *GenerationMetadata
	CreatedAt          time.Time
	UpdatedAt          *time.Time
	DeletedAt          *time.Time
	IsDeleted          bool
}
