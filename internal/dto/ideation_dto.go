package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Requests ---

type CreateSessionRequest struct {
	ProblemStatement string   `json:"problem_statement" validate:"required"`
	Constraints      []string `json:"constraints"`
	Goals            []string `json:"goals"`
	ResearchInsights []string `json:"research_insights"`
	KnowledgeBaseIds []string `json:"knowledge_base_ids"`
}

type UpdateIdeaRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description" validate:"omitempty,min=1"`
}

// --- Internal messages ---

// RunPipelineMessage is the payload published when a session should run.
type RunPipelineMessage struct {
	SessionId uuid.UUID `json:"session_id"`
}

// --- Responses ---

type CreateSessionResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type SessionStatusResponse struct {
	Id              uuid.UUID `json:"id"`
	Status          string    `json:"status"`
	ProgressStep    int       `json:"progress_step"`
	ProgressMessage string    `json:"progress_message"`
	Confidence      string    `json:"confidence"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}

type StructuredProblemResponse struct {
	ProblemCore    string   `json:"problem_core"`
	AffectedUsers  []string `json:"affected_users"`
	CurrentMetrics []string `json:"current_metrics"`
	DesiredOutcome string   `json:"desired_outcome"`
}

type GenerationMetadataResponse struct {
	LLMModel           string `json:"llm_model"`
	EmbeddingModel     string `json:"embedding_model"`
	GeneratedCount     int    `json:"generated_count"`
	DuplicatesRemoved  int    `json:"duplicates_removed"`
	EnrichmentFailures int    `json:"enrichment_failures"`
	ScoringFallbacks   int    `json:"scoring_fallbacks"`
	DurationMs         int64  `json:"duration_ms"`
}

type SessionResponse struct {
	Id                 uuid.UUID                   `json:"id"`
	ProblemStatement   string                      `json:"problem_statement"`
	Constraints        []string                    `json:"constraints"`
	Goals              []string                    `json:"goals"`
	ResearchInsights   []string                    `json:"research_insights"`
	KnowledgeBaseIds   []string                    `json:"knowledge_base_ids"`
	StructuredProblem  *StructuredProblemResponse  `json:"structured_problem,omitempty"`
	Status             string                      `json:"status"`
	ProgressStep       int                         `json:"progress_step"`
	ProgressMessage    string                      `json:"progress_message"`
	Confidence         string                      `json:"confidence"`
	ErrorMessage       string                      `json:"error_message,omitempty"`
	GenerationMetadata *GenerationMetadataResponse `json:"generation_metadata,omitempty"`
	CreatedAt          time.Time                   `json:"created_at"`
}

type IdeaResponse struct {
	Id                  uuid.UUID          `json:"id"`
	Title               string             `json:"title"`
	Description         string             `json:"description"`
	Category            string             `json:"category"`
	EffortEstimate      int                `json:"effort_estimate"`
	ImpactEstimate      int                `json:"impact_estimate"`
	ClusterNumber       *int               `json:"cluster_number,omitempty"`
	UseCases            []string           `json:"use_cases"`
	EdgeCases           []string           `json:"edge_cases"`
	ImplementationNotes []string           `json:"implementation_notes"`
	ImpactScore         *float64           `json:"impact_score,omitempty"`
	FeasibilityScore    *float64           `json:"feasibility_score,omitempty"`
	EffortScore         *float64           `json:"effort_score,omitempty"`
	StrategicFitScore   *float64           `json:"strategic_fit_score,omitempty"`
	RiskScore           *float64           `json:"risk_score,omitempty"`
	ScoreRationale      map[string]string  `json:"score_rationale,omitempty"`
	CompositeScore      *float64           `json:"composite_score,omitempty"`
	IsDuplicate         bool               `json:"is_duplicate"`
	DuplicateOfId       *uuid.UUID         `json:"duplicate_of_id,omitempty"`
	IsFinal             bool               `json:"is_final"`
	DisplayOrder        int                `json:"display_order"`
}

type ClusterResponse struct {
	Id               uuid.UUID `json:"id"`
	ClusterNumber    int       `json:"cluster_number"`
	ThemeName        string    `json:"theme_name"`
	ThemeDescription string    `json:"theme_description"`
	IdeaCount        int       `json:"idea_count"`
}

type SessionDetailResponse struct {
	Session  SessionResponse   `json:"session"`
	Ideas    []IdeaResponse    `json:"ideas"`
	Clusters []ClusterResponse `json:"clusters"`
}

type ListSessionsResponse struct {
	Sessions []SessionStatusResponse `json:"sessions"`
	Total    int64                   `json:"total"`
}

type UpdateIdeaResponse struct {
	Id          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

// ProgressUpdate is pushed over the websocket feed as the pipeline
// advances. Mirrors SessionStatusResponse.
type ProgressUpdate struct {
	SessionId       uuid.UUID `json:"session_id"`
	Status          string    `json:"status"`
	ProgressStep    int       `json:"progress_step"`
	ProgressMessage string    `json:"progress_message"`
	Confidence      string    `json:"confidence"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}
