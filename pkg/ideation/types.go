package ideation

import (
	"github.com/google/uuid"

	"ai-ideation-be/internal/entity"
)

const (
	// TargetIdeaCount is the number of ideas every run must hand to clustering.
	TargetIdeaCount = 18

	// PerCategoryCount = ceil(TargetIdeaCount / len(Categories)).
	PerCategoryCount = 5

	// SimilarityThreshold marks a pair of ideas as duplicates when their
	// embeddings exceed this cosine similarity.
	SimilarityThreshold = 0.90

	MinClusters = 3
	MaxClusters = 5

	// DefaultWorkers bounds concurrent per-idea completion calls.
	DefaultWorkers = 4
)

// Categories is the fixed category set, in generation and display order.
var Categories = []string{"product", "process", "technology", "business"}

// ValidCategory reports whether c belongs to the fixed category set.
func ValidCategory(c string) bool {
	for _, cat := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// DraftIdea is a generated idea before persistence.
type DraftIdea struct {
	Title          string
	Description    string
	Category       string
	EffortEstimate int
	ImpactEstimate int
}

// Enrichment holds the per-idea lists attached by the enrichment step.
type Enrichment struct {
	UseCases            []string
	EdgeCases           []string
	ImplementationNotes []string
}

// EnrichmentResult aggregates the enrichment step across one session.
type EnrichmentResult struct {
	ByID   map[uuid.UUID]Enrichment
	Failed int
	Total  int
}

// ScoreResult aggregates the scoring step across one session.
type ScoreResult struct {
	ByID      map[uuid.UUID]entity.CriterionScores
	Fallbacks int
}
