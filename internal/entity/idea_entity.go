package entity

import (
	"time"

	"github.com/google/uuid"
)

// CriterionScores carries the five normalized criterion scores plus the
// composite derived from them, as written back by the scoring step.
type CriterionScores struct {
	Impact       float64           `json:"impact"`
	Feasibility  float64           `json:"feasibility"`
	Effort       float64           `json:"effort"`
	StrategicFit float64           `json:"strategic_fit"`
	Risk         float64           `json:"risk"`
	Rationale    map[string]string `json:"rationale,omitempty"`
	Composite    float64           `json:"composite"`
}

type Idea struct {
	Id                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId           uuid.UUID `gorm:"type:uuid;index"`
	Title               string
	Description         string
	Category            string
	EffortEstimate      int
	ImpactEstimate      int
	Embedding           []float32 // nil until the embedding step runs
	ClusterNumber       *int      // nil until clustering runs
	UseCases            []string
	EdgeCases           []string
	ImplementationNotes []string
	ImpactScore         *float64
	FeasibilityScore    *float64
	EffortScore         *float64
	StrategicFitScore   *float64
	RiskScore           *float64
	ScoreRationale      map[string]string
	CompositeScore      *float64
	IsDuplicate         bool
	DuplicateOfId       *uuid.UUID
	IsFinal             bool
	DisplayOrder        int
	CreatedAt           time.Time
	UpdatedAt           *time.Time
	DeletedAt           *time.Time
	IsDeleted           bool
}
