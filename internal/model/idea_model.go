package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Idea struct {
	Id                  uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId           uuid.UUID        `gorm:"type:uuid;not null;index"`
	Title               string           `gorm:"type:varchar(255);not null"`
	Description         string           `gorm:"type:text;not null"`
	Category            string           `gorm:"type:varchar(64);not null"`
	EffortEstimate      int              `gorm:"not null;default:5"` // raw 1-10 from the generator
	ImpactEstimate      int              `gorm:"not null;default:5"` // raw 1-10 from the generator
	Embedding           *pgvector.Vector `gorm:"type:vector(768)"`   // nomic-embed-text / text-embedding-004 dimension
	ClusterNumber       *int             `gorm:"index"`              // null until clustering runs
	UseCases            datatypes.JSON   `gorm:"type:jsonb"`         // []string
	EdgeCases           datatypes.JSON   `gorm:"type:jsonb"`         // []string
	ImplementationNotes datatypes.JSON   `gorm:"type:jsonb"`         // []string
	ImpactScore         *float64
	FeasibilityScore    *float64
	EffortScore         *float64
	StrategicFitScore   *float64
	RiskScore           *float64
	ScoreRationale      datatypes.JSON `gorm:"type:jsonb"` // map[criterion]rationale
	CompositeScore      *float64       `gorm:"index"`
	IsDuplicate         bool           `gorm:"not null;default:false"`
	DuplicateOfId       *uuid.UUID     `gorm:"type:uuid"` // canonical idea, never a duplicate itself
	IsFinal             bool           `gorm:"not null;default:false"`
	DisplayOrder        int            `gorm:"not null;default:0"`
	CreatedAt           time.Time      `gorm:"autoCreateTime"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime"`
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

func (Idea) TableName() string {
	return "ideas"
}
