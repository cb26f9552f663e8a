package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type IdeationSession struct {
	Id                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId             uuid.UUID      `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	ProblemStatement   string         `gorm:"type:text;not null"`
	Constraints        datatypes.JSON `gorm:"type:jsonb"` // []string
	Goals              datatypes.JSON `gorm:"type:jsonb"` // []string
	ResearchInsights   datatypes.JSON `gorm:"type:jsonb"` // []string
	KnowledgeBaseIds   datatypes.JSON `gorm:"type:jsonb"` // []string, opaque context source ids
	StructuredProblem  datatypes.JSON `gorm:"type:jsonb"` // null until parsed
	Status             string         `gorm:"type:varchar(32);not null;default:'pending';index"`
	ProgressStep       int            `gorm:"not null;default:0"`
	ProgressMessage    string         `gorm:"type:text"`
	Confidence         string         `gorm:"type:varchar(16);not null;default:'high'"`
	ErrorMessage       string         `gorm:"type:text"`
	GenerationMetadata datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt          time.Time      `gorm:"autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime"`
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (IdeationSession) TableName() string {
	return "ideation_sessions"
}
