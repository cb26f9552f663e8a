package entity

import (
	"time"

	"github.com/google/uuid"
)

type IdeaCluster struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId        uuid.UUID `gorm:"type:uuid;index"`
	ClusterNumber    int
	ThemeName        string
	ThemeDescription string
	IdeaCount        int
	Centroid         []float32
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}
