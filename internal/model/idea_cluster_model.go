package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type IdeaCluster struct {
	Id               uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId        uuid.UUID        `gorm:"type:uuid;not null;index"`
	ClusterNumber    int              `gorm:"not null"`
	ThemeName        string           `gorm:"type:varchar(255);not null"`
	ThemeDescription string           `gorm:"type:text"`
	IdeaCount        int              `gorm:"not null;default:0"`
	Centroid         *pgvector.Vector `gorm:"type:vector(768)"` // mean embedding of member ideas
	CreatedAt        time.Time        `gorm:"autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt   `gorm:"index"`
}

func (IdeaCluster) TableName() string {
	return "idea_clusters"
}
