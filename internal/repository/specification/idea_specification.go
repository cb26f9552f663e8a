package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySessionID scopes ideas/clusters to one ideation session
type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// FinalOnly keeps only ideas that survived deduplication
type FinalOnly struct{}

func (s FinalOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_final = ?", true)
}
