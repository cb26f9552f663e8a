package unitofwork

import (
	"context"

	"ai-ideation-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	IdeationSessionRepository() contract.IdeationSessionRepository
	IdeaRepository() contract.IdeaRepository
	IdeaClusterRepository() contract.IdeaClusterRepository
}
