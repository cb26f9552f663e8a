package specification

import "gorm.io/gorm"

// Specification narrows a repository query. Implementations append WHERE /
// ORDER BY / LIMIT clauses to the query being built.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
