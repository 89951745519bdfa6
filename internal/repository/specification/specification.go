package specification

import "gorm.io/gorm"

// Specification is a composable query filter. Repositories apply each one
// in order onto the base query.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
