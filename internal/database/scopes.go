package database

import (
	"gorm.io/gorm"

	"github.com/cogniboard/cogniboard-api/internal/utils"
)

// Paginate applies offset-based pagination to a GORM query.
// A non-positive limit leaves the result set unbounded.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Skip > 0 {
			db = db.Offset(params.Skip)
		}
		if params.Limit > 0 {
			db = db.Limit(params.Limit)
		}
		return db
	}
}
