package repository

import "gorm.io/gorm"

// paginate applies offset/limit pagination to a list query. Zero values leave
// the query unpaginated.
func paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 || pageSize <= 0 {
			return db
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
