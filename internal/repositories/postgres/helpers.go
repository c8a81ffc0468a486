package postgres

import "gorm.io/gorm"

// applyPaginationAndSort applies limit/offset and a whitelisted sort column.
// Unknown or missing sort columns fall back to created_at DESC.
func applyPaginationAndSort(query *gorm.DB, limit, offset int, sortBy, sortOrder string, allowed map[string]bool) *gorm.DB {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	order := "created_at DESC"
	if allowed[sortBy] {
		direction := "DESC"
		if sortOrder == "asc" {
			direction = "ASC"
		}
		order = sortBy + " " + direction
	}

	return query.Order(order).Limit(limit).Offset(offset)
}
