package repository

import (
	"strings"

	"gorm.io/gorm"
)

// ListQuery represents common query parameters for list operations
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// Filter returns a trimmed filter value, empty when unset
func (q *ListQuery) Filter(key string) string {
	if q == nil || q.Filters == nil {
		return ""
	}
	return strings.TrimSpace(q.Filters[key])
}

// paginate applies offset/limit when the query asks for a page
func paginate(db *gorm.DB, q *ListQuery) *gorm.DB {
	if q == nil || q.PerPage <= 0 {
		return db
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	return db.Offset((page - 1) * q.PerPage).Limit(q.PerPage)
}

// orderBy maps a client sort field onto a whitelisted column, falling back to def
func orderBy(db *gorm.DB, q *ListQuery, columns map[string]string, def string) *gorm.DB {
	if q == nil || q.SortBy == "" {
		return db.Order(def)
	}
	column, ok := columns[q.SortBy]
	if !ok {
		return db.Order(def)
	}
	if strings.ToLower(q.SortDir) == "desc" {
		return db.Order(column + " DESC")
	}
	return db.Order(column + " ASC")
}

// likePattern builds a case-insensitive LIKE argument; pair with LOWER(column)
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// splitStatuses accepts "a,b" or "[a|b]" status filters
func splitStatuses(filter string) []string {
	if strings.HasPrefix(filter, "[") && strings.HasSuffix(filter, "]") {
		filter = strings.ReplaceAll(filter[1:len(filter)-1], "|", ",")
	}
	parts := strings.Split(filter, ",")
	statuses := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			statuses = append(statuses, s)
		}
	}
	return statuses
}
