package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Option mutates a gorm statement before execution.
type Option interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type sortBy struct {
	clause string
}

func (o sortBy) Apply(stmt *gorm.DB) *gorm.DB {
	if o.clause == "" {
		return stmt
	}
	return stmt.Order(o.clause)
}

// WithSortBy orders results by a pre-validated clause.
func WithSortBy(clause string) Option {
	return sortBy{clause: clause}
}

// WithQuerySortBy validates a caller-supplied sort column against the
// allow-list and returns an ORDER BY clause, defaulting to created_at DESC.
func WithQuerySortBy(sortBy, orderBy string, allowed map[string]bool) string {
	column := strings.TrimSpace(strings.ToLower(sortBy))
	if column == "" || !allowed[column] {
		column = "created_at"
	}

	direction := strings.TrimSpace(strings.ToUpper(orderBy))
	if direction != "ASC" && direction != "DESC" {
		direction = "DESC"
	}

	return fmt.Sprintf("%s %s", column, direction)
}
