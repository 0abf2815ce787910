package postgres

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

// baseRepository carries the connection and the tx-or-default selection every
// repository shares.
type baseRepository struct {
	db *gorm.DB
}

func (r baseRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// handleDBError is a package-level helper for handling database errors
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", operation, repositories.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%s: %w", operation, repositories.ErrDuplicate)
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}

// isUniqueViolation catches drivers that do not translate constraint errors.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// applySearch adds a case-insensitive substring match of search against any
// of columns. The search is matched as given, surrounding spaces included; only
// the empty string leaves the statement unchanged.
func applySearch(query *gorm.DB, search string, columns ...string) *gorm.DB {
	if search == "" || len(columns) == 0 {
		return query
	}

	pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
	clauses := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		clauses[i] = fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col)
		args[i] = pattern
	}

	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// applyPaginationAndSorting orders by a whitelisted column and pages.
func applyPaginationAndSorting(query *gorm.DB, opts repositories.ListOptions, allowed map[string]string, defaultOrder string) *gorm.DB {
	order := defaultOrder
	if col, ok := allowed[opts.SortBy]; ok {
		dir := "ASC"
		if strings.EqualFold(opts.SortOrder, "desc") {
			dir = "DESC"
		}
		order = col + " " + dir
	}
	query = query.Order(order)

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}
	return query
}
