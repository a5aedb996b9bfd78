package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

// ErrDuplicate signals that a write hit a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

const uniqueViolation = "23505"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageWindow clamps page parameters and returns the limit and offset to apply.
func pageWindow(page, pageSize int) (limit, offset uint64) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return uint64(pageSize), uint64((page - 1) * pageSize)
}

// wrapWriteErr annotates err with op, translating unique violations to ErrDuplicate.
func wrapWriteErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching value anywhere, with
// wildcards in value treated literally.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

func buildQuery(b squirrel.Sqlizer) (string, []interface{}, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build query: %w", err)
	}
	return query, args, nil
}
