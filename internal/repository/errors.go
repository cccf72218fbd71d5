package repository

import (
	"errors"

	"github.com/lib/pq"
)

const uniqueViolation pq.ErrorCode = "23505"

// IsUniqueViolation reports whether err comes from a PostgreSQL unique constraint.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
