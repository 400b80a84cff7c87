package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrDuplicate marks an insert rejected by a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrReferenceMissing marks an insert rejected by a foreign key.
	ErrReferenceMissing = errors.New("referenced record missing")
	// ErrSessionNotFound is returned by session stores for unknown tokens.
	ErrSessionNotFound = errors.New("session not found")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// classify maps constraint violations reported by PostgreSQL onto the
// repository sentinels, keeping the driver error in the chain.
func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, ErrDuplicate, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, ErrReferenceMissing, pqErr.Constraint)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
