package service

import (
	"errors"

	"github.com/noah-isme/school-records-api/internal/repository"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

// mapInsertError turns constraint violations raised by an insert into the
// matching domain error.
func mapInsertError(err error, what string) error {
	switch {
	case errors.Is(err, repository.ErrReferenceMissing):
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, what+" already recorded")
	default:
		return appErrors.Internal(err, "failed to save "+what)
	}
}
