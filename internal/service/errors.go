package service

import (
	"errors"

	"storefront/internal/apperr"
	"storefront/internal/repository"
)

// translate maps repository sentinels onto the client facing taxonomy.
// Errors that already carry a kind pass through unchanged.
func translate(err error, notFoundMessage string) error {
	var classified *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &classified):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, notFoundMessage, err)
	case errors.Is(err, repository.ErrVersionConflict):
		return apperr.Wrap(apperr.KindConflict, "Resource was modified concurrently, please retry", err)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Wrap(apperr.KindConflict, "Resource already exists", err)
	default:
		return apperr.Internal(err)
	}
}
