package catalog

import (
	"errors"

	"github.com/upb/hotel-listing/repositories"
	"github.com/upb/hotel-listing/services"
)

// mapRepoError turns repository sentinels into domain errors.
func mapRepoError(err error, operation string, key interface{}) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return services.NewNotFoundError(operation, key)
	case errors.Is(err, repositories.ErrInvalidReference):
		return services.NewDomainError(services.ErrorTypeValidation, "referenced record does not exist", err)
	case errors.Is(err, repositories.ErrDuplicate):
		return services.NewDomainError(services.ErrorTypeConflict, "record already exists", err)
	default:
		return services.WrapInternal(operation+" failed", err)
	}
}
