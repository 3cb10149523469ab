package repository

import (
	"errors"
	"fmt"

	"github.com/atinyakov/GophMarket/internal/models"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation = "23505"
	pqCheckViolation  = "23514"
)

// mapPQError translates constraint violations into the domain taxonomy.
// Other errors are returned unchanged.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqCheckViolation:
		return fmt.Errorf("%w: %s", models.ErrInvalidInput, pqErr.Constraint)
	case pqUniqueViolation:
		return fmt.Errorf("%w: %s", models.ErrPreconditionFailed, pqErr.Constraint)
	}
	return err
}
