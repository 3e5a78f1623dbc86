// Package service holds the backend use cases: authentication, routines,
// and workout sessions.
package service

import (
	"errors"

	"befit/fitness-app/internal/apperrors"
	"befit/fitness-app/internal/repository"
)

// translate maps a repository error onto the apperrors taxonomy. Not found
// becomes a NotFound with msg; anything else is a transient backend failure.
func translate(op, msg string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(op, msg)
	}
	if apperrors.KindOf(err) != "" {
		return err
	}
	return apperrors.Transient(op, err)
}
