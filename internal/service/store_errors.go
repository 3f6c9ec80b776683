package service

import (
	"errors"

	appErrors "github.com/mingshu/tutor-api/pkg/errors"
)

// storeFailure keeps typed store errors (missing schema, store not
// configured) intact and wraps anything else as internal.
func storeFailure(err error, message string) error {
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return typed
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
