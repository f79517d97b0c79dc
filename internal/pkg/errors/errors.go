package errors

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrNoVersions = errors.New("no versions found")
	ErrInvalid    = errors.New("invalid")
	ErrConflict   = errors.New("conflict")
	ErrInternal   = errors.New("internal")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsNoVersions(err error) bool {
	return errors.Is(err, ErrNoVersions)
}
