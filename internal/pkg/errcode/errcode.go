package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrNotFound
	ErrNoVersions
	ErrInvalid
	ErrConflict
	ErrInternal
)
