package errors

// FromError coerces any error into an Errno. Existing Errno values pass
// through unchanged; everything else becomes ErrInternal with the
// original error attached as cause.
func FromError(err error) *Errno {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Errno); ok {
		return e
	}
	return ErrInternal.WithCause(err)
}

// IsCode reports whether err is an Errno carrying the given code.
func IsCode(err error, code int) bool {
	e, ok := err.(*Errno)
	return ok && e.Code == code
}
