package usecase

type ErrNotFound string

func (e ErrNotFound) Error() string { return string(e) + " not found" }

type ErrConflict string

func (e ErrConflict) Error() string { return string(e) }

type ErrBadRequest string

func (e ErrBadRequest) Error() string { return string(e) }

type ErrForbidden string

func (e ErrForbidden) Error() string {
	if e == "" {
		return "access denied"
	}
	return string(e)
}

// ErrInvalidState rejects a status change the order lifecycle does not allow.
type ErrInvalidState string

func (e ErrInvalidState) Error() string { return string(e) }

type ErrUnauthorized string

func (e ErrUnauthorized) Error() string { return string(e) }
