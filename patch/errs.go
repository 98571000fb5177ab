package patch

import "errors"

var (
	// ErrApply is wrapped by all patch application failures.
	ErrApply = errors.New("patch application error")

	ErrBadLog = errors.New("malformed patch log")
)
