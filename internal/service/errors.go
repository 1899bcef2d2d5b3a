package service

import "errors"

// ErrAccessDenied is returned when the requesting principal lacks rights to
// the entity named in the wrapping message.
var ErrAccessDenied = errors.New("access denied")

// ErrInvalidState is returned on business-rule violations: an inactive card,
// insufficient funds, or an unknown status value.
var ErrInvalidState = errors.New("invalid state")

// ErrInvalidCredentials is returned when authentication fails.
var ErrInvalidCredentials = errors.New("invalid credentials")
