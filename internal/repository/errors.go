package repository

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateCard is returned when a card with the same number is already registered.
var ErrDuplicateCard = errors.New("card with this number already exists")

// ErrDuplicateEmail is returned when a user with the same email already exists.
var ErrDuplicateEmail = errors.New("email is already in use")
