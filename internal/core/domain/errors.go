package domain

import "errors"

var ErrInvalidCredentials = errors.New("invalid email or password")
var ErrEmailAlreadyInUse = errors.New("email already in use")
var ErrBookNotFound = errors.New("book not found")
var ErrUnauthenticated = errors.New("authentication required")
var ErrAlreadyBorrowed = errors.New("book is not available for borrowing")
var ErrNotBorrowed = errors.New("book is not currently borrowed")
var ErrNotBorrower = errors.New("only the borrower or an admin can return this book")
var ErrInvalidInput = errors.New("invalid input")

// ErrMalformedPersistedState is recovered inside the stores and never
// returned to callers of a store operation.
var ErrMalformedPersistedState = errors.New("malformed persisted state")
