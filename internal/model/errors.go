package model

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateSession  = errors.New("duplicate session")
	ErrRemoteUnavailable = errors.New("remote calendar unavailable")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrSchema            = errors.New("incompatible ledger schema")
)
