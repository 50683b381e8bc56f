package services

import "errors"

// Sentinel errors shared by the services. Handlers map these to HTTP
// statuses with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrEmailRequired       = errors.New("email is required for this form")
	ErrDuplicateSubmission = errors.New("you have already submitted this form")
	ErrEmailTaken          = errors.New("user already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrBadCredentials      = errors.New("invalid credentials")
	ErrValidation          = errors.New("invalid request")
)
