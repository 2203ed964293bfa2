package services

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrExpired                = errors.New("booking request expired")
	ErrOfferingNotFound       = errors.New("offering not found")
	ErrPaymentGateway         = errors.New("payment gateway unavailable")
)
