package domain

import "errors"

var (
	// ErrNotFound indicates a record was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrExactAlarmPermission indicates the exact-alarm scheduling
	// permission is not granted
	ErrExactAlarmPermission = errors.New("exact alarm permission denied")

	// ErrNotificationPermission indicates notifications cannot be posted
	ErrNotificationPermission = errors.New("notification permission denied")

	// ErrMediaPermission indicates the alarm sound cannot be read
	ErrMediaPermission = errors.New("media permission denied")

	// ErrConstraint indicates a storage constraint violation
	ErrConstraint = errors.New("constraint violation")

	// ErrStorageUnavailable indicates the store cannot be reached
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrRegistration indicates a platform wake registration failure
	ErrRegistration = errors.New("wake registration failed")
)
