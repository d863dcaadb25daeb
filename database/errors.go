package database

import "errors"

var (
	// ErrNotFound record not found
	ErrNotFound = errors.New("record not found")

	// ErrUnsupportedDBType unsupported database type
	ErrUnsupportedDBType = errors.New("unsupported database type")

	// ErrDatabaseClosed database is closed
	ErrDatabaseClosed = errors.New("database is closed")

	// ErrDatabaseNotInitialized database is not initialized
	ErrDatabaseNotInitialized = errors.New("database not initialized")

	// ErrNoneAvailable no available catalog item in the category
	ErrNoneAvailable = errors.New("no available catalog item")

	// ErrInvalidState record is not in a state that allows the transition
	ErrInvalidState = errors.New("invalid record state")

	// ErrStatusConflict compare-and-set on a status lost
	ErrStatusConflict = errors.New("status conflict")

	// ErrDuplicateIdentifier asset identifier already claimed
	ErrDuplicateIdentifier = errors.New("duplicate asset identifier")

	// ErrRecordUnavailable ownership record is claimed by another forge or not held
	ErrRecordUnavailable = errors.New("ownership record unavailable")

	// ErrAlreadyExists primary key already present
	ErrAlreadyExists = errors.New("record already exists")
)
