package storage

import "fmt"

// ============================================================================
// STORAGE ERROR CODES
// ============================================================================
// These constants mirror domain error codes to avoid circular imports.

const (
	codeInvalid  = "invalid"
	codeNotFound = "not_found"
)

// StorageError represents a storage-specific error with a code and message.
type StorageError struct {
	Code    string
	Message string
}

func (e *StorageError) Error() string {
	return e.Message
}

// ErrorCode returns the error code for HTTP status mapping.
func (e *StorageError) ErrorCode() string {
	return e.Code
}

func newStorageError(code, message string) *StorageError {
	return &StorageError{Code: code, Message: message}
}

var (
	ErrR2AccountIDRequired   = newStorageError(codeInvalid, "R2 account ID is required")
	ErrR2CredentialsRequired = newStorageError(codeInvalid, "R2 credentials are required")
	ErrR2BucketRequired      = newStorageError(codeInvalid, "R2 bucket name is required")
	ErrGCSBucketRequired     = newStorageError(codeInvalid, "GCS bucket name is required")
)

// ErrFileNotFound creates an error for when a file is not found.
func ErrFileNotFound(key string) error {
	return newStorageError(codeNotFound, fmt.Sprintf("file not found: %s", key))
}

// ErrInvalidKey creates an error for keys that are empty or leave the root.
func ErrInvalidKey(key string) error {
	return newStorageError(codeInvalid, fmt.Sprintf("invalid storage key: %q", key))
}

// ErrUnknownProvider creates an error for unknown storage providers.
func ErrUnknownProvider(provider string) error {
	return newStorageError(codeInvalid, fmt.Sprintf("unknown storage provider: %s", provider))
}

// IsNotFound reports whether err is a storage not-found error.
func IsNotFound(err error) bool {
	se, ok := err.(*StorageError)
	return ok && se.Code == codeNotFound
}
