package keychain

import (
	"errors"
	"fmt"
)

// Store is a key-value secure store.
type Store interface {
	// Set stores data under key, replacing any existing item.
	Set(data []byte, key string) error
	// Get returns the item stored under key, or nil when there is none.
	Get(key string) ([]byte, error)
	// Delete removes the item stored under key. Missing items are not an error.
	Delete(key string) error
}

// Status is a secure storage result code.
type Status int32

const (
	StatusSuccess               Status = 0
	StatusUnimplemented         Status = -4
	StatusParam                 Status = -50
	StatusAllocate              Status = -108
	StatusNotAvailable          Status = -25291
	StatusAuthFailed            Status = -25293
	StatusDuplicateItem         Status = -25299
	StatusItemNotFound          Status = -25300
	StatusInteractionNotAllowed Status = -25308
	StatusDecode                Status = -26275
)

var statusMessages = map[Status]string{
	StatusSuccess:               "No error.",
	StatusUnimplemented:         "Function or operation not implemented.",
	StatusParam:                 "One or more parameters passed to the function were not valid.",
	StatusAllocate:              "Failed to allocate memory.",
	StatusNotAvailable:          "No trust results are available.",
	StatusAuthFailed:            "Authorization/Authentication failed.",
	StatusDuplicateItem:         "The item already exists.",
	StatusItemNotFound:          "The item cannot be found.",
	StatusInteractionNotAllowed: "Interaction with the Security Server is not allowed.",
	StatusDecode:                "Unable to decode the provided data.",
}

// Message returns the human readable description of s.
func (s Status) Message() string {
	if msg, ok := statusMessages[s]; ok {
		return msg
	}
	return "undefined error"
}

// Error is a secure storage failure.
type Error struct {
	Status Status
	Key    string
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("keychain: %s (status %d)", e.Status.Message(), e.Status)
	if e.Key != "" {
		msg += " key=" + e.Key
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// StatusOf returns the status carried by err, StatusSuccess for nil and
// StatusUnimplemented for foreign errors.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return StatusUnimplemented
}

func newError(status Status, key string, cause error) *Error {
	return &Error{Status: status, Key: key, Cause: cause}
}
