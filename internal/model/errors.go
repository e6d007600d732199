package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a BridgeError the way the host command surface
// reports rejections to the out-of-scope GUI shell.
type ErrorKind string

const (
	ErrNoAdapter             ErrorKind = "NoAdapter"
	ErrScanAlreadyRunning    ErrorKind = "ScanAlreadyRunning"
	ErrInvalidUUID           ErrorKind = "InvalidUuid"
	ErrHandlerUnavailable    ErrorKind = "HandlerUnavailable"
	ErrConnectFailed         ErrorKind = "ConnectFailed"
	ErrSubscribeFailed       ErrorKind = "SubscribeFailed"
	ErrWriteFailed           ErrorKind = "WriteFailed"
	ErrReadFailed            ErrorKind = "ReadFailed"
	ErrInvalidPacket         ErrorKind = "InvalidPacket"
	ErrDecodeFailed          ErrorKind = "DecodeFailed"
	ErrUnknownIdentifier     ErrorKind = "UnknownIdentifier"
	ErrUnknownCharacteristic ErrorKind = "UnknownCharacteristic"
	ErrUnknownStatus         ErrorKind = "UnknownStatus"
	ErrNoInterpreter         ErrorKind = "NoInterpreter"
	ErrAlreadyExists         ErrorKind = "AlreadyExists"
	ErrNotFound              ErrorKind = "NotFound"
	ErrEmulatorFailed        ErrorKind = "EmulatorFailed"
	ErrIOFailure             ErrorKind = "IOFailure"
)

// BridgeError wraps an underlying error with one of the kinds above so that
// the host command surface can classify rejections without string matching.
type BridgeError struct {
	Kind ErrorKind
	Err  error
}

func (e *BridgeError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *BridgeError) Unwrap() error {
	return e.Err
}

// NewError builds a BridgeError carrying kind and wrapping err.
func NewError(kind ErrorKind, err error) *BridgeError {
	return &BridgeError{Kind: kind, Err: err}
}

// KindOf returns the ErrorKind of err if it is (or wraps) a *BridgeError,
// and false otherwise.
func KindOf(err error) (ErrorKind, bool) {
	var be *BridgeError
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return "", false
}
