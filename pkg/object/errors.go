package object

import (
	"errors"
	"fmt"
)

var (
	// ErrObjectNotFound is returned when no file exists for an address.
	ErrObjectNotFound = errors.New("object not found")
	// ErrCorruptObject is returned when stored bytes fail decompression,
	// header validation or payload parsing.
	ErrCorruptObject = errors.New("corrupt object")
	// ErrInvalidHash is returned for address text that is not 40 hex digits.
	ErrInvalidHash = errors.New("invalid object hash")
)

// CorruptObjectError describes why an object failed validation. Hash is
// empty when the bytes were not read from the store.
type CorruptObjectError struct {
	Hash   Hash
	Reason string
	Err    error
}

func (e *CorruptObjectError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := ErrCorruptObject.Error()
	if e.Hash != "" {
		msg += " " + string(e.Hash)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CorruptObjectError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *CorruptObjectError) Is(target error) bool {
	return target == ErrCorruptObject
}

func corruptf(format string, args ...any) error {
	return &CorruptObjectError{Reason: fmt.Sprintf(format, args...)}
}

// withHash attaches h to a CorruptObjectError produced by a parser that did
// not know the address. Other errors are returned unchanged.
func withHash(err error, h Hash) error {
	var ce *CorruptObjectError
	if errors.As(err, &ce) && ce.Hash == "" {
		cp := *ce
		cp.Hash = h
		return &cp
	}
	return err
}
