package utils

import (
	"errors"
	"fmt"
)

// PermError is a constant error value usable as a sentinel.
type PermError string

func (e PermError) Error() string {
	return string(e)
}

// ErrorKind names the class of a failure as reported in a failure envelope.
type ErrorKind string

const (
	KindTransport         ErrorKind = "TransportError"
	KindNotFound          ErrorKind = "NotFoundError"
	KindUnsupportedFormat ErrorKind = "UnsupportedFormat"
	KindValidation        ErrorKind = "ValidationError"
	KindMalformedRequest  ErrorKind = "MalformedRequest"
	KindCodec             ErrorKind = "CodecError"
	KindUnexpected        ErrorKind = "UnexpectedError"
)

// Provider style codes carried by TransportError.
const (
	CodeNoSuchBucket      = "NoSuchBucket"
	CodeAccessDenied      = "AccessDenied"
	CodeInvalidURI        = "InvalidURI"
	CodeUnsupportedScheme = "UnsupportedScheme"
	CodeUnknown           = "Unknown"
)

// TransportError is a storage failure other than a missing object: missing bucket,
// denied access, unreachable endpoint and so on.
type TransportError struct {
	Code string
	URI  string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.URI, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.URI)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NotFoundError means the bucket exists but holds no object under the key.
type NotFoundError struct {
	URI string
	Err error
}

func (e *NotFoundError) Error() string {
	return "No files Found on: " + e.URI
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CodecError wraps a failure to decode or encode a payload in a given format.
type CodecError struct {
	Format string
	Op     string
	Err    error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("error in %s %s: %s", e.Format, e.Op, e.Err.Error())
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// TransportCode returns the provider code of the first TransportError in err's chain.
func TransportCode(err error) string {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}
