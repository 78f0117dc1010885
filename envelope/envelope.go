// Package envelope holds the success/failure wrapper every pipeline stage returns.
package envelope

import (
	"errors"

	"github.com/danthegoodman1/obfuscator/utils"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"

	MsgUnexpected = "unexpected error"
)

// Result is either a success carrying Payload or a failure carrying Message and Kind.
type Result[T any] struct {
	Status  Status          `json:"status"`
	Payload T               `json:"payload,omitempty"`
	Message string          `json:"message,omitempty"`
	Kind    utils.ErrorKind `json:"kind,omitempty"`
	// Code is the storage provider's error code, e.g. NoSuchBucket
	Code string `json:"code,omitempty"`
	// Detail echoes whatever input made the stage give up
	Detail any `json:"detail,omitempty"`
}

func Success[T any](payload T, msg string) Result[T] {
	return Result[T]{
		Status:  StatusSuccess,
		Payload: payload,
		Message: msg,
	}
}

func Failure[T any](kind utils.ErrorKind, msg string) Result[T] {
	return Result[T]{
		Status:  StatusFailure,
		Message: msg,
		Kind:    kind,
	}
}

// FromError classifies err into a failure. Unknown errors become UnexpectedError.
func FromError[T any](err error) Result[T] {
	var (
		te  *utils.TransportError
		nfe *utils.NotFoundError
		ve  *utils.ValidationError
		ce  *utils.CodecError
	)
	switch {
	case errors.As(err, &nfe):
		return Failure[T](utils.KindNotFound, nfe.Error())
	case errors.As(err, &te):
		r := Failure[T](utils.KindTransport, te.Error())
		r.Code = te.Code
		return r
	case errors.As(err, &ve):
		return Failure[T](utils.KindValidation, ve.Error())
	case errors.As(err, &ce):
		return Failure[T](utils.KindCodec, ce.Error())
	}
	r := Failure[T](utils.KindUnexpected, MsgUnexpected)
	if err != nil {
		r.Detail = err.Error()
	}
	return r
}

// Forward re-types a failure so it can be returned by a stage with a different payload.
func Forward[T, U any](r Result[U]) Result[T] {
	return Result[T]{
		Status:  r.Status,
		Message: r.Message,
		Kind:    r.Kind,
		Code:    r.Code,
		Detail:  r.Detail,
	}
}

func (r Result[T]) OK() bool {
	return r.Status == StatusSuccess
}
