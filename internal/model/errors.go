package model

import "errors"

// ErrorKind classifies every failure a front end can see.
type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration"
	KindValidation    ErrorKind = "validation"
	KindSigning       ErrorKind = "signing"
	KindAuth          ErrorKind = "auth"
	KindTransport     ErrorKind = "transport"
	KindConnectivity  ErrorKind = "connectivity"
	KindExchange      ErrorKind = "exchange"
	KindUnknown       ErrorKind = "unknown"
)

// Kinded is implemented by every error type of the pipeline.
type Kinded interface {
	error
	Kind() ErrorKind
}

// KindOf returns the kind of the first Kinded error in err's chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}
