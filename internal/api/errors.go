package api

import (
	"fmt"

	"github.com/adshao/go-binance/v2/common"

	"futures-testnet-bot/internal/model"
)

// Binance codes that mean the request never authenticated.
const (
	codeInvalidSignature = -1022
	codeBadAPIKeyFormat  = -2014
	codeRejectedAPIKey   = -2015
)

// ExchangeError is an API-level rejection decoded from a {code,msg} body.
type ExchangeError struct {
	Status int
	API    *common.APIError
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("[HTTP %d] binance error %d: %s", e.Status, e.API.Code, e.API.Message)
}

func (e *ExchangeError) Unwrap() error { return e.API }

func (e *ExchangeError) Code() int64 { return e.API.Code }

func (e *ExchangeError) Message() string { return e.API.Message }

// IsAuthFailure reports a signature or API key rejection.
func (e *ExchangeError) IsAuthFailure() bool {
	switch e.API.Code {
	case codeInvalidSignature, codeBadAPIKeyFormat, codeRejectedAPIKey:
		return true
	}
	return false
}

func (e *ExchangeError) Kind() model.ErrorKind {
	if e.IsAuthFailure() {
		return model.KindAuth
	}
	return model.KindExchange
}

// TransportError is a response whose body could not be decoded.
type TransportError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[HTTP %d] undecodable response (%v): %s", e.Status, e.Err, e.Body)
	}
	return fmt.Sprintf("[HTTP %d] undecodable response: %s", e.Status, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Kind() model.ErrorKind { return model.KindTransport }

// ConnectivityError is a network failure before any response arrived.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

func (e *ConnectivityError) Kind() model.ErrorKind { return model.KindConnectivity }
