package openrouter

import (
	"errors"
	"fmt"
)

// ErrResponseTooLarge is wrapped in a *TransportError when a successful
// response body exceeds the client's read limit.
var ErrResponseTooLarge = errors.New("response too large")

// ErrorKind tags every failure the client can return.
type ErrorKind int

const (
	KindConfiguration ErrorKind = iota + 1
	KindTransport
	KindEmptyResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindTransport:
		return "transport"
	case KindEmptyResponse:
		return "empty_response"
	default:
		return "unknown"
	}
}

type kinded interface {
	Kind() ErrorKind
}

// KindOf reports the kind of a client error anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var k kinded
	if !errors.As(err, &k) {
		return 0, false
	}
	return k.Kind(), true
}

// ConfigurationError means the client has no usable credential.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "openrouter: " + e.Reason
}

func (e *ConfigurationError) Kind() ErrorKind { return KindConfiguration }

// TransportError captures non-2xx upstream responses. StatusCode is zero when
// the request never produced a response; Err then holds the cause.
type TransportError struct {
	StatusCode int
	URL        string
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("openrouter: request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("openrouter: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Kind() ErrorKind { return KindTransport }

func (e *TransportError) HTTPStatusCode() int {
	return e.StatusCode
}

// EmptyResponseError means the endpoint answered 2xx without usable text.
// Raw keeps the payload so callers can log it.
type EmptyResponseError struct {
	Raw []byte
	Err error
}

func (e *EmptyResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("openrouter: returned an empty description: %v", e.Err)
	}
	return "openrouter: returned an empty description"
}

func (e *EmptyResponseError) Unwrap() error { return e.Err }

func (e *EmptyResponseError) Kind() ErrorKind { return KindEmptyResponse }
