package rest

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"strings"
)

// TransportError classifies a request that failed before an HTTP status was
// obtained. Don't change the order or insert values here: the numeric codes
// are stable for compatibility with callers that persist or switch on them.
type TransportError int

const (
	ErrSuccess TransportError = iota
	ErrUnknown
	ErrConnection
	ErrBindIPAddress
	ErrRead
	ErrWrite
	ErrExceedRedirectCount
	ErrCanceled
	ErrSSLConnection
	ErrSSLLoadingCerts
	ErrSSLServerVerification
	ErrUnsupportedMultipartBoundaryChars
	ErrCompression
)

// String returns a short name for the error kind.
func (e TransportError) String() string {
	switch e {
	case ErrSuccess:
		return "success"
	case ErrUnknown:
		return "unknown"
	case ErrConnection:
		return "connection"
	case ErrBindIPAddress:
		return "bind-ip-address"
	case ErrRead:
		return "read"
	case ErrWrite:
		return "write"
	case ErrExceedRedirectCount:
		return "exceed-redirect-count"
	case ErrCanceled:
		return "canceled"
	case ErrSSLConnection:
		return "ssl-connection"
	case ErrSSLLoadingCerts:
		return "ssl-loading-certs"
	case ErrSSLServerVerification:
		return "ssl-server-verification"
	case ErrUnsupportedMultipartBoundaryChars:
		return "unsupported-multipart-boundary-chars"
	case ErrCompression:
		return "compression"
	default:
		return "unknown"
	}
}

// classifyTransportError maps a Go transport failure onto the taxonomy.
// Classification is by error type where the stdlib exposes one, and by
// substring otherwise.
func classifyTransportError(err error) TransportError {
	if err == nil {
		return ErrSuccess
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrCanceled
	}

	var tlsErr *tls.CertificateVerificationError
	if errors.As(err, &tlsErr) {
		return ErrSSLServerVerification
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "stopped after") && strings.Contains(errStr, "redirect") {
		return ErrExceedRedirectCount
	}
	if strings.Contains(errStr, "tls") || strings.Contains(errStr, "ssl") ||
		strings.Contains(errStr, "certificate") {
		return ErrSSLConnection
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch opErr.Op {
		case "dial":
			return ErrConnection
		case "read":
			return ErrRead
		case "write":
			return ErrWrite
		}
	}

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "timeout") {
		return ErrConnection
	}

	return ErrUnknown
}
