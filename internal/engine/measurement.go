package engine

import (
	"context"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
	"time"
)

// Outcome classifies how a single request attempt ended.
type Outcome string

const (
	// OutcomeSuccess means the server delivered a response within the timeout.
	// The HTTP status code is not inspected here: a 500 is still a delivery at
	// the transport level and is distinguished later by status-class analysis.
	OutcomeSuccess Outcome = "success"
	// OutcomeTimeout means the request exceeded the configured timeout.
	OutcomeTimeout Outcome = "timeout"
	// OutcomeConnectionError means a transport-level failure (DNS, refused
	// connection, TLS handshake).
	OutcomeConnectionError Outcome = "connection_error"
	// OutcomeOtherError covers any other per-request failure.
	OutcomeOtherError Outcome = "other_error"
)

// Measurement is the outcome of one request attempt. It is created by the
// executor at request completion and immutable afterwards; the aggregator
// consumes each measurement exactly once.
type Measurement struct {
	User         int           `json:"user"`
	Sequence     int           `json:"sequence"`
	StartedAt    time.Time     `json:"startedAt"`
	Latency      time.Duration `json:"latency"`
	Outcome      Outcome       `json:"outcome"`
	StatusCode   int           `json:"statusCode,omitempty"`
	ResponseSize int64         `json:"responseSize,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// Succeeded reports whether the server delivered a response.
func (m *Measurement) Succeeded() bool {
	return m.Outcome == OutcomeSuccess
}

// HasLatency reports whether the measurement carries a meaningful latency.
// Connection-level and unclassified failures abort before a response cycle
// completes, so their elapsed time is not part of the latency distribution.
func (m *Measurement) HasLatency() bool {
	return m.Outcome == OutcomeSuccess || m.Outcome == OutcomeTimeout
}

// classifyError maps a transport error to an outcome and cause message.
func classifyError(err error) (Outcome, string) {
	if err == nil {
		return OutcomeSuccess, ""
	}

	// Unwrap url.Error to report the underlying cause, keeping its Timeout
	// information first: client deadline expiry surfaces there.
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if uerr.Timeout() {
			return OutcomeTimeout, uerr.Err.Error()
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return OutcomeTimeout, err.Error()
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return OutcomeTimeout, nerr.Error()
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return OutcomeConnectionError, dnsErr.Error()
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return OutcomeConnectionError, opErr.Error()
	}
	var unknownAuth x509.UnknownAuthorityError
	if errors.As(err, &unknownAuth) {
		return OutcomeConnectionError, unknownAuth.Error()
	}
	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return OutcomeConnectionError, hostnameErr.Error()
	}
	var certErr x509.CertificateInvalidError
	if errors.As(err, &certErr) {
		return OutcomeConnectionError, certErr.Error()
	}

	return OutcomeOtherError, err.Error()
}
