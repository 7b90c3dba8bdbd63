package core

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
)

// transport failures are split three ways because callers react
// differently: a tls failure triggers the protocol fallback, a timeout
// is surfaced as-is, everything else is a generic network failure.
var ErrNetwork = errors.New("network failure")
var ErrTls = errors.New("tls handshake failure")
var ErrTimeout = errors.New("request timed out")

func classifyTransportErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return fmt.Errorf("%w: %v", ErrTls, err)
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return fmt.Errorf("%w: %v", ErrTls, err)
	}
	// the crypto/tls alert errors don't export a type we can match on
	if strings.Contains(err.Error(), "tls:") ||
		strings.Contains(err.Error(), "handshake failure") {
		return fmt.Errorf("%w: %v", ErrTls, err)
	}

	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
