package session

import (
	"context"
	"errors"
	"net"
	"sejongauth/lib/sejong"
)

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func translateTransportError(method, url string, attempts int, err error) error {
	if isTimeout(err) {
		return sejong.Errorf(sejong.ConnectionTimeout, "%s %s: timed out after %d attempts: %w", method, url, attempts, err)
	}
	return sejong.Errorf(sejong.ConnectionFailed, "%s %s: %w", method, url, err)
}
