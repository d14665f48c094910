/*
 * backend/internal/errhints/errhints.go
 *
 * Turns raw transport errors into messages a user can act on.
 */

package errhints

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// hint maps an error-text pattern to a user-facing explanation.
type hint struct {
	tokens  []string
	message string
}

var hints = []hint{
	{
		tokens:  []string{"connection refused"},
		message: "the backend is not reachable; check that it is running and the base URL in settings is correct",
	},
	{
		tokens:  []string{"no such host", "server misbehaving"},
		message: "the backend hostname did not resolve; check the base URL in settings",
	},
	{
		tokens:  []string{"connection reset", "broken pipe", "unexpected eof"},
		message: "the connection to the backend was interrupted",
	},
	{
		tokens:  []string{"certificate", "tls handshake", "x509"},
		message: "the TLS handshake with the backend failed; check the certificate configuration",
	},
	{
		tokens:  []string{"unauthorized", "status 401", "status 403"},
		message: "the backend rejected the request; check credentials",
	},
}

// Describe returns the error text with a short hint appended when the error
// matches a known failure mode. Plain errors pass through unchanged.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("%v (the backend did not respond in time)", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("%v (the backend did not respond in time)", err)
	}

	lowered := strings.ToLower(err.Error())
	for _, h := range hints {
		for _, token := range h.tokens {
			if strings.Contains(lowered, token) {
				return fmt.Sprintf("%v (%s)", err, h.message)
			}
		}
	}
	return err.Error()
}
