package connectivity

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/dukerupert/pantry/internal/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// OnlineChecker reports the current online state.
type OnlineChecker interface {
	Online() bool
}

// AlwaysOnline is an OnlineChecker for setups without a monitor.
type AlwaysOnline struct{}

func (AlwaysOnline) Online() bool { return true }

// Gate blocks mutating operations while offline.
type Gate struct {
	checker OnlineChecker
	blocked func(op string)
}

// NewGate returns a gate backed by checker. onBlocked, if non-nil, is called
// each time an operation is refused.
func NewGate(checker OnlineChecker, onBlocked func(op string)) *Gate {
	if checker == nil {
		checker = AlwaysOnline{}
	}
	return &Gate{checker: checker, blocked: onBlocked}
}

// RequireOnline returns an EOFFLINE error tagged with op when offline.
func (g *Gate) RequireOnline(op string) error {
	if g == nil || g.checker.Online() {
		return nil
	}
	if g.blocked != nil {
		g.blocked(op)
	}
	return domain.Offline(op)
}

// IsNetworkError reports whether err was caused by the backend being
// unreachable rather than by the request itself.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if domain.ErrorCode(err) == domain.EOFFLINE {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		if s, ok := status.FromError(e); ok {
			switch s.Code() {
			case codes.Unavailable, codes.DeadlineExceeded:
				return true
			}
		}
	}
	return false
}
