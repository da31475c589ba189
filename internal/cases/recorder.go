package cases

import (
	"context"
	"net"
	"net/http"
)

// Client describes who issued a search.
type Client struct {
	UserAgent string
	Addr      string
}

// ClientFromRequest reads the caller's user agent and remote host from r.
func ClientFromRequest(r *http.Request) Client {
	addr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return Client{UserAgent: r.UserAgent(), Addr: addr}
}

// Recorder receives every terminal search outcome exactly once.
type Recorder interface {
	Record(ctx context.Context, q Query, client Client, res *Result)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, q Query, client Client, res *Result)

func (f RecorderFunc) Record(ctx context.Context, q Query, client Client, res *Result) {
	f(ctx, q, client, res)
}
