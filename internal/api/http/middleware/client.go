package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/dtroode/folio-server/internal/model"
)

// ClientSetter stores the client description on the request context.
type ClientSetter interface {
	SetClientToContext(ctx context.Context, client model.ClientInfo) context.Context
}

// Client records the caller's IP address and user agent for auditing. It must
// run after handlers.ProxyHeaders so RemoteAddr reflects the real client.
type Client struct {
	contextManager ClientSetter
}

// NewClient creates a new Client middleware.
func NewClient(contextManager ClientSetter) *Client {
	return &Client{contextManager: contextManager}
}

// Handle wraps next with client extraction.
func (m *Client) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := model.ClientInfo{
			IP:        remoteIP(r.RemoteAddr),
			UserAgent: r.UserAgent(),
		}
		next.ServeHTTP(w, r.WithContext(m.contextManager.SetClientToContext(r.Context(), client)))
	})
}

func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
