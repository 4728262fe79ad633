package authguard

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/shopclient/pkg/apiclient"
	"github.com/dmitrymomot/shopclient/pkg/broadcast"
)

// DefaultMessage is shown when the server's rejection carried no message.
const DefaultMessage = "Session expired or unauthorized. Please log in again."

// Invalidated is the session-invalidated signal. The presentation layer
// consumes it and navigates to the login view; the core never drives
// navigation itself.
type Invalidated struct {
	Reason string
}

// Notice is a user-visible notification emitted alongside invalidation.
type Notice struct {
	Text string
}

// SessionStore is the writable slice of the session store the guard needs.
type SessionStore interface {
	Clear(ctx context.Context) error
}

// Option configures guard creation.
type Option func(*Guard)

// WithLogger sets the guard's logger.
func WithLogger(log *slog.Logger) Option {
	return func(g *Guard) {
		if log != nil {
			g.log = log
		}
	}
}

// Guard is the single point through which a session is ever force-terminated
// mid-use. Controllers hand it every request error; when the error is an
// HTTP 401 or 403 the guard clears the session store, emits one user-visible
// notice and one Invalidated signal, and reports the error as handled so the
// controller suppresses its own error path. Everything else is reported as
// not handled and left untouched.
type Guard struct {
	sessions SessionStore
	notices  *broadcast.MemoryBroadcaster[Notice]
	signals  *broadcast.MemoryBroadcaster[Invalidated]
	log      *slog.Logger
}

// New creates a guard that clears sessions on the given store.
func New(sessions SessionStore, opts ...Option) *Guard {
	g := &Guard{
		sessions: sessions,
		notices:  broadcast.NewMemoryBroadcaster[Notice](8),
		signals:  broadcast.NewMemoryBroadcaster[Invalidated](8),
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Handle inspects err and returns true when it was an authorization failure
// that the guard fully handled: session cleared, notice and invalidation
// signal emitted. A false return means the caller owns the error.
func (g *Guard) Handle(ctx context.Context, err error) bool {
	httpErr := apiclient.AsHTTPError(err)
	if httpErr == nil || !httpErr.IsAuthFailure() {
		return false
	}

	if clearErr := g.sessions.Clear(ctx); clearErr != nil {
		g.log.WarnContext(ctx, "failed to clear session after auth rejection",
			slog.Any("error", clearErr),
		)
	}

	message := httpErr.Message
	if message == "" {
		message = DefaultMessage
	}

	g.log.InfoContext(ctx, "session invalidated by remote API",
		slog.Int("status", httpErr.Status),
		slog.String("message", message),
	)

	_ = g.notices.Broadcast(ctx, broadcast.Message[Notice]{Data: Notice{Text: message}})
	_ = g.signals.Broadcast(ctx, broadcast.Message[Invalidated]{Data: Invalidated{Reason: message}})
	return true
}

// Notices returns a subscription to user-visible notices.
func (g *Guard) Notices(ctx context.Context) broadcast.Subscriber[Notice] {
	return g.notices.Subscribe(ctx)
}

// Invalidations returns a subscription to session-invalidated signals.
func (g *Guard) Invalidations(ctx context.Context) broadcast.Subscriber[Invalidated] {
	return g.signals.Subscribe(ctx)
}

// Close releases both feeds.
func (g *Guard) Close() error {
	_ = g.notices.Close()
	return g.signals.Close()
}
