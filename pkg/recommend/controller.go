package recommend

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/dmitrymomot/shopclient/pkg/apiclient"
	"github.com/dmitrymomot/shopclient/pkg/product"
	"github.com/dmitrymomot/shopclient/pkg/session"
)

// Phase is the recommendation state of the controller.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseEmpty   Phase = "empty"
	PhaseFailed  Phase = "failed"
)

// Snapshot is a point-in-time view for rendering. UserID is the identity the
// listed products were recommended for; zero when there is none.
type Snapshot struct {
	Phase    Phase
	UserID   int64
	Products []product.Product
}

// Option configures controller creation.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// Controller fetches personalized recommendations. It is an independent
// failure domain: a failed fetch is logged and parked in the Failed phase,
// never surfaced as a user-facing error, never routed through the auth
// guard, and never allowed to touch catalog state. An anonymous session
// short-circuits to Empty without any network call.
type Controller struct {
	api      *apiclient.Client
	sessions *session.Store
	log      *slog.Logger

	mu       sync.Mutex
	gen      uint64
	phase    Phase
	userID   int64
	products []product.Product
}

// New creates a recommendation controller reading identity from sessions.
func New(api *apiclient.Client, sessions *session.Store, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		sessions: sessions,
		log:      slog.New(slog.DiscardHandler),
		phase:    PhaseIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh fetches recommendations for the current identity. The result
// replaces the previous one wholesale; if another Refresh starts before this
// one resolves, this one's result is discarded.
func (c *Controller) Refresh(ctx context.Context) {
	sess := c.sessions.Get()

	c.mu.Lock()
	c.gen++
	gen := c.gen

	if sess.IsAnonymous() {
		c.phase = PhaseEmpty
		c.userID = 0
		c.products = nil
		c.mu.Unlock()
		return
	}
	c.phase = PhaseLoading
	c.mu.Unlock()

	userID := *sess.UserID
	var out struct {
		Recommended []product.Product `json:"recommended_products"`
	}
	err := c.api.Get(ctx, "/recommendations/"+strconv.FormatInt(userID, 10), &out)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.log.DebugContext(ctx, "discarding superseded recommendation result",
			slog.Int64("user_id", userID),
		)
		return
	}

	if err != nil {
		// Degrade silently: recommendations must never block catalog
		// usability, so the failure is reported here and nowhere else.
		c.log.WarnContext(ctx, "recommendation fetch failed",
			slog.Int64("user_id", userID),
			slog.Any("error", err),
		)
		c.phase = PhaseFailed
		c.userID = 0
		c.products = nil
		return
	}

	c.userID = userID
	c.products = out.Recommended
	if len(out.Recommended) == 0 {
		c.phase = PhaseEmpty
		return
	}
	c.phase = PhaseLoaded
}

// Run refreshes once immediately and then on every session change until ctx
// is cancelled, so recommendations follow login and logout.
func (c *Controller) Run(ctx context.Context) {
	sub := c.sessions.Changes(ctx)
	defer sub.Close()

	c.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Receive():
			if !ok {
				return
			}
			c.Refresh(ctx)
		}
	}
}

// Snapshot returns a copy of the current state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Phase:  c.phase,
		UserID: c.userID,
	}
	if c.products != nil {
		snap.Products = make([]product.Product, len(c.products))
		copy(snap.Products, c.products)
	}
	return snap
}
