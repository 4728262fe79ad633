package catalog

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrymomot/shopclient/pkg/apiclient"
	"github.com/dmitrymomot/shopclient/pkg/product"
)

// Phase is the listing state of the controller.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseFailed  Phase = "failed"
)

// AuthHandler intercepts authorization failures before the controller's own
// error path runs. Satisfied by authguard.Guard.
type AuthHandler interface {
	Handle(ctx context.Context, err error) bool
}

// Snapshot is a point-in-time view of the controller for rendering. Query
// distinguishes a cleared search (empty Query, full listing) from a search
// that genuinely matched nothing (non-empty Query, empty Products).
type Snapshot struct {
	Phase    Phase
	Query    string
	Products []product.Product
	Detail   *product.Product
	Err      string
}

// ZeroResults reports whether the displayed list is the empty outcome of a
// real search, as opposed to a cleared one.
func (s Snapshot) ZeroResults() bool {
	return s.Phase == PhaseLoaded && s.Query != "" && len(s.Products) == 0
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

// Controller sequences listing, searching, and detail viewing of products.
//
// Listing calls race against a remote store that may answer out of order;
// the controller resolves that with a generation counter: every initiated
// LoadAll or Search bumps it, and a result is applied only if its generation
// is still current when it resolves. A superseded result, success or
// failure alike, is discarded without touching the displayed list.
//
// All mutation of controller state happens at resolution points under the
// mutex; the in-flight HTTP request itself is never aborted.
type Controller struct {
	api   *apiclient.Client
	guard AuthHandler
	log   *slog.Logger

	mu       sync.Mutex
	gen      uint64
	phase    Phase
	query    string
	products []product.Product
	detail   *product.Product
	errMsg   string
}

// New creates a catalog controller.
func New(api *apiclient.Client, guard AuthHandler, opts ...Option) *Controller {
	c := &Controller{
		api:   api,
		guard: guard,
		log:   slog.New(slog.DiscardHandler),
		phase: PhaseIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadAll fetches the full product listing. The fetch is unauthenticated.
func (c *Controller) LoadAll(ctx context.Context) {
	c.fetchListing(ctx, "")
}

// Search fetches the listing filtered by query. A blank query is the same as
// LoadAll: it clears the search rather than searching for nothing.
func (c *Controller) Search(ctx context.Context, query string) {
	c.fetchListing(ctx, strings.TrimSpace(query))
}

func (c *Controller) fetchListing(ctx context.Context, query string) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.phase = PhaseLoading
	c.mu.Unlock()

	path := "/products"
	if query != "" {
		path = "/products/search?q=" + url.QueryEscape(query)
	}

	var list []product.Product
	err := c.api.Get(ctx, path, &list)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		// A newer listing call started while this one was in flight. Its
		// result wins no matter which resolves first; this one is dropped
		// whole, errors included.
		c.log.DebugContext(ctx, "discarding superseded listing result",
			slog.Uint64("generation", gen),
			slog.Uint64("current", c.gen),
		)
		return
	}

	if err != nil {
		if c.guard.Handle(ctx, err) {
			// Session was invalidated centrally; show nothing of our own.
			c.phase = PhaseLoaded
			c.errMsg = ""
			return
		}
		c.log.WarnContext(ctx, "listing fetch failed", slog.Any("error", err))
		c.phase = PhaseFailed
		c.errMsg = apiclient.ErrorMessage(err, "Failed to load products")
		return
	}

	c.phase = PhaseLoaded
	c.query = query
	c.products = list
	c.errMsg = ""
}

// SelectDetail fetches one product and enters detail mode. Requires a
// credential on the wire; on failure the controller stays on the retained
// list with a transient message, or with none at all when the failure was an
// intercepted auth rejection.
func (c *Controller) SelectDetail(ctx context.Context, productID int64) {
	var p product.Product
	err := c.api.Get(ctx, "/products/"+strconv.FormatInt(productID, 10), &p)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.detail = nil
		if c.guard.Handle(ctx, err) {
			c.errMsg = ""
			return
		}
		c.log.WarnContext(ctx, "detail fetch failed",
			slog.Int64("product_id", productID),
			slog.Any("error", err),
		)
		c.errMsg = apiclient.ErrorMessage(err, "Failed to load product details")
		return
	}

	c.detail = &p
	c.errMsg = ""
}

// GoBack leaves detail mode and shows the previously retained list without
// refetching it.
func (c *Controller) GoBack() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail = nil
}

// Snapshot returns a copy of the current state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Phase: c.phase,
		Query: c.query,
		Err:   c.errMsg,
	}
	if c.products != nil {
		snap.Products = make([]product.Product, len(c.products))
		copy(snap.Products, c.products)
	}
	if c.detail != nil {
		detail := *c.detail
		snap.Detail = &detail
	}
	return snap
}
