package admin

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/dmitrymomot/shopclient/pkg/apiclient"
	"github.com/dmitrymomot/shopclient/pkg/product"
	"github.com/dmitrymomot/shopclient/pkg/session"
)

// MessageKind classifies an area message for rendering.
type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

// Message is a transient, view-scoped status line. The add-product form and
// the manage list carry separate messages so a failure in one never shows up
// under the other.
type Message struct {
	Text string
	Kind MessageKind
}

// AuthHandler intercepts authorization failures before the controller's own
// error path runs. Satisfied by authguard.Guard.
type AuthHandler interface {
	Handle(ctx context.Context, err error) bool
}

// Snapshot is a point-in-time view of the controller for rendering.
type Snapshot struct {
	Products  []product.Product
	AddMsg    Message
	ManageMsg Message
	EditingID *int64
	Editing   *Draft
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

// Controller orchestrates catalog mutations for privileged users.
//
// Every mutation validates its draft locally before any request goes out,
// and every successful mutation re-runs List instead of patching the cached
// copy: the displayed set always reflects a fresh read of remote truth, at
// the cost of one extra round trip. The remote API enforces authorization;
// the controller still rejects anonymous and non-admin sessions up front so
// a broken UI cannot even attempt the calls.
type Controller struct {
	api      *apiclient.Client
	sessions *session.Store
	guard    AuthHandler
	log      *slog.Logger

	mu        sync.Mutex
	products  []product.Product
	addMsg    Message
	manageMsg Message
	editingID *int64
	editing   *Draft
}

// New creates an admin controller.
func New(api *apiclient.Client, sessions *session.Store, guard AuthHandler, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		sessions: sessions,
		guard:    guard,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) requireAdmin() error {
	sess := c.sessions.Get()
	if sess.IsAnonymous() {
		return ErrNotAuthenticated
	}
	if !sess.IsAdmin {
		return ErrNotAdmin
	}
	return nil
}

// List fetches the full product set for the manage view.
func (c *Controller) List(ctx context.Context) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}

	var list []product.Product
	if err := c.api.Get(ctx, "/products", &list); err != nil {
		if c.guard.Handle(ctx, err) {
			return ErrSessionInvalidated
		}
		c.setManageMsg(apiclient.ErrorMessage(err, "Failed to load products"), MessageError)
		return err
	}

	c.mu.Lock()
	c.products = list
	c.manageMsg = Message{}
	c.mu.Unlock()
	return nil
}

// Create validates the draft and adds a new product. A validation failure
// short-circuits with field-scoped errors and no request. On success the
// product set is refetched.
func (c *Controller) Create(ctx context.Context, d Draft) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}

	payload, err := d.payload()
	if err != nil {
		c.setAddMsg(err.Error(), MessageError)
		return err
	}

	var out struct {
		Message   string `json:"message"`
		ProductID int64  `json:"product_id"`
	}
	if err := c.api.Post(ctx, "/products/add", payload, &out); err != nil {
		if c.guard.Handle(ctx, err) {
			return ErrSessionInvalidated
		}
		c.setAddMsg(apiclient.ErrorMessage(err, "Failed to add product"), MessageError)
		return err
	}

	c.log.InfoContext(ctx, "product created",
		slog.Int64("product_id", out.ProductID),
		slog.String("name", payload.Name),
	)
	c.setAddMsg(out.Message, MessageSuccess)

	return c.refetch(ctx)
}

// Update validates the draft and replaces the product's editable fields.
// On success the product set is refetched.
func (c *Controller) Update(ctx context.Context, id int64, d Draft) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}

	payload, err := d.payload()
	if err != nil {
		c.setManageMsg(err.Error(), MessageError)
		return err
	}

	var out struct {
		Message string `json:"message"`
	}
	if err := c.api.Put(ctx, "/products/update/"+strconv.FormatInt(id, 10), payload, &out); err != nil {
		if c.guard.Handle(ctx, err) {
			return ErrSessionInvalidated
		}
		c.setManageMsg(apiclient.ErrorMessage(err, "Failed to update product"), MessageError)
		return err
	}

	c.log.InfoContext(ctx, "product updated", slog.Int64("product_id", id))
	c.setManageMsg(out.Message, MessageSuccess)

	return c.refetch(ctx)
}

// Remove deletes a product by id. On success the product set is refetched.
func (c *Controller) Remove(ctx context.Context, id int64) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}

	var out struct {
		Message string `json:"message"`
	}
	if err := c.api.Delete(ctx, "/products/delete/"+strconv.FormatInt(id, 10), &out); err != nil {
		if c.guard.Handle(ctx, err) {
			return ErrSessionInvalidated
		}
		c.setManageMsg(apiclient.ErrorMessage(err, "Failed to delete product"), MessageError)
		return err
	}

	c.log.InfoContext(ctx, "product deleted", slog.Int64("product_id", id))
	c.setManageMsg(out.Message, MessageSuccess)

	return c.refetch(ctx)
}

// refetch re-runs the listing after a successful mutation. The mutation
// already succeeded, so a refetch failure surfaces only as a manage-area
// message, never as the operation's error.
func (c *Controller) refetch(ctx context.Context) error {
	var list []product.Product
	if err := c.api.Get(ctx, "/products", &list); err != nil {
		if c.guard.Handle(ctx, err) {
			return nil
		}
		c.log.WarnContext(ctx, "refetch after mutation failed", slog.Any("error", err))
		c.setManageMsg(apiclient.ErrorMessage(err, "Failed to reload products"), MessageError)
		return nil
	}

	c.mu.Lock()
	c.products = list
	c.mu.Unlock()
	return nil
}

// BeginEdit opens an edit flow with a field-by-field copy of p. Any edit
// already in progress is replaced.
func (c *Controller) BeginEdit(p product.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := DraftFrom(p)
	id := p.ID
	c.editingID = &id
	c.editing = &d
}

// SetDraft replaces the in-progress draft with the given field values,
// keeping the edit target. Returns ErrNoDraft when no edit is open.
func (c *Controller) SetDraft(d Draft) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.editing == nil {
		return ErrNoDraft
	}
	c.editing = &d
	return nil
}

// SubmitEdit validates the in-progress draft and updates the product. The
// draft is discarded on success and kept for correction on validation
// failure.
func (c *Controller) SubmitEdit(ctx context.Context) error {
	c.mu.Lock()
	if c.editing == nil {
		c.mu.Unlock()
		return ErrNoDraft
	}
	id := *c.editingID
	draft := *c.editing
	c.mu.Unlock()

	if err := c.Update(ctx, id, draft); err != nil {
		return err
	}

	c.CancelEdit()
	return nil
}

// CancelEdit discards the in-progress draft, if any.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editingID = nil
	c.editing = nil
}

// Snapshot returns a copy of the current state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		AddMsg:    c.addMsg,
		ManageMsg: c.manageMsg,
	}
	if c.products != nil {
		snap.Products = make([]product.Product, len(c.products))
		copy(snap.Products, c.products)
	}
	if c.editingID != nil {
		id := *c.editingID
		draft := *c.editing
		snap.EditingID = &id
		snap.Editing = &draft
	}
	return snap
}

func (c *Controller) setAddMsg(text string, kind MessageKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addMsg = Message{Text: text, Kind: kind}
}

func (c *Controller) setManageMsg(text string, kind MessageKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.manageMsg = Message{Text: text, Kind: kind}
}
