package admin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shopclient/pkg/admin"
	"github.com/dmitrymomot/shopclient/pkg/apiclient"
	"github.com/dmitrymomot/shopclient/pkg/authguard"
	"github.com/dmitrymomot/shopclient/pkg/product"
	"github.com/dmitrymomot/shopclient/pkg/session"
	"github.com/dmitrymomot/shopclient/pkg/validator"
)

// fakeCatalog is an in-memory stand-in for the remote store's admin surface.
type fakeCatalog struct {
	mu       sync.Mutex
	products map[int64]product.Product
	nextID   int64
	requests atomic.Int64
	reject   int // when non-zero, every mutation answers with this status
}

func newFakeCatalog(seed ...product.Product) *fakeCatalog {
	f := &fakeCatalog{products: make(map[int64]product.Product), nextID: 1}
	for _, p := range seed {
		f.products[p.ID] = p
		if p.ID >= f.nextID {
			f.nextID = p.ID + 1
		}
	}
	return f
}

func (f *fakeCatalog) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		list := make([]product.Product, 0, len(f.products))
		for _, p := range f.products {
			list = append(list, p)
		}
		f.mu.Unlock()
		json.NewEncoder(w).Encode(list)
	})
	mux.HandleFunc("POST /products/add", func(w http.ResponseWriter, r *http.Request) {
		if f.rejected(w) {
			return
		}
		var p product.Product
		json.NewDecoder(r.Body).Decode(&p)
		f.mu.Lock()
		p.ID = f.nextID
		f.nextID++
		f.products[p.ID] = p
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"message": "Product added successfully", "product_id": p.ID})
	})
	mux.HandleFunc("PUT /products/update/{id}", func(w http.ResponseWriter, r *http.Request) {
		if f.rejected(w) {
			return
		}
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		var p product.Product
		json.NewDecoder(r.Body).Decode(&p)
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.products[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Product not found"}`))
			return
		}
		p.ID = id
		f.products[id] = p
		json.NewEncoder(w).Encode(map[string]string{"message": "Product updated successfully"})
	})
	mux.HandleFunc("DELETE /products/delete/{id}", func(w http.ResponseWriter, r *http.Request) {
		if f.rejected(w) {
			return
		}
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		f.mu.Lock()
		delete(f.products, id)
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"message": "Product deleted successfully"})
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		mux.ServeHTTP(w, r)
	})
}

func (f *fakeCatalog) rejected(w http.ResponseWriter) bool {
	f.mu.Lock()
	status := f.reject
	f.mu.Unlock()
	if status == 0 {
		return false
	}
	w.WriteHeader(status)
	w.Write([]byte(`{"message":"Admin access required"}`))
	return true
}

type fixture struct {
	controller *admin.Controller
	store      *session.Store
	guard      *authguard.Guard
	catalog    *fakeCatalog
}

func newFixture(t *testing.T, f *fakeCatalog) *fixture {
	t.Helper()

	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	store, err := session.NewStore(context.Background(), session.NewMemoryPersistence())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	client, err := apiclient.New(srv.URL, store)
	require.NoError(t, err)

	guard := authguard.New(store)
	t.Cleanup(func() { guard.Close() })

	return &fixture{
		controller: admin.New(client, store, guard),
		store:      store,
		guard:      guard,
		catalog:    f,
	}
}

func loginAdmin(t *testing.T, store *session.Store) {
	t.Helper()
	require.NoError(t, store.Set(context.Background(), session.Authenticated(1, "root", true, "tok-admin")))
}

func validDraft() admin.Draft {
	return admin.Draft{
		Name:          "Widget",
		Description:   "",
		Price:         "9.99",
		Category:      "Tools",
		ImageURL:      "",
		StockQuantity: "5",
	}
}

func TestController_Privileges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("anonymous session is rejected locally", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, newFakeCatalog())

		assert.ErrorIs(t, f.controller.List(ctx), admin.ErrNotAuthenticated)
		assert.ErrorIs(t, f.controller.Create(ctx, validDraft()), admin.ErrNotAuthenticated)
		assert.ErrorIs(t, f.controller.Remove(ctx, 1), admin.ErrNotAuthenticated)
		assert.Zero(t, f.catalog.requests.Load(), "defensive checks must not reach the network")
	})

	t.Run("non-admin session is rejected locally", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, newFakeCatalog())
		require.NoError(t, f.store.Set(ctx, session.Authenticated(2, "alice", false, "tok")))

		assert.ErrorIs(t, f.controller.Create(ctx, validDraft()), admin.ErrNotAdmin)
		assert.ErrorIs(t, f.controller.Update(ctx, 1, validDraft()), admin.ErrNotAdmin)
		assert.Zero(t, f.catalog.requests.Load())
	})
}

func TestController_Create(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("round trip assigns id and refetches", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, newFakeCatalog())
		loginAdmin(t, f.store)

		require.NoError(t, f.controller.Create(ctx, validDraft()))

		snap := f.controller.Snapshot()
		require.Len(t, snap.Products, 1)
		created := snap.Products[0]
		assert.NotZero(t, created.ID)
		assert.Equal(t, "Widget", created.Name)
		assert.Equal(t, 9.99, created.Price)
		assert.Equal(t, "Tools", created.Category)
		assert.Equal(t, 5, created.StockQuantity)
		assert.Equal(t, admin.MessageSuccess, snap.AddMsg.Kind)
	})

	t.Run("empty name short-circuits with field error and no request", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, newFakeCatalog())
		loginAdmin(t, f.store)

		d := validDraft()
		d.Name = ""
		err := f.controller.Create(ctx, d)

		verrs := validator.ExtractValidationErrors(err)
		require.NotNil(t, verrs)
		assert.True(t, verrs.Has("name"))
		assert.Zero(t, f.catalog.requests.Load(), "validation failure must issue no request")
		assert.Equal(t, admin.MessageError, f.controller.Snapshot().AddMsg.Kind)
	})

	t.Run("negative price and bad stock are field errors", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, newFakeCatalog())
		loginAdmin(t, f.store)

		d := validDraft()
		d.Price = "-1"
		d.StockQuantity = "2.5"
		err := f.controller.Create(ctx, d)

		verrs := validator.ExtractValidationErrors(err)
		require.NotNil(t, verrs)
		assert.ElementsMatch(t, []string{"price", "stock_quantity"}, verrs.Fields())
		assert.Zero(t, f.catalog.requests.Load())
	})

	t.Run("server rejection surfaces in the add area", func(t *testing.T) {
		t.Parallel()

		cat := newFakeCatalog()
		cat.reject = http.StatusConflict
		f := newFixture(t, cat)
		loginAdmin(t, f.store)

		err := f.controller.Create(ctx, validDraft())
		require.Error(t, err)

		snap := f.controller.Snapshot()
		assert.Equal(t, admin.MessageError, snap.AddMsg.Kind)
		assert.Equal(t, "Admin access required", snap.AddMsg.Text)
		assert.Empty(t, snap.ManageMsg.Text, "failure must stay scoped to the add form")
	})
}

func TestController_AuthInterception(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cat := newFakeCatalog()
	cat.reject = http.StatusForbidden
	f := newFixture(t, cat)
	loginAdmin(t, f.store)

	signals := f.guard.Invalidations(ctx)

	err := f.controller.Create(ctx, validDraft())
	assert.ErrorIs(t, err, admin.ErrSessionInvalidated)

	sess := f.store.Get()
	assert.Nil(t, sess.UserID)
	assert.Empty(t, sess.Username)
	assert.False(t, sess.IsAdmin)
	assert.Empty(t, sess.Token)

	snap := f.controller.Snapshot()
	assert.Empty(t, snap.AddMsg.Text, "intercepted auth failure shows no controller-local message")

	select {
	case sig := <-signals.Receive():
		assert.Equal(t, "Admin access required", sig.Data.Reason)
	case <-time.After(time.Second):
		t.Fatal("no invalidation signal")
	}
	select {
	case sig := <-signals.Receive():
		t.Fatalf("unexpected second signal: %+v", sig.Data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestController_Remove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	f := newFixture(t, newFakeCatalog(
		product.Product{ID: 1, Name: "Hammer", Price: 12.5, Category: "Tools", StockQuantity: 3},
		product.Product{ID: 2, Name: "Notebook", Price: 2.5, Category: "Stationery", StockQuantity: 7},
	))
	loginAdmin(t, f.store)

	require.NoError(t, f.controller.Remove(ctx, 1))

	snap := f.controller.Snapshot()
	require.Len(t, snap.Products, 1)
	assert.Equal(t, int64(2), snap.Products[0].ID, "removed id must be gone from the refetched list")
	assert.Equal(t, admin.MessageSuccess, snap.ManageMsg.Kind)
}

func TestController_EditFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	seed := product.Product{ID: 1, Name: "Hammer", Description: "claw", Price: 12.5, Category: "Tools", ImageURL: "http://img/1", StockQuantity: 3}

	t.Run("begin edit copies every editable field", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, newFakeCatalog(seed))
		f.controller.BeginEdit(seed)

		snap := f.controller.Snapshot()
		require.NotNil(t, snap.Editing)
		require.NotNil(t, snap.EditingID)
		assert.Equal(t, int64(1), *snap.EditingID)
		assert.Equal(t, admin.Draft{
			Name:          "Hammer",
			Description:   "claw",
			Price:         "12.5",
			Category:      "Tools",
			ImageURL:      "http://img/1",
			StockQuantity: "3",
		}, *snap.Editing)
	})

	t.Run("submit updates and discards the draft", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, newFakeCatalog(seed))
		loginAdmin(t, f.store)

		f.controller.BeginEdit(seed)
		draft := admin.DraftFrom(seed)
		draft.Name = "Sledgehammer"
		draft.Price = "19.99"
		require.NoError(t, f.controller.SetDraft(draft))

		require.NoError(t, f.controller.SubmitEdit(ctx))

		snap := f.controller.Snapshot()
		assert.Nil(t, snap.Editing, "successful submit discards the draft")
		require.Len(t, snap.Products, 1)
		assert.Equal(t, "Sledgehammer", snap.Products[0].Name)
		assert.Equal(t, 19.99, snap.Products[0].Price)
	})

	t.Run("validation failure keeps the draft for correction", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, newFakeCatalog(seed))
		loginAdmin(t, f.store)

		f.controller.BeginEdit(seed)
		draft := admin.DraftFrom(seed)
		draft.Category = ""
		require.NoError(t, f.controller.SetDraft(draft))

		err := f.controller.SubmitEdit(ctx)
		verrs := validator.ExtractValidationErrors(err)
		require.NotNil(t, verrs)
		assert.True(t, verrs.Has("category"))

		assert.NotNil(t, f.controller.Snapshot().Editing, "draft survives a failed submit")
	})

	t.Run("cancel discards the draft", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, newFakeCatalog(seed))
		f.controller.BeginEdit(seed)
		f.controller.CancelEdit()

		snap := f.controller.Snapshot()
		assert.Nil(t, snap.Editing)
		assert.Nil(t, snap.EditingID)
	})

	t.Run("submit without an open edit", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, newFakeCatalog(seed))
		assert.ErrorIs(t, f.controller.SubmitEdit(ctx), admin.ErrNoDraft)
	})
}
