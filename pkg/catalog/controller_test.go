package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shopclient/pkg/apiclient"
	"github.com/dmitrymomot/shopclient/pkg/authguard"
	"github.com/dmitrymomot/shopclient/pkg/catalog"
	"github.com/dmitrymomot/shopclient/pkg/product"
	"github.com/dmitrymomot/shopclient/pkg/session"
)

var testProducts = []product.Product{
	{ID: 1, Name: "Hammer", Price: 12.5, Category: "Tools", StockQuantity: 3},
	{ID: 2, Name: "Screwdriver", Price: 7.99, Category: "Tools", StockQuantity: 10},
	{ID: 3, Name: "Notebook", Price: 2.5, Category: "Stationery", StockQuantity: 0},
}

type fixture struct {
	controller *catalog.Controller
	store      *session.Store
	guard      *authguard.Guard
}

func newFixture(t *testing.T, handler http.Handler) *fixture {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := session.NewStore(context.Background(), session.NewMemoryPersistence())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	client, err := apiclient.New(srv.URL, store)
	require.NoError(t, err)

	guard := authguard.New(store)
	t.Cleanup(func() { guard.Close() })

	return &fixture{
		controller: catalog.New(client, guard),
		store:      store,
		guard:      guard,
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func catalogHandler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, testProducts)
	})
	mux.HandleFunc("/products/search", func(w http.ResponseWriter, r *http.Request) {
		q := strings.ToLower(r.URL.Query().Get("q"))
		matched := []product.Product{}
		for _, p := range testProducts {
			if strings.Contains(strings.ToLower(p.Name), q) {
				matched = append(matched, p)
			}
		}
		writeJSON(t, w, matched)
	})
	mux.HandleFunc("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "1" {
			writeJSON(t, w, testProducts[0])
			return
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Product not found"}`))
	})
	return mux
}

func TestController_LoadAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	f := newFixture(t, catalogHandler(t))
	assert.Equal(t, catalog.PhaseIdle, f.controller.Snapshot().Phase)

	f.controller.LoadAll(ctx)

	snap := f.controller.Snapshot()
	assert.Equal(t, catalog.PhaseLoaded, snap.Phase)
	assert.Empty(t, snap.Query)
	assert.Len(t, snap.Products, 3)
	assert.Empty(t, snap.Err)
}

func TestController_Search(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("filters by query", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, catalogHandler(t))
		f.controller.Search(ctx, "hammer")

		snap := f.controller.Snapshot()
		assert.Equal(t, catalog.PhaseLoaded, snap.Phase)
		assert.Equal(t, "hammer", snap.Query)
		require.Len(t, snap.Products, 1)
		assert.Equal(t, int64(1), snap.Products[0].ID)
	})

	t.Run("blank query routes to full listing", func(t *testing.T) {
		t.Parallel()

		var searchCalls int
		mux := http.NewServeMux()
		mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, testProducts)
		})
		mux.HandleFunc("/products/search", func(w http.ResponseWriter, r *http.Request) {
			searchCalls++
			writeJSON(t, w, []product.Product{})
		})

		f := newFixture(t, mux)
		f.controller.Search(ctx, "   ")

		snap := f.controller.Snapshot()
		assert.Equal(t, catalog.PhaseLoaded, snap.Phase)
		assert.Empty(t, snap.Query)
		assert.Len(t, snap.Products, 3)
		assert.Zero(t, searchCalls)
		assert.False(t, snap.ZeroResults())
	})

	t.Run("zero results stay distinguishable from cleared search", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, catalogHandler(t))
		f.controller.Search(ctx, "xyzzy")

		snap := f.controller.Snapshot()
		assert.Equal(t, catalog.PhaseLoaded, snap.Phase)
		assert.Equal(t, "xyzzy", snap.Query)
		assert.Empty(t, snap.Products)
		assert.True(t, snap.ZeroResults())
	})

	t.Run("failure surfaces transient message", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"Server error searching products"}`))
		}))
		f.controller.Search(ctx, "hammer")

		snap := f.controller.Snapshot()
		assert.Equal(t, catalog.PhaseFailed, snap.Phase)
		assert.Equal(t, "Server error searching products", snap.Err)
	})
}

func TestController_Supersession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("later-initiated call wins regardless of resolution order", func(t *testing.T) {
		t.Parallel()

		slowStarted := make(chan struct{})
		releaseSlow := make(chan struct{})

		mux := http.NewServeMux()
		mux.HandleFunc("/products/search", func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("q") {
			case "slow":
				close(slowStarted)
				<-releaseSlow
				writeJSON(t, w, []product.Product{{ID: 99, Name: "Stale"}})
			default:
				writeJSON(t, w, []product.Product{{ID: 1, Name: "Fresh"}})
			}
		})

		f := newFixture(t, mux)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.controller.Search(ctx, "slow")
		}()

		<-slowStarted
		f.controller.Search(ctx, "fast")

		// Let the superseded call resolve after the winner already applied.
		close(releaseSlow)
		wg.Wait()

		snap := f.controller.Snapshot()
		assert.Equal(t, catalog.PhaseLoaded, snap.Phase)
		assert.Equal(t, "fast", snap.Query)
		require.Len(t, snap.Products, 1)
		assert.Equal(t, "Fresh", snap.Products[0].Name)
	})

	t.Run("superseded failure is discarded, not displayed", func(t *testing.T) {
		t.Parallel()

		slowStarted := make(chan struct{})
		releaseSlow := make(chan struct{})

		mux := http.NewServeMux()
		mux.HandleFunc("/products/search", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("q") == "slow" {
				close(slowStarted)
				<-releaseSlow
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"message":"boom"}`))
				return
			}
			writeJSON(t, w, []product.Product{{ID: 1, Name: "Fresh"}})
		})

		f := newFixture(t, mux)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.controller.Search(ctx, "slow")
		}()

		<-slowStarted
		f.controller.Search(ctx, "fast")
		close(releaseSlow)
		wg.Wait()

		snap := f.controller.Snapshot()
		assert.Equal(t, catalog.PhaseLoaded, snap.Phase)
		assert.Empty(t, snap.Err, "a superseded failure must never error the UI")
		require.Len(t, snap.Products, 1)
		assert.Equal(t, "Fresh", snap.Products[0].Name)
	})
}

func TestController_Detail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("select and go back without refetch", func(t *testing.T) {
		t.Parallel()

		var listingCalls int
		mux := http.NewServeMux()
		mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
			listingCalls++
			writeJSON(t, w, testProducts)
		})
		mux.HandleFunc("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, testProducts[0])
		})

		f := newFixture(t, mux)
		f.controller.LoadAll(ctx)
		f.controller.SelectDetail(ctx, 1)

		snap := f.controller.Snapshot()
		require.NotNil(t, snap.Detail)
		assert.Equal(t, "Hammer", snap.Detail.Name)
		assert.Len(t, snap.Products, 3, "retained list survives detail mode")

		f.controller.GoBack()

		snap = f.controller.Snapshot()
		assert.Nil(t, snap.Detail)
		assert.Len(t, snap.Products, 3)
		assert.Equal(t, 1, listingCalls, "going back must not refetch")
	})

	t.Run("not found reverts to list with message", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, catalogHandler(t))
		f.controller.LoadAll(ctx)
		f.controller.SelectDetail(ctx, 42)

		snap := f.controller.Snapshot()
		assert.Nil(t, snap.Detail)
		assert.Equal(t, "Product not found", snap.Err)
		assert.Len(t, snap.Products, 3)
	})

	t.Run("auth rejection is intercepted with no local message", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, testProducts)
		})
		mux.HandleFunc("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"Token has expired!"}`))
		})

		f := newFixture(t, mux)
		require.NoError(t, f.store.Set(ctx, session.Authenticated(1, "alice", false, "tok")))

		signals := f.guard.Invalidations(ctx)

		f.controller.LoadAll(ctx)
		f.controller.SelectDetail(ctx, 1)

		snap := f.controller.Snapshot()
		assert.Nil(t, snap.Detail)
		assert.Empty(t, snap.Err, "intercepted auth failure shows no controller-local message")
		assert.True(t, f.store.Get().IsAnonymous(), "403 clears the session entirely")

		select {
		case sig := <-signals.Receive():
			assert.Equal(t, "Token has expired!", sig.Data.Reason)
		case <-time.After(time.Second):
			t.Fatal("no invalidation signal")
		}
	})
}
