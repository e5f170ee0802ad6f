package catalog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"SupremeFabrics/internal/cache"
	"SupremeFabrics/internal/catalog"
	"SupremeFabrics/pkg/kit"
)

const adminHeader = "X-Test-Admin"

func fakeAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(adminHeader) != "1" {
			kit.WriteError(w, r, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func newCatalogTS(t *testing.T, store catalog.Store) *httptest.Server {
	t.Helper()

	s := &catalog.Server{
		Store: store,
		Cache: catalog.NewResponseCache(cache.DefaultTTL),
		Admin: fakeAdmin,
		Log:   zap.NewNop(),
	}

	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

var asAdmin = map[string]string{adminHeader: "1"}

func decodeProducts(t *testing.T, raw []byte) []catalog.Product {
	t.Helper()

	var out []catalog.Product
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode products: %v body=%s", err, string(raw))
	}
	return out
}

func TestCatalog_ListIsCachedByteForByte(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewMemStore())

	resp1, raw1 := do(t, http.MethodGet, ts.URL+"/", nil, nil)
	resp2, raw2 := do(t, http.MethodGet, ts.URL+"/", nil, nil)

	if resp1.StatusCode != http.StatusOK || resp2.StatusCode != http.StatusOK {
		t.Fatalf("status=%d,%d", resp1.StatusCode, resp2.StatusCode)
	}
	if !bytes.Equal(raw1, raw2) {
		t.Fatalf("bodies differ:\n%s\n%s", raw1, raw2)
	}
	if got := resp1.Header.Get("Cache-Control"); got != "public, max-age=300" {
		t.Fatalf("cache-control=%q", got)
	}
	if len(decodeProducts(t, raw1)) != 6 {
		t.Fatalf("want 6 seeded products, body=%s", raw1)
	}
}

func TestCatalog_CreateInvalidatesList(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewMemStore())

	do(t, http.MethodGet, ts.URL+"/", nil, nil)

	resp, raw := do(t, http.MethodPost, ts.URL+"/", map[string]any{
		"name": "X", "description": "Y", "price": 100, "category": "Z",
	}, asAdmin)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", resp.StatusCode, raw)
	}

	var created catalog.Product
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Image != nil {
		t.Fatalf("created=%+v", created)
	}
	if !strings.Contains(string(raw), `"image":null`) {
		t.Fatalf("image should serialize as null, body=%s", raw)
	}

	_, raw = do(t, http.MethodGet, ts.URL+"/", nil, nil)
	products := decodeProducts(t, raw)
	if len(products) != 7 {
		t.Fatalf("len=%d after create", len(products))
	}
	if products[6].ID != created.ID {
		t.Fatalf("new product not last: %+v", products[6])
	}
}

func TestCatalog_UpdateAndDeleteInvalidateItem(t *testing.T) {
	store := catalog.NewMemStore()
	ts := newCatalogTS(t, store)

	all, _ := store.List(context.Background())
	id := all[0].ID

	_, before := do(t, http.MethodGet, ts.URL+"/"+id, nil, nil)

	resp, raw := do(t, http.MethodPut, ts.URL+"/"+id, map[string]any{"price": 999}, asAdmin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status=%d body=%s", resp.StatusCode, raw)
	}

	_, after := do(t, http.MethodGet, ts.URL+"/"+id, nil, nil)
	if bytes.Equal(before, after) {
		t.Fatalf("stale item served after update")
	}

	var p catalog.Product
	if err := json.Unmarshal(after, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Price != 999 || p.Name != all[0].Name {
		t.Fatalf("product=%+v", p)
	}

	resp, _ = do(t, http.MethodDelete, ts.URL+"/"+id, nil, asAdmin)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status=%d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodGet, ts.URL+"/"+id, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status=%d", resp.StatusCode)
	}
}

func TestCatalog_MutationsRequireAdmin(t *testing.T) {
	store := catalog.NewMemStore()
	ts := newCatalogTS(t, store)

	all, _ := store.List(context.Background())
	id := all[0].ID

	cases := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/", map[string]any{"name": "X", "description": "Y", "price": 1, "category": "Z"}},
		{http.MethodPut, "/" + id, map[string]any{"price": 1}},
		{http.MethodDelete, "/" + id, nil},
	}

	for _, tc := range cases {
		resp, raw := do(t, tc.method, ts.URL+tc.path, tc.body, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s %s status=%d body=%s", tc.method, tc.path, resp.StatusCode, raw)
		}
	}

	after, _ := store.List(context.Background())
	if len(after) != 6 || after[0].Price != all[0].Price {
		t.Fatalf("store changed without admin: %+v", after)
	}
}

func TestCatalog_NotFound(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewMemStore())

	for _, tc := range []struct {
		method string
		body   any
		h      map[string]string
	}{
		{http.MethodGet, nil, nil},
		{http.MethodPut, map[string]any{"price": 1}, asAdmin},
		{http.MethodDelete, nil, asAdmin},
	} {
		resp, raw := do(t, tc.method, ts.URL+"/nonexistent", tc.body, tc.h)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s status=%d", tc.method, resp.StatusCode)
		}

		var er kit.ErrorResponse
		if err := json.Unmarshal(raw, &er); err != nil || er.Error != "product not found" {
			t.Fatalf("%s body=%s", tc.method, raw)
		}
	}
}

func TestCatalog_CreateValidation(t *testing.T) {
	store := catalog.NewMemStore()
	ts := newCatalogTS(t, store)

	cases := []struct {
		name  string
		body  any
		field string
	}{
		{"missing name", map[string]any{"description": "d", "price": 1, "category": "c"}, "name"},
		{"blank category", map[string]any{"name": "n", "description": "d", "price": 1, "category": "  "}, "category"},
		{"missing price", map[string]any{"name": "n", "description": "d", "category": "c"}, "price"},
		{"negative price", map[string]any{"name": "n", "description": "d", "price": -1, "category": "c"}, "price"},
		{"string price", map[string]any{"name": "n", "description": "d", "price": "12", "category": "c"}, "price"},
		{"bad image", map[string]any{"name": "n", "description": "d", "price": 1, "category": "c", "image": "ftp://x/y.png"}, "image"},
		{"unknown field", map[string]any{"name": "n", "description": "d", "price": 1, "category": "c", "color": "red"}, "color"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := do(t, http.MethodPost, ts.URL+"/", tc.body, asAdmin)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
			}

			var er struct {
				Error   string          `json:"error"`
				Details []kit.Violation `json:"details"`
			}
			if err := json.Unmarshal(raw, &er); err != nil {
				t.Fatalf("decode: %v body=%s", err, raw)
			}
			if er.Error != "invalid product data" {
				t.Fatalf("error=%q", er.Error)
			}

			found := false
			for _, v := range er.Details {
				if v.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Fatalf("no violation for %q: %+v", tc.field, er.Details)
			}
		})
	}

	all, _ := store.List(context.Background())
	if len(all) != 6 {
		t.Fatalf("invalid creates reached the store: len=%d", len(all))
	}
}

func TestCatalog_ConditionalGet(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewMemStore())

	resp, _ := do(t, http.MethodGet, ts.URL+"/", nil, nil)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatalf("no etag")
	}

	resp, raw := do(t, http.MethodGet, ts.URL+"/", nil, map[string]string{"If-None-Match": etag})
	if resp.StatusCode != http.StatusNotModified {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if len(raw) != 0 {
		t.Fatalf("304 with body %q", raw)
	}

	resp, _ = do(t, http.MethodGet, ts.URL+"/", nil, map[string]string{"If-None-Match": `"other"`})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("mismatched etag status=%d", resp.StatusCode)
	}
}

// blockingListStore parks the first List call after it has read the store,
// until release is closed.
type blockingListStore struct {
	*catalog.MemStore

	armed   atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func (s *blockingListStore) List(ctx context.Context) ([]catalog.Product, error) {
	ps, err := s.MemStore.List(ctx)
	if s.armed.CompareAndSwap(true, false) {
		close(s.read)
		<-s.release
	}
	return ps, err
}

func TestCatalog_SlowListDoesNotCacheAcrossCreate(t *testing.T) {
	store := &blockingListStore{
		MemStore: catalog.NewMemStore(),
		read:     make(chan struct{}),
		release:  make(chan struct{}),
	}
	store.armed.Store(true)
	ts := newCatalogTS(t, store)

	slowDone := make(chan int, 1)
	go func() {
		resp, err := http.Get(ts.URL + "/")
		if err != nil {
			slowDone <- 0
			return
		}
		_ = resp.Body.Close()
		slowDone <- resp.StatusCode
	}()

	<-store.read

	resp, raw := do(t, http.MethodPost, ts.URL+"/", map[string]any{
		"name": "X", "description": "Y", "price": 100, "category": "Z",
	}, map[string]string{adminHeader: "1"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", resp.StatusCode, raw)
	}

	close(store.release)
	if code := <-slowDone; code != http.StatusOK {
		t.Fatalf("slow list status=%d", code)
	}

	resp, raw = do(t, http.MethodGet, ts.URL+"/", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status=%d", resp.StatusCode)
	}
	if n := len(decodeProducts(t, raw)); n != 7 {
		t.Fatalf("list after create returned %d products, want 7", n)
	}
}
