package bff

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abgdnv/cloudshop/internal/bff/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	method string
	uri    string
	host   string
	header http.Header
	body   string
}

type recorder struct {
	mu   sync.Mutex
	last received
}

func (r *recorder) get() received {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func newBackend(t *testing.T, status int, body string) (*httptest.Server, *recorder, *atomic.Int32) {
	t.Helper()
	got := &recorder{}
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		data, _ := io.ReadAll(r.Body)
		got.mu.Lock()
		got.last = received{method: r.Method, uri: r.URL.RequestURI(), host: r.Host, header: r.Header.Clone(), body: string(data)}
		got.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Backend", "yes")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, got, &hits
}

func newTestGateway(t *testing.T, services map[string]string) *Gateway {
	t.Helper()
	gw, err := NewGateway(services, cache.NewMemoryCache(), Options{Client: &http.Client{}}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return gw
}

func serve(gw http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, req)
	return rec
}

func TestGateway_Forwarding(t *testing.T) {
	testCases := []struct {
		name         string
		method       string
		target       string
		body         string
		status       int
		expectedURI  string
		expectedBody string
	}{
		{
			name:         "post with body and query",
			method:       http.MethodPost,
			target:       "/cart/api/items?user=1",
			body:         `{"id":"p1"}`,
			status:       http.StatusCreated,
			expectedURI:  "/v1/api/items?user=1",
			expectedBody: `{"id":"p1"}`,
		},
		{
			name:        "get drops body",
			method:      http.MethodGet,
			target:      "/cart//api/",
			body:        "ignored",
			status:      http.StatusOK,
			expectedURI: "/v1//api/",
		},
		{
			name:        "trailing slash kept",
			method:      http.MethodGet,
			target:      "/cart/items/",
			status:      http.StatusOK,
			expectedURI: "/v1/items/",
		},
		{
			name:        "repeated slashes kept",
			method:      http.MethodGet,
			target:      "/cart/a//b",
			status:      http.StatusOK,
			expectedURI: "/v1/a//b",
		},
		{
			name:        "dot segments stay under the base path",
			method:      http.MethodGet,
			target:      "/cart/../admin",
			status:      http.StatusOK,
			expectedURI: "/v1/../admin",
		},
		{
			name:        "escaped characters kept",
			method:      http.MethodGet,
			target:      "/cart/a%2Fb/c%20d",
			status:      http.StatusOK,
			expectedURI: "/v1/a%2Fb/c%20d",
		},
		{
			name:         "delete",
			method:       http.MethodDelete,
			target:       "/cart/api/items/7",
			status:       http.StatusNoContent,
			expectedURI:  "/v1/api/items/7",
			expectedBody: "",
		},
		{
			name:         "backend error relayed",
			method:       http.MethodPut,
			target:       "/cart/api/items/7",
			body:         "{}",
			status:       http.StatusTeapot,
			expectedURI:  "/v1/api/items/7",
			expectedBody: "{}",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			backendBody := `{"ok":true}`
			if tc.status == http.StatusNoContent {
				backendBody = ""
			}
			backend, rcv, _ := newBackend(t, tc.status, backendBody)
			gw := newTestGateway(t, map[string]string{"cart": backend.URL + "/v1"})

			// when
			rec := serve(gw, tc.method, tc.target, tc.body)

			// then
			got := rcv.get()
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "yes", rec.Header().Get("X-Backend"))
			assert.Equal(t, backendBody, rec.Body.String())
			assert.Equal(t, tc.method, got.method)
			assert.Equal(t, tc.expectedURI, got.uri)
			assert.Equal(t, strings.TrimPrefix(backend.URL, "http://"), got.host)
			assert.Equal(t, tc.expectedBody, got.body)
		})
	}
}

func TestGateway_ForwardsHeaders(t *testing.T) {
	// given
	backend, rcv, _ := newBackend(t, http.StatusOK, "[]")
	gw := newTestGateway(t, map[string]string{"profile": backend.URL})
	req := httptest.NewRequest(http.MethodGet, "/profile/me", nil)
	req.Header.Set("Authorization", "Basic YWxpY2U6c2VjcmV0")
	req.Header.Set("Connection", "keep-alive")
	rec := httptest.NewRecorder()

	// when
	gw.ServeHTTP(rec, req)

	// then
	got := rcv.get()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Basic YWxpY2U6c2VjcmV0", got.header.Get("Authorization"))
	assert.Equal(t, "/me", got.uri)
}

func TestGateway_Errors(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	testCases := []struct {
		name           string
		target         string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "no service segment",
			target:         "/",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid request: service name is required"}`,
		},
		{
			name:           "unknown service",
			target:         "/unknownservice/x",
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"Cannot process request","details":"service \"unknownservice\" is not configured"}`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			gw := newTestGateway(t, map[string]string{"cart": closedURL})

			// when
			rec := serve(gw, http.MethodGet, tc.target, "")

			// then
			assert.Equal(t, tc.expectedStatus, rec.Code)
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}

	t.Run("backend unreachable", func(t *testing.T) {
		// given
		gw := newTestGateway(t, map[string]string{"cart": closedURL, "products": closedURL})

		for _, target := range []string{"/cart/items", "/products"} {
			// when
			rec := serve(gw, http.MethodGet, target, "")

			// then
			assert.Equal(t, http.StatusBadGateway, rec.Code, target)
			assert.Contains(t, rec.Body.String(), `"error":"Cannot process request"`)
		}
	})
}

func TestGateway_ProductsCache(t *testing.T) {
	// given
	backend, _, hits := newBackend(t, http.StatusOK, `[{"id":"1"}]`)
	gw := newTestGateway(t, map[string]string{"products": backend.URL})
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	gw.now = func() time.Time { return now }

	// when
	first := serve(gw, http.MethodGet, "/products?page=1", "")
	now = now.Add(time.Minute)
	second := serve(gw, http.MethodGet, "/products?page=1", "")

	// then
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "yes", second.Header().Get("X-Backend"))

	// a different query is a different entry
	serve(gw, http.MethodGet, "/products?page=2", "")
	assert.Equal(t, int32(2), hits.Load())

	// expired after two minutes
	now = now.Add(time.Minute)
	serve(gw, http.MethodGet, "/products?page=1", "")
	assert.Equal(t, int32(3), hits.Load())
}

func TestGateway_ProductsCache_Bypass(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		method string
		target string
	}{
		{name: "non-2xx not stored", status: http.StatusInternalServerError, method: http.MethodGet, target: "/products"},
		{name: "single product not cached", status: http.StatusOK, method: http.MethodGet, target: "/products/42"},
		{name: "post not cached", status: http.StatusCreated, method: http.MethodPost, target: "/products"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			backend, _, hits := newBackend(t, tc.status, `{}`)
			gw := newTestGateway(t, map[string]string{"products": backend.URL})

			// when
			first := serve(gw, tc.method, tc.target, "")
			second := serve(gw, tc.method, tc.target, "")

			// then
			assert.Equal(t, tc.status, first.Code)
			assert.Equal(t, tc.status, second.Code)
			assert.Equal(t, int32(2), hits.Load())
		})
	}
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "products-", cacheKey("products", ""))
	assert.Equal(t, "products-?a=1&b=2", cacheKey("products", "a=1&b=2"))
}

func TestSplitService(t *testing.T) {
	testCases := []struct {
		path         string
		expectedName string
		expectedRest string
	}{
		{path: "", expectedName: "", expectedRest: ""},
		{path: "/", expectedName: "", expectedRest: ""},
		{path: "/products", expectedName: "products", expectedRest: ""},
		{path: "/products/", expectedName: "products", expectedRest: "/"},
		{path: "/cart/../admin", expectedName: "cart", expectedRest: "/../admin"},
		{path: "//cart/a//b", expectedName: "cart", expectedRest: "/a//b"},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			name, rest := splitService(tc.path)
			assert.Equal(t, tc.expectedName, name)
			assert.Equal(t, tc.expectedRest, rest)
		})
	}
}
