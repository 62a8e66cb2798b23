// Package bff routes every inbound request to a backend service chosen by its first path segment.
package bff

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abgdnv/cloudshop/internal/bff/cache"
	"github.com/abgdnv/cloudshop/pkg/web"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	cachedService     = "products"
	defaultExpiration = 2 * time.Minute

	msgCannotProcess  = "Cannot process request"
	msgServiceMissing = "Invalid request: service name is required"
)

// Hop-by-hop headers are meaningful for a single connection only.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// NewHTTPClient returns the forwarding client. Redirects are relayed to the caller, not followed.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type Options struct {
	Expiration time.Duration
	Client     *http.Client
	Origins    []string
}

// Gateway forwards requests verbatim and caches successful product listings.
type Gateway struct {
	services map[string]*url.URL
	cache    cache.Cache
	ttl      time.Duration
	client   *http.Client
	origins  []string
	now      func() time.Time
	lookups  metric.Int64Counter
	logger   *slog.Logger
}

func NewGateway(services map[string]string, c cache.Cache, opts Options, logger *slog.Logger) (*Gateway, error) {
	parsed := make(map[string]*url.URL, len(services))
	for name, raw := range services {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid url for service %q: %w", name, err)
		}
		parsed[name] = u
	}
	if opts.Expiration <= 0 {
		opts.Expiration = defaultExpiration
	}
	if opts.Client == nil {
		opts.Client = NewHTTPClient()
	}
	lookups, err := otel.Meter("bff").Int64Counter("bff_cache_lookups", metric.WithDescription("Product list cache lookups by result"))
	if err != nil {
		return nil, fmt.Errorf("failed to create bff_cache_lookups counter: %w", err)
	}
	return &Gateway{
		services: parsed,
		cache:    c,
		ttl:      opts.Expiration,
		client:   opts.Client,
		origins:  opts.Origins,
		now:      time.Now,
		lookups:  lookups,
		logger:   logger.With("component", "gateway"),
	}, nil
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name, rest := splitService(r.URL.EscapedPath())
	if name == "" {
		g.fail(w, r, http.StatusBadRequest, msgServiceMissing, "")
		return
	}
	base, ok := g.services[name]
	if !ok {
		g.logger.WarnContext(r.Context(), "Unknown service", "service", name)
		g.fail(w, r, http.StatusBadGateway, msgCannotProcess, fmt.Sprintf("service %q is not configured", name))
		return
	}

	target, err := targetURL(base, rest)
	if err != nil {
		g.fail(w, r, http.StatusBadRequest, msgCannotProcess, err.Error())
		return
	}
	target.RawQuery = r.URL.RawQuery

	if name == cachedService && strings.Trim(rest, "/") == "" && r.Method == http.MethodGet {
		g.serveCached(w, r, cacheKey(name, r.URL.RawQuery), target)
		return
	}

	resp, err := g.forward(r, target)
	if err != nil {
		g.logger.ErrorContext(r.Context(), "Forwarding failed", "service", name, "target", target.Redacted(), "error", err)
		g.fail(w, r, http.StatusBadGateway, msgCannotProcess, err.Error())
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	writeHeader(w, resp.StatusCode, resp.Header)
	if _, err := io.Copy(w, resp.Body); err != nil {
		g.logger.WarnContext(r.Context(), "Relaying response body interrupted", "service", name, "error", err)
	}
}

func (g *Gateway) serveCached(w http.ResponseWriter, r *http.Request, key string, target *url.URL) {
	ctx := r.Context()
	entry, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		g.logger.WarnContext(ctx, "Cache read failed", "key", key, "error", err)
	}
	if ok && entry.Fresh(g.now(), g.ttl) {
		g.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "hit")))
		g.logger.DebugContext(ctx, "Serving from cache", "key", key)
		writeHeader(w, entry.Status, entry.Header)
		_, _ = w.Write(entry.Body)
		return
	}

	g.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "miss")))
	g.logger.DebugContext(ctx, "Fetching fresh data", "key", key)
	resp, err := g.forward(r, target)
	if err != nil {
		g.logger.ErrorContext(ctx, "Forwarding failed", "service", cachedService, "target", target.Redacted(), "error", err)
		g.fail(w, r, http.StatusBadGateway, msgCannotProcess, err.Error())
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		g.fail(w, r, http.StatusBadGateway, msgCannotProcess, err.Error())
		return
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		fresh := cache.Entry{Status: resp.StatusCode, Header: resp.Header.Clone(), Body: body, StoredAt: g.now()}
		removeHopHeaders(fresh.Header)
		if err := g.cache.Set(context.WithoutCancel(ctx), key, fresh); err != nil {
			g.logger.WarnContext(ctx, "Cache write failed", "key", key, "error", err)
		}
	}
	writeHeader(w, resp.StatusCode, resp.Header)
	_, _ = io.Copy(w, bytes.NewReader(body))
}

func (g *Gateway) forward(r *http.Request, target *url.URL) (*http.Response, error) {
	var body io.Reader
	if r.Method != http.MethodGet && r.Body != nil {
		body = r.Body
	}
	out, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), body)
	if err != nil {
		return nil, err
	}
	out.Header = r.Header.Clone()
	removeHopHeaders(out.Header)
	if reqID := middleware.GetReqID(r.Context()); reqID != "" && out.Header.Get(web.HeaderRequestID) == "" {
		out.Header.Set(web.HeaderRequestID, reqID)
	}
	out.Host = target.Host
	if body != nil {
		out.ContentLength = r.ContentLength
	}
	return g.client.Do(out)
}

func (g *Gateway) fail(w http.ResponseWriter, r *http.Request, status int, message, details string) {
	web.SetCORSHeaders(w.Header(), g.origins, r.Header.Get("Origin"))
	web.RespondJSON(w, g.logger, status, web.ErrorBody{Error: message, Details: details})
}

func writeHeader(w http.ResponseWriter, status int, header http.Header) {
	dst := w.Header()
	for k, v := range header {
		dst[k] = append([]string(nil), v...)
	}
	removeHopHeaders(dst)
	w.WriteHeader(status)
}

func removeHopHeaders(h http.Header) {
	for _, k := range hopHeaders {
		h.Del(k)
	}
}

// splitService cuts the escaped path into the service name and the raw remainder,
// which keeps its leading slash and is never cleaned.
func splitService(escapedPath string) (string, string) {
	p := strings.TrimLeft(escapedPath, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i], p[i:]
	}
	return p, ""
}

// targetURL appends rest to the base path verbatim, so dot segments and repeated or
// trailing slashes reach the backend as the client sent them.
func targetURL(base *url.URL, rest string) (*url.URL, error) {
	target := *base
	if rest == "" {
		return &target, nil
	}
	escaped := strings.TrimSuffix(base.EscapedPath(), "/") + rest
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", rest, err)
	}
	target.Path = unescaped
	target.RawPath = escaped
	return &target, nil
}

// cacheKey mirrors "<service>-<search>", where search is "?query" or empty.
func cacheKey(service, rawQuery string) string {
	if rawQuery == "" {
		return service + "-"
	}
	return service + "-?" + rawQuery
}
