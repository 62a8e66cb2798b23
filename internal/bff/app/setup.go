// Package app wires the gateway, its cache and the HTTP server.
package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/abgdnv/cloudshop/internal/bff"
	"github.com/abgdnv/cloudshop/internal/bff/cache"
	"github.com/abgdnv/cloudshop/internal/bff/config"
	pkgconfig "github.com/abgdnv/cloudshop/pkg/config"
	"github.com/abgdnv/cloudshop/pkg/server"
	"github.com/abgdnv/cloudshop/pkg/web"
)

// NewCache opens the configured cache driver. The returned close function releases its connection.
func NewCache(ctx context.Context, cfg pkgconfig.CacheConfig) (cache.Cache, func(), error) {
	if cfg.Driver == pkgconfig.CacheDriverRedis {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedisCache(client, cfg.Expiration), func() { _ = client.Close() }, nil
	}
	return cache.NewMemoryCache(), func() {}, nil
}

// SetupHttpHandler answers /healthz locally and hands everything else to the gateway.
func SetupHttpHandler(gw http.Handler, logger *slog.Logger) http.Handler {
	mux := server.NewChiRouter(logger)
	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		web.RespondJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("/*", gw)
	return mux
}

func SetupHttpServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*http.Server, func(), error) {
	c, closeCache, err := NewCache(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	gw, err := bff.NewGateway(cfg.Services, c, bff.Options{
		Expiration: cfg.Cache.Expiration,
		Client:     bff.NewHTTPClient(),
		Origins:    cfg.CORS.Origins,
	}, logger)
	if err != nil {
		closeCache()
		return nil, nil, err
	}
	return server.NewHTTPServer(cfg.HTTPServer, "bff", SetupHttpHandler(gw, logger)), closeCache, nil
}
