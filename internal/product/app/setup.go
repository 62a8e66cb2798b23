// Package app wires the catalog components together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/cloudshop/internal/authorizer"
	"github.com/abgdnv/cloudshop/internal/product/batch"
	"github.com/abgdnv/cloudshop/internal/product/config"
	"github.com/abgdnv/cloudshop/internal/product/service"
	"github.com/abgdnv/cloudshop/internal/product/store"
	"github.com/abgdnv/cloudshop/internal/product/transport/rest"
	"github.com/abgdnv/cloudshop/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/cloudshop/pkg/config"
	"github.com/abgdnv/cloudshop/pkg/messaging"
	"github.com/abgdnv/cloudshop/pkg/nats"
	"github.com/abgdnv/cloudshop/pkg/server"
	"github.com/abgdnv/cloudshop/pkg/sns"
	"github.com/abgdnv/cloudshop/pkg/web"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
)

type Dependencies struct {
	ProductService service.ProductService
	Authorizer     *authorizer.Authorizer
	Origins        []string
	Logger         *slog.Logger
}

// SetupHttpHandler builds the catalog router. Used by tests to exercise the full middleware chain.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	mux.Use(web.CORS(deps.Origins))
	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		web.RespondMessage(w, deps.Logger, http.StatusNotFound, rest.MsgNotFound)
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		web.RespondMessage(w, deps.Logger, http.StatusMethodNotAllowed, rest.MsgMethodNotAllowed)
	})

	var guards []func(http.Handler) http.Handler
	if deps.Authorizer != nil {
		guards = append(guards, authorizer.BasicAuth(deps.Authorizer, deps.Logger))
	}
	rest.NewHandler(deps.ProductService, deps.Logger).RegisterRoutes(mux, guards...)
	return mux
}

func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, "product", SetupHttpHandler(deps))
}

// NewProductStore opens the configured backend. The returned close function releases its resources.
func NewProductStore(ctx context.Context, cfg pkgconfig.StoreConfig, awsCfg aws.Config) (store.ProductStore, func(), error) {
	switch cfg.Driver {
	case pkgconfig.StoreDriverPostgres:
		if err := store.Migrate(cfg.Database.URL); err != nil {
			return nil, nil, err
		}
		pool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPgStore(pool), pool.Close, nil
	default:
		client := dynamodb.NewFromConfig(awsCfg)
		return store.NewDynamoStore(client, cfg.Products, cfg.Stocks), func() {}, nil
	}
}

// NewPublisher builds the product-created notifier.
func NewPublisher(ctx context.Context, cfg *config.BatchConfig, awsCfg aws.Config) (messaging.Publisher, func(), error) {
	switch cfg.Notifier.Driver {
	case pkgconfig.NotifierDriverNATS:
		nc, err := nats.NewClient(cfg.Nats.Url, cfg.Nats.Timeout)
		if err != nil {
			return nil, nil, err
		}
		js, err := nats.NewJetStreamContext(nc)
		if err != nil {
			return nil, nil, err
		}
		if err := nats.EnsureStream(ctx, js, cfg.Notifier.Topic, messaging.ProductsCreatedSubject); err != nil {
			nc.Close()
			return nil, nil, err
		}
		return nats.NewPublisher(js), nc.Close, nil
	default:
		client := awssns.NewFromConfig(awsCfg)
		return sns.NewPublisher(client, cfg.Notifier.Topic, cfg.Notifier.Subject), func() {}, nil
	}
}

// NewBatchWriter wires store, service and notifier into the batch writer.
func NewBatchWriter(ctx context.Context, cfg *config.BatchConfig, logger *slog.Logger) (*batch.Writer, func(), error) {
	awsCfg, err := bootstrap.NewAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return nil, nil, err
	}
	productStore, closeStore, err := NewProductStore(ctx, cfg.Store, awsCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open product store: %w", err)
	}
	publisher, closePublisher, err := NewPublisher(ctx, cfg, awsCfg)
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("failed to create publisher: %w", err)
	}
	writer := batch.NewWriter(service.NewService(productStore), publisher, cfg.Batch.Workers, logger)
	return writer, func() {
		closePublisher()
		closeStore()
	}, nil
}
