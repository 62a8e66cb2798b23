// Command authorizer is the API Gateway request authorizer lambda.
package main

import (
	"log"
	"log/slog"

	"github.com/abgdnv/cloudshop/internal/authorizer"
	"github.com/abgdnv/cloudshop/internal/authorizer/config"
	"github.com/abgdnv/cloudshop/pkg/bootstrap"
	"github.com/abgdnv/cloudshop/pkg/config/configloader"
	"github.com/aws/aws-lambda-go/lambda"
)

const serviceName = "authorizer"

func main() {
	cfg, err := configloader.Load[config.Config](serviceName)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	credentials := authorizer.ParseCredentials(cfg.Credentials)
	logger.Info("Authorizer ready", slog.Int("users", len(credentials)))
	lambda.Start(authorizer.NewHandler(authorizer.New(credentials), logger).Handle)
}
