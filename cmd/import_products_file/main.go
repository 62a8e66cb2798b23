// Command import_products_file issues signed upload URLs for product CSV files.
package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/abgdnv/cloudshop/internal/importer"
	"github.com/abgdnv/cloudshop/internal/importer/config"
	"github.com/abgdnv/cloudshop/pkg/bootstrap"
	"github.com/abgdnv/cloudshop/pkg/config/configloader"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const serviceName = "import"

func main() {
	cfg, err := configloader.Load[config.Config](serviceName)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	awsCfg, err := bootstrap.NewAWSConfig(context.Background(), cfg.AWS)
	if err != nil {
		logger.Error("Failed to load AWS configuration", "error", err)
		log.Fatal(err)
	}
	presigner := s3.NewPresignClient(s3.NewFromConfig(awsCfg))

	h := importer.NewUploadHandler(presigner, importer.UploadConfig{
		Bucket:     cfg.Bucket.Name,
		Prefix:     cfg.Upload.Prefix,
		Expiration: cfg.Upload.Expiration,
		Origins:    cfg.CORS.Origins,
	}, logger)
	lambda.Start(h.Handle)
}
