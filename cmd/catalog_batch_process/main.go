// Command catalog_batch_process writes queued import records to the catalog and announces them.
package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/abgdnv/cloudshop/internal/product/app"
	"github.com/abgdnv/cloudshop/internal/product/config"
	"github.com/abgdnv/cloudshop/pkg/bootstrap"
	"github.com/abgdnv/cloudshop/pkg/config/configloader"
	"github.com/aws/aws-lambda-go/lambda"
)

const serviceName = "catalog"

func main() {
	cfg, err := configloader.Load[config.BatchConfig](serviceName)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	writer, closeFn, err := app.NewBatchWriter(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to set up batch writer", "error", err)
		log.Fatal(err)
	}
	defer closeFn()

	lambda.Start(writer.Handle)
}
