// Command import_file_parser reads uploaded product CSV files and queues their rows.
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
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

const serviceName = "import"

func main() {
	cfg, err := configloader.Load[config.Config](serviceName)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded: %v", cfg)
	if cfg.Queue.URL == "" {
		log.Fatal("queue.url is not configured")
	}

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	awsCfg, err := bootstrap.NewAWSConfig(context.Background(), cfg.AWS)
	if err != nil {
		logger.Error("Failed to load AWS configuration", "error", err)
		log.Fatal(err)
	}

	p := importer.NewParser(s3.NewFromConfig(awsCfg), sqs.NewFromConfig(awsCfg), importer.ParserConfig{
		UploadPrefix: cfg.Upload.Prefix,
		ParsedPrefix: cfg.Parsed.Prefix,
		QueueURL:     cfg.Queue.URL,
		GroupID:      cfg.Queue.GroupID,
		Workers:      cfg.Parser.Workers,
		SendWorkers:  cfg.Parser.SendWorkers,
	}, logger)
	lambda.Start(p.Handle)
}
