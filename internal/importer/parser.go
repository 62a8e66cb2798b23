package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/abgdnv/cloudshop/internal/product/model"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"golang.org/x/sync/errgroup"
)

const (
	msgFilesProcessed = "Files processed successfully"
	msgParseFailed    = "An error occured while parsing file"
)

// ObjectStore is the subset of the S3 client used to read and relocate uploaded files.
type ObjectStore interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// QueueSender is the subset of the SQS client used to enqueue records.
type QueueSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type ParserConfig struct {
	UploadPrefix string
	ParsedPrefix string
	QueueURL     string
	GroupID      string
	Workers      int
	SendWorkers  int
}

// Parser reads uploaded CSV files, enqueues one message per row and moves each finished file
// under the parsed prefix.
type Parser struct {
	objects ObjectStore
	queue   QueueSender
	cfg     ParserConfig
	logger  *slog.Logger
}

func NewParser(objects ObjectStore, queue QueueSender, cfg ParserConfig, logger *slog.Logger) *Parser {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.SendWorkers <= 0 {
		cfg.SendWorkers = 16
	}
	return &Parser{objects: objects, queue: queue, cfg: cfg, logger: logger.With("component", "parser")}
}

type objectRef struct {
	bucket string
	key    string
}

// Handle processes every accepted object of the notification. Objects are independent: one
// failing object does not undo the others, but the invocation then reports failure.
func (p *Parser) Handle(ctx context.Context, event events.S3Event) (events.APIGatewayProxyResponse, error) {
	p.logger.DebugContext(ctx, "Received S3 event", "records", len(event.Records))

	refs := make([]objectRef, 0, len(event.Records))
	var failed bool
	for _, r := range event.Records {
		raw := r.S3.Object.Key
		if !strings.HasPrefix(raw, p.cfg.UploadPrefix) || !strings.HasSuffix(raw, ".csv") {
			p.logger.InfoContext(ctx, "Skipping object", "key", raw)
			continue
		}
		key, err := url.QueryUnescape(raw)
		if err != nil {
			p.logger.ErrorContext(ctx, "Cannot decode object key", "key", raw, "error", fmt.Errorf("%w: %w", ErrInvalidKey, err))
			failed = true
			continue
		}
		refs = append(refs, objectRef{bucket: r.S3.Bucket.Name, key: key})
	}

	results := make([]error, len(refs))
	var g errgroup.Group
	g.SetLimit(p.cfg.Workers)
	for i, ref := range refs {
		g.Go(func() error {
			results[i] = p.processObject(ctx, ref)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range results {
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to process object", "bucket", refs[i].bucket, "key", refs[i].key, "error", err)
			failed = true
		}
	}
	if failed {
		return jsonMessage(http.StatusInternalServerError, msgParseFailed), nil
	}
	return jsonMessage(http.StatusOK, msgFilesProcessed), nil
}

func (p *Parser) processObject(ctx context.Context, ref objectRef) error {
	records, err := p.readObject(ctx, ref)
	if err != nil {
		return err
	}
	if err := p.enqueue(ctx, records); err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "Enqueued records", "key", ref.key, "count", len(records))
	return p.relocate(ctx, ref)
}

func (p *Parser) readObject(ctx context.Context, ref objectRef) ([]model.ImportRecord, error) {
	out, err := p.objects.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ref.bucket),
		Key:    aws.String(ref.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	if out.Body == nil {
		return nil, ErrEmptyObject
	}
	defer out.Body.Close()

	var records []model.ImportRecord
	for record, err := range ReadRecords(out.Body) {
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", ref.key, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (p *Parser) enqueue(ctx context.Context, records []model.ImportRecord) error {
	var g errgroup.Group
	g.SetLimit(p.cfg.SendWorkers)
	for _, record := range records {
		g.Go(func() error {
			body, err := json.Marshal(record)
			if err != nil {
				return err
			}
			input := &sqs.SendMessageInput{
				QueueUrl:    aws.String(p.cfg.QueueURL),
				MessageBody: aws.String(string(body)),
			}
			if p.cfg.GroupID != "" {
				input.MessageGroupId = aws.String(p.cfg.GroupID)
			}
			if _, err := p.queue.SendMessage(ctx, input); err != nil {
				return fmt.Errorf("send message: %w", err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (p *Parser) relocate(ctx context.Context, ref objectRef) error {
	target := p.cfg.ParsedPrefix + strings.TrimPrefix(ref.key, p.cfg.UploadPrefix)
	source := ref.bucket + "/" + (&url.URL{Path: ref.key}).EscapedPath()
	if _, err := p.objects.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(ref.bucket),
		CopySource: aws.String(source),
		Key:        aws.String(target),
	}); err != nil {
		return fmt.Errorf("copy object: %w", err)
	}
	if _, err := p.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(ref.bucket),
		Key:    aws.String(ref.key),
	}); err != nil {
		p.logger.WarnContext(ctx, "Copied object but could not delete source", "key", ref.key, "error", err)
		return nil
	}
	p.logger.InfoContext(ctx, "Moved object", "from", ref.key, "to", target)
	return nil
}

func jsonMessage(status int, message string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]string{"message": message})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
