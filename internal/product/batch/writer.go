// Package batch turns queued import records into catalog products.
package batch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/cloudshop/internal/product/model"
	"github.com/abgdnv/cloudshop/internal/product/service"
	"github.com/abgdnv/cloudshop/pkg/messaging"
	"github.com/abgdnv/cloudshop/pkg/messaging/events"
	lambdaevents "github.com/aws/aws-lambda-go/events"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 10

// Creator stores one product with its stock.
type Creator interface {
	Create(ctx context.Context, product service.ProductCreateDto) (*model.ProductWithStock, error)
}

// Message is one queued import record.
type Message struct {
	ID   string
	Body string
}

// Writer validates a whole batch before writing anything, writes every record concurrently and
// announces each created product once all writes succeeded.
type Writer struct {
	products  Creator
	publisher messaging.Publisher
	workers   int
	logger    *slog.Logger
}

func NewWriter(products Creator, publisher messaging.Publisher, workers int, logger *slog.Logger) *Writer {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Writer{
		products:  products,
		publisher: publisher,
		workers:   workers,
		logger:    logger.With("component", "batch_writer"),
	}
}

// Handle is the SQS entry point. A returned error fails the invocation so the queue redelivers the batch.
func (w *Writer) Handle(ctx context.Context, event lambdaevents.SQSEvent) error {
	messages := make([]Message, len(event.Records))
	for i, r := range event.Records {
		messages[i] = Message{ID: r.MessageId, Body: r.Body}
	}
	w.logger.DebugContext(ctx, "Received batch", "size", len(messages))

	created, err := w.Process(ctx, messages)
	if err != nil {
		w.logger.ErrorContext(ctx, "Batch failed", "size", len(messages), "error", err)
		return err
	}
	w.logger.InfoContext(ctx, "Batch processed", "created", len(created))
	return nil
}

// Process runs the three phases over the batch and returns the created products in message order.
// Any invalid message rejects the batch before the first write; the error then matches errors.ErrInvalidInput.
func (w *Writer) Process(ctx context.Context, messages []Message) ([]model.ProductWithStock, error) {
	records := make([]model.ImportRecord, len(messages))
	for i, msg := range messages {
		record, err := model.DecodeImportRecord([]byte(msg.Body))
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", msg.ID, err)
		}
		records[i] = record
	}

	created := make([]model.ProductWithStock, len(records))
	var writes errgroup.Group
	writes.SetLimit(w.workers)
	for i, record := range records {
		writes.Go(func() error {
			p, err := w.products.Create(ctx, service.FromImportRecord(record))
			if err != nil {
				return fmt.Errorf("message %s: %w", messages[i].ID, err)
			}
			created[i] = *p
			return nil
		})
	}
	if err := writes.Wait(); err != nil {
		return nil, fmt.Errorf("failed to write batch: %w", err)
	}

	var notifications errgroup.Group
	notifications.SetLimit(w.workers)
	for _, p := range created {
		notifications.Go(func() error {
			if err := w.publisher.Publish(ctx, productCreated(p)); err != nil {
				return fmt.Errorf("product %s: %w", p.ID, err)
			}
			w.logger.DebugContext(ctx, "Product created notification sent", "product_id", p.ID)
			return nil
		})
	}
	if err := notifications.Wait(); err != nil {
		return nil, fmt.Errorf("failed to notify: %w", err)
	}
	return created, nil
}

func productCreated(p model.ProductWithStock) events.ProductCreatedEvent {
	return events.ProductCreatedEvent{Product: events.CreatedProduct{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Count:       p.Count,
	}}
}
