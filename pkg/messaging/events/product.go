package events

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/abgdnv/cloudshop/pkg/messaging"
)

// LowStockThreshold is the highest count that still marks a product as high priority.
const LowStockThreshold = 10

const (
	PriorityHigh   = "HIGH-PRIORITY"
	PriorityNormal = "NORMAL"
)

// CreatedProduct is the product as it appears in the notification body.
type CreatedProduct struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Count       int64   `json:"count"`
}

// ProductCreatedEvent announces one product written by the catalog.
type ProductCreatedEvent struct {
	Product CreatedProduct
}

type productCreatedBody struct {
	Message  string           `json:"message"`
	Products []CreatedProduct `json:"products"`
}

func (e ProductCreatedEvent) Subject() string {
	return messaging.ProductsCreatedSubject
}

func (e ProductCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(productCreatedBody{
		Message:  fmt.Sprintf("Product %s was created successfully", e.Product.Title),
		Products: []CreatedProduct{e.Product},
	})
}

// Attributes returns price, count, priority and inStock.
func (e ProductCreatedEvent) Attributes() map[string]messaging.Attribute {
	return map[string]messaging.Attribute{
		"price":    {DataType: messaging.DataTypeNumber, Value: strconv.FormatFloat(e.Product.Price, 'f', -1, 64)},
		"count":    {DataType: messaging.DataTypeNumber, Value: strconv.FormatInt(e.Product.Count, 10)},
		"priority": {DataType: messaging.DataTypeString, Value: Priority(e.Product.Count)},
		"inStock":  {DataType: messaging.DataTypeString, Value: strconv.FormatBool(e.Product.Count > 0)},
	}
}

// Priority derives the priority flag from the stock count.
func Priority(count int64) string {
	if count <= LowStockThreshold {
		return PriorityHigh
	}
	return PriorityNormal
}

// DecodeProductCreated parses a notification body back into its product.
func DecodeProductCreated(data []byte) (CreatedProduct, error) {
	var body productCreatedBody
	if err := json.Unmarshal(data, &body); err != nil {
		return CreatedProduct{}, fmt.Errorf("failed to decode product created event: %w", err)
	}
	if len(body.Products) != 1 {
		return CreatedProduct{}, fmt.Errorf("product created event must carry exactly one product, got %d", len(body.Products))
	}
	return body.Products[0], nil
}
