// Package model holds the catalog entities and the records that flow through the import pipeline.
package model

// Product is a catalog item. ID is generated by the writer, never supplied by clients.
type Product struct {
	ID          string  `json:"id"          dynamodbav:"id"`
	Title       string  `json:"title"       dynamodbav:"title"`
	Description string  `json:"description" dynamodbav:"description"`
	Price       float64 `json:"price"       dynamodbav:"price"`
}

// Stock is the 1:1 companion of a Product.
type Stock struct {
	ProductID string `json:"product_id" dynamodbav:"product_id"`
	Count     int64  `json:"count"      dynamodbav:"count"`
}

// ProductWithStock is the read-side projection: product fields plus count, 0 when no stock exists.
type ProductWithStock struct {
	Product
	Count int64 `json:"count"`
}

// ImportRecord is one parsed CSV row on its way to the catalog writer.
type ImportRecord struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Count       int64   `json:"count"`
}
