package store

import (
	"context"
	"fmt"

	perrors "github.com/abgdnv/cloudshop/internal/product/errors"
	"github.com/abgdnv/cloudshop/internal/product/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the part of the DynamoDB client the store needs.
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// DynamoStore keeps products and stocks in two DynamoDB tables keyed by id and product_id.
type DynamoStore struct {
	client        DynamoAPI
	productsTable string
	stocksTable   string
}

func NewDynamoStore(client DynamoAPI, productsTable, stocksTable string) *DynamoStore {
	return &DynamoStore{
		client:        client,
		productsTable: productsTable,
		stocksTable:   stocksTable,
	}
}

func (d *DynamoStore) FindAll(ctx context.Context) ([]model.ProductWithStock, error) {
	products, err := scanAll[model.Product](ctx, d.client, d.productsTable)
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	stocks, err := scanAll[model.Stock](ctx, d.client, d.stocksTable)
	if err != nil {
		return nil, fmt.Errorf("failed to scan stocks: %w", err)
	}
	counts := make(map[string]int64, len(stocks))
	for _, s := range stocks {
		counts[s.ProductID] = s.Count
	}
	return join(products, counts), nil
}

func (d *DynamoStore) FindByID(ctx context.Context, id string) (*model.ProductWithStock, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.productsTable),
		Key:       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, perrors.ErrProductNotFound
	}
	var product model.Product
	if err := attributevalue.UnmarshalMap(out.Item, &product); err != nil {
		return nil, fmt.Errorf("failed to decode product %s: %w", id, err)
	}

	stockOut, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.stocksTable),
		Key:       map[string]types.AttributeValue{"product_id": &types.AttributeValueMemberS{Value: id}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get stock for product %s: %w", id, err)
	}
	var stock model.Stock
	if len(stockOut.Item) > 0 {
		if err := attributevalue.UnmarshalMap(stockOut.Item, &stock); err != nil {
			return nil, fmt.Errorf("failed to decode stock for product %s: %w", id, err)
		}
	}
	return &model.ProductWithStock{Product: product, Count: stock.Count}, nil
}

func (d *DynamoStore) CreateWithStock(ctx context.Context, product model.Product, stock model.Stock) error {
	productItem, err := attributevalue.MarshalMap(product)
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}
	stockItem, err := attributevalue.MarshalMap(stock)
	if err != nil {
		return fmt.Errorf("failed to encode stock: %w", err)
	}
	_, err = d.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(d.productsTable),
				Item:                productItem,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(d.stocksTable),
				Item:                stockItem,
				ConditionExpression: aws.String("attribute_not_exists(product_id)"),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write product %s with stock: %w", product.ID, err)
	}
	return nil
}

func scanAll[T any](ctx context.Context, client dynamodb.ScanAPIClient, table string) ([]T, error) {
	var items []T
	paginator := dynamodb.NewScanPaginator(client, &dynamodb.ScanInput{TableName: aws.String(table)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []T
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		items = append(items, batch...)
	}
	return items, nil
}
