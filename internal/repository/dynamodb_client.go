package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"listing-writer/internal/domain"
)

const (
	DefaultHistoryLimit = 50

	historyPK      = "HISTORY"
	skPrefixDesc   = "DESC#"
	maxBatchWrite  = 25
	maxBatchRetry  = 3
	batchRetryWait = 50 * time.Millisecond
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Client keeps the most recent generated descriptions in a DynamoDB table.
// All records share one partition; the sort key orders them by creation time.
type Client struct {
	api       dynamodbAPI
	tableName string
	limit     int
}

// New creates a new repository Client holding at most limit records.
func New(api dynamodbAPI, tableName string, limit int) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Client{api: api, tableName: tableName, limit: limit}, nil
}

// descSK sorts lexically by creation time; the id breaks ties.
func descSK(rec domain.ProductRecord) string {
	return skPrefixDesc + rec.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000000Z") + "#" + rec.ID
}

// SaveProduct stores rec and drops anything older than the newest limit
// records. Once the put succeeds the record counts as saved; a failed prune is
// logged and left for the next save to finish.
func (c *Client) SaveProduct(ctx context.Context, rec domain.ProductRecord) error {
	if rec.ID == "" {
		return errors.New("repository: SaveProduct: id is required")
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                productItem(rec),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: SaveProduct: %w", err)
	}

	if err := c.prune(ctx); err != nil {
		slog.Warn("history prune failed", "err", err, "id", rec.ID)
	}
	return nil
}

// ListProducts returns the stored records, newest first.
func (c *Client) ListProducts(ctx context.Context) ([]domain.ProductRecord, error) {
	out, err := c.api.Query(ctx, c.historyQuery(int32(c.limit), false))
	if err != nil {
		return nil, fmt.Errorf("repository: ListProducts query: %w", err)
	}

	recs := make([]domain.ProductRecord, 0, len(out.Items))
	for _, item := range out.Items {
		rec, err := itemToProduct(item)
		if err != nil {
			return nil, fmt.Errorf("repository: ListProducts unmarshal: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (c *Client) historyQuery(limit int32, keysOnly bool) *dynamodb.QueryInput {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: historyPK},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixDesc},
		},
		// Newest first so the limit keeps the most recent records.
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		in.Limit = aws.Int32(limit)
	}
	if keysOnly {
		in.ProjectionExpression = aws.String("PK, SK")
	}
	return in
}

// prune deletes every record past the newest c.limit.
func (c *Client) prune(ctx context.Context) error {
	var stale []map[string]types.AttributeValue
	seen := 0

	in := c.historyQuery(0, true)
	for {
		out, err := c.api.Query(ctx, in)
		if err != nil {
			return fmt.Errorf("prune query: %w", err)
		}
		for _, item := range out.Items {
			seen++
			if seen > c.limit {
				stale = append(stale, map[string]types.AttributeValue{"PK": item["PK"], "SK": item["SK"]})
			}
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}

	for start := 0; start < len(stale); start += maxBatchWrite {
		end := min(start+maxBatchWrite, len(stale))
		if err := c.deleteBatch(ctx, stale[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) deleteBatch(ctx context.Context, keys []map[string]types.AttributeValue) error {
	reqs := make([]types.WriteRequest, 0, len(keys))
	for _, k := range keys {
		reqs = append(reqs, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: k}})
	}
	pending := map[string][]types.WriteRequest{c.tableName: reqs}

	for attempt := 0; attempt < maxBatchRetry; attempt++ {
		out, err := c.api.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return fmt.Errorf("prune delete: %w", err)
		}
		if out == nil || len(out.UnprocessedItems[c.tableName]) == 0 {
			return nil
		}
		pending = out.UnprocessedItems
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(batchRetryWait << attempt):
		}
	}
	return fmt.Errorf("prune delete: %d items left unprocessed", len(pending[c.tableName]))
}

func productItem(rec domain.ProductRecord) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":             &types.AttributeValueMemberS{Value: historyPK},
		"SK":             &types.AttributeValueMemberS{Value: descSK(rec)},
		"id":             &types.AttributeValueMemberS{Value: rec.ID},
		"productName":    &types.AttributeValueMemberS{Value: rec.ProductName},
		"productDetails": &types.AttributeValueMemberS{Value: rec.ProductDetails},
		"keywords":       &types.AttributeValueMemberS{Value: rec.Keywords},
		"description":    &types.AttributeValueMemberS{Value: rec.Description},
		"model":          &types.AttributeValueMemberS{Value: rec.Model},
		"createdAt":      &types.AttributeValueMemberS{Value: rec.CreatedAt.UTC().Format(time.RFC3339Nano)},
	}
}

// itemToProduct converts a DynamoDB attribute map to a ProductRecord.
func itemToProduct(item map[string]types.AttributeValue) (domain.ProductRecord, error) {
	var rec domain.ProductRecord
	fields := []struct {
		key string
		dst *string
	}{
		{"id", &rec.ID},
		{"productName", &rec.ProductName},
		{"productDetails", &rec.ProductDetails},
		{"keywords", &rec.Keywords},
		{"description", &rec.Description},
	}
	for _, f := range fields {
		v, err := strAttr(item, f.key)
		if err != nil {
			return domain.ProductRecord{}, err
		}
		*f.dst = v
	}
	rec.Model, _ = strAttr(item, "model") // allow empty

	created, err := strAttr(item, "createdAt")
	if err != nil {
		return domain.ProductRecord{}, err
	}
	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return domain.ProductRecord{}, fmt.Errorf("repository: parse attribute %q: %w", "createdAt", err)
	}
	return rec, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}
