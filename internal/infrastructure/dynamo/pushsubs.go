package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cronch-app/notify/internal/domain"
)

// PushSubscriptionRepo provides typed DynamoDB operations for the
// push_subscriptions table. The endpoint is the partition key, so a plain
// PutItem doubles as an upsert: re-registering a browser overwrites the row.
type PushSubscriptionRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPushSubscriptionRepo(client *dynamodb.Client, tableName string) *PushSubscriptionRepo {
	return &PushSubscriptionRepo{client: client, tableName: tableName}
}

func (r *PushSubscriptionRepo) Upsert(ctx context.Context, s *domain.PushSubscription) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal push subscription: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *PushSubscriptionRepo) Get(ctx context.Context, endpoint string) (*domain.PushSubscription, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("endpoint", endpoint),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("push subscription: %w", domain.ErrNotFound)
	}
	var s domain.PushSubscription
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PushSubscriptionRepo) ListByUser(ctx context.Context, userID string) ([]domain.PushSubscription, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	var subs []domain.PushSubscription
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// ListAll scans the whole table. Used only by the daily reminder fan-out; the
// table holds one row per installed browser, so the scan stays small.
func (r *PushSubscriptionRepo) ListAll(ctx context.Context) ([]domain.PushSubscription, error) {
	var subs []domain.PushSubscription
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.PushSubscription
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		subs = append(subs, batch...)
	}
	return subs, nil
}

func (r *PushSubscriptionRepo) Delete(ctx context.Context, endpoint string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("endpoint", endpoint),
	})
	return err
}
