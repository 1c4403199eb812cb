package dynamo

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ReminderGuardRepo stores one row per fired daily reminder, keyed by the
// guard key (e.g. "closing_reminder_2026-08-31"). A conditional put makes the
// acquire atomic, so at most one process fires the reminder for a given day
// even with multiple instances running. Rows expire via TTL.
type ReminderGuardRepo struct {
	client    *dynamodb.Client
	tableName string
	ttl       time.Duration
}

func NewReminderGuardRepo(client *dynamodb.Client, tableName string) *ReminderGuardRepo {
	return &ReminderGuardRepo{client: client, tableName: tableName, ttl: 48 * time.Hour}
}

// Acquire writes the guard key if it is not already present. Returns true
// when this call won the write, false when the key was already held.
func (r *ReminderGuardRepo) Acquire(ctx context.Context, key string, now time.Time) (bool, error) {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"guard_key":  &types.AttributeValueMemberS{Value: key},
			"fired_at":   &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			"expires_at": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(r.ttl).Unix(), 10)},
		},
		ConditionExpression: aws.String("attribute_not_exists(guard_key)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
