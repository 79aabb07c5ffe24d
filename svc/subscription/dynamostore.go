package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Single-table keyspace: subscriptions live under the owning user's
// partition with a type-tagged sort key; plans are partitioned by SKU.
const (
	userKeyPrefix = "user_"
	subKeyPrefix  = "sub_"
)

func userPK(userID string) string        { return userKeyPrefix + userID }
func subSK(subscriptionID string) string { return subKeyPrefix + subscriptionID }

// DynamoStore implements Store against a single DynamoDB table.
type DynamoStore struct {
	client *dynamodb.Client
	table  string
}

// NewDynamoStore returns a Store backed by the given client and table.
// Panics on nil client or empty table name to fail fast during wiring.
func NewDynamoStore(client *dynamodb.Client, table string) *DynamoStore {
	if client == nil {
		panic("subscription: dynamodb client is required")
	}
	if table == "" {
		panic("subscription: table name is required")
	}
	return &DynamoStore{client: client, table: table}
}

func (s *DynamoStore) QueryUserSubscriptions(ctx context.Context, userID string, activeOnly bool) ([]Subscription, error) {
	keyCond := expression.KeyAnd(
		expression.Key("pk").Equal(expression.Value(userPK(userID))),
		expression.KeyBeginsWith(expression.Key("sk"), subKeyPrefix),
	)
	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if activeOnly {
		builder = builder.WithFilter(
			expression.Name("status").Equal(expression.Value(string(StatusActive))),
		)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build subscription query: %w", err)
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query user subscriptions: %w", err)
	}

	subs := make([]Subscription, 0, len(out.Items))
	for _, raw := range out.Items {
		var item subscriptionItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal subscription record: %w", err)
		}
		sub, err := item.toSubscription()
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, nil
}

func (s *DynamoStore) GetPlan(ctx context.Context, sku string) (*Plan, error) {
	keyCond := expression.Key("pk").Equal(expression.Value(sku))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build plan query: %w", err)
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query plan: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, ErrPlanNotFound
	}

	var item planItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan record: %w", err)
	}
	return item.toPlan(), nil
}

func (s *DynamoStore) PutSubscriptionIfAbsent(ctx context.Context, sub *Subscription) error {
	av, err := attributevalue.MarshalMap(newSubscriptionItem(sub))
	if err != nil {
		return fmt.Errorf("failed to marshal subscription record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(pk) AND attribute_not_exists(sk)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrSubscriptionExists
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (s *DynamoStore) UpdateSubscription(ctx context.Context, userID, subscriptionID string, upd SubscriptionUpdate) (*Subscription, error) {
	update := expression.
		Set(expression.Name("status"), expression.Value(string(upd.Status))).
		Set(expression.Name("lastModifiedAt"), expression.Value(formatTime(upd.LastModifiedAt)))
	if upd.ExpiresAt != nil {
		update = update.Set(expression.Name("expiresAt"), expression.Value(formatTime(*upd.ExpiresAt)))
	}
	switch {
	case upd.ClearCanceledAt:
		update = update.Remove(expression.Name("canceledAt"))
	case upd.CanceledAt != nil:
		update = update.Set(expression.Name("canceledAt"), expression.Value(formatTime(*upd.CanceledAt)))
	}

	cond := expression.AttributeExists(expression.Name("pk")).
		And(expression.AttributeExists(expression.Name("sk")))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build subscription update: %w", err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: userPK(userID)},
			"sk": &types.AttributeValueMemberS{Value: subSK(subscriptionID)},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, ErrConditionFailed
		}
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	var item subscriptionItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated subscription: %w", err)
	}
	return item.toSubscription()
}

// subscriptionItem is the wire shape of a subscription record. Timestamps
// are stored as RFC3339 strings; an absent canceledAt attribute means not
// canceled.
type subscriptionItem struct {
	PK             string         `dynamodbav:"pk"`
	SK             string         `dynamodbav:"sk"`
	Type           string         `dynamodbav:"type"`
	PlanSKU        string         `dynamodbav:"planSku"`
	StartDate      string         `dynamodbav:"startDate"`
	ExpiresAt      string         `dynamodbav:"expiresAt"`
	CanceledAt     string         `dynamodbav:"canceledAt,omitempty"`
	LastModifiedAt string         `dynamodbav:"lastModifiedAt"`
	Status         string         `dynamodbav:"status"`
	Attributes     map[string]any `dynamodbav:"attributes"`
}

func newSubscriptionItem(sub *Subscription) subscriptionItem {
	item := subscriptionItem{
		PK:             userPK(sub.UserID),
		SK:             subSK(sub.SubscriptionID),
		Type:           "sub",
		PlanSKU:        sub.PlanSKU,
		StartDate:      formatTime(sub.StartDate),
		ExpiresAt:      formatTime(sub.ExpiresAt),
		LastModifiedAt: formatTime(sub.LastModifiedAt),
		Status:         string(sub.Status),
		Attributes:     sub.Attributes,
	}
	if sub.CanceledAt != nil {
		item.CanceledAt = formatTime(*sub.CanceledAt)
	}
	return item
}

func (item subscriptionItem) toSubscription() (*Subscription, error) {
	startDate, err := parseTime(item.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid startDate in record %s/%s: %w", item.PK, item.SK, err)
	}
	expiresAt, err := parseTime(item.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("invalid expiresAt in record %s/%s: %w", item.PK, item.SK, err)
	}
	lastModifiedAt, err := parseTime(item.LastModifiedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid lastModifiedAt in record %s/%s: %w", item.PK, item.SK, err)
	}

	sub := &Subscription{
		UserID:         strings.TrimPrefix(item.PK, userKeyPrefix),
		SubscriptionID: strings.TrimPrefix(item.SK, subKeyPrefix),
		PlanSKU:        item.PlanSKU,
		StartDate:      startDate,
		ExpiresAt:      expiresAt,
		LastModifiedAt: lastModifiedAt,
		Status:         Status(item.Status),
		Attributes:     item.Attributes,
	}
	if item.CanceledAt != "" {
		canceledAt, err := parseTime(item.CanceledAt)
		if err != nil {
			return nil, fmt.Errorf("invalid canceledAt in record %s/%s: %w", item.PK, item.SK, err)
		}
		sub.CanceledAt = &canceledAt
	}
	return sub, nil
}

// planItem is the wire shape of a plan record.
type planItem struct {
	PK           string   `dynamodbav:"pk"`
	SK           string   `dynamodbav:"sk,omitempty"`
	Type         string   `dynamodbav:"type,omitempty"`
	Name         string   `dynamodbav:"name"`
	Price        float64  `dynamodbav:"price"`
	Currency     string   `dynamodbav:"currency"`
	BillingCycle string   `dynamodbav:"billingCycle"`
	Features     []string `dynamodbav:"features"`
	Status       string   `dynamodbav:"status"`
}

func (item planItem) toPlan() *Plan {
	return &Plan{
		SKU:          item.PK,
		Name:         item.Name,
		Price:        item.Price,
		Currency:     item.Currency,
		BillingCycle: BillingCycle(item.BillingCycle),
		Features:     item.Features,
		Status:       PlanStatus(item.Status),
	}
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func parseTime(s string) (time.Time, error) { return time.Parse(time.RFC3339, s) }
