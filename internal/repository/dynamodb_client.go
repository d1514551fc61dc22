package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"language-learner/internal/domain"
)

const (
	skUsage       = "USAGE#"
	skPrefixEvent = "EVENT#"
	ttlDuration   = 30 * 24 * time.Hour // 30-day TTL on call events
	maxStoredText = 500
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Client keeps per-caller API call counts in a DynamoDB table.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

// callerPK returns the DynamoDB partition key for a caller.
func callerPK(callerID string) string {
	return "CALLER#" + callerID
}

func eventSK(ts time.Time) string {
	return skPrefixEvent + ts.UTC().Format(time.RFC3339Nano)
}

// RecordCall increments the caller's call count and writes a call event in
// one transaction.
func (c *Client) RecordCall(ctx context.Context, event domain.UsageEvent) error {
	callerID := strings.TrimSpace(event.CallerID)
	if callerID == "" {
		return errors.New("repository: RecordCall: caller id is required")
	}
	now := c.now().UTC()
	pk := callerPK(callerID)
	lastMessage := truncate(event.LastMessage, maxStoredText)

	_, err := c.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName: aws.String(c.tableName),
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: pk},
						"SK": &types.AttributeValueMemberS{Value: skUsage},
					},
					UpdateExpression: aws.String("ADD callCount :one SET lastActivity = :ts, lastEndpoint = :ep, lastMessage = :msg"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":one": &types.AttributeValueMemberN{Value: "1"},
						":ts":  &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
						":ep":  &types.AttributeValueMemberS{Value: event.Endpoint},
						":msg": &types.AttributeValueMemberS{Value: lastMessage},
					},
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(c.tableName),
					Item:                eventItem(pk, now, event.Endpoint, lastMessage, event.MessageCount),
					ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: RecordCall: %w", err)
	}
	return nil
}

// GetCallCount returns the persisted call count for a caller, 0 if unseen.
func (c *Client) GetCallCount(ctx context.Context, callerID string) (int, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: callerPK(callerID)},
			"SK": &types.AttributeValueMemberS{Value: skUsage},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, fmt.Errorf("repository: GetCallCount get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return 0, nil
	}

	count, err := intAttr(out.Item, "callCount")
	if err != nil {
		return 0, fmt.Errorf("repository: GetCallCount decode count: %w", err)
	}
	return count, nil
}

func eventItem(pk string, ts time.Time, endpoint, message string, messageCount int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":                 &types.AttributeValueMemberS{Value: pk},
		"SK":                 &types.AttributeValueMemberS{Value: eventSK(ts)},
		"event":              &types.AttributeValueMemberS{Value: "api_call_made"},
		"endpoint":           &types.AttributeValueMemberS{Value: endpoint},
		"message":            &types.AttributeValueMemberS{Value: message},
		"messageBucketCount": &types.AttributeValueMemberN{Value: strconv.Itoa(messageCount)},
		"ttl":                &types.AttributeValueMemberN{Value: strconv.FormatInt(ts.Add(ttlDuration).Unix(), 10)},
	}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
