package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBAPI is the slice of the DynamoDB client the store uses.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Table layout: PK=Key (S); Body (S) holds the raw JSON; UpdatedAt (N) unix seconds.
const (
	attrKey       = "Key"
	attrBody      = "Body"
	attrUpdatedAt = "UpdatedAt"
)

type Dynamo struct {
	ddb   DynamoDBAPI
	table string
	now   func() time.Time
}

func NewDynamo(ddb DynamoDBAPI, table string) *Dynamo {
	return &Dynamo{ddb: ddb, table: table, now: time.Now}
}

func newDynamoFromConfig(ctx context.Context, cfg Config) (*Dynamo, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	cl := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewDynamo(cl, cfg.Name), nil
}

func (d *Dynamo) GetJSON(ctx context.Context, key string) (json.RawMessage, bool, error) {
	out, err := d.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.table),
		Key:            map[string]types.AttributeValue{attrKey: &types.AttributeValueMemberS{Value: key}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, d.wrap("get", key, err)
	}
	if out.Item == nil {
		return nil, false, nil
	}
	body := getStr(out.Item, attrBody)
	if body == "" {
		return nil, false, nil
	}
	doc := json.RawMessage(body)
	if err := checkJSON(doc); err != nil {
		return nil, false, fmt.Errorf("get %s from %s: %w", key, d.table, err)
	}
	return doc, true, nil
}

func (d *Dynamo) PutJSON(ctx context.Context, key string, doc json.RawMessage) error {
	if err := checkJSON(doc); err != nil {
		return err
	}
	_, err := d.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item: map[string]types.AttributeValue{
			attrKey:       &types.AttributeValueMemberS{Value: key},
			attrBody:      &types.AttributeValueMemberS{Value: string(doc)},
			attrUpdatedAt: &types.AttributeValueMemberN{Value: strconv.FormatInt(d.now().Unix(), 10)},
		},
	})
	if err != nil {
		return d.wrap("put", key, err)
	}
	return nil
}

// wrap turns a missing table into a configuration error.
func (d *Dynamo) wrap(op, key string, err error) error {
	if apiErrorCode(err) == "ResourceNotFoundException" {
		return &ConfigError{Backend: BackendDynamoDB, Reason: fmt.Sprintf("table %s not found", d.table), Err: err}
	}
	return fmt.Errorf("%s %s in %s: %w", op, key, d.table, err)
}

func getStr(m map[string]types.AttributeValue, key string) string {
	if v, ok := m[key]; ok {
		if s, ok2 := v.(*types.AttributeValueMemberS); ok2 {
			return s.Value
		}
	}
	return ""
}
