package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/golang/glog"
	"github.com/safar/pharmsync/internal/config"
)

// DynamoDBAPI is the subset of *dynamodb.Client used by DynamoDBBackend.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// documentItem is the DynamoDB row shape. Table PK: key (string).
type documentItem struct {
	Key       string `dynamodbav:"key"`
	Body      string `dynamodbav:"body"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

type DynamoDBBackend struct {
	ddb        DynamoDBAPI
	tableName  string
	maxRetries int
	now        func() time.Time
}

func NewDynamoDBBackend(ddb DynamoDBAPI, tableName string) *DynamoDBBackend {
	return &DynamoDBBackend{ddb: ddb, tableName: tableName, maxRetries: 3, now: time.Now}
}

// NewDynamoDBConfig builds an AWS config from cfg. When an endpoint is set
// (e.g. DynamoDB Local) requests are pinned to it.
func NewDynamoDBConfig(ctx context.Context, cfg config.DynamoDBConfig) (aws.Config, error) {
	// Local DynamoDB does not validate credentials, but the AWS SDK requires them.
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(creds),
	}

	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == dynamodb.ServiceID {
				return aws.Endpoint{URL: endpoint, SigningRegion: region, HostnameImmutable: true}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	return awsconfig.LoadDefaultConfig(ctx, loadOpts...)
}

func ConnectDynamoDB(ctx context.Context, cfg config.DynamoDBConfig) (*DynamoDBBackend, error) {
	awsCfg, err := NewDynamoDBConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create dynamodb config: %w", err)
	}
	return NewDynamoDBBackend(dynamodb.NewFromConfig(awsCfg), cfg.Table), nil
}

func (d *DynamoDBBackend) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := d.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"key": &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", key, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrKeyNotFound
	}

	var it documentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal document %s: %w", key, err)
	}
	return []byte(it.Body), nil
}

func (d *DynamoDBBackend) Write(ctx context.Context, ops ...Op) error {
	switch len(ops) {
	case 0:
		return nil
	case 1:
		return d.writeOne(ctx, ops[0])
	}

	items := make([]types.TransactWriteItem, 0, len(ops))
	for _, op := range ops {
		if op.Delete {
			items = append(items, types.TransactWriteItem{
				Delete: &types.Delete{
					TableName: aws.String(d.tableName),
					Key:       d.key(op.Key),
				},
			})
			continue
		}
		av, err := d.marshal(op)
		if err != nil {
			return err
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(d.tableName),
				Item:      av,
			},
		})
	}

	err := retry(ctx, d.maxRetries, func() error {
		_, err := d.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
		return err
	})
	if err != nil {
		return fmt.Errorf("write %d documents: %w", len(ops), err)
	}
	return nil
}

func (d *DynamoDBBackend) writeOne(ctx context.Context, op Op) error {
	if op.Delete {
		_, err := d.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(d.tableName),
			Key:       d.key(op.Key),
		})
		if err != nil {
			return fmt.Errorf("delete document %s: %w", op.Key, err)
		}
		return nil
	}

	av, err := d.marshal(op)
	if err != nil {
		return err
	}
	_, err = d.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put document %s: %w", op.Key, err)
	}
	return nil
}

func (d *DynamoDBBackend) marshal(op Op) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(documentItem{
		Key:       op.Key,
		Body:      string(op.Value),
		UpdatedAt: d.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal document %s: %w", op.Key, err)
	}
	return av, nil
}

func (d *DynamoDBBackend) key(k string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"key": &types.AttributeValueMemberS{Value: k},
	}
}

func (d *DynamoDBBackend) Ping(ctx context.Context) error {
	_, err := d.ddb.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(d.tableName)})
	if err != nil {
		return fmt.Errorf("describe table %s: %w", d.tableName, err)
	}
	return nil
}

// EnsureTable creates the documents table when it does not exist yet.
func (d *DynamoDBBackend) EnsureTable(ctx context.Context) error {
	_, err := d.ddb.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(d.tableName)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("describe table %s: %w", d.tableName, err)
	}

	glog.Infof("Creating DynamoDB table %s", d.tableName)
	_, err = d.ddb.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(d.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("key"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("key"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("create table %s: %w", d.tableName, err)
	}
	return nil
}

func (d *DynamoDBBackend) Close() error { return nil }
