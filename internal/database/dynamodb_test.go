package database

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamoDB is an in-memory table keyed by the "key" attribute.
type fakeDynamoDB struct {
	mu           sync.Mutex
	items        map[string]map[string]types.AttributeValue
	tableExists  bool
	created      bool
	transactions int
	conflicts    int
}

func newFakeDynamoDB() *fakeDynamoDB {
	return &fakeDynamoDB{items: make(map[string]map[string]types.AttributeValue), tableExists: true}
}

func keyOf(item map[string]types.AttributeValue) string {
	if s, ok := item["key"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamoDB) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeDynamoDB) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[keyOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, keyOf(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamoDB) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactions++
	if f.conflicts > 0 {
		f.conflicts--
		return nil, &types.TransactionCanceledException{Message: aws.String("conflict")}
	}
	for _, it := range in.TransactItems {
		switch {
		case it.Put != nil:
			f.items[keyOf(it.Put.Item)] = it.Put.Item
		case it.Delete != nil:
			delete(f.items, keyOf(it.Delete.Key))
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeDynamoDB) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.tableExists {
		return nil, &types.ResourceNotFoundException{Message: aws.String("table not found")}
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableName: in.TableName}}, nil
}

func (f *fakeDynamoDB) CreateTable(_ context.Context, _ *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tableExists = true
	f.created = true
	return &dynamodb.CreateTableOutput{}, nil
}

func TestDynamoDBBackend(t *testing.T) {
	fake := newFakeDynamoDB()
	b := NewDynamoDBBackend(fake, "documents")

	exerciseBackend(t, b)

	if fake.transactions != 1 {
		t.Errorf("Expected multi-op write to use one transaction, got %d", fake.transactions)
	}
}

func TestDynamoDBBackendStoresBodyAttribute(t *testing.T) {
	fake := newFakeDynamoDB()
	b := NewDynamoDBBackend(fake, "documents")

	if err := Put(context.Background(), b, "state", []byte(`{"version":1}`)); err != nil {
		t.Fatal(err)
	}

	item := fake.items["state"]
	body, ok := item["body"].(*types.AttributeValueMemberS)
	if !ok || body.Value != `{"version":1}` {
		t.Errorf("Unexpected body attribute: %#v", item["body"])
	}
	if _, ok := item["updated_at"].(*types.AttributeValueMemberS); !ok {
		t.Errorf("Expected updated_at attribute, got %#v", item["updated_at"])
	}
}

func TestDynamoDBEnsureTable(t *testing.T) {
	fake := newFakeDynamoDB()
	fake.tableExists = false
	b := NewDynamoDBBackend(fake, "documents")

	if err := b.Ping(context.Background()); err == nil {
		t.Fatal("Expected ping to fail without table")
	}

	if err := b.EnsureTable(context.Background()); err != nil {
		t.Fatalf("EnsureTable failed: %v", err)
	}
	if !fake.created {
		t.Error("Expected table to be created")
	}

	fake.created = false
	if err := b.EnsureTable(context.Background()); err != nil {
		t.Fatalf("Second EnsureTable failed: %v", err)
	}
	if fake.created {
		t.Error("Expected existing table to be left alone")
	}
}

func TestDynamoDBGetMissing(t *testing.T) {
	b := NewDynamoDBBackend(newFakeDynamoDB(), "documents")
	if _, err := b.Get(context.Background(), "nope"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Expected ErrKeyNotFound, got %v", err)
	}
}

func TestDynamoDBRetriesTransactionConflicts(t *testing.T) {
	fake := newFakeDynamoDB()
	fake.conflicts = 2
	b := NewDynamoDBBackend(fake, "documents")

	err := b.Write(context.Background(), PutOp("state", []byte(`{}`)), PutOp("session", []byte(`{}`)))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if fake.transactions != 3 {
		t.Errorf("Expected 3 attempts, got %d", fake.transactions)
	}
	if _, ok := fake.items["session"]; !ok {
		t.Error("Expected session document after retried write")
	}
}
