package ddbmaster

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDDB is a single-table in-memory DynamoDB that understands the
// expressions this package builds.
type fakeDDB struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	pageSize int
	getErr   error
	tables   map[string]bool
	txCalls  int
}

func newFakeDDB() *fakeDDB {
	return &fakeDDB{items: map[string]map[string]types.AttributeValue{}, tables: map[string]bool{}}
}

func pkOf(item map[string]types.AttributeValue) string {
	return item[keyAttr].(*types.AttributeValueMemberS).Value
}

func conditionHolds(cond *string, exists bool) bool {
	if cond == nil {
		return true
	}
	switch {
	case strings.HasPrefix(*cond, "attribute_not_exists"):
		return !exists
	case strings.HasPrefix(*cond, "attribute_exists"):
		return exists
	}
	panic(fmt.Sprintf("fakeDDB: unsupported condition %q", *cond))
}

func (f *fakeDDB) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &dynamodb.GetItemOutput{Item: f.items[pkOf(in.Key)]}, nil
}

func (f *fakeDDB) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pk := pkOf(in.Item)
	if _, ok := f.items[pk]; !conditionHolds(in.ConditionExpression, ok) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	f.items[pk] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDDB) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pk := pkOf(in.Key)
	item, ok := f.items[pk]
	if !conditionHolds(in.ConditionExpression, ok) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	expr := strings.TrimSpace(aws.ToString(in.UpdateExpression))
	expr = strings.TrimSpace(strings.TrimPrefix(expr, "SET"))
	for _, assign := range strings.Split(expr, ",") {
		name, value, found := strings.Cut(assign, "=")
		if !found {
			panic(fmt.Sprintf("fakeDDB: unsupported update %q", expr))
		}
		item[in.ExpressionAttributeNames[strings.TrimSpace(name)]] = in.ExpressionAttributeValues[strings.TrimSpace(value)]
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDDB) TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txCalls++
	failed := false
	for _, ti := range in.TransactItems {
		_, ok := f.items[pkOf(ti.Put.Item)]
		if !conditionHolds(ti.Put.ConditionExpression, ok) {
			failed = true
		}
	}
	if failed {
		return nil, &types.TransactionCanceledException{Message: aws.String("Transaction cancelled")}
	}
	for _, ti := range in.TransactItems {
		f.items[pkOf(ti.Put.Item)] = ti.Put.Item
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeDDB) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var prefix string
	for _, v := range in.ExpressionAttributeValues {
		prefix = v.(*types.AttributeValueMemberS).Value
	}
	keys := make([]string, 0, len(f.items))
	for k := range f.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if in.ExclusiveStartKey != nil {
		after := pkOf(in.ExclusiveStartKey)
		i := sort.SearchStrings(keys, after)
		if i < len(keys) && keys[i] == after {
			i++
		}
		keys = keys[i:]
	}
	out := &dynamodb.ScanOutput{}
	if f.pageSize > 0 && len(keys) > f.pageSize {
		keys = keys[:f.pageSize]
		out.LastEvaluatedKey = keyOf(keys[len(keys)-1])
	}
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			out.Items = append(out.Items, f.items[k])
		}
	}
	return out, nil
}

func (f *fakeDDB) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := aws.ToString(in.TableName)
	if f.tables[name] {
		return nil, &types.ResourceInUseException{Message: aws.String("Table already exists: " + name)}
	}
	f.tables[name] = true
	return &dynamodb.CreateTableOutput{}, nil
}

func (f *fakeDDB) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := aws.ToString(in.TableName)
	if !f.tables[name] {
		return nil, &types.ResourceNotFoundException{Message: aws.String("Requested resource not found")}
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{
		TableName:   in.TableName,
		TableStatus: types.TableStatusActive,
	}}, nil
}
