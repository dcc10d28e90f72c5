package ddbmaster

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/fastest963/yugabyte-db/master"
	"github.com/google/uuid"
)

type tableItem struct {
	PK        string                    `dynamodbav:"pk"`
	TableID   string                    `dynamodbav:"table_id"`
	State     string                    `dynamodbav:"state"`
	CreatedAt time.Time                 `dynamodbav:"created_at"`
	Request   master.CreateTableRequest `dynamodbav:"request"`
}

type aliasItem struct {
	PK       string `dynamodbav:"pk"`
	TableKey string `dynamodbav:"table_key"`
}

// newTableID returns a 32 hex digit id.
func newTableID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// CreateTable writes the table record and its id alias in one transaction.
// Either record already existing yields an AlreadyPresent error whose
// response carries the existing id.
func (m *Master) CreateTable(ctx context.Context, req *master.CreateTableRequest) (*master.CreateTableResponse, error) {
	if err := master.ValidateCreateTable(req); err != nil {
		return nil, err
	}
	req = master.UpgradeIndexInfo(req)

	if req.IndexInfo != nil {
		_, found, err := m.getAlias(ctx, req.IndexInfo.IndexedTableID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, master.Errorf(master.CodeNotFound, "indexed table %s not found", req.IndexInfo.IndexedTableID)
		}
	}

	id := req.TableID
	if id == "" {
		id = m.opts.NewTableID()
	}
	key := tableKey(req.Namespace, req.Name)

	item, err := attributevalue.MarshalMap(tableItem{
		PK:        key,
		TableID:   id,
		State:     stateCreating,
		CreatedAt: m.opts.Now().UTC(),
		Request:   *req,
	})
	if err != nil {
		return nil, master.Errorf(master.CodeInternal, "marshal table %s: %v", req.Name, err)
	}
	alias, err := attributevalue.MarshalMap(aliasItem{PK: tableIDPrefix + id, TableKey: key})
	if err != nil {
		return nil, master.Errorf(master.CodeInternal, "marshal table id %s: %v", id, err)
	}
	notExists, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(keyAttr))).
		Build()
	if err != nil {
		return nil, err
	}

	_, err = m.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                m.tableName(),
				Item:                     item,
				ConditionExpression:      notExists.Condition(),
				ExpressionAttributeNames: notExists.Names(),
			}},
			{Put: &types.Put{
				TableName:                m.tableName(),
				Item:                     alias,
				ConditionExpression:      notExists.Condition(),
				ExpressionAttributeNames: notExists.Names(),
			}},
		},
	})
	if err == nil {
		return &master.CreateTableResponse{TableID: id}, nil
	}

	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		return nil, translate("create table "+req.Name, err)
	}
	// Not every endpoint fills CancellationReasons, so the records are
	// read back to find out which condition failed.
	existing, found, err := m.getTable(ctx, key)
	if err != nil {
		return nil, err
	}
	if found {
		return &master.CreateTableResponse{TableID: existing.TableID},
			master.Errorf(master.CodeAlreadyPresent, "table %s.%s already exists", req.Namespace.Key(), req.Name)
	}
	if _, found, err := m.getAlias(ctx, id); err != nil {
		return nil, err
	} else if found {
		return &master.CreateTableResponse{TableID: id},
			master.Errorf(master.CodeAlreadyPresent, "table id %s already in use", id)
	}
	return nil, translate("create table "+req.Name, err)
}

// IsCreateTableDone reports whether the placement process has marked the
// table RUNNING.
func (m *Master) IsCreateTableDone(ctx context.Context, req *master.IsCreateTableDoneRequest) (*master.IsCreateTableDoneResponse, error) {
	rec, err := m.lookupTable(ctx, req.TableID, req.Namespace, req.TableName)
	if err != nil {
		return nil, err
	}
	return &master.IsCreateTableDoneResponse{Done: rec.State == stateRunning}, nil
}

// MarkRunning flips a table to RUNNING once its tablets are placed.
func (m *Master) MarkRunning(ctx context.Context, tableID string) error {
	key, found, err := m.getAlias(ctx, tableID)
	if err != nil {
		return err
	}
	if !found {
		return master.Errorf(master.CodeNotFound, "table id %s not found", tableID)
	}
	expr, err := expression.NewBuilder().
		WithUpdate(expression.Set(expression.Name("state"), expression.Value(stateRunning))).
		WithCondition(expression.AttributeExists(expression.Name(keyAttr))).
		Build()
	if err != nil {
		return err
	}
	_, err = m.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 m.tableName(),
		Key:                       keyOf(key),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return master.Errorf(master.CodeNotFound, "table id %s not found", tableID)
	}
	if err != nil {
		return translate("mark table "+tableID+" running", err)
	}
	return nil
}

// TableInfo summarizes a table record.
type TableInfo struct {
	ID         string
	Namespace  string
	Name       string
	Type       master.TableType
	Running    bool
	NumTablets int32
	CreatedAt  time.Time
}

// DescribeTable returns the record for a table id.
func (m *Master) DescribeTable(ctx context.Context, tableID string) (TableInfo, error) {
	rec, err := m.lookupTable(ctx, tableID, master.NamespaceIdentifierPB{}, "")
	if err != nil {
		return TableInfo{}, err
	}
	return TableInfo{
		ID:         rec.TableID,
		Namespace:  rec.Request.Namespace.Key(),
		Name:       rec.Request.Name,
		Type:       rec.Request.TableType,
		Running:    rec.State == stateRunning,
		NumTablets: rec.Request.NumTablets,
		CreatedAt:  rec.CreatedAt,
	}, nil
}

func (m *Master) lookupTable(ctx context.Context, id string, ns master.NamespaceIdentifierPB, name string) (*tableItem, error) {
	key := tableKey(ns, name)
	if id != "" {
		var found bool
		var err error
		key, found, err = m.getAlias(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, master.Errorf(master.CodeNotFound, "table id %s not found", id)
		}
	}
	rec, found, err := m.getTable(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, master.Errorf(master.CodeNotFound, "table %s not found", strings.TrimPrefix(key, tablePrefix))
	}
	return rec, nil
}

func (m *Master) getTable(ctx context.Context, key string) (*tableItem, bool, error) {
	var rec tableItem
	found, err := m.getItem(ctx, key, &rec)
	if err != nil || !found {
		return nil, found, err
	}
	return &rec, true, nil
}

func (m *Master) getAlias(ctx context.Context, id string) (string, bool, error) {
	var a aliasItem
	found, err := m.getItem(ctx, tableIDPrefix+id, &a)
	if err != nil || !found {
		return "", found, err
	}
	return a.TableKey, true, nil
}

func (m *Master) getItem(ctx context.Context, pk string, out any) (bool, error) {
	resp, err := m.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      m.tableName(),
		Key:            keyOf(pk),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, translate("get "+pk, err)
	}
	if len(resp.Item) == 0 {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(resp.Item, out); err != nil {
		return false, master.Errorf(master.CodeInternal, "unmarshal %s: %v", pk, err)
	}
	return true, nil
}
