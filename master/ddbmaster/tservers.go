package ddbmaster

import (
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/fastest963/yugabyte-db/master"
	"github.com/google/uuid"
)

type tserverItem struct {
	PK            string    `dynamodbav:"pk"`
	UUID          string    `dynamodbav:"uuid"`
	Host          string    `dynamodbav:"host"`
	ReadReplica   bool      `dynamodbav:"read_replica"`
	LastHeartbeat time.Time `dynamodbav:"last_heartbeat"`
}

// Heartbeat registers a tablet server or refreshes its liveness. An empty
// id registers a new server; the id in use is returned.
func (m *Master) Heartbeat(ctx context.Context, id, host string, readReplica bool) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	item, err := attributevalue.MarshalMap(tserverItem{
		PK:            tserverPrefix + id,
		UUID:          id,
		Host:          host,
		ReadReplica:   readReplica,
		LastHeartbeat: m.opts.Now().UTC(),
	})
	if err != nil {
		return "", master.Errorf(master.CodeInternal, "marshal tablet server %s: %v", id, err)
	}
	if _, err := m.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: m.tableName(),
		Item:      item,
	}); err != nil {
		return "", translate("heartbeat "+id, err)
	}
	return id, nil
}

// ListTabletServers scans the heartbeat records. A server is alive when it
// heartbeated within TServerTimeout.
func (m *Master) ListTabletServers(ctx context.Context, req *master.ListTabletServersRequest) (*master.ListTabletServersResponse, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.BeginsWith(expression.Name(keyAttr), tserverPrefix)).
		Build()
	if err != nil {
		return nil, err
	}
	now := m.opts.Now()
	resp := &master.ListTabletServersResponse{}
	var start map[string]types.AttributeValue
	for {
		out, err := m.ddb.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 m.tableName(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         start,
		})
		if err != nil {
			return nil, translate("list tablet servers", err)
		}
		var items []tserverItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, master.Errorf(master.CodeInternal, "unmarshal tablet servers: %v", err)
		}
		for _, it := range items {
			if req != nil && req.PrimaryOnly && it.ReadReplica {
				continue
			}
			resp.Servers = append(resp.Servers, master.TabletServerPB{
				UUID:          it.UUID,
				Host:          it.Host,
				Alive:         now.Sub(it.LastHeartbeat) <= m.opts.TServerTimeout,
				ReadReplica:   it.ReadReplica,
				LastHeartbeat: it.LastHeartbeat,
			})
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		start = out.LastEvaluatedKey
	}
	sort.Slice(resp.Servers, func(i, j int) bool { return resp.Servers[i].UUID < resp.Servers[j].UUID })
	return resp, nil
}
