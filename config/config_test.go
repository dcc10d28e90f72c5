package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fastest963/yugabyte-db/master"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
master:
  kind: dynamodb
  dynamodb:
    tableName: catalog
    region: eu-north-1
    endpoint: http://localhost:8000
client:
  defaultAdminOperationTimeout: 90s
  suppressCreatedLogs: true
  ycqlShardsPerTServer: 8
log:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, MasterDynamoDB, cfg.Master.Kind)
	assert.Equal(t, "catalog", cfg.Master.DynamoDB.TableName)
	assert.Equal(t, "eu-north-1", cfg.Master.DynamoDB.Region)
	assert.Equal(t, "http://localhost:8000", cfg.Master.DynamoDB.Endpoint)
	assert.Equal(t, 90*time.Second, cfg.Client.DefaultAdminOperationTimeout)
	assert.True(t, cfg.Client.SuppressCreatedLogs)
	assert.Equal(t, int32(8), cfg.Client.YCQLShardsPerTServer)
	// Unset values keep their defaults.
	assert.Equal(t, int32(1), cfg.Client.YSQLShardsPerTServer)
	assert.Equal(t, ".ybtable", cfg.Master.Local.DataDir)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "master: [", "parse config"},
		{"bad kind", "master:\n  kind: zookeeper\n", `unknown master kind "zookeeper"`},
		{"no table", "master:\n  kind: dynamodb\n  dynamodb:\n    tableName: \"\"\n", "tableName is required"},
		{"no data dir", "master:\n  local:\n    dataDir: \"\"\n", "dataDir is required"},
		{"negative shards", "client:\n  ysqlShardsPerTServer: -1\n", "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, t.TempDir(), tt.content))
			require.ErrorContains(t, err, tt.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Search(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "master:\n  local:\n    inMemory: true\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Master.Local.InMemory)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(&buf, LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)

	_, err = NewLogger(&buf, LogConfig{Level: "loud"})
	require.ErrorContains(t, err, "unknown log level")
	_, err = NewLogger(&buf, LogConfig{Format: "xml"})
	require.ErrorContains(t, err, "unknown log format")
}

func TestBadgerLogger(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	bl := BadgerLogger(l)
	bl.Debugf("skipped %d", 1)
	bl.Infof("opened %s\n", "db")
	assert.NotContains(t, buf.String(), "skipped")
	assert.Contains(t, buf.String(), `msg="opened db"`)
	assert.Contains(t, buf.String(), "component=badger")
}

func TestOpenMaster_Local(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	b, err := OpenMaster(ctx, MasterConfig{Kind: MasterLocal, Local: LocalConfig{InMemory: true}}, logger)
	require.NoError(t, err)
	defer b.Close()
	require.NotNil(t, b.Local)
	assert.Nil(t, b.DynamoDB)

	_, err = b.Heartbeat(ctx, "ts-1", "127.0.0.1:9100", false)
	require.NoError(t, err)
	resp, err := b.ListTabletServers(ctx, &master.ListTabletServersRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.LiveCount())

	_, err = OpenMaster(ctx, MasterConfig{Kind: "etcd"}, logger)
	require.ErrorContains(t, err, "unknown master kind")
}

func TestClientOptions(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.ClientOptions(), 3)
	cfg.Client.DefaultAdminOperationTimeout = 0
	assert.Len(t, cfg.ClientOptions(), 2)
}
