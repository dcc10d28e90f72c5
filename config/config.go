// Package config loads ybtable settings from YAML and builds the logger,
// master and client options they describe.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fastest963/yugabyte-db/client"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up from the working directory.
const FileName = "ybtable.yaml"

const (
	MasterLocal    = "local"
	MasterDynamoDB = "dynamodb"
)

// Config is the root of ybtable.yaml.
type Config struct {
	Master MasterConfig `yaml:"master"`
	Client ClientConfig `yaml:"client"`
	Log    LogConfig    `yaml:"log"`
}

// MasterConfig selects and configures the catalog backend.
type MasterConfig struct {
	// Kind is "local" (default) or "dynamodb".
	Kind     string         `yaml:"kind"`
	Local    LocalConfig    `yaml:"local"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
}

// LocalConfig configures the Badger backed master.
type LocalConfig struct {
	// DataDir is where Badger stores the catalog. Ignored when InMemory.
	DataDir        string        `yaml:"dataDir"`
	InMemory       bool          `yaml:"inMemory"`
	ReadyDelay     time.Duration `yaml:"readyDelay"`
	TServerTimeout time.Duration `yaml:"tserverTimeout"`
}

type DynamoDBConfig struct {
	TableName string `yaml:"tableName"`
	Region    string `yaml:"region"`
	// Endpoint overrides the service endpoint, e.g. for DynamoDB Local.
	Endpoint       string        `yaml:"endpoint"`
	TServerTimeout time.Duration `yaml:"tserverTimeout"`
	// CreateTable provisions the catalog table on startup.
	CreateTable bool `yaml:"createTable"`
}

// ClientConfig holds table creator defaults.
type ClientConfig struct {
	DefaultAdminOperationTimeout time.Duration `yaml:"defaultAdminOperationTimeout"`
	SuppressCreatedLogs          bool          `yaml:"suppressCreatedLogs"`
	YCQLShardsPerTServer         int32         `yaml:"ycqlShardsPerTServer"`
	YSQLShardsPerTServer         int32         `yaml:"ysqlShardsPerTServer"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	// Level is debug, info, warn or error. Defaults to info.
	Level string `yaml:"level"`
	// Format is text (default) or json.
	Format string `yaml:"format"`
}

// Default returns the settings used when no file is found.
func Default() Config {
	return Config{
		Master: MasterConfig{
			Kind: MasterLocal,
			Local: LocalConfig{
				DataDir: ".ybtable",
			},
			DynamoDB: DynamoDBConfig{
				TableName: "ybtable-catalog",
			},
		},
		Client: ClientConfig{
			DefaultAdminOperationTimeout: client.DefaultAdminOperationTimeout,
			YCQLShardsPerTServer:         2,
			YSQLShardsPerTServer:         1,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the config at path. An empty path searches for ybtable.yaml
// walking up from the current directory; when none is found the defaults
// are returned. Values missing from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return cfg, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Master.Kind {
	case MasterLocal:
		if !c.Master.Local.InMemory && c.Master.Local.DataDir == "" {
			return fmt.Errorf("master.local.dataDir is required unless inMemory is set")
		}
	case MasterDynamoDB:
		if c.Master.DynamoDB.TableName == "" {
			return fmt.Errorf("master.dynamodb.tableName is required")
		}
	default:
		return fmt.Errorf("unknown master kind %q", c.Master.Kind)
	}
	if c.Client.DefaultAdminOperationTimeout < 0 {
		return fmt.Errorf("client.defaultAdminOperationTimeout must not be negative")
	}
	if c.Client.YCQLShardsPerTServer < 0 || c.Client.YSQLShardsPerTServer < 0 {
		return fmt.Errorf("shards per tablet server must not be negative")
	}
	return nil
}

// ClientOptions converts the client section into client options.
func (c Config) ClientOptions() []client.Option {
	opts := []client.Option{
		client.WithSuppressCreatedLogs(c.Client.SuppressCreatedLogs),
		client.WithShardsPerTServer(c.Client.YCQLShardsPerTServer, c.Client.YSQLShardsPerTServer),
	}
	if c.Client.DefaultAdminOperationTimeout > 0 {
		opts = append(opts, client.WithDefaultAdminOperationTimeout(c.Client.DefaultAdminOperationTimeout))
	}
	return opts
}

// findConfigFile searches for ybtable.yaml walking up from current directory.
func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
