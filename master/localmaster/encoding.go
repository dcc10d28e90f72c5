package localmaster

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fastest963/yugabyte-db/master"
)

// Key layout:
//
//	t/name/<namespace>\x00<table name>  -> table id
//	t/id/<table id>                     -> JSON tableRecord
//	ts/<uuid>                           -> JSON master.TabletServerPB
const (
	tableNamePrefix = "t/name/"
	tableIDPrefix   = "t/id/"
	tserverPrefix   = "ts/"
	keySeparator    = "\x00"
)

// TableState is the lifecycle state of a table in the local catalog.
type TableState string

const (
	StateCreating TableState = "CREATING"
	StateRunning  TableState = "RUNNING"
)

type tableRecord struct {
	ID        string                    `json:"id"`
	State     TableState                `json:"state"`
	CreatedAt time.Time                 `json:"created_at"`
	Request   master.CreateTableRequest `json:"request"`
}

func namespaceKey(ns master.NamespaceIdentifierPB) string {
	return ns.Key()
}

func tableNameKey(ns master.NamespaceIdentifierPB, name string) []byte {
	return []byte(tableNamePrefix + namespaceKey(ns) + keySeparator + name)
}

func tableIDKey(id string) []byte {
	return []byte(tableIDPrefix + id)
}

func tserverKey(uuid string) []byte {
	return []byte(tserverPrefix + uuid)
}

// getValue reads key, returning ok=false when it does not exist.
func getValue(txn *badger.Txn, key []byte) (val []byte, ok bool, err error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	val, err = item.ValueCopy(nil)
	return val, err == nil, err
}

func getJSON(txn *badger.Txn, key []byte, v any) (bool, error) {
	val, ok, err := getValue(txn, key)
	if err != nil || !ok {
		return ok, err
	}
	return true, json.Unmarshal(val, v)
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// scanJSON decodes every value under prefix, calling fn with the key suffix.
func scanJSON[T any](txn *badger.Txn, prefix string, fn func(suffix string, v T) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		var v T
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		}); err != nil {
			return err
		}
		if err := fn(strings.TrimPrefix(string(item.Key()), prefix), v); err != nil {
			return err
		}
	}
	return nil
}
