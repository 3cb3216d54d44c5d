// Package kv wraps goleveldb behind the namespaced, batched interface the
// store package composes on top of. Namespaces are single-byte tags
// prepended to every key; readers and writers agree on the tag set
// statically. Writes are committed or discarded as a unit via leveldb's own
// *leveldb.Batch.
package kv

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Namespace is a single-byte key prefix.
type Namespace byte

// Store is a namespaced, batched key-value store. All mutation happens
// through Batch so a caller can group several namespace writes into one
// atomic commit.
type Store struct {
	db *leveldb.DB
}

func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func key(ns Namespace, k []byte) []byte {
	out := make([]byte, 1+len(k))
	out[0] = byte(ns)
	copy(out[1:], k)
	return out
}

// Get returns (nil, false, nil) when the key is absent.
func (s *Store) Get(ns Namespace, k []byte) ([]byte, bool, error) {
	v, err := s.db.Get(key(ns, k), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *Store) Has(ns Namespace, k []byte) (bool, error) {
	return s.db.Has(key(ns, k), nil)
}

// Iterate calls fn for every key in ns with its namespace prefix stripped.
// Iteration stops early if fn returns false.
func (s *Store) Iterate(ns Namespace, fn func(k, v []byte) bool) error {
	iter := s.db.NewIterator(util.BytesPrefix([]byte{byte(ns)}), nil)
	defer iter.Release()
	for iter.Next() {
		k := iter.Key()[1:]
		if !fn(k, iter.Value()) {
			break
		}
	}
	return iter.Error()
}

// Batch accumulates namespaced puts/deletes for one atomic Commit.
type Batch struct {
	store *leveldb.Batch
}

func NewBatch() *Batch { return &Batch{store: new(leveldb.Batch)} }

func (b *Batch) Put(ns Namespace, k, v []byte) { b.store.Put(key(ns, k), v) }

func (b *Batch) Delete(ns Namespace, k []byte) { b.store.Delete(key(ns, k)) }

func (s *Store) Commit(b *Batch) error { return s.db.Write(b.store, nil) }
