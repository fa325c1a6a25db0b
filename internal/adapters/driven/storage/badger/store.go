// Package badger provides a vector store on BadgerDB, an embedded
// key-value store. Select it with store.backend = "badger".
package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/custodia-labs/folio/internal/adapters/driven/storage/scan"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// Key layout. Collection names cannot contain '/'.
//
//	col/<name>              -> collectionMeta
//	idx/<name>/<entry id>   -> 8-byte sequence
//	ent/<name>/<sequence>   -> storedEntry
const (
	collectionPrefix = "col/"
	indexPrefix      = "idx/"
	entryPrefix      = "ent/"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store wraps a BadgerDB instance.
type Store struct {
	db  *badger.DB
	log *logger.Logger

	// writeMu serialises upserts so sequence and dimension updates never conflict.
	writeMu sync.Mutex
}

// badgerLogger adapts the application logger to badger.Logger.
// Badger's info output is routed to debug.
type badgerLogger struct {
	log *logger.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (bl *badgerLogger) Errorf(msg string, items ...any) {
	bl.log.Error("%s", strings.TrimSpace(fmt.Sprintf(msg, items...)))
}

func (bl *badgerLogger) Warningf(msg string, items ...any) {
	bl.log.Warn("%s", strings.TrimSpace(fmt.Sprintf(msg, items...)))
}

func (bl *badgerLogger) Infof(msg string, items ...any) {
	bl.log.Debug("%s", strings.TrimSpace(fmt.Sprintf(msg, items...)))
}

func (bl *badgerLogger) Debugf(msg string, items ...any) {
	bl.log.Debug("%s", strings.TrimSpace(fmt.Sprintf(msg, items...)))
}

// Open opens a store in dir, or an in-memory store when dir is empty.
func Open(dir string, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Discard()
	}
	log = log.With("badger")

	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(dir)
		switch {
		case os.IsNotExist(err):
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("creating store directory: %w", err)
			}
		case err != nil:
			return nil, err
		case !info.IsDir():
			return nil, fmt.Errorf("%s is not a directory", dir)
		}
		opts = badger.DefaultOptions(dir)
	}

	opts.Logger = &badgerLogger{log: log}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

// Collection returns the named collection, creating it if absent.
func (s *Store) Collection(_ context.Context, name string) (driven.Collection, error) {
	if err := scan.ValidateName(name); err != nil {
		return nil, err
	}
	if s.db.IsClosed() {
		return nil, domain.ErrStoreClosed
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.db.Update(func(tx *badger.Txn) error {
		_, err := tx.Get(collectionKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return putMeta(tx, name, collectionMeta{})
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating collection %q: %w", name, err)
	}
	return &collection{store: s, name: name}, nil
}

// collectionMeta is persisted under col/<name>.
type collectionMeta struct {
	Dimension int    `json:"dimension"`
	Next      uint64 `json:"next"`
}

// storedEntry is the value persisted under ent/<name>/<seq>.
type storedEntry struct {
	ID        string               `json:"id"`
	Embedding []float32            `json:"embedding"`
	Contents  string               `json:"contents"`
	Metadata  domain.EntryMetadata `json:"metadata"`
}

// Ensure collection implements the interface.
var _ driven.Collection = (*collection)(nil)

type collection struct {
	store *Store
	name  string
}

// Name returns the collection name.
func (c *collection) Name() string {
	return c.name
}

// Upsert inserts the entry or replaces the entry with the same ID in place,
// keeping its original position in the scan order.
func (c *collection) Upsert(_ context.Context, entry domain.CorpusEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("%w: entry id is empty", domain.ErrInvalidInput)
	}
	if len(entry.Embedding) == 0 {
		return domain.ErrEmptyEmbedding
	}
	if c.store.db.IsClosed() {
		return domain.ErrStoreClosed
	}

	value, err := json.Marshal(storedEntry{
		ID:        entry.ID,
		Embedding: entry.Embedding,
		Contents:  entry.Contents,
		Metadata:  entry.Metadata,
	})
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}

	c.store.writeMu.Lock()
	defer c.store.writeMu.Unlock()

	return c.store.db.Update(func(tx *badger.Txn) error {
		meta, err := getMeta(tx, c.name)
		if err != nil {
			return err
		}

		switch {
		case meta.Dimension == 0:
			meta.Dimension = len(entry.Embedding)
		case meta.Dimension != len(entry.Embedding):
			return fmt.Errorf("%w: collection %q holds %d dimensions, got %d",
				domain.ErrDimensionMismatch, c.name, meta.Dimension, len(entry.Embedding))
		}

		var seq []byte
		item, err := tx.Get(indexKey(c.name, entry.ID))
		switch {
		case err == nil:
			if seq, err = item.ValueCopy(nil); err != nil {
				return err
			}
		case errors.Is(err, badger.ErrKeyNotFound):
			seq = binary.BigEndian.AppendUint64(nil, meta.Next)
			meta.Next++
			if err := tx.Set(indexKey(c.name, entry.ID), seq); err != nil {
				return err
			}
		default:
			return err
		}

		if err := tx.Set(entryKey(c.name, seq), value); err != nil {
			return err
		}
		return putMeta(tx, c.name, meta)
	})
}

// Query scans the collection in insertion order and ranks by cosine distance.
func (c *collection) Query(ctx context.Context, req driven.QueryRequest) (driven.QueryResult, error) {
	if c.store.db.IsClosed() {
		return driven.QueryResult{}, domain.ErrStoreClosed
	}

	return scan.Query(req, func(add func(domain.CorpusEntry) error) error {
		return c.store.db.View(func(tx *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(entryPrefix + c.name + "/")
			iter := tx.NewIterator(opts)
			defer iter.Close()

			for iter.Rewind(); iter.Valid(); iter.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}
				var stored storedEntry
				err := iter.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &stored)
				})
				if err != nil {
					return fmt.Errorf("decoding entry: %w", err)
				}
				if err := add(domain.CorpusEntry{
					ID:        stored.ID,
					Embedding: stored.Embedding,
					Contents:  stored.Contents,
					Metadata:  stored.Metadata,
				}); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// Count returns the number of entries in the collection.
func (c *collection) Count(_ context.Context) (int, error) {
	if c.store.db.IsClosed() {
		return 0, domain.ErrStoreClosed
	}

	n := 0
	err := c.store.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(indexPrefix + c.name + "/")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func getMeta(tx *badger.Txn, name string) (collectionMeta, error) {
	var meta collectionMeta
	item, err := tx.Get(collectionKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return meta, fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return meta, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &meta)
	})
	return meta, err
}

func putMeta(tx *badger.Txn, name string, meta collectionMeta) error {
	value, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return tx.Set(collectionKey(name), value)
}

func collectionKey(name string) []byte {
	return []byte(collectionPrefix + name)
}

func indexKey(name, id string) []byte {
	return []byte(indexPrefix + name + "/" + id)
}

func entryKey(name string, seq []byte) []byte {
	return append([]byte(entryPrefix+name+"/"), seq...)
}
