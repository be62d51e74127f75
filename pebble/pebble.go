// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

const pebbleByteOverhead = 8

var (
	_ database.Database = (*Database)(nil)

	errInvalidOperation = errors.New("invalid operation")
)

type Database struct {
	db      *pebble.DB
	metrics *metrics

	closed    utils.Atomic[bool]
	closeOnce sync.Once
	closing   chan struct{}

	writeOptions *pebble.WriteOptions
}

type Config struct {
	CacheSize                   int // B
	BytesPerSync                int // B
	WALBytesPerSync             int // B (0 disables)
	MemTableStopWritesThreshold int // num tables
	MemTableSize                int // B
	MaxOpenFiles                int
	MaxConcurrentCompactions    int

	// Sync, if true, blocks writes until they hit stable storage.
	Sync bool
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:                   1024 * units.MiB,
		BytesPerSync:                4 * units.MiB,
		WALBytesPerSync:             4 * units.MiB,
		MemTableStopWritesThreshold: 8,
		MemTableSize:                16 * units.MiB,
		MaxOpenFiles:                4_096,
		MaxConcurrentCompactions:    4,
		Sync:                        false,
	}
}

func New(file string, cfg Config) (database.Database, *prometheus.Registry, error) {
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	d := &Database{
		metrics:      metrics,
		closing:      make(chan struct{}),
		writeOptions: &pebble.WriteOptions{Sync: cfg.Sync},
	}
	opts := &pebble.Options{
		Cache:                       pebble.NewCache(int64(cfg.CacheSize)),
		BytesPerSync:                cfg.BytesPerSync,
		Comparer:                    pebble.DefaultComparer,
		WALBytesPerSync:             cfg.WALBytesPerSync,
		MemTableStopWritesThreshold: cfg.MemTableStopWritesThreshold,
		MemTableSize:                uint64(cfg.MemTableSize),
		MaxOpenFiles:                cfg.MaxOpenFiles,
		MaxConcurrentCompactions:    func() int { return cfg.MaxConcurrentCompactions },
		EventListener: &pebble.EventListener{
			CompactionBegin: d.onCompactionBegin,
			CompactionEnd:   d.onCompactionEnd,
			WriteStallBegin: d.onWriteStallBegin,
			WriteStallEnd:   d.onWriteStallEnd,
		},
	}
	// Seek compactions hurt throughput on read-heavy workloads, so we disable
	// read sampling entirely.
	opts.Experimental.ReadSamplingMultiplier = -1

	db, err := pebble.Open(file, opts)
	if err != nil {
		return nil, nil, err
	}
	d.db = db
	go d.collectMetrics()
	return d, registry, nil
}

func (db *Database) Close() error {
	db.closed.Set(true)
	db.closeOnce.Do(func() {
		close(db.closing)
	})
	return updateError(db.db.Close())
}

func (db *Database) HealthCheck(_ context.Context) (interface{}, error) {
	if db.closed.Get() {
		return nil, database.ErrClosed
	}
	return nil, nil
}

func (db *Database) Has(key []byte) (bool, error) {
	if db.closed.Get() {
		return false, database.ErrClosed
	}

	_, closer, err := db.db.Get(key)
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, updateError(err)
	}
	return true, closer.Close()
}

func (db *Database) Get(key []byte) ([]byte, error) {
	if db.closed.Get() {
		return nil, database.ErrClosed
	}

	start := time.Now()
	data, closer, err := db.db.Get(key)
	if err != nil {
		return nil, updateError(err)
	}
	db.metrics.getLatency.Observe(float64(time.Since(start)))

	// [data] is only valid until [closer] is closed, so we must copy it out.
	ret := slices.Clone(data)
	return ret, closer.Close()
}

func (db *Database) Put(key []byte, value []byte) error {
	if db.closed.Get() {
		return database.ErrClosed
	}

	return updateError(db.db.Set(key, value, db.writeOptions))
}

func (db *Database) Delete(key []byte) error {
	if db.closed.Get() {
		return database.ErrClosed
	}

	return updateError(db.db.Delete(key, db.writeOptions))
}

func (db *Database) Compact(start []byte, end []byte) error {
	if db.closed.Get() {
		return database.ErrClosed
	}

	if end == nil {
		// The database interface treats a nil [end] as compacting through the
		// last key, but pebble treats it as a key before all keys. We work
		// around this by bounding the compaction at the last present key.
		it, err := db.db.NewIter(&pebble.IterOptions{})
		if err != nil {
			return updateError(err)
		}
		if !it.Last() {
			return it.Close()
		}
		end = slices.Concat(it.Key(), []byte{0x00})
		if err := it.Close(); err != nil {
			return updateError(err)
		}
	}
	return updateError(db.db.Compact(start, end, true /* parallelize */))
}

func (db *Database) NewBatch() database.Batch {
	return &batch{
		db:    db,
		batch: db.db.NewBatch(),
	}
}

func (db *Database) NewIterator() database.Iterator {
	if db.closed.Get() {
		return &iterator{db: db, closed: true, err: database.ErrClosed}
	}

	it, err := db.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return &iterator{db: db, closed: true, err: updateError(err)}
	}
	return &iterator{
		db:   db,
		iter: it,
	}
}

func (db *Database) NewIteratorWithStart(start []byte) database.Iterator {
	if db.closed.Get() {
		return &iterator{db: db, closed: true, err: database.ErrClosed}
	}

	it, err := db.db.NewIter(&pebble.IterOptions{LowerBound: start})
	if err != nil {
		return &iterator{db: db, closed: true, err: updateError(err)}
	}
	return &iterator{
		db:   db,
		iter: it,
	}
}

func (db *Database) NewIteratorWithPrefix(prefix []byte) database.Iterator {
	if db.closed.Get() {
		return &iterator{db: db, closed: true, err: database.ErrClosed}
	}

	it, err := db.db.NewIter(keyRange(nil, prefix))
	if err != nil {
		return &iterator{db: db, closed: true, err: updateError(err)}
	}
	return &iterator{
		db:   db,
		iter: it,
	}
}

func (db *Database) NewIteratorWithStartAndPrefix(start, prefix []byte) database.Iterator {
	if db.closed.Get() {
		return &iterator{db: db, closed: true, err: database.ErrClosed}
	}

	it, err := db.db.NewIter(keyRange(start, prefix))
	if err != nil {
		return &iterator{db: db, closed: true, err: updateError(err)}
	}
	return &iterator{
		db:   db,
		iter: it,
	}
}

func keyRange(start, prefix []byte) *pebble.IterOptions {
	opts := &pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixToUpperBound(prefix),
	}
	if pebble.DefaultComparer.Compare(start, prefix) == 1 {
		opts.LowerBound = start
	}
	return opts
}

// prefixToUpperBound returns an exclusive upper bound covering all keys that
// begin with [prefix].
func prefixToUpperBound(prefix []byte) []byte {
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] != 0xFF {
			upperBound := make([]byte, i+1)
			copy(upperBound, prefix)
			upperBound[i]++
			return upperBound
		}
	}
	return nil
}

func updateError(err error) error {
	switch err {
	case pebble.ErrNotFound:
		return database.ErrNotFound
	case pebble.ErrClosed:
		return database.ErrClosed
	default:
		return err
	}
}

type batch struct {
	db    *Database
	batch *pebble.Batch
	size  int

	// written is true iff [batch] has been written to the database. A pebble
	// batch cannot be committed twice, so [Write] replaces it with a fresh one
	// after committing.
	written bool
}

func (b *batch) Put(key, value []byte) error {
	b.size += len(key) + len(value) + pebbleByteOverhead
	return b.batch.Set(key, value, nil)
}

func (b *batch) Delete(key []byte) error {
	b.size += len(key) + pebbleByteOverhead
	return b.batch.Delete(key, nil)
}

func (b *batch) Size() int { return b.size }

func (b *batch) Write() error {
	if b.db.closed.Get() {
		return database.ErrClosed
	}

	if b.written {
		// A batch can be written multiple times per the interface contract,
		// but a pebble batch cannot, so we rebuild it before writing again.
		reader := b.batch.Reader()
		b.batch = b.db.db.NewBatch()
		for {
			kind, key, value, ok := reader.Next()
			if !ok {
				break
			}
			switch kind {
			case pebble.InternalKeyKindSet:
				if err := b.batch.Set(key, value, nil); err != nil {
					return updateError(err)
				}
			case pebble.InternalKeyKindDelete:
				if err := b.batch.Delete(key, nil); err != nil {
					return updateError(err)
				}
			default:
				return fmt.Errorf("%w: %v", errInvalidOperation, kind)
			}
		}
	}

	b.written = true
	return updateError(b.batch.Commit(b.db.writeOptions))
}

func (b *batch) Reset() {
	b.batch = b.db.db.NewBatch()
	b.written = false
	b.size = 0
}

func (b *batch) Replay(w database.KeyValueWriterDeleter) error {
	reader := b.batch.Reader()
	for {
		kind, key, value, ok := reader.Next()
		if !ok {
			return nil
		}
		switch kind {
		case pebble.InternalKeyKindSet:
			if err := w.Put(key, value); err != nil {
				return err
			}
		case pebble.InternalKeyKindDelete:
			if err := w.Delete(key); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %v", errInvalidOperation, kind)
		}
	}
}

func (b *batch) Inner() database.Batch { return b }

type iterator struct {
	db   *Database
	iter *pebble.Iterator

	initialized bool
	closed      bool
	err         error

	hasNext bool
	nextKey []byte
	nextVal []byte
}

func (it *iterator) Next() bool {
	if it.db.closed.Get() {
		it.hasNext = false
		it.err = database.ErrClosed
		return false
	}
	if it.closed {
		it.hasNext = false
		return false
	}

	if !it.initialized {
		it.hasNext = it.iter.First()
		it.initialized = true
	} else {
		it.hasNext = it.iter.Next()
	}

	if it.hasNext {
		it.nextKey = slices.Clone(it.iter.Key())
		it.nextVal = slices.Clone(it.iter.Value())
	} else {
		it.nextKey = nil
		it.nextVal = nil
	}
	return it.hasNext
}

func (it *iterator) Error() error {
	if it.err != nil {
		return it.err
	}
	if it.closed {
		return nil
	}
	return updateError(it.iter.Error())
}

func (it *iterator) Key() []byte {
	if !it.hasNext {
		return nil
	}
	return it.nextKey
}

func (it *iterator) Value() []byte {
	if !it.hasNext {
		return nil
	}
	return it.nextVal
}

func (it *iterator) Release() {
	if it.closed {
		return
	}
	it.closed = true
	it.hasNext = false
	it.nextKey = nil
	it.nextVal = nil
	_ = it.iter.Close()
}
