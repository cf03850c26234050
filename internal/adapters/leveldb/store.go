// Package leveldb is a read-only indexed sample store on LevelDB, plus the
// writer used to build one.
//
// A split lives in its own database directory. The key "meta:count" holds
// the decimal sample count; "s:" followed by an 8-byte big-endian index
// holds the encoded sample.
package leveldb

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bft-labs/seqbatch/internal/domain"
)

// Store implements ports.SampleStore. It is safe for concurrent use.
type Store struct {
	db    *leveldb.DB
	count int
}

// Open opens the database at dir read-only.
func Open(dir string) (*Store, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{
		ReadOnly:               true,
		OpenFilesCacheCapacity: 100,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open sample store %s", dir)
	}
	raw, err := db.Get(countKey, nil)
	if err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "read sample count in %s", dir)
	}
	count, err := strconv.Atoi(string(raw))
	if err != nil || count < 0 {
		db.Close()
		return nil, errors.Errorf("invalid sample count %q in %s", raw, dir)
	}
	return &Store{db: db, count: count}, nil
}

// Len returns the number of samples in the split.
func (s *Store) Len() int {
	return s.count
}

// Get fetches and decodes the sample at index. A missing or corrupt record
// is reported as domain.ErrSampleUnavailable.
func (s *Store) Get(index int) (*domain.Sample, error) {
	if index < 0 || index >= s.count {
		return nil, fmt.Errorf("%w: %d", domain.ErrIndexOutOfRange, index)
	}
	raw, err := s.db.Get(sampleKey(index), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: index %d: %v", domain.ErrSampleUnavailable, index, err)
	}
	sample, err := DecodeSample(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: index %d: %v", domain.ErrSampleUnavailable, index, err)
	}
	sample.Index = index
	return sample, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Writer builds a sample database. Samples are written in batches.
type Writer struct {
	db    *leveldb.DB
	batch *leveldb.Batch
	count int
}

// Create opens (or creates) a writable database at dir.
func Create(dir string) (*Writer, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "create sample store %s", dir)
	}
	return &Writer{db: db, batch: new(leveldb.Batch)}, nil
}

// Put stages the sample at index. The count grows to cover index.
func (w *Writer) Put(index int, s *domain.Sample) {
	w.batch.Put(sampleKey(index), EncodeSample(s))
	if index+1 > w.count {
		w.count = index + 1
	}
}

// Append stages s after the last index written so far.
func (w *Writer) Append(s *domain.Sample) {
	w.Put(w.count, s)
}

// Flush writes staged samples and the count.
func (w *Writer) Flush() error {
	w.batch.Put(countKey, []byte(strconv.Itoa(w.count)))
	if err := w.db.Write(w.batch, nil); err != nil {
		return errors.Wrap(err, "write batch")
	}
	w.batch.Reset()
	return nil
}

// Close flushes and closes the database.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.db.Close()
		return err
	}
	return w.db.Close()
}
