package gob

import (
	"iter"

	"github.com/CubesAndCubes/gob/internal/wire"
)

// Archive is an ordered collection of file records.
//
// Insertion order is the table order Bytes writes and the order Parse
// recovers. Duplicate paths are representable; the codec never rejects
// or merges them.
//
// An Archive is not safe for concurrent mutation.
type Archive struct {
	records []*FileRecord
}

// New returns an empty archive.
func New() *Archive {
	return &Archive{}
}

// FromRecords returns an archive holding recs in the given order.
func FromRecords(recs ...*FileRecord) *Archive {
	return &Archive{records: recs}
}

// Append adds rec to the end of the archive.
func (a *Archive) Append(rec *FileRecord) {
	a.records = append(a.records, rec)
}

// Len returns the number of records.
func (a *Archive) Len() int {
	return len(a.records)
}

// Record returns the record at index i in table order.
func (a *Archive) Record(i int) *FileRecord {
	return a.records[i]
}

// Records returns an iterator over the records in table order.
func (a *Archive) Records() iter.Seq[*FileRecord] {
	return func(yield func(*FileRecord) bool) {
		for _, rec := range a.records {
			if !yield(rec) {
				return
			}
		}
	}
}

// Lookup returns the first record stored under path.
func (a *Archive) Lookup(path string) (*FileRecord, bool) {
	for _, rec := range a.records {
		if rec.Path == path {
			return rec, true
		}
	}
	return nil, false
}

// TotalDataSize returns the combined payload size in bytes.
func (a *Archive) TotalDataSize() uint64 {
	var total uint64
	for _, rec := range a.records {
		total += uint64(len(rec.Data))
	}
	return total
}

// SerializedSize returns the byte length Bytes would produce: the
// 16-byte header and count, one 136-byte table entry per record, and
// the payload region.
func (a *Archive) SerializedSize() uint64 {
	size := uint64(wire.TableOffset) + uint64(wire.EntrySize)*uint64(len(a.records))
	return size + a.TotalDataSize()
}
