package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/Fepozopo/imgbench/pkg/pixel"
)

// NoSource is the Source of a record that was loaded rather than derived.
const NoSource = -1

// RecordKind names the operator that produced a record.
type RecordKind int

const (
	RecordOriginal RecordKind = iota
	RecordResample
	RecordGrayLevel
	RecordBitPlane
	RecordEqualization
	RecordFilter
	RecordNoise
	RecordBinaryOp
)

var recordKindNames = [...]string{
	RecordOriginal:     "original-load",
	RecordResample:     "resample",
	RecordGrayLevel:    "gray-level-resolution",
	RecordBitPlane:     "bit-plane-removal",
	RecordEqualization: "histogram-equalization",
	RecordFilter:       "spatial-filter",
	RecordNoise:        "noise-injection",
	RecordBinaryOp:     "binary-operation",
}

func (k RecordKind) String() string {
	if k >= 0 && int(k) < len(recordKindNames) {
		return recordKindNames[k]
	}
	return fmt.Sprintf("record(%d)", int(k))
}

// Record is one entry of the history. The engine never modifies a record
// or its grid after appending it; callers must treat Grid as read-only.
type Record struct {
	Index       int
	Kind        RecordKind
	Grid        *pixel.Grid
	Source      int
	BitDepth    int
	IsGrayscale bool
	Params      Params
	Elapsed     time.Duration
}

// History is an append-only list of records with pop-from-end and reset.
// Reads are safe from any goroutine; only the Engine writes.
type History struct {
	mu      sync.RWMutex
	records []Record
}

// Len returns the number of records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Get returns the record at index i.
func (h *History) Get(i int) (Record, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if i < 0 || i >= len(h.records) {
		return Record{}, errors.Wrapf(ErrSourceIndexOutOfRange, "index %d not in [0, %d)", i, len(h.records))
	}
	return h.records[i], nil
}

// Snapshot returns a copy of the record list.
func (h *History) Snapshot() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

func (h *History) append(r Record) Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	r.Index = len(h.records)
	h.records = append(h.records, r)
	return r
}

func (h *History) pop() (Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.records)
	if n == 0 {
		return Record{}, ErrEmptyHistory
	}
	last := h.records[n-1]
	h.records[n-1] = Record{}
	h.records = h.records[:n-1]
	return last, nil
}

func (h *History) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.records)
	h.records = h.records[:0]
}
