package app

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TxRecord is one tracked transaction and its lifecycle.
type TxRecord struct {
	Hash      common.Hash
	From      common.Address
	Summary   string
	AddedAt   time.Time
	Receipt   *types.Receipt // nil until finalized
	Succeeded bool
	// Unknown is set when the receipt wait failed: the transaction was
	// broadcast but its outcome could not be resolved. A late receipt
	// delivered to Finalize still upgrades the record.
	Unknown bool
	DoneAt  time.Time
}

// Finalized reports whether a receipt has been recorded.
func (r *TxRecord) Finalized() bool {
	return r.Receipt != nil
}

// TxTracker records submitted transactions and their outcomes. Add and
// Finalize are idempotent: replaying either for a known hash is a no-op, so
// retried submissions and duplicate receipt deliveries never double-count.
type TxTracker struct {
	mu          sync.RWMutex
	records     map[common.Hash]*TxRecord
	order       []common.Hash
	onFinalized func(*TxRecord)
}

// NewTxTracker creates an empty tracker.
func NewTxTracker() *TxTracker {
	return &TxTracker{
		records: make(map[common.Hash]*TxRecord),
	}
}

// OnFinalized registers a callback fired when a transaction reaches a
// terminal record: a receipt landed, or the outcome was marked unknown.
func (t *TxTracker) OnFinalized(fn func(*TxRecord)) {
	t.mu.Lock()
	t.onFinalized = fn
	t.mu.Unlock()
}

// Add records a newly submitted transaction. Adding a hash that is already
// tracked leaves the existing record untouched.
func (t *TxTracker) Add(hash common.Hash, from common.Address, summary string) *TxRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.records[hash]; ok {
		return existing
	}

	rec := &TxRecord{
		Hash:    hash,
		From:    from,
		Summary: summary,
		AddedAt: time.Now(),
	}
	t.records[hash] = rec
	t.order = append(t.order, hash)
	return rec
}

// Finalize attaches the receipt to a tracked transaction. Unknown hashes and
// repeat finalizations are ignored.
func (t *TxTracker) Finalize(hash common.Hash, receipt *types.Receipt) {
	if receipt == nil {
		return
	}

	t.mu.Lock()
	rec, ok := t.records[hash]
	if !ok || rec.Receipt != nil {
		t.mu.Unlock()
		return
	}
	rec.Receipt = receipt
	rec.Succeeded = receipt.Status == types.ReceiptStatusSuccessful
	rec.Unknown = false
	rec.DoneAt = time.Now()
	notify := t.onFinalized
	t.mu.Unlock()

	if notify != nil {
		notify(rec)
	}
}

// MarkUnknown records that a transaction's receipt could not be retrieved.
// The record leaves the pending set without a receipt; a receipt that does
// arrive later still finalizes it. Unknown hashes and repeats are ignored.
func (t *TxTracker) MarkUnknown(hash common.Hash) {
	t.mu.Lock()
	rec, ok := t.records[hash]
	if !ok || rec.Receipt != nil || rec.Unknown {
		t.mu.Unlock()
		return
	}
	rec.Unknown = true
	rec.DoneAt = time.Now()
	notify := t.onFinalized
	t.mu.Unlock()

	if notify != nil {
		notify(rec)
	}
}

// Get returns the record for a hash.
func (t *TxTracker) Get(hash common.Hash) (*TxRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[hash]
	return rec, ok
}

// All returns tracked records in submission order.
func (t *TxTracker) All() []*TxRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*TxRecord, 0, len(t.order))
	for _, h := range t.order {
		out = append(out, t.records[h])
	}
	return out
}

// Pending returns records still awaiting a receipt.
func (t *TxTracker) Pending() []*TxRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []*TxRecord
	for _, h := range t.order {
		if rec := t.records[h]; rec.Receipt == nil && !rec.Unknown {
			out = append(out, rec)
		}
	}
	return out
}
