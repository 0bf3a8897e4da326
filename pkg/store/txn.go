package store

import (
	"bytes"

	"github.com/cockroachdb/pebble"

	"tagme/pkg/errs"
	"tagme/pkg/logger"

	"sync"
)

// maxCommitAttempts bounds the transparent retry loop in Update.
const maxCommitAttempts = 5

// Txn is an optimistic transaction over the store. Reads come from a
// snapshot taken at transaction start (overlaid with the transaction's
// own writes, so reads-after-writes observe them); writes are buffered
// and applied atomically at commit. Every key read from the snapshot
// is revalidated against the live DB at commit time, so a transaction
// that raced a conflicting writer is detected and rerun.
type Txn struct {
	snap     *pebble.Snapshot
	reads    map[string]readObs
	writes   map[string]writeOp
	readOnly bool
	err      error
}

type readObs struct {
	val   []byte
	found bool
}

type writeOp struct {
	val []byte
	del bool
}

// Get returns the value for key, honoring earlier writes in the same
// transaction. The returned slice is a copy.
func (tx *Txn) Get(key []byte) ([]byte, bool, error) {
	k := string(key)
	if w, ok := tx.writes[k]; ok {
		if w.del {
			return nil, false, nil
		}
		return append([]byte(nil), w.val...), true, nil
	}
	if obs, ok := tx.reads[k]; ok {
		if !obs.found {
			return nil, false, nil
		}
		return append([]byte(nil), obs.val...), true, nil
	}
	v, closer, err := tx.snap.Get(key)
	if err == pebble.ErrNotFound {
		tx.reads[k] = readObs{found: false}
		return nil, false, nil
	}
	if err != nil {
		logger.Error("txn_get_failed", "key", k, "error", err)
		return nil, false, errs.Internal("fetch data failed")
	}
	cp := append([]byte(nil), v...)
	_ = closer.Close()
	tx.reads[k] = readObs{val: cp, found: true}
	return append([]byte(nil), cp...), true, nil
}

// Set buffers a write of key to val.
func (tx *Txn) Set(key, val []byte) {
	if tx.readOnly {
		tx.err = errs.Internal("write in read-only transaction")
		return
	}
	tx.writes[string(key)] = writeOp{val: append([]byte(nil), val...)}
}

// Delete buffers a deletion of key. Deleting an absent key is not an
// error.
func (tx *Txn) Delete(key []byte) {
	if tx.readOnly {
		tx.err = errs.Internal("write in read-only transaction")
		return
	}
	tx.writes[string(key)] = writeOp{del: true}
}

// commitMu serializes commit validation and batch application so the
// first transaction to commit wins any overlapping race.
var commitMu sync.Mutex

// commit revalidates the read set against the live DB and applies the
// buffered writes in one synced batch. It reports false (and no error)
// when validation fails, i.e. a concurrent transaction committed a
// conflicting change first.
func (tx *Txn) commit() (bool, error) {
	if len(tx.writes) == 0 {
		return true, nil
	}
	commitMu.Lock()
	defer commitMu.Unlock()

	for k, obs := range tx.reads {
		cur, closer, err := db.Get([]byte(k))
		if err == pebble.ErrNotFound {
			if obs.found {
				return false, nil
			}
			continue
		}
		if err != nil {
			logger.Error("txn_validate_failed", "key", k, "error", err)
			return false, errs.Internal("fetch data failed")
		}
		same := obs.found && bytes.Equal(cur, obs.val)
		_ = closer.Close()
		if !same {
			return false, nil
		}
	}

	batch := db.NewBatch()
	defer batch.Close()
	for k, w := range tx.writes {
		if w.del {
			_ = batch.Delete([]byte(k), nil)
		} else {
			_ = batch.Set([]byte(k), w.val, nil)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		logger.Error("txn_commit_failed", "error", err)
		return false, errs.Internal("commit failed")
	}
	return true, nil
}

func newTxn(readOnly bool) *Txn {
	return &Txn{
		snap:     db.NewSnapshot(),
		reads:    map[string]readObs{},
		writes:   map[string]writeOp{},
		readOnly: readOnly,
	}
}

func (tx *Txn) close() {
	_ = tx.snap.Close()
}

// Update runs fn inside a transaction and commits its writes
// atomically. When commit validation detects that a concurrently
// committed transaction touched an overlapping key, the whole fn is
// transparently rerun from a fresh snapshot, up to maxCommitAttempts
// times, after which a Conflict error is surfaced. fn must therefore
// be pure given its reads: no side effects outside the store, in
// particular no outbound network calls.
func Update(fn func(*Txn) error) error {
	if db == nil {
		return errNotOpen()
	}
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		tx := newTxn(false)
		if err := fn(tx); err != nil {
			tx.close()
			return err
		}
		if tx.err != nil {
			tx.close()
			return tx.err
		}
		committed, err := tx.commit()
		tx.close()
		if err != nil {
			return err
		}
		if committed {
			txnCommits.Inc()
			return nil
		}
		txnRetries.Inc()
		logger.Debug("txn_conflict_retry", "attempt", attempt)
	}
	txnConflicts.Inc()
	return errs.Conflict("transaction conflict")
}

// View runs fn against a consistent read-only snapshot. Writes inside
// fn are rejected.
func View(fn func(*Txn) error) error {
	if db == nil {
		return errNotOpen()
	}
	tx := newTxn(true)
	defer tx.close()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.err
}
