// Package records maps typed records onto the flat byte keyspace of
// the store. Each record kind owns a fixed key-namespace prefix, so
// divergent kinds can never alias the same physical key and one store
// instance holds them all without separate tables.
package records

import (
	"encoding/binary"
	"encoding/json"
	"strconv"

	"tagme/pkg/errs"
	"tagme/pkg/logger"
	"tagme/pkg/store"
)

// Record is implemented by every persisted record kind. RecordPrefix
// returns the kind's fixed, globally unique key prefix.
type Record interface {
	RecordPrefix() []byte
}

// Key encodes a logical record key to bytes.
type Key interface {
	StoreKey() []byte
}

// UserID keys user records. The encoding is fixed-width 8-byte
// little-endian, so all user keys have identical length.
type UserID uint64

func (id UserID) StoreKey() []byte {
	return binary.LittleEndian.AppendUint64(nil, uint64(id))
}

// String renders the id the way API responses carry it.
func (id UserID) String() string { return strconv.FormatUint(uint64(id), 10) }

// TopicName keys topic records by their raw UTF-8 bytes.
type TopicName string

func (n TopicName) StoreKey() []byte { return []byte(n) }

// TopKey is the empty key of the singleton top list.
type TopKey struct{}

func (TopKey) StoreKey() []byte { return nil }

// PhysicalKey returns prefix(R) ++ encode(key), the byte key actually
// stored.
func PhysicalKey[R Record](key Key) []byte {
	var r R
	p := r.RecordPrefix()
	k := key.StoreKey()
	out := make([]byte, 0, len(p)+len(k))
	return append(append(out, p...), k...)
}

// Get reads and decodes a record, returning nil when the key is
// absent. A present key that fails to decode is a storage-integrity
// error, never "not found".
func Get[R Record](tx *store.Txn, key Key) (*R, error) {
	b, found, err := tx.Get(PhysicalKey[R](key))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	var r R
	if err := json.Unmarshal(b, &r); err != nil {
		logger.Error("record_decode_failed", "key", string(key.StoreKey()), "error", err)
		return nil, errs.Internal("deserialize failed")
	}
	return &r, nil
}

// GetOrNotFound reads a record or fails with a NotFound domain error.
func GetOrNotFound[R Record](tx *store.Txn, key Key) (*R, error) {
	r, err := Get[R](tx, key)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errs.NotFound("not found")
	}
	return r, nil
}

// Insert encodes and writes a record. Within a transaction the last
// write wins.
func Insert[R Record](tx *store.Txn, key Key, rec R) error {
	b, err := json.Marshal(rec)
	if err != nil {
		logger.Error("record_encode_failed", "key", string(key.StoreKey()), "error", err)
		return errs.Internal("serialize failed")
	}
	tx.Set(PhysicalKey[R](key), b)
	return nil
}

// Remove deletes a record's physical key. Removing an absent key is a
// no-op.
func Remove[R Record](tx *store.Txn, key Key) {
	tx.Delete(PhysicalKey[R](key))
}
