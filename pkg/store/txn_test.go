package store

import (
	"errors"
	"testing"

	"github.com/cockroachdb/pebble"

	"tagme/pkg/errs"
)

func openTestStore(t *testing.T) {
	t.Helper()
	if err := Open(t.TempDir(), 0); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	})
}

func mustGet(t *testing.T, key string) ([]byte, bool) {
	t.Helper()
	var val []byte
	var found bool
	err := View(func(tx *Txn) error {
		var err error
		val, found, err = tx.Get([]byte(key))
		return err
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	return val, found
}

func TestUpdateCommitsAllWrites(t *testing.T) {
	openTestStore(t)

	err := Update(func(tx *Txn) error {
		tx.Set([]byte("a"), []byte("1"))
		tx.Set([]byte("b"), []byte("2"))
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if v, ok := mustGet(t, "a"); !ok || string(v) != "1" {
		t.Fatalf("a = %q, %v; want 1, true", v, ok)
	}
	if v, ok := mustGet(t, "b"); !ok || string(v) != "2" {
		t.Fatalf("b = %q, %v; want 2, true", v, ok)
	}
}

func TestUpdateAbortDiscardsAllWrites(t *testing.T) {
	openTestStore(t)

	boom := errors.New("boom")
	err := Update(func(tx *Txn) error {
		tx.Set([]byte("a"), []byte("1"))
		tx.Delete([]byte("b"))
		return boom
	})
	if err != boom {
		t.Fatalf("Update error = %v; want %v", err, boom)
	}
	if _, ok := mustGet(t, "a"); ok {
		t.Fatal("aborted write is visible")
	}
}

func TestReadYourWrites(t *testing.T) {
	openTestStore(t)

	err := Update(func(tx *Txn) error {
		if _, ok, _ := tx.Get([]byte("k")); ok {
			t.Fatal("key visible before write")
		}
		tx.Set([]byte("k"), []byte("v"))
		v, ok, err := tx.Get([]byte("k"))
		if err != nil || !ok || string(v) != "v" {
			t.Fatalf("read-after-write = %q, %v, %v", v, ok, err)
		}
		tx.Delete([]byte("k"))
		if _, ok, _ := tx.Get([]byte("k")); ok {
			t.Fatal("key visible after delete")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
}

func TestCommitDetectsConflictingWrite(t *testing.T) {
	openTestStore(t)

	if err := db.Set([]byte("k"), []byte("v1"), pebble.Sync); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tx := newTxn(false)
	defer tx.close()
	if _, _, err := tx.Get([]byte("k")); err != nil {
		t.Fatalf("Get: %v", err)
	}
	// concurrent writer commits between read and commit
	if err := db.Set([]byte("k"), []byte("v2"), pebble.Sync); err != nil {
		t.Fatalf("interfere: %v", err)
	}
	tx.Set([]byte("out"), []byte("x"))

	committed, err := tx.commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if committed {
		t.Fatal("commit succeeded despite conflicting write")
	}
	if _, ok := mustGet(t, "out"); ok {
		t.Fatal("losing transaction left a write behind")
	}
}

func TestConflictOnObservedAbsence(t *testing.T) {
	openTestStore(t)

	tx := newTxn(false)
	defer tx.close()
	if _, found, _ := tx.Get([]byte("k")); found {
		t.Fatal("unexpected key")
	}
	if err := db.Set([]byte("k"), []byte("v"), pebble.Sync); err != nil {
		t.Fatalf("interfere: %v", err)
	}
	tx.Set([]byte("out"), []byte("x"))

	committed, err := tx.commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if committed {
		t.Fatal("commit succeeded despite key appearing")
	}
}

func TestUpdateRetriesAfterLostRace(t *testing.T) {
	openTestStore(t)

	if err := db.Set([]byte("n"), []byte("0"), pebble.Sync); err != nil {
		t.Fatalf("seed: %v", err)
	}

	attempts := 0
	err := Update(func(tx *Txn) error {
		attempts++
		if _, _, err := tx.Get([]byte("n")); err != nil {
			return err
		}
		if attempts == 1 {
			// lose the race on the first attempt only
			if err := db.Set([]byte("n"), []byte("1"), pebble.Sync); err != nil {
				t.Fatalf("interfere: %v", err)
			}
		}
		tx.Set([]byte("n"), []byte("2"))
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d; want 2", attempts)
	}
	if v, _ := mustGet(t, "n"); string(v) != "2" {
		t.Fatalf("n = %q; want 2", v)
	}
}

func TestUpdateSurfacesConflictAfterRetries(t *testing.T) {
	openTestStore(t)

	seq := 0
	err := Update(func(tx *Txn) error {
		if _, _, err := tx.Get([]byte("k")); err != nil {
			return err
		}
		// every attempt loses its race
		seq++
		if err := db.Set([]byte("k"), []byte{byte(seq)}, pebble.Sync); err != nil {
			t.Fatalf("interfere: %v", err)
		}
		tx.Set([]byte("k"), []byte("mine"))
		return nil
	})
	if err == nil {
		t.Fatal("Update succeeded; want conflict")
	}
	if errs.StatusOf(err) != 409 {
		t.Fatalf("status = %d; want 409", errs.StatusOf(err))
	}
	if seq != maxCommitAttempts {
		t.Fatalf("attempts = %d; want %d", seq, maxCommitAttempts)
	}
}

func TestViewRejectsWrites(t *testing.T) {
	openTestStore(t)

	err := View(func(tx *Txn) error {
		tx.Set([]byte("k"), []byte("v"))
		return nil
	})
	if err == nil {
		t.Fatal("View accepted a write")
	}
	if _, ok := mustGet(t, "k"); ok {
		t.Fatal("View write reached the store")
	}
}
