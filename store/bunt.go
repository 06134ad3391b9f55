package store

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/buntdb"

	"github.com/worklens/dashgate/identity"
)

// BuntStore keeps the identity record in a buntdb key-value file. This is
// the default backend: single writer, synchronous, durable across page
// loads. Use ":memory:" for tests.
type BuntStore struct {
	db   *buntdb.DB
	opts Options
}

// NewBuntStore opens (or creates) the store at path.
func NewBuntStore(path string, opts Options) (*BuntStore, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	return &BuntStore{db: db, opts: opts}, nil
}

// Close releases the underlying database.
func (s *BuntStore) Close() error { return s.db.Close() }

// Merge overlays rec onto the stored record and persists the result,
// fanning out the allow-listed fields, both credential slots, a fresh
// bootstrap session id and the write timestamp in one transaction.
// Returns false without writing anything when rec is empty, and false on
// any storage failure.
func (s *BuntStore) Merge(rec identity.Record) bool {
	if rec.Empty() {
		return false
	}

	merged := identity.Record{}
	if current, ok := s.readRecord(); ok {
		merged = current
	}
	merged.MergeFrom(rec)

	jv, err := json.Marshal(merged)
	if err != nil {
		log.Printf("store: cannot serialize identity record: %v", err)
		return false
	}

	err = s.db.Update(func(tx *buntdb.Tx) error {
		if _, _, err := tx.Set(KeyRecord, string(jv), nil); err != nil {
			return err
		}
		if tok, ok := merged.String(identity.KeyToken); ok && tok != "" {
			if _, _, err := tx.Set(KeyToken, tok, nil); err != nil {
				return err
			}
			if _, _, err := tx.Set(KeyTokenAlt, tok, nil); err != nil {
				return err
			}
		}
		for _, f := range fanoutFields {
			if v, ok := merged.String(f); ok {
				if _, _, err := tx.Set(f, v, nil); err != nil {
					return err
				}
			}
		}
		if raw, ok := merged.String(identity.KeyUserInfoRaw); ok && raw != "" {
			if _, _, err := tx.Set(KeyUserInfoRaw, raw, nil); err != nil {
				return err
			}
		}
		if _, _, err := tx.Set(KeySessionID, uuid.Must(uuid.NewRandom()).String(), nil); err != nil {
			return err
		}
		_, _, err := tx.Set(KeyTimestamp, strconv.FormatInt(time.Now().UnixMilli(), 10), nil)
		return err
	})
	if err != nil {
		log.Printf("store: merge failed: %v", err)
		return false
	}
	return true
}

// Read returns the last merged record. Absent or unparsable storage
// reports absent, except in assisted mode where the configured fallback
// substitutes.
func (s *BuntStore) Read() (identity.Record, bool) {
	if rec, ok := s.readRecord(); ok {
		return rec, true
	}
	return s.opts.fallback()
}

func (s *BuntStore) readRecord() (identity.Record, bool) {
	var raw string
	err := s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(KeyRecord)
		if err != nil {
			return err
		}
		raw = v
		return nil
	})
	if err != nil {
		if err != buntdb.ErrNotFound {
			log.Printf("store: read failed: %v", err)
		}
		return nil, false
	}
	var rec identity.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		log.Printf("store: stored identity record unparsable: %v", err)
		return nil, false
	}
	return rec, true
}

// Token reads the dedicated credential slot, falling back to the legacy
// alias. Independent of the full record.
func (s *BuntStore) Token() (string, bool) {
	var tok string
	err := s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(KeyToken)
		if err == buntdb.ErrNotFound {
			v, err = tx.Get(KeyTokenAlt)
		}
		if err != nil {
			return err
		}
		tok = v
		return nil
	})
	if err != nil {
		if err != buntdb.ErrNotFound {
			log.Printf("store: token read failed: %v", err)
		}
		return "", false
	}
	return tok, tok != ""
}

// Clear removes the canonical record, both credential slots, the session
// id and the write timestamp in one transaction, so no partial-clear
// state is observable.
func (s *BuntStore) Clear() {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		for _, k := range []string{KeyRecord, KeyToken, KeyTokenAlt, KeySessionID, KeyTimestamp} {
			if _, err := tx.Delete(k); err != nil && err != buntdb.ErrNotFound {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("store: clear failed: %v", err)
	}
}

// ClearToken removes only the credential slots. The HTTP client invokes
// this on an unauthorized response; the rest of the record stays.
func (s *BuntStore) ClearToken() {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		for _, k := range []string{KeyToken, KeyTokenAlt} {
			if _, err := tx.Delete(k); err != nil && err != buntdb.ErrNotFound {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("store: token clear failed: %v", err)
	}
}
