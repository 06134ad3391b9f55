package bootstrap

import (
	"testing"

	"github.com/worklens/dashgate/identity"
)

// recordingStore counts merges and remembers the last merged record.
type recordingStore struct {
	merges int
	last   identity.Record
}

func (r *recordingStore) Merge(rec identity.Record) bool {
	if rec.Empty() {
		return false
	}
	r.merges++
	r.last = rec
	return true
}
func (r *recordingStore) Read() (identity.Record, bool) { return r.last, r.last != nil }
func (r *recordingStore) Token() (string, bool)         { return "", false }
func (r *recordingStore) Clear()                        { r.last = nil }
func (r *recordingStore) ClearToken()                   {}

func TestRunMergesURLIdentity(t *testing.T) {
	st := &recordingStore{}
	seq := NewSequencer(st, Config{})

	rec, saved := seq.Run("https://dash.example.com/?employee_id=E100&name=Li&role=admin")
	if !saved {
		t.Fatal("expected a write")
	}
	if st.merges != 1 {
		t.Fatalf("merges = %d, want 1", st.merges)
	}
	if v, _ := rec.String(identity.KeyEmployeeID); v != "E100" {
		t.Errorf("employeeId = %q, want E100", v)
	}
	if v, _ := rec.String(identity.KeyRole); v != "admin" {
		t.Errorf("role = %q, want admin", v)
	}
}

func TestRunEmptyURLNoWriteOutsideAssisted(t *testing.T) {
	st := &recordingStore{}
	seq := NewSequencer(st, Config{})

	_, saved := seq.Run("https://dash.example.com/report")
	if saved {
		t.Error("no identity in URL must not write outside assisted mode")
	}
	if st.merges != 0 {
		t.Errorf("merges = %d, want 0", st.merges)
	}
}

func TestRunAssistedSeed(t *testing.T) {
	st := &recordingStore{}
	seq := NewSequencer(st, Config{Assisted: true, Seed: identity.Record{"jobNo": "CD0097"}})

	rec, saved := seq.Run("https://dash.example.com/report")
	if !saved {
		t.Fatal("assisted mode with empty URL must seed")
	}
	if v, _ := rec.String(identity.KeyJobNo); v != "CD0097" {
		t.Errorf("jobNo = %q, want CD0097", v)
	}
}

func TestRunURLWinsOverSeed(t *testing.T) {
	st := &recordingStore{}
	seq := NewSequencer(st, Config{Assisted: true, Seed: identity.Record{"jobNo": "CD0097"}})

	rec, saved := seq.Run("https://dash.example.com/?userName=Li")
	if !saved {
		t.Fatal("expected a write")
	}
	if _, ok := rec.String(identity.KeyJobNo); ok {
		t.Error("seed must not be merged when the URL asserts identity")
	}
}

func TestRunOnceOnly(t *testing.T) {
	st := &recordingStore{}
	seq := NewSequencer(st, Config{})

	seq.Run("https://dash.example.com/?userName=Li")
	_, saved := seq.Run("https://dash.example.com/?userName=Zhao")
	if saved {
		t.Error("second Run must be a no-op")
	}
	if st.merges != 1 {
		t.Errorf("merges = %d, want 1", st.merges)
	}
}
