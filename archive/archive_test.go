package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := &Store{Directory: t.TempDir()}
	data := []byte(`{"call_type":"update","content":"aa"}`)

	id, err := s.Put(data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !s.Has(id) {
		t.Fatal("Has = false after Put")
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("Get = %q, want %q", got, data)
	}

	// Idempotent re-put.
	again, err := s.Put(data)
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if !again.Equals(id) {
		t.Fatalf("second Put cid = %s, want %s", again, id)
	}
}

func TestGetMissing(t *testing.T) {
	s := &Store{Directory: t.TempDir()}
	id, err := s.Put([]byte("present"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(s.Directory, id.String()+".json")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(id); !IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
	if s.Has(id) {
		t.Error("Has = true for a removed object")
	}
}

func TestCorruptionDetected(t *testing.T) {
	s := &Store{Directory: t.TempDir()}
	id, err := s.Put([]byte("original bytes"))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(s.Directory, id.String()+".json")
	if err := os.WriteFile(path, []byte("tampered bytes"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(id); err == nil {
		t.Error("Get returned tampered bytes without error")
	}
	if _, err := s.Put([]byte("original bytes")); err == nil {
		t.Error("Put silently accepted a name collision with different bytes")
	}
}

func TestList(t *testing.T) {
	s := &Store{Directory: t.TempDir()}

	ids, err := s.List()
	if err != nil || ids != nil {
		t.Fatalf("empty list: %v, %v", ids, err)
	}

	a, _ := s.Put([]byte("first"))
	b, _ := s.Put([]byte("second"))
	// Non-object files are ignored.
	if err := os.WriteFile(filepath.Join(s.Directory, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	ids, err = s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d ids, want 2", len(ids))
	}
	seen := map[string]bool{ids[0].String(): true, ids[1].String(): true}
	if !seen[a.String()] || !seen[b.String()] {
		t.Fatalf("ids = %v, want %s and %s", ids, a, b)
	}
}
