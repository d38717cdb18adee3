package msgid

import "testing"

func TestForBytes(t *testing.T) {
	data := []byte("glacier message file\n")
	const want = "bafkreigjhqjqk6ows6xfelg3gegowzbyj6tvonh4eikvxzvj6tn3q2wvya"

	id, err := ForBytes(data)
	if err != nil {
		t.Fatalf("ForBytes: %v", err)
	}
	if id.String() != want {
		t.Fatalf("cid = %s, want %s", id, want)
	}
	if got := String(data); got != want {
		t.Fatalf("String = %s, want %s", got, want)
	}
}

func TestDistinctContents(t *testing.T) {
	a := String([]byte("a"))
	b := String([]byte("b"))
	if a == b || a == "" || b == "" {
		t.Fatalf("ids not distinct: %s vs %s", a, b)
	}
}
