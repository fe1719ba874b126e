package vars

import "testing"

func TestStrToBool(t *testing.T) {
	for _, str := range []string{"true", "T", "yes", " y ", "on", "1"} {
		if !StrToBool(str) {
			t.Fatalf("%q should be true", str)
		}
	}
	for _, str := range []string{"false", "no", "off", "0", "", "maybe"} {
		if StrToBool(str) {
			t.Fatalf("%q should be false", str)
		}
	}
}

func TestFirstNonZero(t *testing.T) {
	if v := FirstNonZero(0, 0, 3, 4); v != 3 {
		t.Fatalf("got %v", v)
	}
	if v := FirstNonZero("", ""); v != "" {
		t.Fatalf("got %q", v)
	}
}

func TestDerefOrZero(t *testing.T) {
	if v := DerefOrZero[int](nil); v != 0 {
		t.Fatalf("got %v", v)
	}
	n := 42
	if v := DerefOrZero(&n); v != 42 {
		t.Fatalf("got %v", v)
	}
}
