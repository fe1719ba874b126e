package configs

import (
	"errors"
	"fmt"
	"testing"
)

var testSchema = `
str?: string
list?: [...int]
`

func TestLoaderAssignFirst(t *testing.T) {
	loader := NewLoader([]string{"test.cue"}, testSchema)

	var str string
	if err := loader.AssignFirst("str", &str); err != nil {
		t.Fatal(err)
	}
	if str != "bar" {
		t.Fatalf("got %q", str)
	}

	var list []int
	if err := loader.AssignFirst("list", &list); err != nil {
		t.Fatal(err)
	}
	if str := fmt.Sprintf("%v", list); str != "[1 2 3]" {
		t.Fatalf("got %s", str)
	}

	err := loader.AssignFirst("not", &list)
	if !errors.Is(err, ErrValueNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestLoaderAll(t *testing.T) {
	loader := NewLoader([]string{
		"test.cue",
		"test2.cue",
	}, testSchema)

	strs, err := All[string](loader, "str")
	if err != nil {
		t.Fatal(err)
	}
	if str := fmt.Sprintf("%v", strs); str != "[bar foo]" {
		t.Fatalf("got %q", str)
	}

	paths, err := loader.Paths()
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %v", paths)
	}
}

func TestUnknownField(t *testing.T) {
	loader := NewLoader([]string{
		"bad.cue",
	}, testSchema)
	var str string
	if err := loader.AssignFirst("unknown_field", &str); err == nil {
		t.Fatal("should error")
	}
}

func TestLoaderFromSources(t *testing.T) {
	loader := NewLoaderFromSources([]string{"a.cue", "b.cue"}, map[string]string{
		"a.cue": `list: [4]`,
		"b.cue": `str: "b", list: [5]`,
	}, testSchema)
	if v := First[[]int](loader, "list"); len(v) != 1 || v[0] != 4 {
		t.Fatalf("got %v", v)
	}
	if v := First[string](loader, "str"); v != "b" {
		t.Fatalf("got %v", v)
	}

	missing := NewLoaderFromSources([]string{"nope.cue"}, nil, "")
	if _, err := All[string](missing, "str"); err == nil {
		t.Fatal("should error")
	}
}
