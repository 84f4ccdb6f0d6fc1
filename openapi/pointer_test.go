package openapi

import "testing"

func TestJsonPointerPathEscaping(t *testing.T) {
	p := NewJsonPointerPath().Add("paths").Add("/users/{id}").Add("get")
	got := p.String()
	want := "paths/~1users~1{id}/get"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestJsonPointerPathTildeEscapedBeforeSlash(t *testing.T) {
	p := NewJsonPointerPath().Add("a~/b")
	got := p.String()
	// "~" -> "~0" first, then "/" -> "~1": "a~/b" -> "a~0/b" -> "a~0~1b"
	want := "a~0~1b"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestJsonPointerPathBack(t *testing.T) {
	p := NewJsonPointerPath().Add("a").Add("b")
	p.Back()
	if got := p.String(); got != "a" {
		t.Fatalf("got %q, want %q", got, "a")
	}
}

func TestJsonPointerPathClone(t *testing.T) {
	p := NewJsonPointerPath().Add("a")
	c := p.Clone()
	c.Add("b")
	if p.String() != "a" {
		t.Fatalf("original mutated: %q", p.String())
	}
	if c.String() != "a/b" {
		t.Fatalf("clone wrong: %q", c.String())
	}
}
