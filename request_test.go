package boreas

import "testing"

func TestQueryGetCaseInsensitive(t *testing.T) {
	request := NewRequest("GET", "/", map[string]string{"userId": "7"})

	value, ok := request.QueryGet("USERID")
	if !ok || value != "7" {
		t.Errorf("expected a case-insensitive hit, got %q, %v", value, ok)
	}

	if _, ok := request.QueryGet("missing"); ok {
		t.Error("expected no hit for an absent key")
	}
}

func TestQueryGetExactCaseWins(t *testing.T) {
	request := NewRequest("GET", "/", map[string]string{"q": "exact", "Q": "upper"})

	if value, _ := request.QueryGet("q"); value != "exact" {
		t.Errorf("expected the exact-case key to win, got %q", value)
	}
	if value, _ := request.QueryGet("Q"); value != "upper" {
		t.Errorf("expected the exact-case key to win, got %q", value)
	}
}

func TestQueryGetIsDeterministicAcrossVariants(t *testing.T) {
	// No exact-case key present: the smallest matching key must win on every
	// lookup, not whichever the map iterator visits first.
	request := NewRequest("GET", "/", map[string]string{"FOO": "a", "Foo": "b"})

	for i := 0; i < 50; i += 1 {
		value, ok := request.QueryGet("foo")
		if !ok || value != "a" {
			t.Fatalf("expected the smallest matching key on every lookup, got %q, %v", value, ok)
		}
	}
}
