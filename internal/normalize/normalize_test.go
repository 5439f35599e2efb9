package normalize

import "testing"

func TestUsername(t *testing.T) {
	in := "  Alice.W  "
	want := "alice.w"
	got := Username(in)
	if got != want {
		t.Fatalf("Username(%q) = %q, want %q", in, got, want)
	}
}

func TestContent(t *testing.T) {
	if got := Content("\n  I felt unheard today \t"); got != "I felt unheard today" {
		t.Fatalf("Content trimmed to %q", got)
	}
	if got := Content("   "); got != "" {
		t.Fatalf("Content of blanks = %q, want empty", got)
	}
}
