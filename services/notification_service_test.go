package services

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestMessagePreview(t *testing.T) {
	if got := messagePreview(""); got != "New message" {
		t.Errorf("empty body preview = %q, want %q", got, "New message")
	}

	if got := messagePreview("see you at 10"); got != "see you at 10" {
		t.Errorf("short body preview = %q, want it unchanged", got)
	}

	long := strings.Repeat("a", 60)
	if got := messagePreview(long); got != strings.Repeat("a", 50)+"..." {
		t.Errorf("long body preview = %q, want first 50 characters plus ellipsis", got)
	}
}

func TestMessagePreviewMultibyte(t *testing.T) {
	// Each character here is multiple bytes; a byte-indexed cut would
	// split one in half.
	body := strings.Repeat("é", 60)
	got := messagePreview(body)

	if !utf8.ValidString(got) {
		t.Fatalf("preview is not valid UTF-8: %q", got)
	}
	want := strings.Repeat("é", 50) + "..."
	if got != want {
		t.Errorf("preview = %q, want %q", got, want)
	}

	exact := strings.Repeat("日", 50)
	if got := messagePreview(exact); got != exact {
		t.Errorf("50-character body preview = %q, want it unchanged", got)
	}
}
