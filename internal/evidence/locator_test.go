package evidence

import (
	"strings"
	"testing"
)

func TestLocateExactFirstOccurrence(t *testing.T) {
	source := "the term of this agreement. the term is five years."
	span, ok := Locate(source, "the term", -1)
	if !ok {
		t.Fatalf("expected snippet to be found")
	}
	if span.Start != 0 {
		t.Fatalf("expected lowest start index 0, got %d", span.Start)
	}
	if got := source[span.Start:span.End]; got != "the term" {
		t.Fatalf("span does not reproduce snippet: %q", got)
	}
}

func TestLocateRoundTrip(t *testing.T) {
	source := "Recipient shall hold Confidential Information in strict confidence."
	for _, snippet := range []string{
		"Recipient",
		"Confidential Information",
		"strict confidence.",
		source,
	} {
		span, ok := Locate(source, snippet, -1)
		if !ok {
			t.Fatalf("snippet %q not found", snippet)
		}
		if source[span.Start:span.End] != snippet {
			t.Fatalf("span for %q does not round-trip", snippet)
		}
		if idx := strings.Index(source, snippet); idx != span.Start {
			t.Fatalf("snippet %q: start %d is not the lowest index %d", snippet, span.Start, idx)
		}
	}
}

func TestLocateHintedStart(t *testing.T) {
	source := "notice. notice. notice."
	span, ok := Locate(source, "notice.", 8)
	if !ok {
		t.Fatalf("expected snippet to be found")
	}
	if span.Start != 8 || span.End != 15 {
		t.Fatalf("expected hinted occurrence [8,15), got [%d,%d)", span.Start, span.End)
	}
}

func TestLocateBadHintFallsBackToFirst(t *testing.T) {
	source := "one two three"
	span, ok := Locate(source, "two", 100)
	if !ok {
		t.Fatalf("expected snippet to be found")
	}
	if span.Start != 4 {
		t.Fatalf("expected first occurrence at 4, got %d", span.Start)
	}
}

func TestLocateMiss(t *testing.T) {
	if _, ok := Locate("some agreement text", "not present verbatim", -1); ok {
		t.Fatalf("expected NotFound for absent snippet")
	}
	if _, ok := Locate("text", "", -1); ok {
		t.Fatalf("expected NotFound for empty snippet")
	}
}
