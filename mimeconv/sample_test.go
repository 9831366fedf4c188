package mimeconv

import "testing"

func TestBuildCSVSampleShortInputIsWhitespaceCollapsedQuoteUnescaped(t *testing.T) {
	input := `a,b,"c,d",e`
	got := BuildCSVSample(input, 200)
	want := "a b c,d e"
	if got != want {
		t.Fatalf("BuildCSVSample: got %q want %q", got, want)
	}
}

func TestBuildCSVSampleDoubledQuoteIsLiteral(t *testing.T) {
	input := `"say ""hi"""`
	got := BuildCSVSample(input, 200)
	want := `say "hi"`
	if got != want {
		t.Fatalf("BuildCSVSample: got %q want %q", got, want)
	}
}

func TestBuildCSVSampleTruncatesAtWordBoundary(t *testing.T) {
	input := "the quick brown fox jumps over the lazy dog and keeps running"
	got := BuildCSVSample(input, 20)
	if len(got) == 0 {
		t.Fatal("expected non-empty sample")
	}
	if got[len(got)-4:] != " ..." {
		t.Fatalf("expected sample to end with ' ...', got %q", got)
	}
}

func TestBuildCSVSampleMonsterWordRule(t *testing.T) {
	input := `a,b,"c,d",eeeeeeeeeeeeeeeeeeee`
	got := BuildCSVSample(input, 20)
	if got[len(got)-3:] != "..." {
		t.Fatalf("expected sample to end with '...', got %q", got)
	}
	if got[len(got)-4:] == " ..." {
		t.Fatalf("expected the monster-word rule (no space before ...), got %q", got)
	}
}
