package mimeconv

import "testing"

func TestResolveIsCaseInsensitiveOnLookup(t *testing.T) {
	r := NewResolver()
	lower, lok := r.Resolve("txt")
	upper, uok := r.Resolve("TXT")
	if !lok || !uok || lower != upper {
		t.Fatalf("expected case-insensitive match, got %q(%v) vs %q(%v)", lower, lok, upper, uok)
	}
}

func TestResolveUnknownExtension(t *testing.T) {
	r := NewResolver()
	if _, ok := r.Resolve("zzz"); ok {
		t.Fatal("expected unknown extension to miss")
	}
}

func TestResolveIgnoreSentinel(t *testing.T) {
	r := NewResolver()
	mime, ok := r.Resolve("gif")
	if !ok || mime != IgnoreSentinel {
		t.Fatalf("expected gif to resolve to ignore sentinel, got %q ok=%v", mime, ok)
	}
}

func TestSetMimetypeOverridesDefault(t *testing.T) {
	r := NewResolver()
	r.SetMimetype("txt", "application/x-custom")
	mime, ok := r.Resolve("TXT")
	if !ok || mime != "application/x-custom" {
		t.Fatalf("expected override to apply case-insensitively, got %q ok=%v", mime, ok)
	}
}

func TestExtOf(t *testing.T) {
	cases := []struct {
		name    string
		wantExt string
		wantOK  bool
	}{
		{"readme.txt", "txt", true},
		{"archive.tar.gz", "gz", true},
		{"noext", "", false},
		{"trailing.", "", false},
	}
	for _, c := range cases {
		ext, ok := ExtOf(c.name)
		if ext != c.wantExt || ok != c.wantOK {
			t.Errorf("ExtOf(%q) = %q,%v want %q,%v", c.name, ext, ok, c.wantExt, c.wantOK)
		}
	}
}
